package updater

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for update runs.
type Metrics struct {
	fetchesTotal  *prometheus.CounterVec
	rowsTotal     prometheus.Counter
	fetchDuration prometheus.Histogram
	runsTotal     prometheus.Counter
	lastRunTime   prometheus.Gauge
}

// NewMetrics registers the updater instruments on reg. A nil registerer
// yields unregistered instruments, which tests use freely.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powerfetch",
			Subsystem: "updater",
			Name:      "station_fetches_total",
			Help:      "Station fetches by outcome.",
		}, []string{"status"}),
		rowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powerfetch",
			Subsystem: "updater",
			Name:      "rows_fetched_total",
			Help:      "Daily observation rows fetched from the POWER API.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "powerfetch",
			Subsystem: "updater",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of one station fetch.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powerfetch",
			Subsystem: "updater",
			Name:      "runs_total",
			Help:      "Completed update runs.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "powerfetch",
			Subsystem: "updater",
			Name:      "last_run_timestamp_seconds",
			Help:      "Completion time of the most recent update run.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.fetchesTotal, m.rowsTotal, m.fetchDuration, m.runsTotal, m.lastRunTime)
	}
	return m
}

func (m *Metrics) observeFetch(status string, rows int, dur time.Duration) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(status).Inc()
	m.rowsTotal.Add(float64(rows))
	m.fetchDuration.Observe(dur.Seconds())
}

func (m *Metrics) observeRun() {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.lastRunTime.SetToCurrentTime()
}
