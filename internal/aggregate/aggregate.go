// Package aggregate builds daily state-average tables from the per-station
// history files and writes one CSV per climate parameter.
package aggregate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/climateops/powerfetch/internal/config"
	"github.com/climateops/powerfetch/internal/history"
	"github.com/climateops/powerfetch/internal/logging"
	"github.com/climateops/powerfetch/internal/series"
	"github.com/climateops/powerfetch/internal/stations"
)

// Aggregator computes state means over a history directory.
type Aggregator struct {
	cfg       *config.Config
	catalogue *stations.Catalogue
	log       *logging.Logger
}

// New creates an Aggregator.
func New(cfg *config.Config, catalogue *stations.Catalogue, log *logging.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, catalogue: catalogue, log: log}
}

// Parameters discovers the parameter columns by sampling one random history
// file; every station file carries the same column set.
func (a *Aggregator) Parameters() ([]string, error) {
	name, err := history.RandomFile(a.cfg.Data.HistoryDir(), ".csv")
	if err != nil {
		return nil, err
	}
	d, err := series.ReadCSVFile(filepath.Join(a.cfg.Data.HistoryDir(), name))
	if err != nil {
		return nil, err
	}
	return d.Columns, nil
}

type meanCell struct {
	sum   float64
	count int
}

// Run writes treated_data/<parameter>.csv for every parameter and returns
// the written paths.
func (a *Aggregator) Run() ([]string, error) {
	params, err := a.Parameters()
	if err != nil {
		return nil, fmt.Errorf("discovering parameters: %w", err)
	}

	if err := os.MkdirAll(a.cfg.Data.TreatedDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(a.cfg.Data.HistoryDir(), "*.csv"))
	if err != nil {
		return nil, err
	}

	states := a.cfg.Stations.ValidStates

	var written []string
	for _, param := range params {
		table, err := a.stateMeans(files, param, states)
		if err != nil {
			return written, err
		}
		if table.Len() == 0 {
			a.log.Warn("aggregate", "no data for parameter", logging.F("parameter", param))
			continue
		}

		outPath := filepath.Join(a.cfg.Data.TreatedDir(), param+".csv")
		if err := table.WriteCSVFile(outPath); err != nil {
			return written, err
		}
		a.log.Info("aggregate", "exported parameter table",
			logging.F("parameter", param),
			logging.F("rows", table.Len()))
		written = append(written, outPath)
	}

	return written, nil
}

// stateMeans averages one parameter per day across all stations of each
// state. Days with no observation for a state come out as NaN.
func (a *Aggregator) stateMeans(files []string, param string, states []string) (*series.Daily, error) {
	stateIdx := make(map[string]int, len(states))
	for i, s := range states {
		stateIdx[s] = i
	}

	acc := map[string][]meanCell{} // date key -> per-state accumulator
	for _, path := range files {
		code, _, _, err := history.ParseHistoryName(filepath.Base(path))
		if err != nil {
			continue
		}
		state := a.catalogue.StateOf(code)
		si, ok := stateIdx[state]
		if !ok {
			continue
		}

		d, err := series.ReadCSVFile(path)
		if err != nil {
			return nil, err
		}
		ci := d.Column(param)
		if ci < 0 {
			continue
		}

		for _, row := range d.Rows {
			v := row.Values[ci]
			if math.IsNaN(v) {
				continue
			}
			key := row.Date.Format(series.DateFormat)
			cells, ok := acc[key]
			if !ok {
				cells = make([]meanCell, len(states))
				acc[key] = cells
			}
			cells[si].sum += v
			cells[si].count++
		}
	}

	keys := make([]string, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := series.New(states...)
	for _, key := range keys {
		date, err := time.Parse(series.DateFormat, key)
		if err != nil {
			return nil, err
		}
		cells := acc[key]
		values := make([]float64, len(states))
		for i, cell := range cells {
			if cell.count == 0 {
				values[i] = math.NaN()
				continue
			}
			values[i] = cell.sum / float64(cell.count)
		}
		if err := out.Add(date, values...); err != nil {
			return nil, err
		}
	}

	return out, nil
}
