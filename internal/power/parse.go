package power

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/climateops/powerfetch/internal/series"
)

// missingSentinel is how POWER encodes absent observations.
const missingSentinel = -999

// parseDailyCSV converts a POWER CSV payload into a daily table. The payload
// opens with a free-form metadata preamble; the data block starts at the
// header row beginning with YEAR,DOY followed by one column per parameter.
// Dates are reassembled from year plus day-of-year.
func parseDailyCSV(payload string) (*series.Daily, error) {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")

	headerPos := -1
	for i, line := range lines {
		fields := strings.Split(line, ",")
		for _, f := range fields {
			if strings.TrimSpace(f) == "YEAR" {
				headerPos = i
				break
			}
		}
		if headerPos >= 0 {
			break
		}
	}
	if headerPos < 0 {
		return nil, fmt.Errorf("no YEAR header row in payload")
	}

	header := strings.Split(lines[headerPos], ",")
	if len(header) < 3 {
		return nil, fmt.Errorf("header row %q carries no parameter columns", lines[headerPos])
	}

	columns := make([]string, len(header)-2)
	for i, name := range header[2:] {
		columns[i] = strings.TrimSpace(name)
	}
	daily := series.New(columns...)

	for _, line := range lines[headerPos+1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("row %q: want %d fields", line, len(header))
		}

		year, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("row %q: bad year: %w", line, err)
		}
		doy, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("row %q: bad day-of-year: %w", line, err)
		}

		date := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)

		values := make([]float64, len(columns))
		for i, cell := range fields[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %q: bad value %q: %w", line, cell, err)
			}
			if v == missingSentinel {
				v = math.NaN()
			}
			values[i] = v
		}

		if err := daily.Add(date, values...); err != nil {
			return nil, err
		}
	}

	if daily.Len() == 0 {
		return nil, fmt.Errorf("payload carried no data rows")
	}
	return daily, nil
}
