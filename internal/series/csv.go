package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// ReadCSV loads a table written by WriteCSV: a "datetime" column followed by
// one float column per parameter. Empty cells become NaN.
func ReadCSV(r io.Reader) (*Daily, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if len(header) < 2 || header[0] != "datetime" {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	d := New(header[1:]...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		date, err := time.Parse(DateFormat, record[0])
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", record[0], err)
		}

		values := make([]float64, len(record)-1)
		for i, cell := range record[1:] {
			if cell == "" {
				values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing value %q: %w", cell, err)
			}
			values[i] = v
		}

		d.Rows = append(d.Rows, Row{Date: date, Values: values})
	}

	return d, nil
}

// ReadCSVFile loads a table from disk.
func ReadCSVFile(path string) (*Daily, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteCSV emits the table with a "datetime" first column; NaN values are
// written as empty cells.
func (d *Daily) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"datetime"}, d.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range d.Rows {
		record[0] = row.Date.Format(DateFormat)
		for i, v := range row.Values {
			if math.IsNaN(v) {
				record[i+1] = ""
			} else {
				record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to disk, creating or truncating path.
func (d *Daily) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := d.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
