package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
}

func TestRandomFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"A001_20060101_20230115.csv",
		"A002_20060101_20230115.csv",
		"A003_20060101_20230115.CSV",
		"notes.txt",
	)
	if err := os.Mkdir(filepath.Join(dir, "subdir.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	// Selector must only ever return eligible files.
	for i := 0; i < 50; i++ {
		name, err := RandomFile(dir, ".csv")
		if err != nil {
			t.Fatalf("RandomFile() error: %v", err)
		}
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			t.Errorf("RandomFile() = %q, want *.csv", name)
		}
		if name == "subdir.csv" {
			t.Errorf("RandomFile() returned a directory")
		}
	}
}

func TestRandomFileNoFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "only_file_20230115.csv")

	// Single eligible file is returned deterministically.
	for i := 0; i < 10; i++ {
		name, err := RandomFile(dir, "")
		if err != nil {
			t.Fatalf("RandomFile() error: %v", err)
		}
		if name != "only_file_20230115.csv" {
			t.Errorf("RandomFile() = %q, want the single file", name)
		}
	}
}

func TestRandomFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		ext     string
		wantErr error
	}{
		{
			name:    "missing path",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantErr: ErrNotDirectory,
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "plain.csv")
				return filepath.Join(dir, "plain.csv")
			},
			wantErr: ErrNotDirectory,
		},
		{
			name:    "empty directory",
			setup:   func(t *testing.T) string { return t.TempDir() },
			wantErr: ErrNoMatchingFiles,
		},
		{
			name: "filter removes everything",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFiles(t, dir, "data.parquet", "readme.md")
				return dir
			},
			ext:     ".csv",
			wantErr: ErrNoMatchingFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RandomFile(tt.setup(t), tt.ext)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RandomFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "A713_20061001_20230115.csv")

	now := time.Date(2023, 6, 10, 15, 30, 0, 0, time.UTC)
	d := NewDeriverAt(func() time.Time { return now })

	start, end, err := d.DateRange(dir)
	if err != nil {
		t.Fatalf("DateRange() error: %v", err)
	}
	if start != "20230113" {
		t.Errorf("start = %q, want 20230113", start)
	}
	if end != "20230608" {
		t.Errorf("end = %q, want 20230608", end)
	}
}

func TestDateRangeEndIndependentOfFile(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC)
	d := NewDeriverAt(func() time.Time { return now })

	for _, name := range []string{
		"A001_20060101_20200101.csv",
		"B900_20100601_20231231.csv",
	} {
		dir := t.TempDir()
		writeFiles(t, dir, name)

		_, end, err := d.DateRange(dir)
		if err != nil {
			t.Fatalf("DateRange() error: %v", err)
		}
		if end != "20240228" {
			t.Errorf("end = %q for %s, want 20240228", end, name)
		}
	}
}

func TestDateRangeMonthBoundary(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "A001_20060101_20230301.csv")

	d := NewDeriverAt(func() time.Time {
		return time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	start, end, err := d.DateRange(dir)
	if err != nil {
		t.Fatalf("DateRange() error: %v", err)
	}
	if start != "20230227" {
		t.Errorf("start = %q, want 20230227", start)
	}
	if end != "20230227" {
		t.Errorf("end = %q, want 20230227", end)
	}
}

func TestDateRangeMalformedName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "nodatehere.csv")

	_, _, err := NewDeriver().DateRange(dir)
	if err == nil {
		t.Fatal("DateRange() expected error for malformed filename")
	}
}

func TestDateRangePropagatesSelectorError(t *testing.T) {
	_, _, err := NewDeriver().DateRange(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("DateRange() error = %v, want ErrNotDirectory", err)
	}
}

func TestParseHistoryName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		station string
		start   string
		end     string
		wantErr bool
	}{
		{name: "valid", in: "A713_20061001_20230115.csv", station: "A713", start: "20061001", end: "20230115"},
		{name: "uppercase ext", in: "A713_20061001_20230115.CSV", station: "A713", start: "20061001", end: "20230115"},
		{name: "missing segment", in: "A713_20230115.csv", wantErr: true},
		{name: "garbage date", in: "A713_2006XX01_20230115.csv", wantErr: true},
		{name: "impossible date", in: "A713_20061001_20231345.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			station, start, end, err := ParseHistoryName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHistoryName(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHistoryName(%q) error: %v", tt.in, err)
			}
			if station != tt.station || start != tt.start || end != tt.end {
				t.Errorf("ParseHistoryName(%q) = %q, %q, %q", tt.in, station, start, end)
			}
		})
	}
}
