// Package history samples previously downloaded station files and derives
// the date window for the next incremental fetch.
//
// Files in a history directory follow the convention
// "<station>_<start>_<end>.csv" where both dates are compact YYYYMMDD
// strings. The deriver only relies on the trailing date; the full triple is
// parsed separately by ParseHistoryName for callers that need it.
package history

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the compact date format used in filenames and by the
// NASA POWER API ("start"/"end" query parameters).
const DateLayout = "20060102"

// bufferDays is subtracted from both the stored end date and today to avoid
// re-ingesting partial days while the source is still backfilling.
const bufferDays = 2

var (
	// ErrNotDirectory is returned when the history path is missing or not
	// a directory.
	ErrNotDirectory = errors.New("directory not found")

	// ErrNoMatchingFiles is returned when a directory contains no files
	// passing the extension filter.
	ErrNoMatchingFiles = errors.New("no matching files")
)

// RandomFile returns the name (not the full path) of one uniformly random
// regular file inside dir. If ext is non-empty, only filenames ending with
// that extension are eligible; the comparison is case-insensitive.
func RandomFile(dir string, ext string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading directory %s: %w", dir, err)
	}

	suffix := strings.ToLower(ext)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if suffix != "" && !strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			continue
		}
		files = append(files, entry.Name())
	}

	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoMatchingFiles, dir)
	}

	return files[rand.Intn(len(files))], nil
}

// Deriver computes incremental fetch windows from a history directory.
// The zero value is not usable; call NewDeriver.
type Deriver struct {
	now func() time.Time
}

// NewDeriver returns a Deriver using the system clock.
func NewDeriver() *Deriver {
	return &Deriver{now: time.Now}
}

// NewDeriverAt returns a Deriver with a fixed clock, for tests.
func NewDeriverAt(now func() time.Time) *Deriver {
	return &Deriver{now: now}
}

// DateRange picks one random file from historyDir and derives the window for
// the next fetch:
//
//	start = stored end date − 2 days
//	end   = today (UTC)     − 2 days
//
// Both are returned as YYYYMMDD strings ready for the POWER API.
func (d *Deriver) DateRange(historyDir string) (start, end string, err error) {
	name, err := RandomFile(historyDir, "")
	if err != nil {
		return "", "", err
	}

	storedEnd, err := trailingDate(name)
	if err != nil {
		return "", "", err
	}

	start = storedEnd.AddDate(0, 0, -bufferDays).Format(DateLayout)
	end = d.now().UTC().AddDate(0, 0, -bufferDays).Format(DateLayout)
	return start, end, nil
}

// trailingDate extracts the date embedded at the end of a history filename:
// the last underscore-separated segment, minus the extension, must end with
// eight digits in YYYYMMDD form.
func trailingDate(name string) (time.Time, error) {
	parts := strings.Split(name, "_")
	last := parts[len(parts)-1]
	last = strings.TrimSuffix(last, filepath.Ext(last))

	if len(last) < 8 {
		return time.Time{}, fmt.Errorf("filename %q: no trailing YYYYMMDD date", name)
	}

	t, err := time.Parse(DateLayout, last[len(last)-8:])
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q: invalid date segment: %w", name, err)
	}
	return t, nil
}

// ParseHistoryName splits a "<station>_<start>_<end>.<ext>" filename into
// its components, validating both dates.
func ParseHistoryName(name string) (station, start, end string, err error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("filename %q: want <station>_<start>_<end>", name)
	}
	for _, d := range parts[1:] {
		if _, perr := time.Parse(DateLayout, d); perr != nil {
			return "", "", "", fmt.Errorf("filename %q: invalid date %q: %w", name, d, perr)
		}
	}
	return parts[0], parts[1], parts[2], nil
}
