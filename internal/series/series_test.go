package series

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeUpdateWins(t *testing.T) {
	old := New("PRECTOT")
	require.NoError(t, old.Add(day(2023, 1, 13), 1.0))
	require.NoError(t, old.Add(day(2023, 1, 14), 2.0))
	require.NoError(t, old.Add(day(2023, 1, 15), 3.0))

	update := New("PRECTOT")
	require.NoError(t, update.Add(day(2023, 1, 15), 30.0)) // overlaps
	require.NoError(t, update.Add(day(2023, 1, 16), 40.0))

	merged, err := Merge(old, update)
	require.NoError(t, err)

	assert.Equal(t, 4, merged.Len())

	v, ok := merged.Value(day(2023, 1, 15), "PRECTOT")
	require.True(t, ok)
	assert.Equal(t, 30.0, v, "overlapping date must come from the update")

	v, ok = merged.Value(day(2023, 1, 13), "PRECTOT")
	require.True(t, ok)
	assert.Equal(t, 1.0, v, "rows unique to the old table are kept")

	// Result is date-ordered even though the update came last.
	for i := 1; i < merged.Len(); i++ {
		assert.True(t, merged.Rows[i-1].Date.Before(merged.Rows[i].Date))
	}
}

func TestMergeColumnMismatch(t *testing.T) {
	old := New("PRECTOT")
	update := New("T2M")

	_, err := Merge(old, update)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column sets differ")
}

func TestAddRejectsWrongArity(t *testing.T) {
	d := New("PRECTOT", "T2M")
	err := d.Add(day(2023, 1, 1), 1.0)
	require.Error(t, err)
}

func TestCSVRoundTripWithMissing(t *testing.T) {
	d := New("PRECTOT", "T2M")
	require.NoError(t, d.Add(day(2023, 1, 13), 4.2, 21.5))
	require.NoError(t, d.Add(day(2023, 1, 14), math.NaN(), 22.0))

	path := filepath.Join(t.TempDir(), "A713_20230101_20230114.csv")
	require.NoError(t, d.WriteCSVFile(path))

	got, err := ReadCSVFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"PRECTOT", "T2M"}, got.Columns)
	require.Equal(t, 2, got.Len())

	_, ok := got.Value(day(2023, 1, 14), "PRECTOT")
	assert.False(t, ok, "missing cell must read back as missing")

	v, ok := got.Value(day(2023, 1, 14), "T2M")
	require.True(t, ok)
	assert.Equal(t, 22.0, v)
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("time,PRECTOT\n2023-01-13,1.0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}
