package power

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `-BEGIN HEADER-
NASA/POWER CERES/MERRA2 Native Resolution Daily Data
Dates (month/day/year): 01/13/2023 through 01/15/2023
-END HEADER-
YEAR,DOY,IMERG_PRECTOT,T2M
2023,13,4.2,21.5
2023,14,-999,22.0
2023,15,0.8,20.1
`

func TestFetchDaily(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 5 * time.Second})

	daily, err := client.FetchDaily(context.Background(), Request{
		Parameters: []string{"IMERG_PRECTOT", "T2M"},
		Longitude:  -47.81,
		Latitude:   -21.17,
		Start:      "20230113",
		End:        "20230115",
	})
	require.NoError(t, err)

	assert.Equal(t, "IMERG_PRECTOT,T2M", gotQuery["parameters"])
	assert.Equal(t, "AG", gotQuery["community"])
	assert.Equal(t, "-47.81", gotQuery["longitude"])
	assert.Equal(t, "-21.17", gotQuery["latitude"])
	assert.Equal(t, "20230113", gotQuery["start"])
	assert.Equal(t, "20230115", gotQuery["end"])
	assert.Equal(t, "CSV", gotQuery["format"])
	assert.Equal(t, "UTC", gotQuery["time-standard"])

	require.Equal(t, 3, daily.Len())
	assert.Equal(t, []string{"IMERG_PRECTOT", "T2M"}, daily.Columns)

	// DOY 13 of 2023 is January 13.
	v, ok := daily.Value(time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC), "IMERG_PRECTOT")
	require.True(t, ok)
	assert.Equal(t, 4.2, v)

	// -999 reads back as missing.
	_, ok = daily.Value(time.Date(2023, 1, 14, 0, 0, 0, 0, time.UTC), "IMERG_PRECTOT")
	assert.False(t, ok)
}

func TestFetchDailyHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FetchDaily(context.Background(), Request{
		Parameters: []string{"T2M"},
		Start:      "20230101",
		End:        "20230102",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestFetchDailyNoParameters(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.FetchDaily(context.Background(), Request{})
	require.Error(t, err)
}

func TestParseDailyCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "no header", payload: "just,some,noise\n1,2,3\n"},
		{name: "no data rows", payload: "YEAR,DOY,T2M\n"},
		{name: "short row", payload: "YEAR,DOY,T2M\n2023,13\n"},
		{name: "bad value", payload: "YEAR,DOY,T2M\n2023,13,warm\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDailyCSV(tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestParseDailyCSVLeapYear(t *testing.T) {
	daily, err := parseDailyCSV("YEAR,DOY,T2M\n2024,60,18.5\n")
	require.NoError(t, err)

	// 2024 is a leap year, so DOY 60 is February 29.
	v, ok := daily.Value(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "T2M")
	require.True(t, ok)
	assert.Equal(t, 18.5, v)
}
