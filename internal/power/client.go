// Package power is a client for the NASA POWER daily point API.
package power

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/climateops/powerfetch/internal/series"
)

// DefaultBaseURL is the production POWER endpoint for daily point data.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Community selects the POWER data community ("AG" for agroclimatology).
	Community string
}

// Client talks to the POWER API.
type Client struct {
	baseURL    string
	community  string
	httpClient *http.Client
}

// NewClient creates a POWER API client. Zero-value fields in cfg fall back
// to production defaults.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	community := cfg.Community
	if community == "" {
		community = "AG"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		community: community,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Request describes one daily point query.
type Request struct {
	// Parameters are POWER parameter codes, e.g. IMERG_PRECTOT, T2M.
	Parameters []string

	Longitude float64
	Latitude  float64

	// Start and End are compact YYYYMMDD dates, inclusive.
	Start string
	End   string
}

// FetchDaily queries the API and parses the CSV payload into a daily table.
func (c *Client) FetchDaily(ctx context.Context, req Request) (*series.Daily, error) {
	if len(req.Parameters) == 0 {
		return nil, fmt.Errorf("no parameters requested")
	}

	q := url.Values{}
	q.Set("parameters", strings.Join(req.Parameters, ","))
	q.Set("community", c.community)
	q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("start", req.Start)
	q.Set("end", req.End)
	q.Set("format", "CSV")
	q.Set("time-standard", "UTC")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	daily, err := parseDailyCSV(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing POWER response: %w", err)
	}
	return daily, nil
}
