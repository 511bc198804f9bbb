// Package tsapi is a client for the asset telemetry HTTP API.
// It covers the three endpoints the tools need: asset scan, time series
// retrieval, and latest-value lookup.
package tsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	cgerrors "github.com/randalmurphal/chatgraph/pkg/chatgraph/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Asset describes one monitored asset (machine, sensor, building zone).
type Asset struct {
	ID             int    `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	Classification string `json:"classification"`
}

// TimeseriesResponse holds measurement series for one asset.
// Data maps measurement type -> timestamp -> value, one map per series.
type TimeseriesResponse struct {
	AssetID string                        `json:"asset_id"`
	Data    []map[string]map[string]float64 `json:"data"`
}

// LastValueResponse holds the most recent reading for one asset.
type LastValueResponse struct {
	AssetID   string             `json:"asset_id"`
	Data      map[string]float64 `json:"data"`
	Timestamp int64              `json:"timestamp"`
}

// Client calls the telemetry API.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a telemetry API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scan returns the list of all available assets.
func (c *Client) Scan(ctx context.Context) ([]Asset, error) {
	var assets []Asset
	if err := c.get(ctx, "/scan", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Timeseries returns measurement series for an asset in [start, end].
// Pass zero timestamps to use the server's default window.
func (c *Client) Timeseries(ctx context.Context, assetKey string, start, end int64) (*TimeseriesResponse, error) {
	params := url.Values{"asset_key": {assetKey}}
	if start > 0 {
		params.Set("start_date", strconv.FormatInt(start, 10))
	}
	if end > 0 {
		params.Set("end_date", strconv.FormatInt(end, 10))
	}

	var resp TimeseriesResponse
	if err := c.get(ctx, "/timeseries", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LastValue returns the most recent reading for an asset.
func (c *Client) LastValue(ctx context.Context, assetKey string) (*LastValueResponse, error) {
	params := url.Values{"asset_key": {assetKey}}

	var resp LastValueResponse
	if err := c.get(ctx, "/lastvalue", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &cgerrors.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(body),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// errorDetail extracts the detail field from an API error body, falling
// back to the raw body.
func errorDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return string(body)
}
