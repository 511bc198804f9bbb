package tool

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/randalmurphal/chatgraph/pkg/tsapi"
)

// defaultWindow is the lookback used when no time range is given.
const defaultWindow = 24 * time.Hour

// maxListedAssets caps how many assets the scan tool renders in full.
const maxListedAssets = 5

// NewTelemetryTools returns the built-in tools backed by the telemetry API.
func NewTelemetryTools(client *tsapi.Client) []Tool {
	return []Tool{
		&getDataTool{client: client},
		&getTimeseriesTool{client: client},
		&getStatisticsTool{client: client},
		&getLastValueTool{client: client},
	}
}

// RegisterTelemetryTools registers the built-in telemetry tools on a catalog.
func RegisterTelemetryTools(r *Registry, client *tsapi.Client) {
	for _, t := range NewTelemetryTools(client) {
		r.Register(t)
	}
}

// getDataTool lists the available assets.
type getDataTool struct {
	client *tsapi.Client
}

func (t *getDataTool) Name() string { return "get_data" }

func (t *getDataTool) Description() string {
	return "Get list of all available assets/machines/sensors. Use this when user asks about available data or assets."
}

func (t *getDataTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *getDataTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	assets, err := t.client.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching assets: %w", err)
	}

	total := len(assets)
	var b strings.Builder

	if total > maxListedAssets {
		fmt.Fprintf(&b, "Found %d available assets (showing first %d):\n", total, maxListedAssets)
		for _, asset := range assets[:maxListedAssets] {
			fmt.Fprintf(&b, "- %s: %s at %s (Type: %s)\n", asset.Key, asset.Name, asset.Location, asset.Classification)
		}
		fmt.Fprintf(&b, "\nMetadata: %d additional assets available. Use get_timeseries with specific asset_key to access data.", total-maxListedAssets)
	} else {
		fmt.Fprintf(&b, "Found %d available assets:\n", total)
		for _, asset := range assets {
			fmt.Fprintf(&b, "- %s: %s at %s (Type: %s)\n", asset.Key, asset.Name, asset.Location, asset.Classification)
		}
	}

	return b.String(), nil
}

// getTimeseriesTool retrieves measurement series for one asset.
type getTimeseriesTool struct {
	client *tsapi.Client
}

func (t *getTimeseriesTool) Name() string { return "get_timeseries" }

func (t *getTimeseriesTool) Description() string {
	return "Get time series data for a specific asset. Use this when user asks for data from a specific asset."
}

func (t *getTimeseriesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"asset_key": map[string]any{
				"type":        "string",
				"description": "REQUIRED - The unique identifier for the asset (e.g., 'ABC123')",
			},
			"start_date": map[string]any{
				"type":        "string",
				"description": "OPTIONAL - Start timestamp (Unix timestamp or YYYY-MM-DD format, defaults to 24 hours ago)",
			},
			"end_date": map[string]any{
				"type":        "string",
				"description": "OPTIONAL - End timestamp (Unix timestamp or YYYY-MM-DD format, defaults to now)",
			},
		},
		"required": []string{"asset_key"},
	}
}

func (t *getTimeseriesTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	assetKey, err := stringArg(args, "asset_key")
	if err != nil {
		return "", err
	}

	start, end, err := timeRange(args)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Timeseries(ctx, assetKey, start, end)
	if err != nil {
		return "", fmt.Errorf("fetching timeseries: %w", err)
	}

	if len(resp.Data) == 0 {
		return fmt.Sprintf("No data found for asset %s", assetKey), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Retrieved %d measurement types for asset %s:\n", len(resp.Data), assetKey)
	for _, measurement := range resp.Data {
		for measurementType, points := range measurement {
			fmt.Fprintf(&b, "- %s: %d data points\n", measurementType, len(points))
		}
	}
	return b.String(), nil
}

// getStatisticsTool computes summary statistics over an asset's series.
type getStatisticsTool struct {
	client *tsapi.Client
}

func (t *getStatisticsTool) Name() string { return "get_statistics" }

func (t *getStatisticsTool) Description() string {
	return "Get statistical analysis of time series data for an asset."
}

func (t *getStatisticsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"asset_key": map[string]any{
				"type":        "string",
				"description": "REQUIRED - The unique identifier for the asset",
			},
			"measurement_type": map[string]any{
				"type":        "string",
				"description": "OPTIONAL - Specific measurement to analyze (e.g., 'temperature', 'pressure')",
			},
		},
		"required": []string{"asset_key"},
	}
}

func (t *getStatisticsTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	assetKey, err := stringArg(args, "asset_key")
	if err != nil {
		return "", err
	}
	measurementType, _ := args["measurement_type"].(string)

	resp, err := t.client.Timeseries(ctx, assetKey, 0, 0)
	if err != nil {
		return "", fmt.Errorf("fetching data for statistics: %w", err)
	}

	if len(resp.Data) == 0 {
		return fmt.Sprintf("No data available for asset %s", assetKey), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Statistical analysis for asset %s:\n", assetKey)

	for _, measurement := range resp.Data {
		for measureName, points := range measurement {
			if measurementType != "" && measureName != measurementType {
				continue
			}

			values := make([]float64, 0, len(points))
			for _, v := range points {
				values = append(values, v)
			}
			if len(values) == 0 {
				continue
			}

			stats := summarize(values)
			fmt.Fprintf(&b, "\n%s:\n", measureName)
			fmt.Fprintf(&b, "  - Count: %d\n", stats.count)
			fmt.Fprintf(&b, "  - Mean: %.2f\n", stats.mean)
			fmt.Fprintf(&b, "  - Min: %.2f\n", stats.min)
			fmt.Fprintf(&b, "  - Max: %.2f\n", stats.max)
			fmt.Fprintf(&b, "  - Std Dev: %.2f\n", stats.stddev)
		}
	}

	return b.String(), nil
}

// getLastValueTool fetches the most recent reading for one asset.
type getLastValueTool struct {
	client *tsapi.Client
}

func (t *getLastValueTool) Name() string { return "get_last_value" }

func (t *getLastValueTool) Description() string {
	return "Get the most recent data point for a specific asset. Use this when user asks for current values or latest readings."
}

func (t *getLastValueTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"asset_key": map[string]any{
				"type":        "string",
				"description": "REQUIRED - The unique identifier for the asset (e.g., 'ABC123')",
			},
		},
		"required": []string{"asset_key"},
	}
}

func (t *getLastValueTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	assetKey, err := stringArg(args, "asset_key")
	if err != nil {
		return "", err
	}

	resp, err := t.client.LastValue(ctx, assetKey)
	if err != nil {
		return "", fmt.Errorf("fetching last value: %w", err)
	}

	if len(resp.Data) == 0 {
		return fmt.Sprintf("No measurement data found for asset %s", assetKey), nil
	}

	assetID := resp.AssetID
	if assetID == "" {
		assetID = assetKey
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Latest values for asset %s:\n", assetID)
	for measurementType, value := range resp.Data {
		fmt.Fprintf(&b, "- %s: %v\n", measurementType, value)
	}

	if resp.Timestamp > 0 {
		readable := time.Unix(resp.Timestamp, 0).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "\nTimestamp: %s", readable)
	}

	return b.String(), nil
}

// summary holds computed statistics for one measurement series.
type summary struct {
	count  int
	mean   float64
	min    float64
	max    float64
	stddev float64
}

// summarize computes count, mean, min, max, and sample standard deviation.
func summarize(values []float64) summary {
	s := summary{
		count: len(values),
		min:   values[0],
		max:   values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - s.mean
			sq += d * d
		}
		s.stddev = math.Sqrt(sq / float64(len(values)-1))
	}

	return s
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %s must be a non-empty string", key)
	}
	return s, nil
}

// timeRange resolves optional start_date/end_date arguments.
// Accepts Unix timestamps (numbers or numeric strings) and YYYY-MM-DD dates.
// Missing bounds default to the last 24 hours.
func timeRange(args map[string]any) (int64, int64, error) {
	now := time.Now().Unix()

	start, hasStart, err := timestampArg(args, "start_date")
	if err != nil {
		return 0, 0, err
	}
	end, hasEnd, err := timestampArg(args, "end_date")
	if err != nil {
		return 0, 0, err
	}

	if !hasStart && !hasEnd {
		return now - int64(defaultWindow.Seconds()), now, nil
	}
	if !hasStart {
		start = now - int64(defaultWindow.Seconds())
	}
	if !hasEnd {
		end = now
	}
	return start, end, nil
}

// timestampArg parses one optional timestamp argument.
func timestampArg(args map[string]any, key string) (int64, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}

	switch val := v.(type) {
	case float64:
		return int64(val), true, nil
	case int:
		return int64(val), true, nil
	case int64:
		return val, true, nil
	case string:
		if val == "" {
			return 0, false, nil
		}
		if ts, err := time.Parse("2006-01-02", val); err == nil {
			return ts.Unix(), true, nil
		}
		var unix int64
		if _, err := fmt.Sscanf(val, "%d", &unix); err == nil {
			return unix, true, nil
		}
		return 0, false, fmt.Errorf("argument %s must be a Unix timestamp or YYYY-MM-DD date", key)
	default:
		return 0, false, fmt.Errorf("argument %s must be a Unix timestamp or YYYY-MM-DD date", key)
	}
}
