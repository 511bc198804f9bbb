package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatgraph/pkg/tsapi"
)

// newTelemetryRegistry builds a catalog backed by a stub telemetry server.
func newTelemetryRegistry(t *testing.T, handler http.HandlerFunc) *Registry {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := NewRegistry()
	RegisterTelemetryTools(r, tsapi.NewClient(srv.URL))
	return r
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {})

	assert.Equal(t, []string{"get_data", "get_last_value", "get_statistics", "get_timeseries"}, r.Names())
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_Descriptors(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {})

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 4)
	assert.Equal(t, "get_data", descriptors[0].Name)
	assert.NotEmpty(t, descriptors[0].Description)
	assert.Equal(t, "object", descriptors[0].Parameters["type"])
}

func TestGetData_FewAssets(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "key": "pump-01", "name": "Coolant Pump", "location": "Hall A", "classification": "pump"},
			{"id": 2, "key": "hvac-02", "name": "HVAC Unit", "location": "Roof", "classification": "hvac"}
		]`))
	})

	getData, ok := r.Get("get_data")
	require.True(t, ok)

	out, err := getData.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 available assets:\n")
	assert.Contains(t, out, "- pump-01: Coolant Pump at Hall A (Type: pump)\n")
	assert.NotContains(t, out, "additional assets available")
}

func TestGetData_TruncatesLongList(t *testing.T) {
	var assets []string
	for i := 1; i <= 8; i++ {
		assets = append(assets, fmt.Sprintf(
			`{"id": %d, "key": "asset-%02d", "name": "Asset %d", "location": "Hall", "classification": "sensor"}`,
			i, i, i))
	}
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("[" + strings.Join(assets, ",") + "]"))
	})

	getData, _ := r.Get("get_data")
	out, err := getData.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Contains(t, out, "Found 8 available assets (showing first 5):\n")
	assert.Contains(t, out, "- asset-05:")
	assert.NotContains(t, out, "- asset-06:")
	assert.Contains(t, out, "Metadata: 3 additional assets available. Use get_timeseries with specific asset_key to access data.")
}

func TestGetTimeseries(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "pump-01", req.URL.Query().Get("asset_key"))
		w.Write([]byte(`{
			"asset_id": "pump-01",
			"data": [{"temperature": {"1700000000": 21.5, "1700003600": 22.1, "1700007200": 23.0}}]
		}`))
	})

	getTS, _ := r.Get("get_timeseries")
	out, err := getTS.Execute(context.Background(), map[string]any{"asset_key": "pump-01"})

	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved 1 measurement types for asset pump-01:\n")
	assert.Contains(t, out, "- temperature: 3 data points\n")
}

func TestGetTimeseries_NoData(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"asset_id": "pump-01", "data": []}`))
	})

	getTS, _ := r.Get("get_timeseries")
	out, err := getTS.Execute(context.Background(), map[string]any{"asset_key": "pump-01"})

	require.NoError(t, err)
	assert.Equal(t, "No data found for asset pump-01", out)
}

func TestGetTimeseries_MissingAssetKey(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {})

	getTS, _ := r.Get("get_timeseries")
	_, err := getTS.Execute(context.Background(), map[string]any{})

	assert.ErrorContains(t, err, "missing required argument: asset_key")
}

func TestGetStatistics(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"asset_id": "pump-01",
			"data": [
				{"temperature": {"1": 10.0, "2": 20.0, "3": 30.0}},
				{"pressure": {"1": 5.0}}
			]
		}`))
	})

	getStats, _ := r.Get("get_statistics")
	out, err := getStats.Execute(context.Background(), map[string]any{"asset_key": "pump-01"})

	require.NoError(t, err)
	assert.Contains(t, out, "Statistical analysis for asset pump-01:\n")
	assert.Contains(t, out, "temperature:\n")
	assert.Contains(t, out, "  - Count: 3\n")
	assert.Contains(t, out, "  - Mean: 20.00\n")
	assert.Contains(t, out, "  - Min: 10.00\n")
	assert.Contains(t, out, "  - Max: 30.00\n")
	assert.Contains(t, out, "  - Std Dev: 10.00\n")
	// Single data point: sample stddev is zero.
	assert.Contains(t, out, "pressure:\n")
	assert.Contains(t, out, "  - Std Dev: 0.00\n")
}

func TestGetStatistics_FiltersMeasurementType(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"asset_id": "pump-01",
			"data": [
				{"temperature": {"1": 10.0}},
				{"pressure": {"1": 5.0}}
			]
		}`))
	})

	getStats, _ := r.Get("get_statistics")
	out, err := getStats.Execute(context.Background(), map[string]any{
		"asset_key":        "pump-01",
		"measurement_type": "pressure",
	})

	require.NoError(t, err)
	assert.Contains(t, out, "pressure:")
	assert.NotContains(t, out, "temperature:")
}

func TestGetLastValue(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"asset_id": "hvac-02",
			"data": {"temperature": 19.8},
			"timestamp": 1700090000
		}`))
	})

	getLast, _ := r.Get("get_last_value")
	out, err := getLast.Execute(context.Background(), map[string]any{"asset_key": "hvac-02"})

	require.NoError(t, err)
	assert.Contains(t, out, "Latest values for asset hvac-02:\n")
	assert.Contains(t, out, "- temperature: 19.8\n")
	assert.Contains(t, out, "\nTimestamp: ")
}

func TestGetLastValue_NoData(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"asset_id": "hvac-02", "data": {}, "timestamp": 0}`))
	})

	getLast, _ := r.Get("get_last_value")
	out, err := getLast.Execute(context.Background(), map[string]any{"asset_key": "hvac-02"})

	require.NoError(t, err)
	assert.Equal(t, "No measurement data found for asset hvac-02", out)
}

func TestToolError_Propagates(t *testing.T) {
	r := newTelemetryRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "asset not found"}`))
	})

	getLast, _ := r.Get("get_last_value")
	_, err := getLast.Execute(context.Background(), map[string]any{"asset_key": "nope"})

	assert.ErrorContains(t, err, "fetching last value")
	assert.ErrorContains(t, err, "asset not found")
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{10, 20, 30})
	assert.Equal(t, 3, s.count)
	assert.Equal(t, 20.0, s.mean)
	assert.Equal(t, 10.0, s.min)
	assert.Equal(t, 30.0, s.max)
	assert.InDelta(t, 10.0, s.stddev, 1e-9)

	single := summarize([]float64{7.5})
	assert.Equal(t, 1, single.count)
	assert.Equal(t, 0.0, single.stddev)
}

func TestTimestampArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int64
		present bool
		wantErr bool
	}{
		{"float64", float64(1700000000), 1700000000, true, false},
		{"int", 1700000000, 1700000000, true, false},
		{"numeric string", "1700000000", 1700000000, true, false},
		{"date string", "2023-11-14", 1699920000, true, false},
		{"empty string", "", 0, false, false},
		{"garbage", "not a date", 0, false, true},
		{"wrong type", []string{"x"}, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := timestampArg(map[string]any{"start_date": tt.value}, "start_date")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.present, present)
			assert.Equal(t, tt.want, got)
		})
	}

	_, present, err := timestampArg(map[string]any{}, "start_date")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestTimeRange_Defaults(t *testing.T) {
	start, end, err := timeRange(map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, int64(defaultWindow.Seconds()), end-start)

	// Only an end bound: start defaults to 24h lookback from now.
	start, end, err = timeRange(map[string]any{"end_date": float64(1700086400)})
	require.NoError(t, err)
	assert.Equal(t, int64(1700086400), end)
	assert.Less(t, start, end)
}
