package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_String(t *testing.T) {
	cfg := New(map[string]any{"model": "gpt-4o", "port": 8000})

	assert.Equal(t, "gpt-4o", cfg.String("model", "default"))
	assert.Equal(t, "default", cfg.String("missing", "default"))
	assert.Equal(t, "default", cfg.String("port", "default"))
}

func TestConfig_Duration(t *testing.T) {
	cfg := New(map[string]any{
		"string":  "30s",
		"float":   1.5,
		"int":     10,
		"int64":   int64(20),
		"native":  5 * time.Second,
		"invalid": "not a duration",
	})

	assert.Equal(t, 30*time.Second, cfg.Duration("string", time.Minute))
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration("float", time.Minute))
	assert.Equal(t, 10*time.Second, cfg.Duration("int", time.Minute))
	assert.Equal(t, 20*time.Second, cfg.Duration("int64", time.Minute))
	assert.Equal(t, 5*time.Second, cfg.Duration("native", time.Minute))
	assert.Equal(t, time.Minute, cfg.Duration("invalid", time.Minute))
	assert.Equal(t, time.Minute, cfg.Duration("missing", time.Minute))
}

func TestConfig_Bool(t *testing.T) {
	cfg := New(map[string]any{"enabled": true, "name": "yes"})

	assert.True(t, cfg.Bool("enabled", false))
	assert.False(t, cfg.Bool("missing", false))
	assert.True(t, cfg.Bool("name", true))
}

func TestConfig_Int(t *testing.T) {
	cfg := New(map[string]any{
		"int":        5,
		"int64":      int64(7),
		"whole":      3.0,
		"fractional": 3.5,
	})

	assert.Equal(t, 5, cfg.Int("int", -1))
	assert.Equal(t, 7, cfg.Int("int64", -1))
	assert.Equal(t, 3, cfg.Int("whole", -1))
	assert.Equal(t, -1, cfg.Int("fractional", -1))
	assert.Equal(t, -1, cfg.Int("missing", -1))
}

func TestConfig_Float(t *testing.T) {
	cfg := New(map[string]any{"f": 0.7, "i": 2})

	assert.Equal(t, 0.7, cfg.Float("f", 0))
	assert.Equal(t, 2.0, cfg.Float("i", 0))
	assert.Equal(t, 1.0, cfg.Float("missing", 1.0))
}

func TestConfig_StringSlice(t *testing.T) {
	cfg := New(map[string]any{
		"typed": []string{"a", "b"},
		"any":   []any{"x", "y"},
		"mixed": []any{"x", 1},
	})

	assert.Equal(t, []string{"a", "b"}, cfg.StringSlice("typed", nil))
	assert.Equal(t, []string{"x", "y"}, cfg.StringSlice("any", nil))
	assert.Equal(t, []string{"d"}, cfg.StringSlice("mixed", []string{"d"}))
	assert.Nil(t, cfg.StringSlice("missing", nil))
}

func TestConfig_Sub(t *testing.T) {
	cfg := New(map[string]any{
		"llm": map[string]any{"model": "gpt-4o"},
	})

	assert.Equal(t, "gpt-4o", cfg.Sub("llm").String("model", ""))
	assert.Equal(t, "fallback", cfg.Sub("missing").String("model", "fallback"))
}

func TestConfig_HasAny(t *testing.T) {
	cfg := New(map[string]any{"key": nil})

	assert.True(t, cfg.Has("key"))
	assert.False(t, cfg.Has("other"))
	assert.Equal(t, "d", cfg.Any("other", "d"))
}

func TestConfig_NilMap(t *testing.T) {
	cfg := New(nil)

	assert.Equal(t, "d", cfg.String("k", "d"))
	assert.NotNil(t, cfg.Raw())
}

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte("llm:\n  model: gpt-4o\n  timeout: 30s\nlog_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.String("log_level", ""))
	assert.Equal(t, 30*time.Second, cfg.Sub("llm").Duration("timeout", 0))

	_, err = FromYAML([]byte("a:\n\tb: tabs are invalid"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"telemetry":{"base_url":"http://localhost:8000"}}`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Sub("telemetry").String("base_url", ""))

	_, err = FromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-test-123")

	path := filepath.Join(t.TempDir(), "chat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: $TEST_API_KEY\n"), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.Sub("llm").String("api_key", ""))
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := FromFile(path)
	assert.ErrorContains(t, err, "unsupported config file extension")
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
