package go_lanbeacon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, DefaultConfig(), cfg)

	// the defaults must have been written back to disk
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var written Config
	require.NoError(t, json.Unmarshal(content, &written))
	assert.Equal(t, *DefaultConfig(), written)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": "nope"}`), 0o644))

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9999, "timeout": 5, "properties": {"path": "/api"}}`), 0o644))

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Interval())
	assert.Equal(t, map[string]string{"path": "/api"}, cfg.Properties)

	// unset fields keep their defaults
	assert.Equal(t, "_http._tcp.local.", cfg.Type)
	assert.Equal(t, "", cfg.Name)
}

func TestLoadConfigUnknownFieldsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9000, "bogus": true}`), 0o644))

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadConfigTimeoutClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": -3}`), 0o644))

	cfg := LoadConfig(&NullLogger{}, path, nil)
	assert.Equal(t, time.Second, cfg.Interval())
}

func TestLoadConfigFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "warn"}`), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log_level", "", "")
	require.NoError(t, flags.Set("log_level", "debug"))

	cfg := LoadConfig(&NullLogger{}, path, flags)
	assert.Equal(t, "debug", cfg.LogLevel)
}
