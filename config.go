package go_lanbeacon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// minRefreshInterval is the floor applied to non-positive refresh timeouts.
const minRefreshInterval = time.Second

// Config is the daemon configuration, loaded from a JSON file.
type Config struct {
	// Type is the DNS-SD service type suffix to advertise.
	Type string `koanf:"type" json:"type"`
	// Name is the advertised instance name; empty means the local hostname.
	Name string `koanf:"name" json:"name"`
	// Port is the advertised port.
	Port int `koanf:"port" json:"port"`
	// Properties are TXT record key/value pairs.
	Properties map[string]string `koanf:"properties" json:"properties"`
	// Timeout is the refresh interval in seconds.
	Timeout float64 `koanf:"timeout" json:"timeout"`

	LogLevel  string `koanf:"log_level" json:"log_level"`
	Backend   string `koanf:"backend" json:"backend"`
	Interface string `koanf:"interface" json:"interface"`
}

func DefaultConfig() *Config {
	return &Config{
		Type:       "_http._tcp.local.",
		Name:       "",
		Port:       8080,
		Properties: map[string]string{},
		Timeout:    60,
		LogLevel:   "info",
		Backend:    "",
		Interface:  "",
	}
}

func defaultConfigMap() map[string]interface{} {
	return map[string]interface{}{
		"type":       "_http._tcp.local.",
		"name":       "",
		"port":       8080,
		"properties": map[string]string{},
		"timeout":    60.0,
		"log_level":  "info",
		"backend":    "",
		"interface":  "",
	}
}

// Interval returns the refresh interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// LoadConfig reads the JSON configuration at path, layered as
// defaults <- config file <- explicitly set command line flags.
//
// A missing file is created with the serialized defaults. A file that
// cannot be parsed, or one with mistyped values, yields the defaults with
// a warning; configuration problems never fail startup.
func LoadConfig(log Logger, path string, flags *pflag.FlagSet) *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaultConfigMap(), "."), nil)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeDefaultConfig(path); err != nil {
			log.WithError(err).Warnf("failed creating default config file at %s", path)
		} else {
			log.Warnf("config file not found, created default config at %s", path)
		}
	} else if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		log.WithError(err).Warnf("invalid config file %s, using defaults", path)
		k = koanf.New(".")
		_ = k.Load(confmap.Provider(defaultConfigMap(), "."), nil)
	}

	if flags != nil {
		_ = k.Load(posflag.Provider(flags, ".", k), nil)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		log.WithError(err).Warnf("malformed config values in %s, using defaults", path)
		cfg = DefaultConfig()
	}

	if cfg.Timeout <= 0 {
		log.Warnf("refresh timeout %v is not positive, clamping to %s", cfg.Timeout, minRefreshInterval)
		cfg.Timeout = minRefreshInterval.Seconds()
	}

	return cfg
}

// writeDefaultConfig serializes the default configuration to path.
// The file is written to a temporary sibling first and renamed into
// place, so a concurrent reader never observes a partial file.
func writeDefaultConfig(path string) error {
	content, err := json.MarshalIndent(DefaultConfig(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed marshalling default config: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed creating temporary config file: %w", err)
	}

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed writing default config: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed closing temporary config file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed replacing config file: %w", err)
	}

	return nil
}
