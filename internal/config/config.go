// Package config loads corro-cli settings from an optional YAML file with
// environment-variable fallbacks.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/clutterstack/corro-cli/internal/ntp"
)

// EnvConfigFile overrides the default config file location.
const EnvConfigFile = "CORRO_CLI_CONFIG"

// Config holds the settings every command shares.
type Config struct {
	// Binary is the path to the corrosion executable. Empty means resolve
	// via CORROSION_BIN and then PATH.
	Binary string `yaml:"binary"`

	// CorrosionConfig is passed to corrosion as --config.
	CorrosionConfig string `yaml:"corrosion_config"`

	// WindowSeconds is the recency window for marking members active.
	WindowSeconds int64 `yaml:"window_seconds"`

	// SnapshotDB is the SQLite file for members-snapshot history. Empty
	// disables the snapshot store.
	SnapshotDB string `yaml:"snapshot_db"`
}

// Default returns the built-in settings used when no config file exists.
func Default() Config {
	return Config{WindowSeconds: ntp.DefaultWindowSeconds}
}

// Load reads the config file at path. An empty path falls back to
// CORRO_CLI_CONFIG and then to the default location; a missing file is not
// an error and yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		path = defaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = ntp.DefaultWindowSeconds
	}
	return cfg, nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "corro-cli", "config.yaml")
}
