package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, int64(300), cfg.WindowSeconds)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
binary: /opt/corrosion/bin/corrosion
corrosion_config: /etc/corrosion/config.toml
window_seconds: 120
snapshot_db: /var/lib/corro-cli/snapshots.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/corrosion/bin/corrosion", cfg.Binary)
	assert.Equal(t, "/etc/corrosion/config.toml", cfg.CorrosionConfig)
	assert.Equal(t, int64(120), cfg.WindowSeconds)
	assert.Equal(t, "/var/lib/corro-cli/snapshots.db", cfg.SnapshotDB)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_seconds: 30\n"), 0o644))
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(30), cfg.WindowSeconds)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("binary: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadNonPositiveWindowResetToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_seconds: -5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(300), cfg.WindowSeconds)
}
