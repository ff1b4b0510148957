package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for configuration loading:
// - Missing config file yields defaults
// - A partial config file overrides only the keys it mentions
// - An explicit config file is read from its path, wherever it lives
// - A missing explicit config file is an error, unlike the probed path
// - Environment variables override file values
// - Invalid strategy and negative values fail validation

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"plugins.py", "plugin.py"}, cfg.Discovery.EntryCandidates)
	assert.Equal(t, "tree", cfg.Discovery.Strategy)
	assert.Empty(t, cfg.Discovery.EnvRoot)
	assert.Equal(t, 1, cfg.Scan.Parallel)
	assert.Equal(t, 4096, cfg.Scan.CacheCapacity)
	assert.Equal(t, []string{"*.egg-info/**"}, cfg.Scan.Ignore)
}

func writeConfigFile(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".pluginspect")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))
}

func TestLoad_PartialFile(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, "discovery:\n  strategy: text\nscan:\n  parallel: 4\n")

	cfg, err := LoadFromDir(root)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Discovery.Strategy)
	assert.Equal(t, 4, cfg.Scan.Parallel)
	assert.Equal(t, []string{"plugins.py", "plugin.py"}, cfg.Discovery.EntryCandidates,
		"unmentioned keys keep their defaults")
	assert.Equal(t, 4096, cfg.Scan.CacheCapacity)
}

func TestLoad_ExplicitFile(t *testing.T) {
	// The file lives outside the root's .pluginspect directory; only an
	// explicit path can reach it.
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  parallel: 6\n"), 0o644))

	cfg, err := LoadFromFile(t.TempDir(), path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Scan.Parallel)
	assert.Equal(t, "tree", cfg.Discovery.Strategy)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := LoadFromFile(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, "discovery:\n  strategy: text\n")

	t.Setenv("PLUGINSPECT_DISCOVERY_STRATEGY", "tree")
	t.Setenv("PLUGINSPECT_SCAN_PARALLEL", "8")

	cfg, err := LoadFromDir(root)
	require.NoError(t, err)

	assert.Equal(t, "tree", cfg.Discovery.Strategy)
	assert.Equal(t, 8, cfg.Scan.Parallel)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	root := t.TempDir()
	writeConfigFile(t, root, "discovery:\n  strategy: guess\n")

	_, err := LoadFromDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery.strategy")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Discovery.EntryCandidates = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scan.Parallel = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scan.CacheCapacity = -1
	assert.Error(t, cfg.Validate())
}
