package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewLoaderWithFile creates a loader that reads the given config file
// instead of probing .pluginspect/ under the root directory. Unlike the
// probed path, a missing explicit file is an error.
func NewLoaderWithFile(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PLUGINSPECT_*)
// 2. Config file (.pluginspect/config.yml or .pluginspect/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		configDir := filepath.Join(l.rootDir, ".pluginspect")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix("PLUGINSPECT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PLUGINSPECT_SCAN_PARALLEL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("discovery.strategy")
	v.BindEnv("discovery.env_root")
	v.BindEnv("scan.parallel")
	v.BindEnv("scan.cache_capacity")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers the default values with viper so partial config
// files only override what they mention.
func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("discovery.entry_candidates", defaults.Discovery.EntryCandidates)
	v.SetDefault("discovery.strategy", defaults.Discovery.Strategy)
	v.SetDefault("discovery.env_root", defaults.Discovery.EnvRoot)
	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.parallel", defaults.Scan.Parallel)
	v.SetDefault("scan.cache_capacity", defaults.Scan.CacheCapacity)
}

// LoadFromDir is a convenience wrapper for one-shot loading.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadFromFile is a convenience wrapper loading an explicit config file.
// Environment overrides still apply on top of it.
func LoadFromFile(rootDir, configFile string) (*Config, error) {
	return NewLoaderWithFile(rootDir, configFile).Load()
}
