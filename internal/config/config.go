package config

// Config is the complete pluginspect configuration, loadable from
// .pluginspect/config.yml with environment variable overrides.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
}

// DiscoveryConfig controls how the registration entry file is located.
type DiscoveryConfig struct {
	EntryCandidates []string `yaml:"entry_candidates" mapstructure:"entry_candidates"` // file names probed under each package root
	Strategy        string   `yaml:"strategy" mapstructure:"strategy"`                 // "tree" or "text"
	EnvRoot         string   `yaml:"env_root" mapstructure:"env_root"`                 // environment root for entry_points.txt lookup
}

// ScanConfig controls the recursive decorator and parameter scans.
type ScanConfig struct {
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                 // glob patterns excluded from scans
	Parallel      int      `yaml:"parallel" mapstructure:"parallel"`             // subtree scan workers; <=1 disables
	CacheCapacity int      `yaml:"cache_capacity" mapstructure:"cache_capacity"` // file cache size in entries
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			EntryCandidates: []string{"plugins.py", "plugin.py"},
			Strategy:        "tree",
		},
		Scan: ScanConfig{
			Ignore: []string{
				"*.egg-info/**",
			},
			Parallel:      1,
			CacheCapacity: 4096,
		},
	}
}
