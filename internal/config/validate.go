package config

import "fmt"

// Validate checks configuration invariants that viper cannot express.
func (c *Config) Validate() error {
	switch c.Discovery.Strategy {
	case "tree", "text":
	default:
		return fmt.Errorf("invalid discovery.strategy %q: must be \"tree\" or \"text\"", c.Discovery.Strategy)
	}

	if len(c.Discovery.EntryCandidates) == 0 {
		return fmt.Errorf("discovery.entry_candidates must not be empty")
	}

	if c.Scan.Parallel < 0 {
		return fmt.Errorf("scan.parallel must not be negative")
	}
	if c.Scan.CacheCapacity < 0 {
		return fmt.Errorf("scan.cache_capacity must not be negative")
	}

	return nil
}
