package refresher

import "time"

// Config controls the background cache refresh loop.
type Config struct {
	RunInterval time.Duration
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 10 * time.Minute,
		Timeout:     30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	return c
}
