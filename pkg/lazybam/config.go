package lazybam

import (
	"fmt"
	"runtime"
)

// Config holds the settings used by Open.
type Config struct {
	BatchSize   int // Records per NextBatch call (default: 1)
	Concurrency int // BGZF decompression goroutines (default: 1)
	Workers     int // Goroutines used by DecodeBatch (default: GOMAXPROCS)
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		BatchSize:   1,
		Concurrency: 1,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}
