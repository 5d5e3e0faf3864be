// Package config handles wexbimtool configuration loading and management.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Faultbox/wexbim-go/pkg/wexbim"
)

// Config holds all tool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Loader  LoaderConfig  `yaml:"loader"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig holds decoder settings.
type DecodeConfig struct {
	DuplicateIDs string `yaml:"duplicate_ids"` // "reject" or "last_wins"
}

// LoaderConfig holds settings for fetching model files.
type LoaderConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxBytes   int64         `yaml:"max_bytes"` // 0 means unlimited
	Decompress bool          `yaml:"decompress"`
}

// BatchConfig holds settings for multi-file commands.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			DuplicateIDs: wexbim.RejectDuplicates.String(),
		},
		Loader: LoaderConfig{
			Timeout:    30 * time.Second,
			MaxBytes:   1 << 30,
			Decompress: true,
		},
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// DuplicatePolicy returns the decoder policy named by Decode.DuplicateIDs.
func (c *Config) DuplicatePolicy() (wexbim.DuplicatePolicy, error) {
	return wexbim.ParseDuplicatePolicy(c.Decode.DuplicateIDs)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.DuplicatePolicy(); err != nil {
		return fmt.Errorf("decode.duplicate_ids: %w", err)
	}
	if c.Loader.Timeout < 0 {
		return fmt.Errorf("loader.timeout: negative duration %v", c.Loader.Timeout)
	}
	if c.Loader.MaxBytes < 0 {
		return fmt.Errorf("loader.max_bytes: negative limit %d", c.Loader.MaxBytes)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers: need at least 1, got %d", c.Batch.Workers)
	}
	return nil
}
