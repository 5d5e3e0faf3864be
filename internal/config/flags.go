package config

import (
	"flag"
	"time"
)

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	Config   string
	Debug    bool
	Workers  int
	Timeout  time.Duration
	LastWins bool
}

// RegisterFlags binds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel decodes for multi-file commands")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Fetch timeout for each model")
	fs.BoolVar(&f.LastWins, "last-wins", false, "Let repeated style and product ids shadow earlier ones")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Workers > 0 {
		cfg.Batch.Workers = f.Workers
	}
	if f.Timeout > 0 {
		cfg.Loader.Timeout = f.Timeout
	}
	if f.LastWins {
		cfg.Decode.DuplicateIDs = "last_wins"
	}
}
