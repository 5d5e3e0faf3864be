// wexbimtool is a CLI utility for inspecting wexbim model-geometry files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/wexbim-go/internal/config"
	"github.com/Faultbox/wexbim-go/internal/loader"
	"github.com/Faultbox/wexbim-go/internal/logger"
	"github.com/Faultbox/wexbim-go/pkg/wexbim"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "regions":
		err = cmdRegions(args)
	case "styles":
		err = cmdStyles(args)
	case "products", "ls":
		err = cmdProducts(args)
	case "stats":
		err = cmdStats(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wexbimtool - wexbim model-geometry utility

Usage:
  wexbimtool <command> [options] <source>

A source is a file path or an http(s) URL. zstd and gzip payloads are
inflated when loader.decompress is set.

Commands:
  info <source>              Show header counts, buffer sizes and bounds
  regions <source>           List regions
  styles <source>            List styles with colour and transparency
  products <source>          List products with spans and visibility
  stats <source>...          Decode many sources in parallel and summarise
  config                     Write the effective configuration

Options (all commands):
  -config path   Config file (default ./wexbim.yaml or the user config dir)
  -debug         Enable debug logging
  -workers n     Parallel decodes for stats
  -timeout d     Fetch timeout per source, e.g. 30s
  -last-wins     Let repeated style and product ids shadow earlier ones

Examples:
  wexbimtool info model.wexbim
  wexbimtool products -hidden model.wexbim.zst
  wexbimtool products -at 1.5,2,0.5 model.wexbim
  wexbimtool stats -workers 8 models/*.wexbim
  wexbimtool config -o ./wexbim.yaml`)
}

// app holds what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	loader  *loader.Loader
	decoder *wexbim.Decoder
}

// newFlagSet returns a flag set carrying the shared options.
func newFlagSet(name string) (*flag.FlagSet, *config.Flags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, config.RegisterFlags(fs)
}

// newApp loads configuration and builds the logger, loader and decoder.
func newApp(flags *config.Flags) (*app, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	policy, err := cfg.DuplicatePolicy()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg,
		log: logger.Log,
		loader: loader.New(loader.Options{
			Timeout:    cfg.Loader.Timeout,
			MaxBytes:   cfg.Loader.MaxBytes,
			Decompress: cfg.Loader.Decompress,
			Logger:     logger.Named("loader"),
		}),
		decoder: wexbim.NewDecoder(wexbim.Options{
			Logger:     logger.Named("decoder"),
			Duplicates: policy,
		}),
	}, nil
}

// load decodes a single source.
func (a *app) load(src string) (*wexbim.ModelGeometry, error) {
	return a.loader.Load(context.Background(), src, a.decoder)
}

// singleSource parses args for a one-source command.
func singleSource(fs *flag.FlagSet, flags *config.Flags, args []string) (*app, string, error) {
	fs.Parse(args)
	if fs.NArg() != 1 {
		return nil, "", fmt.Errorf("usage: wexbimtool %s [options] <source>", fs.Name())
	}
	a, err := newApp(flags)
	if err != nil {
		return nil, "", err
	}
	return a, fs.Arg(0), nil
}
