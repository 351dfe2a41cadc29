// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coinnode/node/chaincfg"
	flags "github.com/jessevdk/go-flags"
)

var (
	defaultHomeDir   = filepath.Join(os.Getenv("HOME"), ".coinnoded")
	defaultDataDir   = filepath.Join(defaultHomeDir, "data")
	defaultLogLevel  = "info"
	defaultMetricsAddr = "127.0.0.1:9433"
)

// config defines the configuration options for coinnoded.
type config struct {
	DataDir     string `long:"datadir" description:"Directory to store the chain snapshot in"`
	Development bool   `long:"devnet" description:"Use the fast-iteration development parameter preset"`
	LogLevel    string `short:"l" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogFile     string `long:"logfile" description:"Path to a rotating log file; empty disables file logging"`
	MetricsAddr string `long:"metricsaddr" description:"host:port to serve Prometheus /metrics on; empty disables it"`
	Mine        bool   `long:"mine" description:"Run the built-in miner against the node's own mempool"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
}

// loadConfig parses command-line flags into a config, applying defaults for
// anything left unset.
func loadConfig() (*config, []string, error) {
	cfg := config{
		DataDir:     defaultDataDir,
		LogLevel:    defaultLogLevel,
		MetricsAddr: defaultMetricsAddr,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, "Use --help to show available options")
		}
		return nil, nil, err
	}

	if cfg.ShowVersion {
		fmt.Println(filepath.Base(os.Args[0]), "version", version)
		os.Exit(0)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, err
	}

	return &cfg, remaining, nil
}

// params resolves the chaincfg.Params preset selected by cfg's flags.
func (cfg *config) params() *chaincfg.Params {
	if cfg.Development {
		return chaincfg.DevelopmentParams
	}
	return chaincfg.ProductionParams
}

// snapshotPath is where this node's chain/mempool snapshot is persisted.
func (cfg *config) snapshotPath() string {
	return filepath.Join(cfg.DataDir, strings.ToLower(cfg.params().Name)+".snapshot.json")
}
