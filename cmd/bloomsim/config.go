// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/decred/dcrd/container/bloom"
	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultItems       = 10000
	defaultFPRate      = 0.01
	defaultProbes      = 100000
	defaultTrials      = 10
	defaultLoad        = 1.0
	defaultLogLevel    = "info"
	defaultLogFilename = "bloomsim.log"
)

// config defines the configuration options for bloomsim.
type config struct {
	Items      uint64  `short:"n" long:"items" description:"Expected number of items each filter is sized for"`
	FPRate     float64 `short:"p" long:"fprate" description:"Target false positive rate in the open interval (0, 1)"`
	Probes     uint64  `long:"probes" description:"Number of never added items to probe per trial"`
	Trials     int     `short:"t" long:"trials" description:"Number of independently keyed filters to test"`
	Load       float64 `long:"load" description:"Number of items to add to each filter as a multiple of --items"`
	Seed       uint64  `long:"seed" description:"Derive filter keys deterministically from this seed instead of the system CSPRNG (0 means random keys)"`
	LogDir     string  `long:"logdir" description:"Directory to write a rotated log file to in addition to stdout"`
	DebugLevel string  `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// loadConfig initializes and parses the config using command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Override with any specified command line options
//  3. Validate the final options
//
// The returned error is a *flags.Error of type flags.ErrHelp when help was
// requested, in which case its message is the usage text.
func loadConfig(args []string) (*config, []string, error) {
	cfg := config{
		Items:      defaultItems,
		FPRate:     defaultFPRate,
		Probes:     defaultProbes,
		Trials:     defaultTrials,
		Load:       defaultLoad,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}
	if len(remainingArgs) > 0 {
		str := "unexpected arguments: %s"
		return nil, nil, fmt.Errorf(str, strings.Join(remainingArgs, " "))
	}

	// Ensure a filter can be created with the requested parameters.
	if _, err := bloom.CalcFilterBytes(cfg.Items, cfg.FPRate); err != nil {
		return nil, nil, fmt.Errorf("invalid filter parameters: %w", err)
	}
	if cfg.Probes == 0 {
		return nil, nil, fmt.Errorf("the number of probes must be at least 1")
	}
	if cfg.Trials < 1 {
		str := "the number of trials must be at least 1 -- got %d"
		return nil, nil, fmt.Errorf(str, cfg.Trials)
	}
	if !(cfg.Load > 0) {
		str := "the load multiplier must be greater than zero -- got %v"
		return nil, nil, fmt.Errorf(str, cfg.Load)
	}
	if float64(cfg.Items)*cfg.Load >= math.MaxUint64 {
		str := "the number of items to add (%d * %v) exceeds the maximum " +
			"allowed value of %d"
		return nil, nil, fmt.Errorf(str, cfg.Items, cfg.Load,
			uint64(math.MaxUint64))
	}
	if added := cfg.itemsToAdd(); cfg.Probes > math.MaxUint64-added {
		str := "the number of items to add (%d) plus probes (%d) exceeds " +
			"the maximum allowed value of %d"
		return nil, nil, fmt.Errorf(str, added, cfg.Probes,
			uint64(math.MaxUint64))
	}
	if _, ok := slog.LevelFromString(cfg.DebugLevel); !ok {
		str := "the specified debug level [%v] is invalid"
		return nil, nil, fmt.Errorf(str, cfg.DebugLevel)
	}

	return &cfg, remainingArgs, nil
}

// itemsToAdd returns the number of items added to every filter according to
// the configured load multiplier.  The product is ensured to fit in a uint64
// by loadConfig.
func (cfg *config) itemsToAdd() uint64 {
	added := uint64(float64(cfg.Items)*cfg.Load + 0.5)
	if added == 0 {
		return 1
	}
	return added
}
