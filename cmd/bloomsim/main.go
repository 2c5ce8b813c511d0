// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

// run is the real main function for bloomsim.  It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func run() error {
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}

	if cfg.LogDir != "" {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	setLogLevels(cfg.DebugLevel)

	src, err := keySource(cfg.Seed)
	if err != nil {
		return err
	}

	ctx := shutdownListener()
	progress := newProgressLogger("Processed", simLog)
	result, err := runSimulation(ctx, cfg, src, progress)
	if result.trials > 0 {
		writeResult(os.Stdout, result)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
