// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"

	"github.com/decred/slog"
)

// pickNoun returns the singular or plural form of a noun depending on the
// provided count.
func pickNoun(n uint64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// progressLogger provides periodic logging of the progress of a simulation.
type progressLogger struct {
	sync.Mutex
	subsystemLogger slog.Logger
	progressAction  string

	// lastLogTime tracks the last time a log statement was shown.
	lastLogTime time.Time

	// These fields accumulate information about trials between log
	// statements.
	receivedTrials uint64
	receivedProbes uint64
	receivedFPs    uint64
}

// newProgressLogger returns a new trial progress logger.
func newProgressLogger(progressAction string, logger slog.Logger) *progressLogger {
	return &progressLogger{
		lastLogTime:     time.Now(),
		progressAction:  progressAction,
		subsystemLogger: logger,
	}
}

// logProgress accumulates details for a completed trial and periodically
// (every 10 seconds) logs an information message to show progress to the user
// along with duration and totals included.
//
// The force flag may be used to force a log message to be shown regardless of
// the time the last one was shown.
//
// The progress message is templated as follows:
//
//	{progressAction} {numTrials} {trials|trial} in the last {timePeriod}
//	({numProbes} {probes|probe}, {numFPs} false {positives|positive})
func (l *progressLogger) logProgress(probes, falsePositives uint64, forceLog bool) {
	l.Lock()
	defer l.Unlock()

	l.receivedTrials++
	l.receivedProbes += probes
	l.receivedFPs += falsePositives
	now := time.Now()
	duration := now.Sub(l.lastLogTime)
	if !forceLog && duration < time.Second*10 {
		return
	}

	l.subsystemLogger.Infof("%s %d %s in the last %0.2fs (%d %s, %d false %s)",
		l.progressAction, l.receivedTrials,
		pickNoun(l.receivedTrials, "trial", "trials"), duration.Seconds(),
		l.receivedProbes, pickNoun(l.receivedProbes, "probe", "probes"),
		l.receivedFPs, pickNoun(l.receivedFPs, "positive", "positives"))

	l.receivedTrials = 0
	l.receivedProbes = 0
	l.receivedFPs = 0
	l.lastLogTime = now
}

// setLastLogTime updates the last time data was logged to the provided time.
func (l *progressLogger) setLastLogTime(time time.Time) {
	l.Lock()
	l.lastLogTime = time
	l.Unlock()
}
