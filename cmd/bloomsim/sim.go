// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/decred/dcrd/container/bloom"
	"github.com/decred/dcrd/crypto/rand"
)

// seededSource is a deterministic bloom.Uint64Source based on the SplitMix64
// generator.  It is only used to make simulations reproducible and must not
// be used to key filters exposed to untrusted input.
type seededSource struct {
	state uint64
}

// Uint64 returns the next word in the sequence.
func (s *seededSource) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// keySource returns the source filter keys are drawn from.  A zero seed
// selects a newly seeded CSPRNG.
func keySource(seed uint64) (bloom.Uint64Source, error) {
	if seed != 0 {
		return &seededSource{state: seed}, nil
	}
	prng, err := rand.NewPRNG()
	if err != nil {
		return nil, fmt.Errorf("unable to seed PRNG: %w", err)
	}
	return prng, nil
}

// simResult houses the accumulated results of a simulation.
type simResult struct {
	trials          int
	itemsPerFilter  uint64
	added           uint64
	probes          uint64
	falsePositives  uint64
	bits            uint64
	k               uint32
	targetRate      float64
	theoreticalRate float64
}

// observedRate returns the fraction of probes that were false positives.
func (r *simResult) observedRate() float64 {
	if r.probes == 0 {
		return 0
	}
	return float64(r.falsePositives) / float64(r.probes)
}

// runTrial creates a filter keyed from src, adds the configured number of
// items, ensures they are all members, and then probes the configured number
// of items that were never added.  It returns the filter along with the
// number of false positives.
func runTrial(cfg *config, src bloom.Uint64Source) (*bloom.Filter[bloom.Uint64], uint64, error) {
	filter, err := bloom.NewFilterWithRand[bloom.Uint64](cfg.Items,
		cfg.FPRate, src)
	if err != nil {
		return nil, 0, err
	}

	added := cfg.itemsToAdd()
	for i := uint64(0); i < added; i++ {
		filter.Add(bloom.Uint64(i))
	}
	for i := uint64(0); i < added; i++ {
		if !filter.Contains(bloom.Uint64(i)) {
			str := fmt.Sprintf("filter with keys %v is missing added item %d",
				filter.Keys(), i)
			return nil, 0, bloom.AssertError(str)
		}
	}

	// Probe values that are disjoint from the added ones.
	var falsePositives uint64
	for i := added; i < added+cfg.Probes; i++ {
		if filter.Contains(bloom.Uint64(i)) {
			falsePositives++
		}
	}
	return filter, falsePositives, nil
}

// runSimulation runs the configured number of trials with filters keyed from
// src and returns the accumulated results.
//
// The context is checked between trials.  When it is canceled, the results of
// the trials completed so far are returned along with the context error.
func runSimulation(ctx context.Context, cfg *config, src bloom.Uint64Source, progress *progressLogger) (*simResult, error) {
	result := &simResult{
		itemsPerFilter: cfg.Items,
		added:          cfg.itemsToAdd(),
		targetRate:     cfg.FPRate,
	}
	simLog.Infof("Running %d %s with filters sized for %d items at false "+
		"positive rate %v", cfg.Trials, pickNoun(uint64(cfg.Trials), "trial",
		"trials"), cfg.Items, cfg.FPRate)

	for trial := 0; trial < cfg.Trials; trial++ {
		if shutdownRequested(ctx) {
			return result, ctx.Err()
		}

		filter, falsePositives, err := runTrial(cfg, src)
		if err != nil {
			return result, err
		}
		simLog.Debugf("Trial %d: %d false positives for %d probes", trial,
			falsePositives, cfg.Probes)

		result.trials++
		result.probes += cfg.Probes
		result.falsePositives += falsePositives
		result.bits = filter.CapacityBits()
		result.k = filter.K()
		result.theoreticalRate = filter.EstimatedFPRate(result.added)
		progress.logProgress(cfg.Probes, falsePositives,
			trial == cfg.Trials-1)
	}

	return result, nil
}

// writeResult writes a human-readable summary of the results to w.
func writeResult(w io.Writer, r *simResult) {
	fmt.Fprintf(w, "trials:            %d\n", r.trials)
	fmt.Fprintf(w, "filter bits:       %d\n", r.bits)
	fmt.Fprintf(w, "hash rounds:       %d\n", r.k)
	fmt.Fprintf(w, "items per filter:  %d (sized for %d)\n", r.added,
		r.itemsPerFilter)
	fmt.Fprintf(w, "probes:            %d\n", r.probes)
	fmt.Fprintf(w, "false positives:   %d\n", r.falsePositives)
	fmt.Fprintf(w, "observed rate:     %.6f\n", r.observedRate())
	fmt.Fprintf(w, "target rate:       %.6f\n", r.targetRate)
	fmt.Fprintf(w, "theoretical rate:  %.6f\n", r.theoreticalRate)
}
