// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// testKeys are the fixed keys used by tests that require reproducible filters.
var testKeys = [2]Key{{K0: 0, K1: 1}, {K0: 2, K1: 3}}

// counterSource is a deterministic Uint64Source that returns successive
// integers starting from one.
type counterSource struct {
	next  uint64
	draws int
}

// Uint64 returns the next integer in the sequence.
func (s *counterSource) Uint64() uint64 {
	s.next++
	s.draws++
	return s.next
}

// mustNewTestFilter returns a filter keyed with testKeys and fails the test
// when it can't be created.
func mustNewTestFilter(t *testing.T, items uint64, fpRate float64) *Filter[String] {
	t.Helper()

	filter, err := NewFilterWithKeys[String](items, fpRate, testKeys)
	if err != nil {
		t.Fatalf("unexpected error creating filter: %v", err)
	}
	return filter
}

// TestFilterBasicMembership ensures items that are added to a keyed filter are
// reported as members and that an empty filter reports no members.
func TestFilterBasicMembership(t *testing.T) {
	filter := mustNewTestFilter(t, 100, 0.01)

	// An empty filter has no bits set, so nothing can be a member.
	for _, item := range []String{"anything", "hello", "world", ""} {
		if filter.Contains(item) {
			t.Fatalf("empty filter unexpectedly contains %q", item)
		}
	}

	filter.Add("hello")
	filter.Add("world")
	for _, item := range []String{"hello", "world"} {
		if !filter.Contains(item) {
			t.Fatalf("filter missing expected item %q", item)
		}
	}
}

// TestFilterNoFalseNegatives ensures every added item remains a member after
// any number of subsequent additions, including when the filter is loaded
// well beyond the number of items it was sized for.
func TestFilterNoFalseNegatives(t *testing.T) {
	tests := []struct {
		name   string  // test description
		items  uint64  // expected number of items
		fpRate float64 // target false positive rate
		add    uint64  // number of items to actually add
	}{{
		name:   "items 100, fpRate 0.1, at capacity",
		items:  100,
		fpRate: 0.1,
		add:    100,
	}, {
		name:   "items 100, fpRate 0.01, at capacity",
		items:  100,
		fpRate: 0.01,
		add:    100,
	}, {
		name:   "items 1000, fpRate 0.001, at capacity",
		items:  1000,
		fpRate: 0.001,
		add:    1000,
	}, {
		name:   "items 10, fpRate 0.5, overloaded",
		items:  10,
		fpRate: 0.5,
		add:    500,
	}, {
		name:   "items 1, fpRate 0.999, overloaded",
		items:  1,
		fpRate: 0.999,
		add:    100,
	}}

nextTest:
	for _, test := range tests {
		filter, err := NewFilterWithKeys[Uint64](test.items, test.fpRate,
			testKeys)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}

		for i := uint64(0); i < test.add; i++ {
			filter.Add(Uint64(i))

			// Ensure the item that was just added is in the filter.
			if !filter.Contains(Uint64(i)) {
				t.Errorf("%q: filter missing just added item %d", test.name,
					i)
				continue nextTest
			}
		}

		// Ensure all items are still members after all additions.
		for i := uint64(0); i < test.add; i++ {
			if !filter.Contains(Uint64(i)) {
				t.Errorf("%q: filter missing expected item %d", test.name, i)
				continue nextTest
			}
		}
	}
}

// TestFilterIdempotentAdd ensures adding the same items multiple times results
// in the same filter data as adding them once.
func TestFilterIdempotentAdd(t *testing.T) {
	items := []String{"apple", "banana", "cherry", "date"}

	once := mustNewTestFilter(t, 1000, 0.01)
	for _, item := range items {
		once.Add(item)
	}

	many := mustNewTestFilter(t, 1000, 0.01)
	for i := 0; i < 3; i++ {
		for _, item := range items {
			many.Add(item)
		}
	}

	if !bytes.Equal(once.bits.bits, many.bits.bits) {
		t.Fatalf("mismatched filter data after repeated adds -- got %x, "+
			"want %x", []byte(many.bits.bits), []byte(once.bits.bits))
	}
	for _, item := range append(items, "orange", "grape", "mango") {
		if once.Contains(item) != many.Contains(item) {
			t.Fatalf("mismatched membership for %q", item)
		}
	}
}

// TestFilterClear ensures clearing a filter removes all items while keeping
// the sizing and keys so it behaves the same as a new filter.
func TestFilterClear(t *testing.T) {
	filter := mustNewTestFilter(t, 100, 0.01)
	wantBits, wantK, wantKeys := filter.CapacityBits(), filter.K(), filter.Keys()

	filter.Add("hello")
	filter.Add("world")
	filter.Clear()
	for _, item := range []String{"hello", "world"} {
		if filter.Contains(item) {
			t.Fatalf("cleared filter unexpectedly contains %q", item)
		}
	}
	for _, b := range filter.bits.bits {
		if b != 0 {
			t.Fatalf("cleared filter has non-zero data %x",
				[]byte(filter.bits.bits))
		}
	}

	if filter.CapacityBits() != wantBits {
		t.Fatalf("mismatched capacity -- got %d, want %d",
			filter.CapacityBits(), wantBits)
	}
	if filter.K() != wantK {
		t.Fatalf("mismatched k -- got %d, want %d", filter.K(), wantK)
	}
	if filter.Keys() != wantKeys {
		t.Fatalf("mismatched keys -- got %v, want %v", spew.Sdump(filter.Keys()),
			spew.Sdump(wantKeys))
	}

	// The cleared filter must match a fresh filter with the same parameters
	// once the same item is added to both.
	fresh := mustNewTestFilter(t, 100, 0.01)
	fresh.Add("world")
	filter.Add("world")
	if !bytes.Equal(fresh.bits.bits, filter.bits.bits) {
		t.Fatal("cleared filter does not behave like a new filter")
	}
	if filter.Contains("hello") {
		t.Fatal("cleared filter unexpectedly contains hello")
	}
}

// TestFilterReproducible ensures filters with the same parameters and keys
// produce identical data while different keys produce different data.
func TestFilterReproducible(t *testing.T) {
	a := mustNewTestFilter(t, 100, 0.01)
	b := mustNewTestFilter(t, 100, 0.01)
	otherKeys := [2]Key{{K0: 4, K1: 5}, {K0: 6, K1: 7}}
	c, err := NewFilterWithKeys[String](100, 0.01, otherKeys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 20; i++ {
		item := String(fmt.Sprintf("item %d", i))
		a.Add(item)
		b.Add(item)
		c.Add(item)
	}
	if !bytes.Equal(a.bits.bits, b.bits.bits) {
		t.Fatal("filters with identical keys have different data")
	}
	if bytes.Equal(a.bits.bits, c.bits.bits) {
		t.Fatal("filters with different keys have identical data")
	}
}

// TestFilterSmallFalsePositives ensures a lightly loaded filter does not
// report a handful of items that were never added as all being members.
func TestFilterSmallFalsePositives(t *testing.T) {
	filter := mustNewTestFilter(t, 10000, 0.01)
	for _, item := range []String{"apple", "banana", "cherry", "date"} {
		filter.Add(item)
	}
	for _, item := range []String{"apple", "banana", "cherry", "date"} {
		if !filter.Contains(item) {
			t.Fatalf("filter missing expected item %q", item)
		}
	}

	var numFP int
	for _, item := range []String{"orange", "grape", "mango"} {
		if filter.Contains(item) {
			numFP++
		}
	}
	if numFP >= 3 {
		t.Fatalf("unexpected number of false positives %d", numFP)
	}
}

// TestFilterFPRate ensures the observed false positive rate of filters loaded
// to their expected number of items with random keys stays within a
// reasonable bound of the target rate.
func TestFilterFPRate(t *testing.T) {
	tests := []struct {
		name   string  // test description
		items  uint64  // expected number of items
		fpRate float64 // target false positive rate
		probes uint64  // number of items never added to probe
		trials int     // number of independently keyed filters
	}{{
		name:   "items 1000, fpRate 0.1",
		items:  1000,
		fpRate: 0.1,
		probes: 10000,
		trials: 3,
	}, {
		name:   "items 1000, fpRate 0.01",
		items:  1000,
		fpRate: 0.01,
		probes: 10000,
		trials: 3,
	}, {
		name:   "items 5000, fpRate 0.001",
		items:  5000,
		fpRate: 0.001,
		probes: 50000,
		trials: 2,
	}}

	for _, test := range tests {
		var numFP, numProbes uint64
		for trial := 0; trial < test.trials; trial++ {
			filter, err := NewFilter[Uint64](test.items, test.fpRate)
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", test.name, err)
			}
			for i := uint64(0); i < test.items; i++ {
				filter.Add(Uint64(i))
			}

			// Probe values that are disjoint from the added ones.
			for i := test.items; i < test.items+test.probes; i++ {
				if filter.Contains(Uint64(i)) {
					numFP++
				}
			}
			numProbes += test.probes
		}

		// Allow up to three times the target rate to account for the
		// statistical nature of the test.
		observed := float64(numFP) / float64(numProbes)
		if observed > test.fpRate*3 {
			t.Errorf("%q: observed false positive rate %.5f exceeds three "+
				"times the target %v", test.name, observed, test.fpRate)
			continue
		}
		t.Logf("%q: observed false positive rate %.5f (target %v)",
			test.name, observed, test.fpRate)
	}
}

// TestNewFilterErrors ensures all of the constructors reject invalid
// parameters with the expected error kind.
func TestNewFilterErrors(t *testing.T) {
	tests := []struct {
		name   string  // test description
		items  uint64  // expected number of items
		fpRate float64 // target false positive rate
		err    error   // expected error
	}{{
		name:   "zero items",
		items:  0,
		fpRate: 0.01,
		err:    ErrZeroItems,
	}, {
		name:   "zero fp rate",
		items:  100,
		fpRate: 0,
		err:    ErrInvalidFPRate,
	}, {
		name:   "fp rate of one",
		items:  100,
		fpRate: 1,
		err:    ErrInvalidFPRate,
	}, {
		name:   "fp rate above one",
		items:  100,
		fpRate: 1.5,
		err:    ErrInvalidFPRate,
	}, {
		name:   "negative fp rate",
		items:  100,
		fpRate: -0.01,
		err:    ErrInvalidFPRate,
	}, {
		name:   "NaN fp rate",
		items:  100,
		fpRate: math.NaN(),
		err:    ErrInvalidFPRate,
	}, {
		name:   "zero items takes precedence over bad fp rate",
		items:  0,
		fpRate: 1.5,
		err:    ErrZeroItems,
	}, {
		name:   "filter too large",
		items:  math.MaxUint64,
		fpRate: 1e-300,
		err:    ErrFilterTooLarge,
	}}

	for _, test := range tests {
		filter, err := NewFilterWithKeys[String](test.items, test.fpRate,
			testKeys)
		if !errors.Is(err, test.err) || filter != nil {
			t.Errorf("%q: keyed -- got (%v, %v), want (nil, %v)", test.name,
				filter, err, test.err)
			continue
		}

		var src counterSource
		filter, err = NewFilterWithRand[String](test.items, test.fpRate, &src)
		if !errors.Is(err, test.err) || filter != nil {
			t.Errorf("%q: rand -- got (%v, %v), want (nil, %v)", test.name,
				filter, err, test.err)
			continue
		}
		if test.err != ErrFilterTooLarge && src.draws != 0 {
			t.Errorf("%q: drew %d words for invalid params", test.name,
				src.draws)
			continue
		}

		filter, err = NewFilter[String](test.items, test.fpRate)
		if !errors.Is(err, test.err) || filter != nil {
			t.Errorf("%q: default -- got (%v, %v), want (nil, %v)",
				test.name, filter, err, test.err)
			continue
		}

		var kerr Error
		if !errors.As(err, &kerr) {
			t.Errorf("%q: error is not a bloom.Error: %T", test.name, err)
			continue
		}
	}
}

// TestNewFilterWithRandKeys ensures the randomized constructor draws exactly
// four words from the source and uses them as the keys in order.
func TestNewFilterWithRandKeys(t *testing.T) {
	var src counterSource
	filter, err := NewFilterWithRand[Bytes](100, 0.01, &src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.draws != 4 {
		t.Fatalf("unexpected number of draws -- got %d, want 4", src.draws)
	}
	want := [2]Key{{K0: 1, K1: 2}, {K0: 3, K1: 4}}
	if filter.Keys() != want {
		t.Fatalf("mismatched keys -- got %s want %s", spew.Sdump(filter.Keys()),
			spew.Sdump(want))
	}

	// A keyed filter created with the drawn keys must be identical.
	keyed, err := NewFilterWithKeys[Bytes](100, 0.01, want)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filter.Add(Bytes("hello"))
	keyed.Add(Bytes("hello"))
	if !bytes.Equal(filter.bits.bits, keyed.bits.bits) {
		t.Fatal("randomized filter differs from keyed filter with same keys")
	}
}

// TestFilterParams ensures the filter reports the expected sizing for various
// parameters.
func TestFilterParams(t *testing.T) {
	tests := []struct {
		name     string  // test description
		items    uint64  // expected number of items
		fpRate   float64 // target false positive rate
		wantSize int     // expected filter data size
		wantK    uint32  // expected number of hash rounds
	}{{
		name:     "items 100, fpRate 0.01",
		items:    100,
		fpRate:   0.01,
		wantSize: 120,
		wantK:    7,
	}, {
		name:     "items 10000, fpRate 0.01",
		items:    10000,
		fpRate:   0.01,
		wantSize: 11982,
		wantK:    7,
	}, {
		name:     "items 1000, fpRate 0.001",
		items:    1000,
		fpRate:   0.001,
		wantSize: 1798,
		wantK:    10,
	}, {
		name:     "items 50, fpRate 0.1",
		items:    50,
		fpRate:   0.1,
		wantSize: 30,
		wantK:    4,
	}, {
		name:     "items 1, fpRate 0.5 rounds up to one byte",
		items:    1,
		fpRate:   0.5,
		wantSize: 1,
		wantK:    1,
	}, {
		name:     "items 1, fpRate 0.999 rounds up to one byte",
		items:    1,
		fpRate:   0.999,
		wantSize: 1,
		wantK:    1,
	}}

	for _, test := range tests {
		filter := mustNewTestFilter(t, test.items, test.fpRate)
		if filter.Size() != test.wantSize {
			t.Errorf("%q: mismatched size -- got %d, want %d", test.name,
				filter.Size(), test.wantSize)
			continue
		}
		if filter.CapacityBits() != uint64(test.wantSize)*8 {
			t.Errorf("%q: mismatched capacity -- got %d, want %d", test.name,
				filter.CapacityBits(), test.wantSize*8)
			continue
		}
		if filter.CapacityBits() < 8 {
			t.Errorf("%q: capacity %d is less than one byte", test.name,
				filter.CapacityBits())
			continue
		}
		if filter.K() != test.wantK {
			t.Errorf("%q: mismatched k -- got %d, want %d", test.name,
				filter.K(), test.wantK)
			continue
		}
	}
}

// TestFilterEstimatedFPRate ensures the theoretical false positive rate of a
// filter loaded to its expected number of items is close to the target.
func TestFilterEstimatedFPRate(t *testing.T) {
	filter := mustNewTestFilter(t, 100, 0.01)
	if got := filter.EstimatedFPRate(0); got != 0 {
		t.Fatalf("unexpected rate for empty filter: %v", got)
	}
	got := filter.EstimatedFPRate(100)
	if got <= 0 || got > 0.01 {
		t.Fatalf("unexpected rate for loaded filter: %v", got)
	}
	if overloaded := filter.EstimatedFPRate(1000); overloaded <= got {
		t.Fatalf("overloaded rate %v is not greater than %v", overloaded, got)
	}
}

// TestDeriveIndex ensures the derived indices wrap as expected and are always
// in range.
func TestDeriveIndex(t *testing.T) {
	tests := []struct {
		name   string // test description
		round  uint64 // hash round
		h1, h2 uint64 // base digests
		m      uint64 // number of bits
		want   uint64 // expected index
	}{{
		name:  "first round is h1 mod m",
		round: 0,
		h1:    1001,
		h2:    7,
		m:     1000,
		want:  1,
	}, {
		name:  "linear combination",
		round: 3,
		h1:    10,
		h2:    20,
		m:     1000,
		want:  70,
	}, {
		name:  "wrapping addition",
		round: 1,
		h1:    math.MaxUint64,
		h2:    2,
		m:     8,
		want:  1,
	}, {
		name:  "wrapping multiplication",
		round: 2,
		h1:    0,
		h2:    1 << 63,
		m:     8,
		want:  0,
	}, {
		name:  "max values",
		round: 10,
		h1:    math.MaxUint64,
		h2:    math.MaxUint64,
		m:     960,
		want:  (math.MaxUint64 - 10) % 960,
	}}

	for _, test := range tests {
		got := deriveIndex(test.round, test.h1, test.h2, test.m)
		if got != test.want {
			t.Errorf("%q: mismatched index -- got %d, want %d", test.name,
				got, test.want)
			continue
		}
		if got >= test.m {
			t.Errorf("%q: index %d out of range %d", test.name, got, test.m)
			continue
		}
	}
}
