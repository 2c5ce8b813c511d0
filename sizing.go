// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"fmt"
	"math"
)

// maxFilterBytes is the largest filter data size for which every bit offset
// is still addressable by an int on the current platform.
const maxFilterBytes = math.MaxInt / bitsPerByte

// validateParams ensures the expected number of items and target false
// positive rate describe a filter that can be built.
func validateParams(items uint64, fpRate float64) error {
	if items == 0 {
		str := "expected number of items must be greater than zero"
		return makeError(ErrZeroItems, str)
	}
	// The negated form also rejects NaN.
	if !(fpRate > 0 && fpRate < 1) {
		str := fmt.Sprintf("false positive rate %v is not in the open "+
			"interval (0, 1)", fpRate)
		return makeError(ErrInvalidFPRate, str)
	}
	return nil
}

// calcFilterBytes returns the optimal number of bytes for a filter holding
// the given number of items at the given false positive rate without
// validating the parameters.
//
// The optimal number of bits is m = -n*ln(p) / ln(2)^2, so the number of
// bytes is m/8 rounded up.
func calcFilterBytes(items uint64, fpRate float64) (int, error) {
	numBytes := math.Ceil(-(float64(items) * math.Log(fpRate)) /
		(bitsPerByte * math.Ln2 * math.Ln2))
	if numBytes > maxFilterBytes {
		str := fmt.Sprintf("a filter for %d items at false positive rate "+
			"%v requires %.0f bytes which exceeds the max allowed %d", items,
			fpRate, numBytes, maxFilterBytes)
		return 0, makeError(ErrFilterTooLarge, str)
	}
	if numBytes < 1 {
		return 1, nil
	}
	return int(numBytes), nil
}

// calcNumHashes returns the optimal number of hash rounds for the given false
// positive rate without validating it.  The optimal value is -log2(p) rounded
// up.
func calcNumHashes(fpRate float64) uint32 {
	k := uint32(math.Ceil(-math.Log2(fpRate)))
	if k < 1 {
		return 1
	}
	return k
}

// CalcFilterBytes returns the number of bytes of filter data a Filter created
// with the given expected number of items and target false positive rate
// occupies.
//
// An error of kind ErrZeroItems, ErrInvalidFPRate, or ErrFilterTooLarge is
// returned for parameters which a filter can't be created with.
func CalcFilterBytes(items uint64, fpRate float64) (int, error) {
	if err := validateParams(items, fpRate); err != nil {
		return 0, err
	}
	return calcFilterBytes(items, fpRate)
}

// CalcNumHashes returns the number of hash rounds a Filter created with the
// given target false positive rate performs per operation.
//
// An error of kind ErrInvalidFPRate is returned when the rate is not strictly
// between 0 and 1.
func CalcNumHashes(fpRate float64) (uint32, error) {
	if err := validateParams(1, fpRate); err != nil {
		return 0, err
	}
	return calcNumHashes(fpRate), nil
}

// CalcFPRate returns the theoretical false positive rate of a filter with the
// given number of bits and hash rounds once the given number of distinct
// items have been added.
//
// It is defined as (1 - e^(-k*n/m))^k.  Zero is returned when there are no
// bits, no hash rounds, or no items.
func CalcFPRate(bits uint64, k uint32, items uint64) float64 {
	if bits == 0 || k == 0 || items == 0 {
		return 0
	}
	fillRatio := 1 - math.Exp(-float64(k)*float64(items)/float64(bits))
	return math.Pow(fillRatio, float64(k))
}
