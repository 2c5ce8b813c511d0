// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

// References:
//   [LHSP] Less Hashing, Same Performance: Building a Better Bloom Filter
//      (Kirsch, Mitzenmacher)

// Filter implements a classic Bloom filter over items of type T.
//
// A Bloom filter is a probabilistic data structure for testing set membership.
// Items that were added are always reported as members (zero false
// negatives), while items that were never added are reported as members with
// a tunable false positive rate.  The memory used is fixed at creation time
// and independent of the size of the items.
//
// Each item is hashed exactly once with two independently keyed SipHash-2-4
// instances and the k bit positions are then derived via double hashing as
// described in [LHSP].
//
// The filter is NOT safe for concurrent access.  Concurrent calls to Contains
// are safe provided no call to Add or Clear is in flight, otherwise the
// caller must serialize access.
type Filter[T Hashable] struct {
	// k is the number of bit positions derived for every item.
	k uint32

	// hashers are the two SipHash instances that produce the base digests
	// used for double hashing.  Their keys are fixed for the lifetime of the
	// filter so previously added items remain members.
	hashers [2]keyedHash

	// bits houses the filter data.
	bits bitBuffer
}

// newFilter creates a filter after validating the parameters.  It is the
// shared implementation of all of the exported constructors.
func newFilter[T Hashable](items uint64, fpRate float64, keys [2]Key) (*Filter[T], error) {
	if err := validateParams(items, fpRate); err != nil {
		return nil, err
	}
	numBytes, err := calcFilterBytes(items, fpRate)
	if err != nil {
		return nil, err
	}
	k := calcNumHashes(fpRate)

	log.Debugf("Creating bloom filter for %d items at false positive rate %v "+
		"(%d bytes, %d hash rounds)", items, fpRate, numBytes, k)
	return &Filter[T]{
		k:       k,
		hashers: [2]keyedHash{{key: keys[0]}, {key: keys[1]}},
		bits:    newBitBuffer(numBytes),
	}, nil
}

// NewFilterWithKeys returns a Bloom filter sized for the expected number of
// items and target false positive rate that uses the provided keys for its
// two hash functions.
//
// Filters created with the same parameters and keys behave identically, which
// makes this constructor suitable when reproducibility is required.  Callers
// exposing the filter to untrusted input should prefer NewFilter or
// NewFilterWithRand so attackers are not able to grind false positives.
//
// An error of kind ErrZeroItems is returned when items is zero, one of kind
// ErrInvalidFPRate when fpRate is not strictly between 0 and 1, and one of
// kind ErrFilterTooLarge when the resulting filter can't be addressed.
func NewFilterWithKeys[T Hashable](items uint64, fpRate float64, keys [2]Key) (*Filter[T], error) {
	return newFilter[T](items, fpRate, keys)
}

// NewFilterWithRand returns a Bloom filter sized for the expected number of
// items and target false positive rate that is keyed with four words drawn
// from the provided source.  The source is only used during construction.
//
// See NewFilterWithKeys for the errors that may be returned.
func NewFilterWithRand[T Hashable](items uint64, fpRate float64, src Uint64Source) (*Filter[T], error) {
	// Validate prior to drawing keys so invalid parameters don't consume
	// entropy from the caller's source.
	if err := validateParams(items, fpRate); err != nil {
		return nil, err
	}
	return newFilter[T](items, fpRate, drawKeys(src))
}

// NewFilter returns a Bloom filter sized for the expected number of items and
// target false positive rate that is keyed from the default cryptographically
// secure random number generator.
//
// Every filter created this way has a unique set of false positives.
//
// See NewFilterWithKeys for the errors that may be returned.
func NewFilter[T Hashable](items uint64, fpRate float64) (*Filter[T], error) {
	return NewFilterWithRand[T](items, fpRate, cryptoSource{})
}

// hashItem returns the two base digests for the item.
func (f *Filter[T]) hashItem(item T) (uint64, uint64) {
	var buf [64]byte
	data := item.AppendHashBytes(buf[:0])
	return f.hashers[0].sum(data), f.hashers[1].sum(data)
}

// deriveIndex calculates the bit index for the given hash round using double
// hashing, defined as "g(i) = h1 + i*h2 (mod m)" where m is the number of bits
// in the filter.  The addition and multiplication intentionally wrap.
func deriveIndex(round, h1, h2, m uint64) uint64 {
	return (h1 + round*h2) % m
}

// Add inserts the item into the filter.  Adding an item more than once has no
// additional effect.
//
// There is no limit on the number of items that can be added, however, the
// false positive rate degrades beyond the target once more items than the
// filter was sized for are added.
func (f *Filter[T]) Add(item T) {
	h1, h2 := f.hashItem(item)
	m := f.bits.capacityBits()
	for i := uint64(0); i < uint64(f.k); i++ {
		f.bits.set(deriveIndex(i, h1, h2, m))
	}
}

// Contains returns the result of a probabilistic membership test of the item.
//
// False is only returned when the item is definitely not in the filter.  True
// means the item was added or is a false positive.
func (f *Filter[T]) Contains(item T) bool {
	h1, h2 := f.hashItem(item)
	m := f.bits.capacityBits()
	for i := uint64(0); i < uint64(f.k); i++ {
		if !f.bits.test(deriveIndex(i, h1, h2, m)) {
			return false
		}
	}
	return true
}

// CapacityBits returns the total number of bits in the filter.
func (f *Filter[T]) CapacityBits() uint64 {
	return f.bits.capacityBits()
}

// Clear removes all items from the filter.  The sizing and keys are retained,
// so the filter behaves exactly like a newly created one with the same
// parameters and keys.
func (f *Filter[T]) Clear() {
	f.bits.clear()
}

// K returns the number of hash rounds performed for every item.
func (f *Filter[T]) K() uint32 {
	return f.k
}

// Keys returns the keys of the two hash functions used by the filter.
func (f *Filter[T]) Keys() [2]Key {
	return [2]Key{f.hashers[0].key, f.hashers[1].key}
}

// Size returns the number of bytes of filter data.
func (f *Filter[T]) Size() int {
	return f.bits.lenBytes()
}

// EstimatedFPRate returns the theoretical false positive rate of the filter
// once the given number of distinct items have been added.  See CalcFPRate.
func (f *Filter[T]) EstimatedFPRate(items uint64) float64 {
	return CalcFPRate(f.bits.capacityBits(), f.k, items)
}
