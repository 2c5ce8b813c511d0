// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"fmt"

	"github.com/jrick/bitset"
)

// bitsPerByte is the number of addressable bits in each byte of a bitBuffer.
const bitsPerByte = 8

// bitBuffer is a fixed-capacity array of bits addressed by bit offset.  Bit 0
// is the least significant bit of byte 0.
//
// The buffer is allocated once and never resized.  It is exclusively owned by
// a single Filter.
type bitBuffer struct {
	bits bitset.Bytes
}

// newBitBuffer returns a bitBuffer backed by byteCount bytes with all bits
// cleared.  The caller is responsible for choosing a non-zero size.
func newBitBuffer(byteCount int) bitBuffer {
	return bitBuffer{bits: make(bitset.Bytes, byteCount)}
}

// lenBytes returns the number of bytes backing the buffer.
func (b *bitBuffer) lenBytes() int {
	return len(b.bits)
}

// capacityBits returns the total number of addressable bits.
func (b *bitBuffer) capacityBits() uint64 {
	return uint64(len(b.bits)) * bitsPerByte
}

// assertOffset panics with an AssertError when the provided bit offset is
// outside of the buffer.  Every offset produced by the filter is reduced
// modulo the capacity, so hitting this indicates an indexing defect.
func (b *bitBuffer) assertOffset(bitOffset uint64) {
	if bitOffset >= b.capacityBits() {
		str := fmt.Sprintf("bit offset %d out of range [0, %d)", bitOffset,
			b.capacityBits())
		panic(AssertError(str))
	}
}

// test returns whether the bit at the provided offset is set.
func (b *bitBuffer) test(bitOffset uint64) bool {
	b.assertOffset(bitOffset)
	return b.bits.Get(int(bitOffset))
}

// set unconditionally sets the bit at the provided offset.
func (b *bitBuffer) set(bitOffset uint64) {
	b.assertOffset(bitOffset)
	b.bits.Set(int(bitOffset))
}

// clear zeroes every bit in the buffer.
func (b *bitBuffer) clear() {
	for i := range b.bits {
		b.bits[i] = 0
	}
}
