// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import (
	"encoding/binary"

	"github.com/dchest/siphash"
	"github.com/decred/dcrd/crypto/rand"
)

// Hashable is the constraint for items that may be added to a Filter.
//
// AppendHashBytes must append a byte representation of the item to dst and
// return the extended slice.  The representation must be deterministic such
// that logically equal items always append identical bytes, otherwise items
// that were added will not be reported as members.
type Hashable interface {
	AppendHashBytes(dst []byte) []byte
}

// Bytes is a Hashable byte slice whose representation is the raw bytes.
type Bytes []byte

// AppendHashBytes appends the raw bytes to dst.
func (b Bytes) AppendHashBytes(dst []byte) []byte {
	return append(dst, b...)
}

// String is a Hashable string whose representation is its UTF-8 bytes.
type String string

// AppendHashBytes appends the bytes of the string to dst.
func (s String) AppendHashBytes(dst []byte) []byte {
	return append(dst, s...)
}

// Uint64 is a Hashable integer whose representation is its 8-byte big-endian
// encoding.
type Uint64 uint64

// AppendHashBytes appends the big-endian encoding of the integer to dst.
func (v Uint64) AppendHashBytes(dst []byte) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}

// Key is a 128-bit SipHash key expressed as two 64-bit words.
type Key struct {
	K0, K1 uint64
}

// keyedHash is a SipHash-2-4 instance bound to a fixed key.  It is a plain
// value, so hashing never mutates the stored instance.
type keyedHash struct {
	key Key
}

// sum returns the 64-bit digest of data under the instance key.
func (h keyedHash) sum(data []byte) uint64 {
	return siphash.Hash(h.key.K0, h.key.K1, data)
}

// Uint64Source is the interface for sources of uniformly random 64-bit words
// used to key randomly seeded filters.
//
// The PRNG type from github.com/decred/dcrd/crypto/rand satisfies the
// interface, as can deterministic sources for tests.
type Uint64Source interface {
	Uint64() uint64
}

// cryptoSource is a Uint64Source backed by the default global userspace
// CSPRNG.  It is safe for concurrent access.
type cryptoSource struct{}

// Uint64 returns a uniformly random uint64 from the global CSPRNG.
func (cryptoSource) Uint64() uint64 {
	return rand.Uint64()
}

// drawKeys reads four words from src to form two independent keys.
func drawKeys(src Uint64Source) [2]Key {
	var keys [2]Key
	keys[0].K0 = src.Uint64()
	keys[0].K1 = src.Uint64()
	keys[1].K0 = src.Uint64()
	keys[1].K1 = src.Uint64()
	return keys
}
