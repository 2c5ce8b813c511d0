// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package bloom implements a classic keyed Bloom filter.

A Bloom filter is a space-efficient probabilistic data structure that is used
to test set membership with a tunable false positive rate while preventing
false negatives.  In other words, items that were added always match, but
items that were never added will also sometimes match with the chosen false
positive rate.  It is typically used as a cheap pre-check in front of an
expensive lookup such as a disk read or network request.

# Sizing

Filters are created from the expected number of items, n, and a target false
positive rate, p.  The filter data occupies ceil(-n*ln(p) / (8*ln(2)^2))
bytes and every operation performs ceil(-log2(p)) hash rounds.  Both values
are fixed at creation.  Adding more than n items is allowed, however, the
realized false positive rate grows beyond the target as the filter fills.

CalcFilterBytes and CalcNumHashes may be used to plan memory usage prior to
creating a filter and CalcFPRate calculates the theoretical false positive
rate of a loaded filter.

# Keys

Every filter uses two SipHash-2-4 instances keyed with independent 128-bit
keys.  NewFilter draws the keys from a cryptographically secure random number
generator so that each filter has a unique set of false positives which
attackers are unable to grind.  NewFilterWithRand draws the keys from a
caller-provided Uint64Source and NewFilterWithKeys accepts explicit keys for
reproducible filters.

# Items

Filters are parameterized by the type of item they hold, which must
implement Hashable by appending a deterministic byte representation of
itself.  The Bytes, String, and Uint64 types are provided for convenience.

# Concurrency

Filters perform no internal locking.  Concurrent calls to Contains are safe
as long as no Add or Clear is in progress; any other concurrent use must be
serialized by the caller.

# Errors

Errors returned by this package are of type bloom.Error and wrap an
ErrorKind, so the caller can use errors.Is to programmatically determine the
reason, for example, errors.Is(err, bloom.ErrInvalidFPRate).
*/
package bloom
