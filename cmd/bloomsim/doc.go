// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Bloomsim measures the false positive rate of bloom filters.

Each trial creates an independently keyed filter sized for the expected number
of items and target false positive rate, adds items to it, ensures every added
item is reported as a member, and then probes items that were never added.
The observed false positive rate across all trials is reported along with the
target and theoretical rates.

The load multiplier may be used to study how the realized false positive rate
degrades when more items than the filter was sized for are added.

Usage:

	bloomsim [OPTIONS]

Application Options:

	-n, --items=       Expected number of items each filter is sized for
	                   (default: 10000)
	-p, --fprate=      Target false positive rate in the open interval (0, 1)
	                   (default: 0.01)
	    --probes=      Number of never added items to probe per trial
	                   (default: 100000)
	-t, --trials=      Number of independently keyed filters to test
	                   (default: 10)
	    --load=        Number of items to add to each filter as a multiple of
	                   --items (default: 1.0)
	    --seed=        Derive filter keys deterministically from this seed
	                   instead of the system CSPRNG (0 means random keys)
	    --logdir=      Directory to write a rotated log file to in addition to
	                   stdout
	-d, --debuglevel=  Logging level {trace, debug, info, warn, error,
	                   critical} (default: info)

Help Options:

	-h, --help         Show this help message
*/
package main
