// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

const (
	// SatoshiPerBitcent is the number of satoshis in one bitcoin cent.
	SatoshiPerBitcent = 1e6

	// SatoshiPerBitcoin is the number of satoshis in one bitcoin.
	SatoshiPerBitcoin = 1e8

	// MaxSatoshi is MAX_MONEY: 21 million bitcoin expressed in satoshis,
	// the maximum value a single amount (or the sum of any set of amounts
	// appearing together) may take.
	MaxSatoshi = 21e6 * SatoshiPerBitcoin

	// DustThreshold is the value below which an output is reported as
	// dust (§8 boundary behavior) — informational only, not a consensus
	// rule.
	DustThreshold = 546
)
