// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg holds the network-wide parameters (difficulty presets,
// genesis block, coinbase maturity) a blockchain is configured with, per
// §4.7.
package chaincfg

import (
	"github.com/coinnode/node/wire"
)

// Params holds every network-tunable constant a BlockChain needs: the
// genesis block it starts from and the difficulty-adjustment preset it
// retargets under.
type Params struct {
	// Name identifies the preset ("production", "development").
	Name string

	// Net-level address/WIF version bytes (§6.2, §6.3).
	P2PKHVersion byte
	WIFVersion   byte

	// GenesisBlock is the height-0 block every chain under this preset is
	// rooted at.
	GenesisBlock *wire.MsgBlock

	// GenesisBits is the proof-of-work target the genesis block (and the
	// first retarget window) is mined under.
	GenesisBits uint32

	// PowLimitBits is the easiest allowable difficulty_bits value; no
	// retarget may ever produce a target looser than this.
	PowLimitBits uint32

	// AdjustmentInterval is the number of blocks between difficulty
	// retargets (§4.7).
	AdjustmentInterval int32

	// TargetBlockTime is the intended number of seconds between
	// consecutive blocks.
	TargetBlockTime int64

	// SubsidyHalvingInterval is the number of blocks between successive
	// halvings of the block subsidy (§4.3).
	SubsidyHalvingInterval int32

	// CoinbaseMaturity is the number of confirmations a coinbase output
	// must have before it may be spent (§4.5 item 7, §8).
	CoinbaseMaturity int32
}

// TargetTimespan is the total number of seconds an adjustment interval is
// expected to span: AdjustmentInterval * TargetBlockTime.
func (p *Params) TargetTimespan() int64 {
	return int64(p.AdjustmentInterval) * p.TargetBlockTime
}

// ProductionParams is the default, difficulty-realistic preset: a 2016
// block retarget window and a 10-minute target block time, matching
// Bitcoin's own historical parameters (§4.7). Its pow limit is one
// exponent step easier than mainnet's 0x1D00FFFF (see productionGenesisBlock).
var ProductionParams = &Params{
	Name:                   "production",
	P2PKHVersion:           0x00,
	WIFVersion:             0x80,
	GenesisBlock:           productionGenesisBlock,
	GenesisBits:            0x1E00FFFF,
	PowLimitBits:           0x1E00FFFF,
	AdjustmentInterval:     2016,
	TargetBlockTime:        600,
	SubsidyHalvingInterval: 210000,
	CoinbaseMaturity:       100,
}

// DevelopmentParams is the fast-iteration preset used for local testing and
// the scenarios in §8: a 10-block retarget window, a 5-second target block
// time, and a far looser genesis target so development mining does not
// require real proof-of-work effort.
var DevelopmentParams = &Params{
	Name:                   "development",
	P2PKHVersion:           0x6F,
	WIFVersion:             0xEF,
	GenesisBlock:           developmentGenesisBlock,
	GenesisBits:            0x1F0FFFFF,
	PowLimitBits:           0x1F0FFFFF,
	AdjustmentInterval:     10,
	TargetBlockTime:        5,
	SubsidyHalvingInterval: 210000,
	CoinbaseMaturity:       100,
}
