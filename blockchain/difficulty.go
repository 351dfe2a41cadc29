// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
)

// oneLsh256 is 2^256, used as CalcWork's numerator: work is the inverse
// of the target, scaled so that an easier target still contributes a
// small positive amount of work.
var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// HashToBig converts a chainhash.Hash into a big.Int so that two hashes can
// be compared as 256-bit integers. The hash is treated in its internal
// (non-reversed) byte order reinterpreted as big-endian, which is
// equivalent to interpreting the reversed display form as big-endian — the
// standard Bitcoin convention.
func HashToBig(hash *chainhash.Hash) *big.Int {
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// CompactToBig converts a compact-form difficulty_bits value to the target
// it represents, per §4.3: `bits = (exp<<24) | (coef & 0x7FFFFF)`, with
// `target = coef >> 8*(3-exp)` for exp <= 3 and `coef << 8*(exp-3)`
// otherwise. If the sign bit (0x800000) of the coefficient is set, the
// target is defined to be zero.
func CompactToBig(bits uint32) *big.Int {
	exp := bits >> 24
	coef := bits & 0x007fffff

	if bits&0x00800000 != 0 {
		return big.NewInt(0)
	}

	target := new(big.Int).SetUint64(uint64(coef))
	if exp <= 3 {
		return target.Rsh(target, uint(8*(3-exp)))
	}
	return target.Lsh(target, uint(8*(exp-3)))
}

// BigToCompact converts a target to its shortest compact-form encoding:
// the inverse of CompactToBig. If re-encoding would set the coefficient's
// sign bit, the exponent is incremented and the coefficient shifted down
// by a byte to keep the sign bit clear.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	// exponent = number of bytes needed to hold n.
	exp := uint((n.BitLen() + 7) / 8)

	var coef uint32
	if exp <= 3 {
		coef = uint32(n.Uint64() << uint(8*(3-exp)))
	} else {
		shifted := new(big.Int).Rsh(n, uint(8*(exp-3)))
		coef = uint32(shifted.Uint64())
	}

	if coef&0x00800000 != 0 {
		coef >>= 8
		exp++
	}

	return uint32(exp<<24) | coef
}

// CalcWork returns the amount of proof-of-work a block with the given
// difficulty_bits contributes to its chain's cumulative work total, per the
// fork-choice rule in §4.10: `2^256 / (target + 1)`.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(oneLsh256, denominator)
}

// CalcBlockSubsidy returns the coinbase subsidy for a block at the given
// height: `50e8 >> (height / SubsidyHalvingInterval)`, zero once 64
// halvings have occurred (§4.3, §8 boundary behavior).
func CalcBlockSubsidy(height int32, halvingInterval int32) int64 {
	halvings := height / halvingInterval
	if halvings >= 64 {
		return 0
	}
	return (50 * 1e8) >> uint(halvings)
}

// calcNextRequiredDifficulty computes the difficulty_bits a block at an
// adjustment boundary must carry, given the preset's AdjustmentInterval and the
// timestamps of the first and last block of the interval just completed
// (§4.3 Retarget). At any height that is not a positive multiple of
// AdjustmentInterval, difficulty is simply inherited and this function is
// not consulted.
func calcNextRequiredDifficulty(oldBits uint32, firstTimestamp, lastTimestamp int64, p *chaincfg.Params) uint32 {
	targetTimespan := p.TargetTimespan()

	elapsed := lastTimestamp - firstTimestamp
	minTimespan := targetTimespan / 4
	maxTimespan := targetTimespan * 4
	switch {
	case elapsed < minTimespan:
		elapsed = minTimespan
	case elapsed > maxTimespan:
		elapsed = maxTimespan
	}

	oldTarget := CompactToBig(oldBits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(elapsed))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	powLimit := CompactToBig(p.PowLimitBits)
	if newTarget.Cmp(powLimit) > 0 {
		newTarget.Set(powLimit)
	}
	if newTarget.Sign() < 1 {
		newTarget.SetInt64(1)
	}

	return BigToCompact(newTarget)
}
