// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"testing"

	"github.com/coinnode/node/chainhash"
	"github.com/stretchr/testify/require"
)

// compactToTarget mirrors blockchain.CompactToBig without importing the
// blockchain package (which itself imports chaincfg, making that import a
// cycle from here).
func compactToTarget(bits uint32) *big.Int {
	exp := bits >> 24
	coef := bits & 0x007fffff
	target := new(big.Int).SetUint64(uint64(coef))
	if exp <= 3 {
		return target.Rsh(target, uint(8*(3-exp)))
	}
	return target.Lsh(target, uint(8*(exp-3)))
}

func hashToBig(hash chainhash.Hash) *big.Int {
	for i := 0; i < len(hash)/2; i++ {
		hash[i], hash[len(hash)-1-i] = hash[len(hash)-1-i], hash[i]
	}
	return new(big.Int).SetBytes(hash[:])
}

func TestGenesisBlocksSatisfyTheirOwnProofOfWork(t *testing.T) {
	for _, p := range []*Params{ProductionParams, DevelopmentParams} {
		target := compactToTarget(p.GenesisBlock.Header.Bits)
		hash := p.GenesisBlock.Header.BlockHash()
		require.LessOrEqual(t, hashToBig(hash).Cmp(target), 0, "%s genesis must satisfy its own bits", p.Name)
	}
}

func TestGenesisBlockMerkleRootMatchesCoinbase(t *testing.T) {
	for _, p := range []*Params{ProductionParams, DevelopmentParams} {
		require.Len(t, p.GenesisBlock.Transactions, 1)
		require.Equal(t, p.GenesisBlock.Transactions[0].Hash(), p.GenesisBlock.Header.MerkleRoot, "%s genesis merkle root", p.Name)
	}
}

func TestGenesisBlockHasZeroPrevBlock(t *testing.T) {
	for _, p := range []*Params{ProductionParams, DevelopmentParams} {
		require.Equal(t, chainhash.Hash{}, p.GenesisBlock.Header.PrevBlock)
	}
}

func TestTargetTimespanMatchesIntervalTimesBlockTime(t *testing.T) {
	require.Equal(t, int64(2016*600), ProductionParams.TargetTimespan())
	require.Equal(t, int64(10*5), DevelopmentParams.TargetTimespan())
}
