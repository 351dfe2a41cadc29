// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/merkle"
	"github.com/coinnode/node/wire"
	"github.com/stretchr/testify/require"
)

var testPayoutScript = []byte{0xde, 0xad, 0xbe, 0xef}

// mineTestBlock assembles a single-coinbase block extending parent at
// height, and brute-forces its nonce against bits — trivial at the
// development preset's loose genesis target.
func mineTestBlock(t *testing.T, parentHash chainhash.Hash, parentTime time.Time, height int32, bits uint32, extraNonce uint64) *wire.MsgBlock {
	t.Helper()

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.NullOutPoint,
		SignatureScript:  CoinbaseHeightScript(height, extraNonce),
		Sequence:         0xffffffff,
	})
	coinbase.AddTxOut(&wire.TxOut{
		Value:    CalcBlockSubsidy(height, chaincfg.DevelopmentParams.SubsidyHalvingInterval),
		PkScript: testPayoutScript,
	})

	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   1,
		PrevBlock: parentHash,
		Bits:      bits,
		Timestamp: parentTime.Add(time.Duration(height) * time.Second),
	})
	block.AddTransaction(coinbase)

	leaves := []chainhash.Hash{coinbase.Hash()}
	block.Header.MerkleRoot = merkle.Root(leaves)

	target := CompactToBig(bits)
	for nonce := uint32(0); ; nonce++ {
		block.Header.Nonce = nonce
		hash := block.Header.BlockHash()
		if HashToBig(&hash).Cmp(target) <= 0 {
			return block
		}
		require.Less(t, nonce, uint32(5_000_000), "mining a development-target block should not take this long")
	}
}

func newDevChain(t *testing.T) *BlockChain {
	t.Helper()
	bc, err := New(chaincfg.DevelopmentParams, nil)
	require.NoError(t, err)
	return bc
}

func TestGenesisHeightInvariant(t *testing.T) {
	bc := newDevChain(t)
	height, ok := bc.HeightOf(bc.BestChainTip())
	require.True(t, ok)
	require.Zero(t, height)
	require.Equal(t, chainhash.Hash{}, bc.Block(bc.BestChainTip()).Header.PrevBlock)
}

func TestAddBlockExtendsBestChain(t *testing.T) {
	bc := newDevChain(t)
	genesis := bc.Block(bc.BestChainTip())

	b1 := mineTestBlock(t, bc.BestChainTip(), genesis.Header.Timestamp, 1, chaincfg.DevelopmentParams.GenesisBits, 0)
	require.NoError(t, bc.AddBlock(b1))

	require.Equal(t, b1.Header.BlockHash(), bc.BestChainTip())
	height, ok := bc.HeightOf(bc.BestChainTip())
	require.True(t, ok)
	require.Equal(t, int32(1), height)
}

func TestAddBlockRejectsBadProofOfWork(t *testing.T) {
	bc := newDevChain(t)
	genesis := bc.Block(bc.BestChainTip())

	b1 := mineTestBlock(t, bc.BestChainTip(), genesis.Header.Timestamp, 1, chaincfg.DevelopmentParams.GenesisBits, 0)
	b1.Header.Nonce++ // almost certainly breaks the proof of work found above.

	err := bc.AddBlock(b1)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrInvalidProofOfWork, ruleErr.ErrorCode)
}

func TestAddBlockDuplicateIsNoop(t *testing.T) {
	bc := newDevChain(t)
	genesis := bc.Block(bc.BestChainTip())
	b1 := mineTestBlock(t, bc.BestChainTip(), genesis.Header.Timestamp, 1, chaincfg.DevelopmentParams.GenesisBits, 0)
	require.NoError(t, bc.AddBlock(b1))
	require.NoError(t, bc.AddBlock(b1))
	require.Equal(t, b1.Header.BlockHash(), bc.BestChainTip())
}

// TestReorgSwitchesToHeavierChain builds two one-block forks off genesis,
// then a second block atop the first fork, and checks the chain reorganizes
// onto the two-block branch purely by cumulative work (§4.10).
func TestReorgSwitchesToHeavierChain(t *testing.T) {
	bc := newDevChain(t)
	genesisHash := bc.BestChainTip()
	genesis := bc.Block(genesisHash)
	bits := chaincfg.DevelopmentParams.GenesisBits

	forkA := mineTestBlock(t, genesisHash, genesis.Header.Timestamp, 1, bits, 0)
	require.NoError(t, bc.AddBlock(forkA))
	require.Equal(t, forkA.Header.BlockHash(), bc.BestChainTip())

	// A different extra-nonce gives forkB a distinct hash/txid from forkA,
	// so it lands as a genuine sibling side branch rather than a duplicate.
	forkB := mineTestBlock(t, genesisHash, genesis.Header.Timestamp, 1, bits, 1)
	require.NoError(t, bc.AddBlock(forkB))
	require.Equal(t, forkA.Header.BlockHash(), bc.BestChainTip(), "equal-height, equal-work: first-seen wins")

	forkB2 := mineTestBlock(t, forkB.Header.BlockHash(), forkB.Header.Timestamp, 2, bits, 0)
	require.NoError(t, bc.AddBlock(forkB2))

	require.Equal(t, forkB2.Header.BlockHash(), bc.BestChainTip(), "heavier branch must become the best chain")
	height, ok := bc.HeightOf(bc.BestChainTip())
	require.True(t, ok)
	require.Equal(t, int32(2), height)

	// The abandoned fork's coinbase must no longer be spendable from the
	// live UTXO set.
	require.False(t, bc.UTXOSet().Has(forkA.Transactions[0].Hash(), 0))
}

func TestNextRequiredBitsUnknownParent(t *testing.T) {
	bc := newDevChain(t)
	_, err := bc.NextRequiredBits(chainhash.Hash{0x01})
	require.Error(t, err)
}
