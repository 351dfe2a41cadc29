// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/mempool"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
	"github.com/stretchr/testify/require"
)

func txSpending(spend chainhash.Hash, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: spend, Index: 0}, Sequence: 0xffffffff})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{0x01}})
	return tx
}

func TestAssembleTemplateIncludesPooledTransactions(t *testing.T) {
	pool := mempool.New()
	set := utxo.New()
	set.Add(chainhash.Hash{0x01}, 0, &utxo.Entry{Value: 1000, PkScript: []byte{0x01}})
	tx := txSpending(chainhash.Hash{0x01}, 900)
	require.NoError(t, pool.Accept(tx, set))

	m := New(chaincfg.DevelopmentParams, pool)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 10, chaincfg.DevelopmentParams.GenesisBits, []byte{0x02}, 0, 0)

	require.Equal(t, int32(11), tmpl.Height)
	require.Len(t, tmpl.Block.Transactions, 2, "coinbase plus the one pooled transaction")
	require.Equal(t, tx.Hash(), tmpl.Block.Transactions[1].Hash())
}

func TestAssembleTemplateWithoutPoolIsCoinbaseOnly(t *testing.T) {
	m := New(chaincfg.DevelopmentParams, nil)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 0, chaincfg.DevelopmentParams.GenesisBits, []byte{0x02}, 0, 0)
	require.Len(t, tmpl.Block.Transactions, 1)
}

func TestAssembleTemplateRespectsTxLimit(t *testing.T) {
	pool := mempool.New()
	set := utxo.New()
	for i := byte(0); i < 3; i++ {
		h := chainhash.Hash{i + 1}
		set.Add(h, 0, &utxo.Entry{Value: 1000, PkScript: []byte{0x01}})
		require.NoError(t, pool.Accept(txSpending(h, 900), set))
	}

	m := New(chaincfg.DevelopmentParams, pool)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 0, chaincfg.DevelopmentParams.GenesisBits, []byte{0x02}, 0, 1)
	require.Len(t, tmpl.Block.Transactions, 2, "coinbase plus exactly one selected transaction")
}

func TestMineInstantBypassesSearch(t *testing.T) {
	m := New(chaincfg.DevelopmentParams, nil)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 0, chaincfg.ProductionParams.GenesisBits, []byte{0x02}, 0, 0)

	block, err := m.Mine(tmpl, true)
	require.NoError(t, err)
	require.Zero(t, block.Header.Nonce)
	require.Equal(t, Found, m.State())
}

func TestMineFindsValidProofOfWork(t *testing.T) {
	m := New(chaincfg.DevelopmentParams, nil)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 0, chaincfg.DevelopmentParams.GenesisBits, []byte{0x02}, 0, 0)

	block, err := m.Mine(tmpl, false)
	require.NoError(t, err)

	target := blockchain.CompactToBig(block.Header.Bits)
	hash := block.Header.BlockHash()
	require.LessOrEqual(t, blockchain.HashToBig(&hash).Cmp(target), 0)
}

func TestMineReturnsCancelledAfterStop(t *testing.T) {
	m := New(chaincfg.ProductionParams, nil)
	tmpl := m.AssembleTemplate(chainhash.Hash{0xAA}, 0, chaincfg.ProductionParams.GenesisBits, []byte{0x02}, 0, 0)

	m.Stop()
	_, err := m.Mine(tmpl, false)
	require.ErrorIs(t, err, blockchain.MiningCancelledError{})
	require.Equal(t, Stopped, m.State())
}

func TestStateStringCoversAllValues(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "mining", Mining.String())
	require.Equal(t, "found", Found.String())
	require.Equal(t, "stopped", Stopped.String())
	require.Equal(t, "unknown", State(99).String())
}
