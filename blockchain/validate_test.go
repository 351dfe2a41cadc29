// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/keys"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
	"github.com/stretchr/testify/require"
)

func newUTXOFor(t *testing.T, priv *keys.PrivateKey, value int64, height int32, coinbase bool) (chainhash.Hash, uint32, *utxo.Entry) {
	t.Helper()
	pub := keys.DerivePublic(priv)
	pkScript := chainhash.Hash160(keys.CompressedEncode(pub))
	txid := chainhash.DoubleHashH([]byte{byte(height), byte(value)})
	entry := &utxo.Entry{Value: value, PkScript: pkScript, BlockHeight: height, IsCoinBase: coinbase}
	return txid, 0, entry
}

func spendingTx(priv *keys.PrivateKey, txid chainhash.Hash, index uint32, outValue int64, outScript []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: txid, Index: index}, Sequence: 0xffffffff})
	tx.AddTxOut(&wire.TxOut{Value: outValue, PkScript: outScript})
	SignInput(tx, tx.TxIn[0], priv)
	return tx
}

func TestCoinbaseMaturityBoundary(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	set := utxo.New()
	txid, index, entry := newUTXOFor(t, priv, 50*1e8, 0, true)
	set.Add(txid, index, entry)

	tx := spendingTx(priv, txid, index, 49*1e8, entry.PkScript)

	// Height 99: still immature (maturity 100, spent at height-0 coinbase).
	_, err = ValidateTransaction(tx, 99, set.Copy(), 100, nil)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrCoinbaseMaturity, ruleErr.ErrorCode)

	// Height 100: exactly mature.
	_, err = ValidateTransaction(tx, 100, set.Copy(), 100, nil)
	require.NoError(t, err)
}

func TestValidateTransactionComputesFee(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	set := utxo.New()
	txid, index, entry := newUTXOFor(t, priv, 1000, 5, false)
	set.Add(txid, index, entry)

	tx := spendingTx(priv, txid, index, 900, entry.PkScript)

	fee, err := ValidateTransaction(tx, 6, set, 100, nil)
	require.NoError(t, err)
	require.Equal(t, int64(100), fee)
	require.False(t, set.Has(txid, index), "spent input must be removed from the set")
	require.True(t, set.Has(tx.Hash(), 0), "new output must be added to the set")
}

func TestValidateTransactionRejectsOverspend(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	set := utxo.New()
	txid, index, entry := newUTXOFor(t, priv, 100, 5, false)
	set.Add(txid, index, entry)

	tx := spendingTx(priv, txid, index, 200, entry.PkScript)

	_, err = ValidateTransaction(tx, 6, set, 100, nil)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrAmountOutOfRange, ruleErr.ErrorCode)
}

func TestValidateTransactionRejectsBadSignature(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)
	other, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	set := utxo.New()
	txid, index, entry := newUTXOFor(t, priv, 1000, 5, false)
	set.Add(txid, index, entry)

	tx := spendingTx(other, txid, index, 900, entry.PkScript)

	_, err = ValidateTransaction(tx, 6, set, 100, nil)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrBadSignature, ruleErr.ErrorCode)
}

func TestValidateTransactionRejectsMissingInput(t *testing.T) {
	priv, err := keys.GeneratePrivateKey()
	require.NoError(t, err)

	set := utxo.New()
	ghostTxid := chainhash.DoubleHashH([]byte("no-such-output"))
	tx := spendingTx(priv, ghostTxid, 0, 900, nil)

	_, err = ValidateTransaction(tx, 6, set, 100, nil)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrInputMissing, ruleErr.ErrorCode)
}

func TestCheckSerializedHeightExemptsGenesis(t *testing.T) {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.NullOutPoint, SignatureScript: []byte{}})
	coinbase.AddTxOut(&wire.TxOut{Value: 50 * 1e8})
	require.NoError(t, CheckSerializedHeight(coinbase, 0))
}

func TestCheckSerializedHeightMismatch(t *testing.T) {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.NullOutPoint,
		SignatureScript:  CoinbaseHeightScript(5, 0),
	})
	coinbase.AddTxOut(&wire.TxOut{Value: 50 * 1e8})

	require.NoError(t, CheckSerializedHeight(coinbase, 5))
	err := CheckSerializedHeight(coinbase, 6)
	var ruleErr RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Equal(t, ErrBadCoinbaseHeight, ruleErr.ErrorCode)
}
