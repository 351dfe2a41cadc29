// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/utxo"
	"github.com/stretchr/testify/require"
)

// fakeChain is the minimal ChainView a Wallet needs, backed by a mutable
// *utxo.Set so tests can seed balances directly.
type fakeChain struct {
	set    *utxo.Set
	params *chaincfg.Params
}

func newFakeChain() *fakeChain {
	return &fakeChain{set: utxo.New(), params: chaincfg.DevelopmentParams}
}

func (f *fakeChain) UTXOSet() *utxo.Set       { return f.set }
func (f *fakeChain) Params() *chaincfg.Params { return f.params }

func TestGenerateAddressIsUsable(t *testing.T) {
	w := New(newFakeChain())
	addr, err := w.GenerateAddress()
	require.NoError(t, err)
	require.NotEmpty(t, addr.EncodeAddress())
	require.Equal(t, []string{addr.EncodeAddress()}, w.Addresses())
}

func TestExportImportWIFRoundTrip(t *testing.T) {
	w := New(newFakeChain())
	addr, err := w.GenerateAddress()
	require.NoError(t, err)

	wif, err := w.ExportWIF(addr.EncodeAddress())
	require.NoError(t, err)

	w2 := New(newFakeChain())
	addr2, err := w2.ImportWIF(wif)
	require.NoError(t, err)
	require.Equal(t, addr.EncodeAddress(), addr2.EncodeAddress())
}

func TestBalanceSumsOwnedOutputs(t *testing.T) {
	chain := newFakeChain()
	w := New(chain)
	addr, err := w.GenerateAddress()
	require.NoError(t, err)

	kp := w.byAddress[addr.EncodeAddress()]
	chain.set.Add(chainhash.Hash{0x01}, 0, &utxo.Entry{Value: 1000, PkScript: kp.pkScript})
	chain.set.Add(chainhash.Hash{0x02}, 0, &utxo.Entry{Value: 500, PkScript: kp.pkScript})
	chain.set.Add(chainhash.Hash{0x03}, 0, &utxo.Entry{Value: 999, PkScript: []byte("not-owned")})

	require.Equal(t, int64(1500), w.Balance())
}

func TestBuildSelectsAscendingAndReturnsChange(t *testing.T) {
	chain := newFakeChain()
	w := New(chain)
	addr, err := w.GenerateAddress()
	require.NoError(t, err)
	kp := w.byAddress[addr.EncodeAddress()]

	chain.set.Add(chainhash.Hash{0x10}, 0, &utxo.Entry{Value: 100, PkScript: kp.pkScript})
	chain.set.Add(chainhash.Hash{0x11}, 0, &utxo.Entry{Value: 300, PkScript: kp.pkScript})
	chain.set.Add(chainhash.Hash{0x12}, 0, &utxo.Entry{Value: 1000, PkScript: kp.pkScript})

	dest, err := w.GenerateAddress()
	require.NoError(t, err)

	tx, err := w.Build(dest, 350, 10)
	require.NoError(t, err)

	// Ascending selection needs the 100 and 300 outputs (400 total) to
	// cover 350+10; the 1000 output must be left untouched.
	require.Len(t, tx.TxIn, 2)
	require.Len(t, tx.TxOut, 2, "a change output is expected")
	require.Equal(t, int64(350), tx.TxOut[0].Value)
	require.Equal(t, int64(40), tx.TxOut[1].Value)
}

func TestBuildFailsOnInsufficientFunds(t *testing.T) {
	chain := newFakeChain()
	w := New(chain)
	addr, err := w.GenerateAddress()
	require.NoError(t, err)
	kp := w.byAddress[addr.EncodeAddress()]
	chain.set.Add(chainhash.Hash{0x20}, 0, &utxo.Entry{Value: 100, PkScript: kp.pkScript})

	dest, err := w.GenerateAddress()
	require.NoError(t, err)

	_, err = w.Build(dest, 1000, 10)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestBuildIgnoresUnownedOutputs(t *testing.T) {
	chain := newFakeChain()
	w := New(chain)
	_, err := w.GenerateAddress()
	require.NoError(t, err)

	chain.set.Add(chainhash.Hash{0x30}, 0, &utxo.Entry{Value: 500, PkScript: []byte("someone-elses-script")})
	dest, err := w.GenerateAddress()
	require.NoError(t, err)

	tx, err := w.Build(dest, 100, 10)
	require.ErrorIs(t, err, ErrInsufficientFunds, "an output locked to another script must not be selectable")
	require.Nil(t, tx)
}

func TestSignProducesSpendableSignature(t *testing.T) {
	chain := newFakeChain()
	w := New(chain)
	addr, err := w.GenerateAddress()
	require.NoError(t, err)
	kp := w.byAddress[addr.EncodeAddress()]
	chain.set.Add(chainhash.Hash{0x40}, 0, &utxo.Entry{Value: 1000, PkScript: kp.pkScript})

	dest, err := w.GenerateAddress()
	require.NoError(t, err)

	tx, err := w.Build(dest, 500, 10)
	require.NoError(t, err)
	require.NoError(t, w.Sign(tx))
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
	require.NoError(t, blockchain.VerifyInputSignature(tx, tx.TxIn[0], chain.set.Get(chainhash.Hash{0x40}, 0)))
}
