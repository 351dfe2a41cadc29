// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements a keychain that tracks balances through a
// ChainView's UTXO set and builds/signs spending transactions, per §4.11.
package wallet

import (
	"errors"
	"sort"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/chainutil"
	"github.com/coinnode/node/keys"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
)

// DefaultFee is a flat per-transaction fee in satoshis. Build and Send
// always take an explicit fee and do not read this value.
const DefaultFee = 10000

// ErrInsufficientFunds indicates a wallet's addresses do not together hold
// enough spendable value to cover a requested send (§4.11 Build).
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

// ErrNoAddresses indicates an operation requiring at least one key was
// attempted on an empty wallet.
var ErrNoAddresses = errors.New("wallet: no addresses")

// ErrUnknownKey indicates Sign could not find the private key owning one
// of a transaction's inputs.
var ErrUnknownKey = errors.New("wallet: no key owns the consumed output")

// ChainView is the capability set a Wallet needs from its blockchain: the
// UTXO set to query balances and select coins against, and the address
// version byte to encode/decode with. A *blockchain.BlockChain satisfies
// this without the wallet importing anything beyond its public surface.
type ChainView interface {
	UTXOSet() *utxo.Set
	Params() *chaincfg.Params
}

// keypair is one address this wallet controls.
type keypair struct {
	priv     *keys.PrivateKey
	pub      *keys.PublicKey
	pkScript []byte // hash160(compressed pubkey)
	address  *chainutil.Address
}

// Wallet is a mapping from address to keypair, plus a blockchain
// reference used for balance queries and coin selection (§4.11).
type Wallet struct {
	chain ChainView

	byAddress map[string]*keypair
	order     []string // insertion order; order[0] is "the first wallet address".
}

// New returns an empty wallet backed by chain.
func New(chain ChainView) *Wallet {
	return &Wallet{
		chain:     chain,
		byAddress: make(map[string]*keypair),
	}
}

// GenerateAddress creates a new random key pair, adds it to the wallet,
// and returns its address.
func (w *Wallet) GenerateAddress() (*chainutil.Address, error) {
	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return w.addKey(priv)
}

// ImportWIF decodes a Wallet-Import-Format private key and adds it to the
// wallet, returning its address.
func (w *Wallet) ImportWIF(wif string) (*chainutil.Address, error) {
	decoded, err := chainutil.DecodeWIF(wif)
	if err != nil {
		return nil, err
	}
	priv := keys.PrivateKeyFromBytes(decoded.PrivKey[:])
	return w.addKey(priv)
}

func (w *Wallet) addKey(priv *keys.PrivateKey) (*chainutil.Address, error) {
	pub := keys.DerivePublic(priv)
	hash160 := chainhash.Hash160(keys.CompressedEncode(pub))
	addr, err := chainutil.NewAddressPubKeyHash(w.chain.Params().P2PKHVersion, hash160)
	if err != nil {
		return nil, err
	}

	s := addr.EncodeAddress()
	kp := &keypair{priv: priv, pub: pub, pkScript: hash160, address: addr}
	w.byAddress[s] = kp
	w.order = append(w.order, s)
	return addr, nil
}

// Addresses returns every address this wallet controls, in the order they
// were added.
func (w *Wallet) Addresses() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// ExportWIF returns the Wallet-Import-Format encoding of address's private
// key.
func (w *Wallet) ExportWIF(address string) (string, error) {
	kp, ok := w.byAddress[address]
	if !ok {
		return "", ErrUnknownKey
	}
	return chainutil.EncodeWIF(w.chain.Params().WIFVersion, kp.priv.Bytes(), true)
}

// Balance returns the total value of every UTXO locked to any of this
// wallet's addresses.
func (w *Wallet) Balance() int64 {
	set := w.chain.UTXOSet()
	var total int64
	for _, kp := range w.byAddress {
		total += set.Balance(kp.pkScript)
	}
	return total
}

// ownedUTXO is one spendable output this wallet controls.
type ownedUTXO struct {
	txid  chainhash.Hash
	index uint32
	entry *utxo.Entry
	owner *keypair
}

func (w *Wallet) ownedUTXOs() ([]ownedUTXO, error) {
	set := w.chain.UTXOSet()
	var out []ownedUTXO
	for _, kp := range w.byAddress {
		for key, entry := range set.ForAddress(kp.pkScript) {
			txid, index, err := key.Parts()
			if err != nil {
				return nil, err
			}
			out = append(out, ownedUTXO{txid: txid, index: index, entry: entry, owner: kp})
		}
	}
	return out, nil
}

// selectCoins implements §4.11's ascending-by-value greedy coin selection:
// sort every wallet-owned UTXO by value ascending, accumulate until the
// running total covers amount+fee.
func selectCoins(candidates []ownedUTXO, amount, fee int64) ([]ownedUTXO, int64, error) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].entry.Value < candidates[j].entry.Value
	})

	target := amount + fee
	var selected []ownedUTXO
	var total int64
	for _, c := range candidates {
		selected = append(selected, c)
		total += c.entry.Value
		if total >= target {
			return selected, total, nil
		}
	}
	return nil, 0, ErrInsufficientFunds
}

// Build assembles an unsigned transaction sending amount satoshis to to,
// paying fee, with any surplus returned to the wallet's first address
// (§4.11 Build). Input signature scripts are left empty; call Sign before
// broadcasting.
func (w *Wallet) Build(to *chainutil.Address, amount, fee int64) (*wire.MsgTx, error) {
	if len(w.order) == 0 {
		return nil, ErrNoAddresses
	}

	candidates, err := w.ownedUTXOs()
	if err != nil {
		return nil, err
	}
	selected, total, err := selectCoins(candidates, amount, fee)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(1)
	for _, c := range selected {
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: c.txid, Index: c.index},
			Sequence:         0xffffffff,
		})
	}

	tx.AddTxOut(&wire.TxOut{
		Value:    amount,
		PkScript: chainutil.PayToAddrScript(to),
	})

	change := total - amount - fee
	if change > 0 {
		changeAddr := w.byAddress[w.order[0]].address
		tx.AddTxOut(&wire.TxOut{
			Value:    change,
			PkScript: chainutil.PayToAddrScript(changeAddr),
		})
	}

	return tx, nil
}

// Sign attaches a §4.6-format signature to every input of tx, locating
// each input's owning key by matching hash160(pubkey) against the
// consumed output's pubkey_script (§4.11 Sign).
func (w *Wallet) Sign(tx *wire.MsgTx) error {
	set := w.chain.UTXOSet()
	for _, in := range tx.TxIn {
		entry := set.Get(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if entry == nil {
			return ErrUnknownKey
		}
		owner := w.findOwner(entry.PkScript)
		if owner == nil {
			return ErrUnknownKey
		}
		blockchain.SignInput(tx, in, owner.priv)
	}
	tx.InvalidateID()
	return nil
}

func (w *Wallet) findOwner(pkScript []byte) *keypair {
	for _, kp := range w.byAddress {
		if string(kp.pkScript) == string(pkScript) {
			return kp
		}
	}
	return nil
}

// Send builds, signs, and submits a transaction sending amount to to,
// using fee as the flat transaction fee.
func (w *Wallet) Send(to *chainutil.Address, amount, fee int64, submit func(*wire.MsgTx) error) (*wire.MsgTx, error) {
	tx, err := w.Build(to, amount, fee)
	if err != nil {
		return nil, err
	}
	if err := w.Sign(tx); err != nil {
		return nil, err
	}
	if err := submit(tx); err != nil {
		return nil, err
	}
	return tx, nil
}
