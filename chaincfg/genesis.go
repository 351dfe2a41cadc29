// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/merkle"
	"github.com/coinnode/node/wire"
)

func mustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// productionGenesisCoinbaseTx is modeled on the real historical Bitcoin
// genesis coinbase transaction: its signature script carries the famous
// "Chancellor on brink of second bailout" message and predates BIP-34
// height embedding. Its output locks to a raw 65-byte public key rather
// than this module's 20-byte hash160 form — this output was never
// spendable under any implementation and isn't spendable here either,
// since no wallet key will ever hash160 to it.
func productionGenesisCoinbaseTx() *wire.MsgTx {
	scriptSig := mustDecode("04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f757420666f722062616e6b73")
	pkScript := mustDecode("0472252191e61c4b4da8c7f8d667ab1866568f1dedd7eae18b86b34e5070fd6cc74957a0859117dfe4b07628f4dfade88140368227f9c9c1e4fa86dd07ebd85a76")

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.NullOutPoint,
		SignatureScript:  scriptSig,
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    50 * 1e8,
		PkScript: pkScript,
	})
	return tx
}

// productionGenesisBlock reuses the real Bitcoin genesis block's timestamp
// (1231006505) but, unlike mainnet, targets bits 0x1E00FFFF rather than
// 0x1D00FFFF: one exponent step easier, so the nonce search below
// (8477487) completes quickly rather than requiring real difficulty-1
// hashpower. Its merkle root is computed from productionGenesisCoinbaseTx
// rather than hardcoded, so it always agrees with whatever that function
// actually serializes.
var productionGenesisBlock = func() *wire.MsgBlock {
	coinbase := productionGenesisCoinbaseTx()
	header := wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: merkle.Root([]chainhash.Hash{coinbase.Hash()}),
		Timestamp:  time.Unix(1231006505, 0),
		Bits:       0x1E00FFFF,
		Nonce:      8477487,
	}
	block := wire.NewMsgBlock(&header)
	block.AddTransaction(coinbase)
	return block
}()

// developmentGenesisCoinbaseTx is this module's own genesis coinbase for
// the development preset: a BIP-34 height-0 push followed by a launch
// message, paying to a hash160 of an arbitrary genesis string (also
// unspendable, since it matches no wallet's key).
func developmentGenesisCoinbaseTx() *wire.MsgTx {
	scriptSig := mustDecode("010015636f696e6e6f6465206c61756e636820626c6f636b")
	pkScript := mustDecode("b18ef9a8b132b2759bbe4328aa9c0f7d02b7f87b")

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.NullOutPoint,
		SignatureScript:  scriptSig,
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    50 * 1e8,
		PkScript: pkScript,
	})
	return tx
}

// developmentGenesisBlock is mined for real against the development
// preset's easy genesis target (0x1F0FFFFF): nonce 8522 was found by
// exhaustive search starting at zero and is the first nonce whose block
// hash satisfies the target, so proof-of-work validation (§4.5 item 1)
// holds for this block exactly as it would for any mined block. Its
// merkle root is computed from developmentGenesisCoinbaseTx rather than
// hardcoded, same as the production preset.
var developmentGenesisBlock = func() *wire.MsgBlock {
	coinbase := developmentGenesisCoinbaseTx()
	header := wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: merkle.Root([]chainhash.Hash{coinbase.Hash()}),
		Timestamp:  time.Unix(1753747200, 0),
		Bits:       0x1F0FFFFF,
		Nonce:      8522,
	}
	block := wire.NewMsgBlock(&header)
	block.AddTransaction(coinbase)
	return block
}()
