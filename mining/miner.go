// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining assembles block templates from the mempool and searches
// for proof-of-work satisfying a template's target, per §4.8.
package mining

import (
	"sync/atomic"
	"time"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/mempool"
	"github.com/coinnode/node/merkle"
	"github.com/coinnode/node/metrics"
	"github.com/coinnode/node/wire"
)

// State is one of the miner's lifecycle states.
type State int

const (
	Idle State = iota
	Mining
	Found
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mining:
		return "mining"
	case Found:
		return "found"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Template is an assembled, not-yet-solved candidate block.
type Template struct {
	Block      *wire.MsgBlock
	Height     int32
	extraNonce uint64
}

// Miner assembles templates and searches for valid proof-of-work. A single
// Miner value is reused across calls to Mine; Stop requests cancellation
// of whichever call is currently in progress.
type Miner struct {
	params *chaincfg.Params
	pool   *mempool.TxPool

	state  int32 // atomic, holds a State value.
	cancel int32 // atomic flag; non-zero means stop requested.
}

// New returns a Miner drawing transactions from pool (nil is fine: the
// miner simply produces coinbase-only blocks).
func New(params *chaincfg.Params, pool *mempool.TxPool) *Miner {
	return &Miner{params: params, pool: pool}
}

// State returns the miner's current lifecycle state.
func (m *Miner) State() State {
	return State(atomic.LoadInt32(&m.state))
}

func (m *Miner) setState(s State) { atomic.StoreInt32(&m.state, int32(s)) }

// Stop requests cancellation of any in-progress Mine call. The search
// loop observes this on its next check and Mine returns
// blockchain.MiningCancelledError. If no call is in progress, the next
// non-instant Mine call is cancelled at its first check.
func (m *Miner) Stop() {
	atomic.StoreInt32(&m.cancel, 1)
}

func (m *Miner) cancelled() bool {
	return atomic.LoadInt32(&m.cancel) != 0
}

// AssembleTemplate builds a candidate block extending a chain tip at
// parentHeight with parentHash, required difficulty bits, paying the
// block reward to payoutScript, embedding extraNonce in the coinbase
// (§4.8 Assembly). txLimit bounds how many pooled transactions are
// selected (0 or negative means unbounded).
func (m *Miner) AssembleTemplate(parentHash chainhash.Hash, parentHeight int32, bits uint32, payoutScript []byte, extraNonce uint64, txLimit int) *Template {
	height := parentHeight + 1

	var selected []*wire.MsgTx
	if m.pool != nil {
		for _, desc := range m.pool.Select(txLimit) {
			selected = append(selected, desc.Tx)
		}
	}

	reward := blockchain.CalcBlockSubsidy(height, m.params.SubsidyHalvingInterval)

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.NullOutPoint,
		SignatureScript:  blockchain.CoinbaseHeightScript(height, extraNonce),
		Sequence:         0xffffffff,
	})
	coinbase.AddTxOut(&wire.TxOut{Value: reward, PkScript: payoutScript})

	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   1,
		PrevBlock: parentHash,
		Bits:      bits,
		Timestamp: time.Now(),
	})
	block.AddTransaction(coinbase)
	for _, tx := range selected {
		block.AddTransaction(tx)
	}
	recomputeMerkleRoot(block)

	log.Debugf("assembled template at height %d with %d transaction(s)", height, len(selected))
	return &Template{Block: block, Height: height, extraNonce: extraNonce}
}

// recomputeMerkleRoot recomputes and sets block.Header.MerkleRoot from its
// current transaction set.
func recomputeMerkleRoot(block *wire.MsgBlock) {
	leaves := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		leaves[i] = tx.Hash()
	}
	block.Header.MerkleRoot = merkle.Root(leaves)
}

// rollExtraNonce mutates the coinbase's embedded extra-nonce, recomputes
// the Merkle root, and returns the block to a fresh nonce=0 search state
// (§4.8 Extra-nonce rolling).
func rollExtraNonce(tmpl *Template, height int32) {
	tmpl.extraNonce++
	coinbase := tmpl.Block.Transactions[0]
	coinbase.TxIn[0].SignatureScript = blockchain.CoinbaseHeightScript(height, tmpl.extraNonce)
	coinbase.InvalidateID()
	recomputeMerkleRoot(tmpl.Block)
	tmpl.Block.Header.Nonce = 0
}

// Mine searches tmpl's nonce space for a header hash satisfying its
// target, per §4.8 Search. On exhausting the full uint32 nonce space it
// rolls the extra-nonce and restarts at zero. instant, when true,
// bypasses the search entirely: the nonce is left at zero and the
// (possibly invalid, for real difficulties) block is returned immediately
// — intended only for tests and the development preset's trivial target.
//
// Mine returns blockchain.MiningCancelledError if Stop is called while a
// search is in progress or before it begins. The stop request is cleared
// when Mine returns.
func (m *Miner) Mine(tmpl *Template, instant bool) (*wire.MsgBlock, error) {
	defer atomic.StoreInt32(&m.cancel, 0)
	m.setState(Mining)

	if instant {
		tmpl.Block.Header.Nonce = 0
		m.setState(Found)
		return tmpl.Block, nil
	}

	target := blockchain.CompactToBig(tmpl.Block.Header.Bits)

	start := time.Now()
	var hashes uint64
	reportHashrate := func() {
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			metrics.MinerHashrate.Set(float64(hashes) / elapsed)
		}
	}

	for {
		for nonce := uint32(0); ; nonce++ {
			if m.cancelled() {
				m.setState(Stopped)
				reportHashrate()
				return nil, blockchain.MiningCancelledError{}
			}

			tmpl.Block.Header.Nonce = nonce
			hash := tmpl.Block.Header.BlockHash()
			hashes++
			if blockchain.HashToBig(&hash).Cmp(target) <= 0 {
				m.setState(Found)
				log.Infof("found block at height %d, nonce %d", tmpl.Height, nonce)
				reportHashrate()
				return tmpl.Block, nil
			}

			if nonce&0xFFFFF == 0 {
				reportHashrate()
			}

			if nonce == ^uint32(0) {
				break
			}
		}
		log.Debugf("exhausted nonce space at height %d, rolling extra-nonce", tmpl.Height)
		rollExtraNonce(tmpl, tmpl.Height)
	}
}
