// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"
	"sync"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/metrics"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
)

// TxRuleError indicates a mempool-only acceptance rule was violated, as
// opposed to a consensus rule (blockchain.RuleError).
type TxRuleError string

// Error satisfies the error interface.
func (e TxRuleError) Error() string { return string(e) }

// TxDesc is one transaction's mempool entry: the transaction itself, its
// fee rate, and bookkeeping used only to break fee-rate ties in a stable,
// first-seen order.
type TxDesc struct {
	Tx      *wire.MsgTx
	FeeRate float64 // satoshis per serialized byte.
	seq     uint64
}

// TxPool is the fee-ordered pool of not-yet-mined transactions described
// in §4.9: a primary txid → transaction map plus a fee-rate-descending
// secondary index, with first-seen acceptance for conflicting spends.
type TxPool struct {
	mtx sync.Mutex

	byTxid map[chainhash.Hash]*TxDesc
	spent  map[utxo.Key]chainhash.Hash // outpoint -> txid currently spending it

	nextSeq uint64
}

// New returns an empty pool.
func New() *TxPool {
	return &TxPool{
		byTxid: make(map[chainhash.Hash]*TxDesc),
		spent:  make(map[utxo.Key]chainhash.Hash),
	}
}

// Accept validates tx against the mempool's own rules and, if accepted,
// adds it to the pool. snapshot is the UTXO set to price the transaction
// against (ordinarily the chain's current best-chain set); it is read
// only, never mutated.
//
// Rejects: a duplicate txid already in the pool; a coinbase transaction;
// a transaction that spends an outpoint some existing pool member already
// spends (first-seen wins, so the newcomer is rejected rather than the
// incumbent evicted).
func (p *TxPool) Accept(tx *wire.MsgTx, snapshot *utxo.Set) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.acceptLocked(tx, snapshot)
}

func (p *TxPool) acceptLocked(tx *wire.MsgTx, snapshot *utxo.Set) error {
	txid := tx.Hash()
	if _, ok := p.byTxid[txid]; ok {
		return TxRuleError("transaction already in pool")
	}
	if blockchain.IsCoinBaseTx(tx) {
		return TxRuleError("coinbase transactions are not relayed")
	}
	for _, in := range tx.TxIn {
		key := utxo.NewKey(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if _, ok := p.spent[key]; ok {
			return TxRuleError("conflicts with an outpoint already spent by a pooled transaction")
		}
	}

	fee, ok := txFee(tx, snapshot)
	rate := 0.0
	if ok && fee >= 0 {
		size := tx.SerializeSize()
		if size > 0 {
			rate = float64(fee) / float64(size)
		}
	}

	desc := &TxDesc{Tx: tx, FeeRate: rate, seq: p.nextSeq}
	p.nextSeq++
	p.byTxid[txid] = desc
	for _, in := range tx.TxIn {
		key := utxo.NewKey(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		p.spent[key] = txid
	}
	log.Debugf("accepted %s into pool (fee rate %.2f, pool size %d)", txid, rate, len(p.byTxid))
	p.reportMetricsLocked()
	return nil
}

// reportMetricsLocked refreshes the gauges that reflect current pool state.
// Callers must already hold mtx.
func (p *TxPool) reportMetricsLocked() {
	metrics.MempoolSize.Set(float64(len(p.byTxid)))
	var top float64
	for _, d := range p.byTxid {
		if d.FeeRate > top {
			top = d.FeeRate
		}
	}
	metrics.MempoolFeeRate.Set(top)
}

// txFee computes a transaction's fee (sum of input values minus sum of
// output values) against snapshot. ok is false if any input's outpoint is
// absent from snapshot, in which case the fee rate defaults to zero
// (§4.9).
func txFee(tx *wire.MsgTx, snapshot *utxo.Set) (int64, bool) {
	var inputTotal int64
	for _, in := range tx.TxIn {
		entry := snapshot.Get(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if entry == nil {
			return 0, false
		}
		inputTotal += entry.Value
	}
	var outputTotal int64
	for _, out := range tx.TxOut {
		outputTotal += out.Value
	}
	return inputTotal - outputTotal, true
}

// Select returns up to limit pooled transactions ordered by descending
// fee rate, ties broken by first-seen order. A non-positive limit returns
// every pooled transaction.
func (p *TxPool) Select(limit int) []*TxDesc {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	all := make([]*TxDesc, 0, len(p.byTxid))
	for _, d := range p.byTxid {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].FeeRate != all[j].FeeRate {
			return all[i].FeeRate > all[j].FeeRate
		}
		return all[i].seq < all[j].seq
	})

	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	return all[:limit]
}

// Size returns the number of pooled transactions.
func (p *TxPool) Size() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.byTxid)
}

// Have reports whether txid is currently pooled.
func (p *TxPool) Have(txid chainhash.Hash) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	_, ok := p.byTxid[txid]
	return ok
}

// removeLocked drops txid from both indexes, if present, logging why under
// reason.
func (p *TxPool) removeLocked(txid chainhash.Hash, reason RemovalReason) {
	desc, ok := p.byTxid[txid]
	if !ok {
		return
	}
	delete(p.byTxid, txid)
	for _, in := range desc.Tx.TxIn {
		key := utxo.NewKey(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if p.spent[key] == txid {
			delete(p.spent, key)
		}
	}
	log.Debugf("removed %s from pool (%s)", txid, reason)
	p.reportMetricsLocked()
}

// PurgeConfirmed removes every non-coinbase transaction in block from the
// pool (§4.9), satisfying blockchain.MempoolView. block's coinbase is
// never pooled in the first place, so it is simply skipped.
func (p *TxPool) PurgeConfirmed(block *wire.MsgBlock) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	purged := 0
	for _, tx := range block.Transactions {
		if blockchain.IsCoinBaseTx(tx) {
			continue
		}
		if _, ok := p.byTxid[tx.Hash()]; ok {
			purged++
		}
		p.removeLocked(tx.Hash(), RemovalReasonBlock)
	}
	if purged > 0 {
		log.Debugf("purged %d confirmed transaction(s), pool size %d", purged, len(p.byTxid))
	}
}

// Requeue re-offers txs to the pool under normal acceptance rules,
// satisfying blockchain.MempoolView; used by reorg to restore transactions
// unwound off the abandoned chain. Duplicates and transactions that
// conflict with the pool are silently dropped rather than treated as
// errors. Requeue has no view of the chain, so a transaction already mined
// onto the new best chain is accepted here; the reorg removes it afterwards
// through PurgeConfirmed. Without a UTXO
// snapshot to price against, re-queued transactions default to a zero fee
// rate.
func (p *TxPool) Requeue(txs []*wire.MsgTx) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for _, tx := range txs {
		_ = p.acceptLocked(tx, utxo.New())
	}
}
