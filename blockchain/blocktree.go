// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the consensus validator, difficulty
// engine, and the block-tree/reorganizer that together track every known
// block, select a best chain by cumulative work, and keep the UTXO set
// consistent with it (§4.5, §4.7, §4.10).
package blockchain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/metrics"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
)

// MempoolView is the subset of mempool behavior the block-tree needs:
// purging confirmed entries on connect, and re-queuing unwound
// transactions during a reorg. A BlockChain with no mempool attached
// (nil) simply skips both.
type MempoolView interface {
	PurgeConfirmed(block *wire.MsgBlock)
	Requeue(txs []*wire.MsgTx)
}

// undoAction is one reversible UTXO mutation recorded while connecting a
// block. Replaying a block's actions in reverse order restores the UTXO
// set to exactly its pre-connect state, including the case where a later
// action in the same block re-spends an output an earlier action in the
// same block created (§9 "UTXO undo data").
type undoAction struct {
	created bool // true: this action added (txid,index) — undo removes it.
	txid    chainhash.Hash
	index   uint32
	entry   *utxo.Entry // the prior entry, valid only when created is false.
}

// blockUndo is the ordered undo log for one connected block.
type blockUndo struct {
	actions []undoAction
}

func (u *blockUndo) recordCreated(txid chainhash.Hash, index uint32) {
	u.actions = append(u.actions, undoAction{created: true, txid: txid, index: index})
}

func (u *blockUndo) recordSpent(txid chainhash.Hash, index uint32, entry *utxo.Entry) {
	u.actions = append(u.actions, undoAction{created: false, txid: txid, index: index, entry: entry})
}

// apply replays u's actions onto target, restoring it to the state it had
// before the block that produced u was connected.
func (u *blockUndo) apply(target *utxo.Set) {
	for i := len(u.actions) - 1; i >= 0; i-- {
		a := u.actions[i]
		if a.created {
			target.Remove(a.txid, a.index)
		} else {
			target.Add(a.txid, a.index, a.entry)
		}
	}
}

// node is one block known to the chain, whether or not it is part of the
// best chain.
type node struct {
	block  *wire.MsgBlock
	hash   chainhash.Hash
	height int32

	// undo is non-nil only while this block is part of the best chain;
	// it is produced at connect time and consumed (then discarded) on
	// unwind.
	undo *blockUndo
}

// BlockChain is the block-tree state machine of §3/§4.10: every known
// block, indexed by hash and by height, the set of chain tips, the
// best-chain tip, and the UTXO set and mempool kept consistent with it.
type BlockChain struct {
	chainLock sync.Mutex

	params *chaincfg.Params
	pool   MempoolView

	blocks      map[chainhash.Hash]*node
	heightIndex map[int32]map[chainhash.Hash]struct{}
	chainTips   map[chainhash.Hash]struct{}
	bestTip     chainhash.Hash

	utxoSet *utxo.Set

	// nowFunc exists so tests can pin wall-clock time; it defaults to
	// time.Now.
	nowFunc func() time.Time
}

// New returns a BlockChain rooted at params.GenesisBlock, with an empty
// UTXO set and mempool reference pool (nil is fine: the chain simply
// never purges or re-queues anything).
func New(params *chaincfg.Params, pool MempoolView) (*BlockChain, error) {
	bc := &BlockChain{
		params:      params,
		pool:        pool,
		blocks:      make(map[chainhash.Hash]*node),
		heightIndex: make(map[int32]map[chainhash.Hash]struct{}),
		chainTips:   make(map[chainhash.Hash]struct{}),
		utxoSet:     utxo.New(),
		nowFunc:     time.Now,
	}

	genesis := params.GenesisBlock
	if err := bc.AddBlock(genesis); err != nil {
		return nil, err
	}
	return bc, nil
}

// Params returns the chain's configured parameters.
func (bc *BlockChain) Params() *chaincfg.Params { return bc.params }

// BestChainTip returns the hash of the current best chain's tip.
func (bc *BlockChain) BestChainTip() chainhash.Hash {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	return bc.bestTip
}

// BestHeight returns the height of the current best chain's tip.
func (bc *BlockChain) BestHeight() int32 {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	return bc.blocks[bc.bestTip].height
}

// UTXOSet returns the UTXO set consistent with the best chain. Callers
// must not mutate the returned set directly; use Copy first.
func (bc *BlockChain) UTXOSet() *utxo.Set {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	return bc.utxoSet
}

// Block returns the known block with the given hash, or nil.
func (bc *BlockChain) Block(hash chainhash.Hash) *wire.MsgBlock {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	n, ok := bc.blocks[hash]
	if !ok {
		return nil
	}
	return n.block
}

// HeightOf returns the height of a known block and whether it was found.
func (bc *BlockChain) HeightOf(hash chainhash.Hash) (int32, bool) {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	n, ok := bc.blocks[hash]
	if !ok {
		return 0, false
	}
	return n.height, true
}

// ChainTips returns the current set of chain-tip hashes.
func (bc *BlockChain) ChainTips() []chainhash.Hash {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	tips := make([]chainhash.Hash, 0, len(bc.chainTips))
	for h := range bc.chainTips {
		tips = append(tips, h)
	}
	return tips
}

// reportMetrics refreshes the gauges that reflect current best-chain state.
// Callers must already hold chainLock.
func (bc *BlockChain) reportMetrics() {
	metrics.ChainHeight.Set(float64(bc.blocks[bc.bestTip].height))
	metrics.ChainTips.Set(float64(len(bc.chainTips)))
	metrics.UTXOSetSize.Set(float64(bc.utxoSet.Size()))
}

// NextRequiredBits returns the difficulty_bits a block extending parentHash
// must satisfy, per §4.3/§4.7. It is the miner's entry point into the same
// retarget logic add_block validates against.
func (bc *BlockChain) NextRequiredBits(parentHash chainhash.Hash) (uint32, error) {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	parent, ok := bc.blocks[parentHash]
	if !ok {
		return 0, fmt.Errorf("blockchain: unknown parent %s", parentHash)
	}
	return bc.expectedDifficulty(parentHash, parent.height+1), nil
}

// ancestorChain returns up to n ancestor nodes of hash, starting with hash's
// immediate parent and walking toward genesis, oldest entries last.
func (bc *BlockChain) ancestorChain(hash chainhash.Hash, n int) []*node {
	result := make([]*node, 0, n)
	cur, ok := bc.blocks[hash]
	for ok && len(result) < n {
		parentHash := cur.block.Header.PrevBlock
		parent, found := bc.blocks[parentHash]
		if !found {
			break
		}
		result = append(result, parent)
		cur, ok = parent, found
	}
	return result
}

// precedingTimestamps returns up to medianTimeBlocks timestamps of the
// blocks immediately preceding (not including) hash, oldest first.
func (bc *BlockChain) precedingTimestamps(hash chainhash.Hash) []int64 {
	nodes := bc.ancestorChain(hash, medianTimeBlocks)
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n.block.Header.Timestamp.Unix()
	}
	return out
}

// expectedDifficulty computes the difficulty_bits required for a block at
// height extending parentHash, per §4.3/§4.7.
func (bc *BlockChain) expectedDifficulty(parentHash chainhash.Hash, height int32) uint32 {
	if height == 0 {
		return bc.params.GenesisBits
	}
	parent := bc.blocks[parentHash]
	oldBits := parent.block.Header.Bits

	if height%bc.params.AdjustmentInterval != 0 {
		return NextRequiredDifficulty(height, oldBits, 0, 0, bc.params)
	}

	window := bc.ancestorChain(parentHash, int(bc.params.AdjustmentInterval)-1)
	window = append([]*node{parent}, window...) // parent is the window's newest block
	firstTimestamp := window[len(window)-1].block.Header.Timestamp.Unix()
	lastTimestamp := parent.block.Header.Timestamp.Unix()

	return NextRequiredDifficulty(height, oldBits, firstTimestamp, lastTimestamp, bc.params)
}

// cumulativeWork sums CalcWork(bits) over every block from genesis to
// hash, inclusive.
func (bc *BlockChain) cumulativeWork(hash chainhash.Hash) *big.Int {
	total := big.NewInt(0)
	cur, ok := bc.blocks[hash]
	for ok {
		total.Add(total, CalcWork(cur.block.Header.Bits))
		parentHash := cur.block.Header.PrevBlock
		cur, ok = bc.blocks[parentHash]
	}
	return total
}

// validateAgainstSnapshot runs the full §4.5 rule set for block at height,
// whose parent is parentHash, against snapshot (which is mutated in
// place: callers pass either a disposable copy, to validate without
// committing, or the live set, to validate-and-connect in one pass).
// Returns the undo log for this block's mutations.
func (bc *BlockChain) validateAgainstSnapshot(block *wire.MsgBlock, height int32, parentHash chainhash.Hash, snapshot *utxo.Set) (*blockUndo, error) {
	isGenesis := height == 0
	hash := block.Header.BlockHash()

	if err := CheckProofOfWork(hash, block.Header.Bits); err != nil {
		return nil, err
	}
	if err := CheckMerkleRoot(block); err != nil {
		return nil, err
	}
	if !isGenesis {
		if err := CheckBlockTimestamp(&block.Header, bc.precedingTimestamps(parentHash), bc.nowFunc()); err != nil {
			return nil, err
		}
	}
	if err := CheckBlockSize(block); err != nil {
		return nil, err
	}
	if len(block.Transactions) == 0 {
		return nil, ruleError(ErrMissingTransactions, "block has no transactions")
	}
	if !IsCoinBaseTx(block.Transactions[0]) {
		return nil, ruleError(ErrBadCoinbase, "first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if IsCoinBaseTx(tx) {
			return nil, ruleError(ErrBadCoinbase, "multiple coinbase transactions in block")
		}
	}
	if err := CheckDuplicateTxids(block); err != nil {
		return nil, err
	}

	undo := &blockUndo{}
	var totalFees int64
	for _, tx := range block.Transactions[1:] {
		fee, err := ValidateTransaction(tx, height, snapshot, bc.params.CoinbaseMaturity, undo)
		if err != nil {
			undo.apply(snapshot)
			return nil, err
		}
		totalFees += fee
	}

	reward := CalcBlockSubsidy(height, bc.params.SubsidyHalvingInterval)
	var coinbaseOut int64
	for _, out := range block.Transactions[0].TxOut {
		coinbaseOut += out.Value
	}
	if coinbaseOut > reward+totalFees {
		undo.apply(snapshot)
		return nil, ruleError(ErrBadCoinbase, "coinbase output total exceeds reward plus fees")
	}
	if err := CheckSerializedHeight(block.Transactions[0], height); err != nil {
		undo.apply(snapshot)
		return nil, err
	}

	expectedBits := bc.expectedDifficulty(parentHash, height)
	if block.Header.Bits != expectedBits {
		undo.apply(snapshot)
		return nil, ruleError(ErrBadDifficulty, "block difficulty_bits does not match the value required for its height")
	}

	coinbaseTxid := block.Transactions[0].Hash()
	for i, out := range block.Transactions[0].TxOut {
		entry := &utxo.Entry{
			Value:       out.Value,
			PkScript:    out.PkScript,
			BlockHeight: height,
			IsCoinBase:  true,
		}
		snapshot.Add(coinbaseTxid, uint32(i), entry)
		undo.recordCreated(coinbaseTxid, uint32(i))
	}

	return undo, nil
}

// AddBlock submits a candidate block to the chain, per §4.10's add_block
// algorithm. It returns a RuleError (or another typed error) on rejection.
// A block rejected before it is stored leaves chain state unchanged; a
// block whose reorganization fails stays stored as a side branch, while
// the best tip and the UTXO set are restored to their previous state.
func (bc *BlockChain) AddBlock(block *wire.MsgBlock) error {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()

	hash := block.Header.BlockHash()
	if _, known := bc.blocks[hash]; known {
		return nil
	}

	isGenesis := block.Header.PrevBlock == (chainhash.Hash{})
	var height int32
	if !isGenesis {
		parent, ok := bc.blocks[block.Header.PrevBlock]
		if !ok {
			return ruleError(ErrDoesNotConnect, "previous_block_hash names no known block")
		}
		height = parent.height + 1
	}

	// Step 2: validate against best-chain UTXO context, using a disposable
	// copy so this gate never mutates canonical state.
	probe := bc.utxoSet.Copy()
	if _, err := bc.validateAgainstSnapshot(block, height, block.Header.PrevBlock, probe); err != nil {
		return err
	}

	n := &node{block: block, hash: hash, height: height}
	bc.blocks[hash] = n
	if bc.heightIndex[height] == nil {
		bc.heightIndex[height] = make(map[chainhash.Hash]struct{})
	}
	bc.heightIndex[height][hash] = struct{}{}
	delete(bc.chainTips, block.Header.PrevBlock)
	bc.chainTips[hash] = struct{}{}

	if isGenesis {
		undo, err := bc.validateAgainstSnapshot(block, height, block.Header.PrevBlock, bc.utxoSet)
		if err != nil {
			return err
		}
		n.undo = undo
		bc.bestTip = hash
		bc.reportMetrics()
		return nil
	}

	bestNode := bc.blocks[bc.bestTip]

	switch {
	case block.Header.PrevBlock == bc.bestTip:
		undo, err := bc.validateAgainstSnapshot(block, height, block.Header.PrevBlock, bc.utxoSet)
		if err != nil {
			return err
		}
		n.undo = undo
		if bc.pool != nil {
			bc.pool.PurgeConfirmed(block)
		}
		bc.bestTip = hash
		log.Infof("extended best chain to height %d (%s)", height, hash)
		bc.reportMetrics()
		return nil

	case bc.cumulativeWork(hash).Cmp(bc.cumulativeWork(bc.bestTip)) > 0:
		log.Infof("block %s at height %d outweighs current tip %s at height %d, reorganizing",
			hash, height, bc.bestTip, bestNode.height)
		return bc.reorganize(hash)

	default:
		// Side branch: already validated above against a disposable
		// snapshot; stored but not connected. best_chain_tip unchanged.
		log.Debugf("accepted side branch block %s at height %d", hash, height)
		metrics.ChainTips.Set(float64(len(bc.chainTips)))
		return nil
	}
}

// findCommonAncestor walks both a and b back toward genesis, returning
// the first hash that appears on both paths.
func (bc *BlockChain) findCommonAncestor(a, b chainhash.Hash) (chainhash.Hash, error) {
	pathA := make(map[chainhash.Hash]struct{})
	for cur := a; ; {
		pathA[cur] = struct{}{}
		n, ok := bc.blocks[cur]
		if !ok || n.block.Header.PrevBlock == (chainhash.Hash{}) {
			break
		}
		cur = n.block.Header.PrevBlock
	}

	for cur := b; ; {
		if _, in := pathA[cur]; in {
			return cur, nil
		}
		n, ok := bc.blocks[cur]
		if !ok || n.block.Header.PrevBlock == (chainhash.Hash{}) {
			break
		}
		cur = n.block.Header.PrevBlock
	}

	return chainhash.Hash{}, NoCommonAncestorError("no intersection between the two chains")
}

// chainFromTipTo returns the blocks strictly above ancestor on the chain
// ending at tip, ordered oldest first.
func (bc *BlockChain) chainFromTipTo(tip, ancestor chainhash.Hash) []*node {
	var chain []*node
	cur := tip
	for cur != ancestor {
		n, ok := bc.blocks[cur]
		if !ok {
			break
		}
		chain = append(chain, n)
		cur = n.block.Header.PrevBlock
	}
	// chain is currently newest-first; reverse to oldest-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// reorganize switches the best chain's tip from its current value to
// newTip, per §4.10's reorganization algorithm, including rollback-on-
// failure: if applying the new branch fails partway, every block applied
// so far in this attempt is undone and the original tip is restored.
func (bc *BlockChain) reorganize(newTip chainhash.Hash) error {
	oldTip := bc.bestTip

	ancestor, err := bc.findCommonAncestor(oldTip, newTip)
	if err != nil {
		return err
	}

	unwindSet := bc.chainFromTipTo(oldTip, ancestor) // oldest-first
	applySet := bc.chainFromTipTo(newTip, ancestor)  // oldest-first

	// Unwind set must be processed newest-first.
	var requeued []*wire.MsgTx
	for i := len(unwindSet) - 1; i >= 0; i-- {
		un := unwindSet[i]
		if un.undo != nil {
			un.undo.apply(bc.utxoSet)
			un.undo = nil
		}
		for _, tx := range un.block.Transactions[1:] {
			requeued = append(requeued, tx)
		}
	}

	var applied []*node
	var applyErr error
	for _, an := range applySet {
		parentHash := an.block.Header.PrevBlock
		undo, err := bc.validateAgainstSnapshot(an.block, an.height, parentHash, bc.utxoSet)
		if err != nil {
			applyErr = err
			break
		}
		an.undo = undo
		applied = append(applied, an)
	}

	if applyErr != nil {
		// Roll back everything applied so far in this attempt, newest
		// first, then re-apply the unwound blocks in their original
		// order to restore the original tip exactly.
		for i := len(applied) - 1; i >= 0; i-- {
			applied[i].undo.apply(bc.utxoSet)
			applied[i].undo = nil
		}
		for _, un := range unwindSet {
			parentHash := un.block.Header.PrevBlock
			undo, err := bc.validateAgainstSnapshot(un.block, un.height, parentHash, bc.utxoSet)
			if err != nil {
				return AssertError("failed to restore original chain after a failed reorg attempt")
			}
			un.undo = undo
		}
		log.Warnf("reorg to %s aborted (%v), restored original tip %s", newTip, applyErr, oldTip)
		return applyErr
	}

	if bc.pool != nil {
		// Re-queue unwound transactions first, then purge whatever the new
		// best chain confirms: a transaction re-mined on the new branch
		// must end up purged, not left sitting in the pool because it
		// wasn't there yet when PurgeConfirmed ran (§4.10 steps 4-5).
		if len(requeued) > 0 {
			bc.pool.Requeue(requeued)
		}
		for _, an := range applySet {
			bc.pool.PurgeConfirmed(an.block)
		}
	}

	bc.bestTip = newTip
	log.Infof("reorg complete: unwound %d block(s), applied %d block(s), new tip %s",
		len(unwindSet), len(applySet), newTip)
	metrics.ReorgsTotal.Inc()
	metrics.ReorgDepth.Set(float64(len(unwindSet)))
	bc.reportMetrics()
	return nil
}

// blockRecord is one block's JSON-serializable snapshot entry: its height
// (so a loader can replay in ascending order without first decoding every
// block) and its raw wire encoding, hex-encoded for JSON (§6.5).
type blockRecord struct {
	Height int32  `json:"height"`
	Raw    string `json:"raw"`
}

// ChainSnapshot is the round-trippable JSON form of a BlockChain: every
// known block (not just the best chain), the chain-tip set, the best
// tip, and the UTXO set consistent with it (§6.5).
type ChainSnapshot struct {
	Mode      string                 `json:"mode"`
	Blocks    map[string]blockRecord `json:"blocks"`
	ChainTips []string               `json:"chain_tips"`
	BestTip   string                 `json:"best_tip"`
	UTXOSet   *utxo.Snapshot         `json:"utxo_set"`
}

// Snapshot captures bc's entire state — every known block, not only the
// best chain — as a ChainSnapshot.
func (bc *BlockChain) Snapshot() *ChainSnapshot {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()

	snap := &ChainSnapshot{
		Mode:      bc.params.Name,
		Blocks:    make(map[string]blockRecord, len(bc.blocks)),
		ChainTips: make([]string, 0, len(bc.chainTips)),
		BestTip:   bc.bestTip.String(),
		UTXOSet:   bc.utxoSet.ToSnapshot(),
	}
	for hash, n := range bc.blocks {
		raw, err := n.block.Bytes()
		if err != nil {
			panic(AssertError("failed to serialize a known block for snapshot capture"))
		}
		snap.Blocks[hash.String()] = blockRecord{Height: n.height, Raw: hex.EncodeToString(raw)}
	}
	for hash := range bc.chainTips {
		snap.ChainTips = append(snap.ChainTips, hash.String())
	}
	return snap
}

// LoadChainSnapshot rebuilds a BlockChain from a ChainSnapshot, replaying
// every known block (including side branches, not only the best chain)
// through AddBlock in ascending height order so each block's parent is
// always already known by the time it is submitted (§6.5, §9). Fork
// choice is deterministic on cumulative work, so the replay reconstructs
// the same best chain and UTXO set the snapshot was captured from, modulo
// first-seen tie-breaks between equal-work branches, which depend on
// insertion order and so are not guaranteed to replay identically.
func LoadChainSnapshot(params *chaincfg.Params, pool MempoolView, snap *ChainSnapshot) (*BlockChain, error) {
	bc, err := New(params, pool)
	if err != nil {
		return nil, err
	}

	type ordered struct {
		height int32
		block  *wire.MsgBlock
	}
	blocks := make([]ordered, 0, len(snap.Blocks))
	for _, rec := range snap.Blocks {
		raw, err := hex.DecodeString(rec.Raw)
		if err != nil {
			return nil, err
		}
		block, err := wire.BlockFromBytes(raw)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, ordered{height: rec.Height, block: block})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].height < blocks[j].height })

	for _, o := range blocks {
		if err := bc.AddBlock(o.block); err != nil {
			return nil, err
		}
	}

	if bc.bestTip.String() == snap.BestTip && !utxoSetsEqual(bc.utxoSet, utxo.FromSnapshot(snap.UTXOSet)) {
		return nil, AssertError("replayed UTXO set disagrees with the snapshot's recorded UTXO set")
	}

	return bc, nil
}

// utxoSetsEqual reports whether a and b contain exactly the same entries.
func utxoSetsEqual(a, b *utxo.Set) bool {
	aAll, bAll := a.All(), b.All()
	if len(aAll) != len(bAll) {
		return false
	}
	for k, ea := range aAll {
		eb, ok := bAll[k]
		if !ok || ea.Value != eb.Value || ea.BlockHeight != eb.BlockHeight ||
			ea.IsCoinBase != eb.IsCoinBase || !bytes.Equal(ea.PkScript, eb.PkScript) {
			return false
		}
	}
	return true
}
