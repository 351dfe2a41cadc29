// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package snapshot persists and restores a node's entire state — chain,
// UTXO set, and mempool — as a single JSON document, per §6.5.
package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/mempool"
	"github.com/coinnode/node/wire"
)

// Snapshot is the full JSON-serializable node state.
type Snapshot struct {
	Chain   *blockchain.ChainSnapshot `json:"chain"`
	Mempool []string                  `json:"mempool"` // hex-encoded raw transactions.
}

// Capture snapshots bc's full block-tree/UTXO state and every transaction
// currently pooled in pool (nil pool is treated as empty).
func Capture(bc *blockchain.BlockChain, pool *mempool.TxPool) (*Snapshot, error) {
	snap := &Snapshot{Chain: bc.Snapshot()}
	if pool == nil {
		return snap, nil
	}
	for _, desc := range pool.Select(0) {
		raw, err := desc.Tx.Bytes()
		if err != nil {
			return nil, err
		}
		snap.Mempool = append(snap.Mempool, hex.EncodeToString(raw))
	}
	return snap, nil
}

// Restore rebuilds a BlockChain and TxPool from snap. The chain's blocks
// are replayed in ascending height order (§6.5); mempool entries are then
// re-offered under normal acceptance rules against the rebuilt chain's
// UTXO set, so any transaction the replay already confirmed is silently
// dropped rather than double-counted.
func Restore(params *chaincfg.Params, snap *Snapshot) (*blockchain.BlockChain, *mempool.TxPool, error) {
	pool := mempool.New()

	bc, err := blockchain.LoadChainSnapshot(params, pool, snap.Chain)
	if err != nil {
		return nil, nil, err
	}

	for _, raw := range snap.Mempool {
		b, err := hex.DecodeString(raw)
		if err != nil {
			return nil, nil, err
		}
		tx, err := wire.TxFromBytes(b)
		if err != nil {
			return nil, nil, err
		}
		_ = pool.Accept(tx, bc.UTXOSet())
	}

	return bc, pool, nil
}

// SaveToFile atomically writes snap to path as JSON (temp file, then
// rename), guarding against a torn write from a crash mid-save.
func SaveToFile(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFromFile reads and parses a Snapshot previously written by
// SaveToFile.
func LoadFromFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
