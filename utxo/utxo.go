// Package utxo implements the unspent-transaction-output set: the keyed
// store of spendable outputs that represents the ledger's current state
// (§4.4). All mutating operations are amortized O(1); scans used by
// balance/address lookups are explicitly linear, a straightforward
// in-memory model sufficient at single-node scale.
package utxo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coinnode/node/chainhash"
)

// Entry is one unspent output: its value, locking script, the height of
// the block that created it, and whether that block's transaction was a
// coinbase (relevant for maturity checks).
type Entry struct {
	Value       int64
	PkScript    []byte
	BlockHeight int32
	IsCoinBase  bool
}

// Copy returns a deep copy of e.
func (e *Entry) Copy() *Entry {
	script := make([]byte, len(e.PkScript))
	copy(script, e.PkScript)
	return &Entry{
		Value:       e.Value,
		PkScript:    script,
		BlockHeight: e.BlockHeight,
		IsCoinBase:  e.IsCoinBase,
	}
}

// Key is the (txid, output index) pair a UTXO is keyed by, formatted as
// "txid:index".
type Key string

// NewKey builds the canonical Key for an output.
func NewKey(txid chainhash.Hash, index uint32) Key {
	return Key(fmt.Sprintf("%s:%d", txid.String(), index))
}

// Parts splits k back into the txid and output index that formed it, for
// callers (the wallet's coin selection) that only have a Key from
// iterating All/ForAddress and need to build a TxIn referencing it.
func (k Key) Parts() (chainhash.Hash, uint32, error) {
	sep := strings.LastIndexByte(string(k), ':')
	if sep < 0 {
		return chainhash.Hash{}, 0, fmt.Errorf("utxo: malformed key %q", k)
	}
	txid, err := chainhash.NewHashFromStr(string(k)[:sep])
	if err != nil {
		return chainhash.Hash{}, 0, err
	}
	index, err := strconv.ParseUint(string(k)[sep+1:], 10, 32)
	if err != nil {
		return chainhash.Hash{}, 0, err
	}
	return *txid, uint32(index), nil
}

// NotFoundError is the programmer-error panic value raised by Remove for a
// key with no entry — per §7, callers are expected to have already checked
// Has/Get; a missing key on Remove signifies a bug, not adversarial input.
type NotFoundError string

func (e NotFoundError) Error() string {
	return "utxo: no entry for key " + string(e)
}

// Set is the UTXO store consistent with a chain tip (§3 utxo_set).
type Set struct {
	entries map[Key]*Entry
}

// New returns an empty UTXO set.
func New() *Set {
	return &Set{entries: make(map[Key]*Entry)}
}

// Add inserts a new entry for (txid, index). Overwriting an existing key is
// a programming error (BIP0030 duplicate-coinbase-style situations are
// rejected earlier, at the validator) and panics.
func (s *Set) Add(txid chainhash.Hash, index uint32, entry *Entry) {
	key := NewKey(txid, index)
	if _, exists := s.entries[key]; exists {
		panic("utxo: attempted to overwrite existing entry for key " + string(key))
	}
	s.entries[key] = entry
}

// Remove deletes and returns the entry for (txid, index), panicking with a
// NotFoundError if absent.
func (s *Set) Remove(txid chainhash.Hash, index uint32) *Entry {
	key := NewKey(txid, index)
	entry, ok := s.entries[key]
	if !ok {
		panic(NotFoundError(key))
	}
	delete(s.entries, key)
	return entry
}

// Get returns the entry for (txid, index), or nil if none exists.
func (s *Set) Get(txid chainhash.Hash, index uint32) *Entry {
	return s.entries[NewKey(txid, index)]
}

// Has reports whether (txid, index) has an entry.
func (s *Set) Has(txid chainhash.Hash, index uint32) bool {
	_, ok := s.entries[NewKey(txid, index)]
	return ok
}

// Size returns the number of entries in the set.
func (s *Set) Size() int {
	return len(s.entries)
}

// Balance sums the value of every entry whose PkScript equals script
// (linear scan, acceptable per §4.4).
func (s *Set) Balance(script []byte) int64 {
	var total int64
	for _, e := range s.entries {
		if scriptsEqual(e.PkScript, script) {
			total += e.Value
		}
	}
	return total
}

// ForAddress returns every (key, entry) pair whose PkScript equals script
// (linear scan, acceptable per §4.4).
func (s *Set) ForAddress(script []byte) map[Key]*Entry {
	out := make(map[Key]*Entry)
	for k, e := range s.entries {
		if scriptsEqual(e.PkScript, script) {
			out[k] = e
		}
	}
	return out
}

func scriptsEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Copy returns a deep clone of s, used by intra-block validation so that
// speculative spends never mutate the canonical set until a block is fully
// accepted (§4.4, §5).
func (s *Set) Copy() *Set {
	clone := &Set{entries: make(map[Key]*Entry, len(s.entries))}
	for k, e := range s.entries {
		clone.entries[k] = e.Copy()
	}
	return clone
}

// All returns every (key, entry) pair in the set.
func (s *Set) All() map[Key]*Entry {
	return s.entries
}

// Snapshot is the JSON-serializable form of a Set (§6.5).
type Snapshot struct {
	Entries map[Key]*Entry `json:"entries"`
}

// ToSnapshot captures s as a Snapshot.
func (s *Set) ToSnapshot() *Snapshot {
	clone := s.Copy()
	return &Snapshot{Entries: clone.entries}
}

// FromSnapshot rebuilds a Set from a Snapshot.
func FromSnapshot(snap *Snapshot) *Set {
	s := New()
	for k, e := range snap.Entries {
		s.entries[k] = e
	}
	return s
}
