// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"math"

	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/encoding"
)

// OutPoint identifies a transaction output by the txid that created it and
// the index of that output within its transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// IsNull reports whether op is the coinbase sentinel outpoint: all-zeros
// hash and a max-value index.
func (op OutPoint) IsNull() bool {
	return op.Index == math.MaxUint32 && op.Hash == (chainhash.Hash{})
}

// NullOutPoint is the sentinel previous-outpoint used by every coinbase
// transaction's single input.
var NullOutPoint = OutPoint{Index: math.MaxUint32}

// TxIn is one input of a Transaction: the outpoint it spends, the script
// authorizing that spend, and a sequence number.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut is one output of a Transaction: a value in satoshis and the script
// that locks it.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// MsgTx is the canonical transaction representation: version, ordered
// inputs, ordered outputs, and locktime.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32

	cachedTxid *chainhash.Hash
}

// NewMsgTx returns an empty transaction of the given version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn appends an input and invalidates any cached txid.
func (tx *MsgTx) AddTxIn(in *TxIn) {
	tx.TxIn = append(tx.TxIn, in)
	tx.cachedTxid = nil
}

// AddTxOut appends an output and invalidates any cached txid.
func (tx *MsgTx) AddTxOut(out *TxOut) {
	tx.TxOut = append(tx.TxOut, out)
	tx.cachedTxid = nil
}

// InvalidateID drops any cached txid, forcing the next call to Hash to
// recompute it. Callers that mutate a TxIn or TxOut in place (rather than
// through AddTxIn/AddTxOut) must call this themselves.
func (tx *MsgTx) InvalidateID() {
	tx.cachedTxid = nil
}

// IsCoinBase reports whether tx has the coinbase input shape: exactly one
// input referencing the null outpoint.
func (tx *MsgTx) IsCoinBase() bool {
	if len(tx.TxIn) != 1 {
		return false
	}
	return tx.TxIn[0].PreviousOutPoint.IsNull()
}

// TxHash computes (and does not cache) double_sha256(serialize(tx)), the
// txid.
func (tx *MsgTx) TxHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSize()))
	_ = tx.Serialize(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Hash returns the transaction's txid, computing and caching it on first
// use. Any call to AddTxIn/AddTxOut invalidates the cache.
func (tx *MsgTx) Hash() chainhash.Hash {
	if tx.cachedTxid != nil {
		return *tx.cachedTxid
	}
	h := tx.TxHash()
	tx.cachedTxid = &h
	return h
}

// SerializeSize returns the number of bytes Serialize would write.
func (tx *MsgTx) SerializeSize() int {
	n := 4 + 4 // version + locktime
	n += encoding.VarIntSize(uint64(len(tx.TxIn)))
	for _, in := range tx.TxIn {
		n += chainhash.HashSize + 4 + 4
		n += encoding.VarIntSize(uint64(len(in.SignatureScript)))
		n += len(in.SignatureScript)
	}
	n += encoding.VarIntSize(uint64(len(tx.TxOut)))
	for _, out := range tx.TxOut {
		n += 8
		n += encoding.VarIntSize(uint64(len(out.PkScript)))
		n += len(out.PkScript)
	}
	return n
}

// Serialize writes the canonical transaction encoding to w, per §6.1:
// version(4 LE) ‖ varint(|inputs|) ‖ inputs ‖ varint(|outputs|) ‖ outputs ‖
// locktime(4 LE). Each input is prev_txid(32, reversed-order bytes on the
// wire) ‖ prev_idx(4 LE) ‖ varint(|script|) ‖ script ‖ sequence(4 LE); each
// output is value(8 LE) ‖ varint(|script|) ‖ script.
func (tx *MsgTx) Serialize(w io.Writer) error {
	if err := encoding.WriteUint32(w, uint32(tx.Version)); err != nil {
		return err
	}

	if err := encoding.WriteVarInt(w, uint64(len(tx.TxIn))); err != nil {
		return err
	}
	for _, in := range tx.TxIn {
		if _, err := w.Write(in.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if err := encoding.WriteUint32(w, in.PreviousOutPoint.Index); err != nil {
			return err
		}
		if err := encoding.WriteVarInt(w, uint64(len(in.SignatureScript))); err != nil {
			return err
		}
		if _, err := w.Write(in.SignatureScript); err != nil {
			return err
		}
		if err := encoding.WriteUint32(w, in.Sequence); err != nil {
			return err
		}
	}

	if err := encoding.WriteVarInt(w, uint64(len(tx.TxOut))); err != nil {
		return err
	}
	for _, out := range tx.TxOut {
		if err := encoding.WriteInt64(w, out.Value); err != nil {
			return err
		}
		if err := encoding.WriteVarInt(w, uint64(len(out.PkScript))); err != nil {
			return err
		}
		if _, err := w.Write(out.PkScript); err != nil {
			return err
		}
	}

	return encoding.WriteUint32(w, tx.LockTime)
}

// Deserialize reads a canonical transaction encoding from r.
func (tx *MsgTx) Deserialize(r io.Reader) error {
	version, err := encoding.ReadUint32(r)
	if err != nil {
		return err
	}
	tx.Version = int32(version)

	numIn, err := encoding.ReadVarInt(r)
	if err != nil {
		return err
	}
	tx.TxIn = make([]*TxIn, numIn)
	for i := range tx.TxIn {
		in := &TxIn{}
		if _, err := io.ReadFull(r, in.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if in.PreviousOutPoint.Index, err = encoding.ReadUint32(r); err != nil {
			return err
		}
		scriptLen, err := encoding.ReadVarInt(r)
		if err != nil {
			return err
		}
		in.SignatureScript = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, in.SignatureScript); err != nil {
			return err
		}
		if in.Sequence, err = encoding.ReadUint32(r); err != nil {
			return err
		}
		tx.TxIn[i] = in
	}

	numOut, err := encoding.ReadVarInt(r)
	if err != nil {
		return err
	}
	tx.TxOut = make([]*TxOut, numOut)
	for i := range tx.TxOut {
		out := &TxOut{}
		if out.Value, err = encoding.ReadInt64(r); err != nil {
			return err
		}
		scriptLen, err := encoding.ReadVarInt(r)
		if err != nil {
			return err
		}
		out.PkScript = make([]byte, scriptLen)
		if _, err := io.ReadFull(r, out.PkScript); err != nil {
			return err
		}
		tx.TxOut[i] = out
	}

	tx.LockTime, err = encoding.ReadUint32(r)
	tx.cachedTxid = nil
	return err
}

// Bytes serializes tx to a new byte slice.
func (tx *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSize()))
	if err := tx.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TxFromBytes deserializes a transaction from a byte slice.
func TxFromBytes(b []byte) (*MsgTx, error) {
	tx := &MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return tx, nil
}

// Copy returns a deep copy of tx (its cached txid is not copied, so the
// clone recomputes lazily on first use).
func (tx *MsgTx) Copy() *MsgTx {
	clone := &MsgTx{
		Version:  tx.Version,
		LockTime: tx.LockTime,
		TxIn:     make([]*TxIn, len(tx.TxIn)),
		TxOut:    make([]*TxOut, len(tx.TxOut)),
	}
	for i, in := range tx.TxIn {
		script := make([]byte, len(in.SignatureScript))
		copy(script, in.SignatureScript)
		clone.TxIn[i] = &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  script,
			Sequence:         in.Sequence,
		}
	}
	for i, out := range tx.TxOut {
		script := make([]byte, len(out.PkScript))
		copy(script, out.PkScript)
		clone.TxOut[i] = &TxOut{Value: out.Value, PkScript: script}
	}
	return clone
}
