// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire defines the canonical binary encoding for the node's data
// model: block headers, transactions, and blocks. All on-wire/on-disk
// formats live here; callers needing a payable amount or address use
// chainutil instead.
package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/encoding"
)

// BlockHeaderLen is the fixed serialized size of a BlockHeader: four u32
// fields plus two 32-byte hashes.
const BlockHeaderLen = 80

// BlockHeader defines the 80-byte committed preamble of a Block: its
// parent, its Merkle commitment, and everything the proof-of-work hash
// covers.
type BlockHeader struct {
	// Version of the block.
	Version int32

	// PrevBlock is the hash of the previous block header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot commits to all transactions in the block.
	MerkleRoot chainhash.Hash

	// Timestamp the block was created, second precision.
	Timestamp time.Time

	// Bits is the compact-form proof-of-work target for this block.
	Bits uint32

	// Nonce is the value miners vary to satisfy the proof-of-work target.
	Nonce uint32
}

// NewBlockHeader returns a new BlockHeader using the provided fields, with
// the timestamp truncated to one-second precision as required by the wire
// format.
func NewBlockHeader(version int32, prevHash, merkleRootHash chainhash.Hash, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  prevHash,
		MerkleRoot: merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// BlockHash computes double_sha256(serialize(header)), the block's
// identifying hash.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderLen))
	// Serialize cannot fail writing into a bytes.Buffer.
	_ = h.Serialize(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize writes the 80-byte canonical header encoding to w: version,
// previous-block hash, merkle root, timestamp, bits, nonce — each a
// little-endian u32 except the two hashes.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := encoding.WriteUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := encoding.WriteUint32(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := encoding.WriteUint32(w, h.Bits); err != nil {
		return err
	}
	return encoding.WriteUint32(w, h.Nonce)
}

// Deserialize reads an 80-byte canonical header encoding from r.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	version, err := encoding.ReadUint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return err
	}

	ts, err := encoding.ReadUint32(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	if h.Bits, err = encoding.ReadUint32(r); err != nil {
		return err
	}
	h.Nonce, err = encoding.ReadUint32(r)
	return err
}

// Bytes serializes the header to a new byte slice.
func (h *BlockHeader) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderLen))
	if err := h.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HeaderFromBytes deserializes a BlockHeader from an 80-byte slice.
func HeaderFromBytes(b []byte) (*BlockHeader, error) {
	h := &BlockHeader{}
	if err := h.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return h, nil
}
