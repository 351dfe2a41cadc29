// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/coinnode/node/encoding"
)

// MsgBlock is a header paired with its full transaction list. The first
// transaction must be the coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// NewMsgBlock returns an empty block with the given header.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{Header: *header}
}

// AddTransaction appends a transaction to the block.
func (b *MsgBlock) AddTransaction(tx *MsgTx) {
	b.Transactions = append(b.Transactions, tx)
}

// SerializeSize returns the number of bytes Serialize would write.
func (b *MsgBlock) SerializeSize() int {
	n := BlockHeaderLen
	n += encoding.VarIntSize(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// Serialize writes the canonical block encoding to w: header(80) ‖
// varint(|txs|) ‖ serialized txs.
func (b *MsgBlock) Serialize(w io.Writer) error {
	if err := b.Header.Serialize(w); err != nil {
		return err
	}
	if err := encoding.WriteVarInt(w, uint64(len(b.Transactions))); err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a canonical block encoding from r.
func (b *MsgBlock) Deserialize(r io.Reader) error {
	if err := b.Header.Deserialize(r); err != nil {
		return err
	}
	numTx, err := encoding.ReadVarInt(r)
	if err != nil {
		return err
	}
	b.Transactions = make([]*MsgTx, numTx)
	for i := range b.Transactions {
		tx := &MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		b.Transactions[i] = tx
	}
	return nil
}

// Bytes serializes the block to a new byte slice.
func (b *MsgBlock) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, b.SerializeSize()))
	if err := b.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlockFromBytes deserializes a block from a byte slice.
func BlockFromBytes(raw []byte) (*MsgBlock, error) {
	b := &MsgBlock{}
	if err := b.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return b, nil
}

// Coinbase returns the block's first transaction, or nil if the block has
// no transactions yet.
func (b *MsgBlock) Coinbase() *MsgTx {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[0]
}
