// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainhash"
	"github.com/coinnode/node/chainutil"
	"github.com/coinnode/node/keys"
	"github.com/coinnode/node/merkle"
	"github.com/coinnode/node/utxo"
	"github.com/coinnode/node/wire"
)

const (
	// MaxBlockSize is the maximum serialized size, in bytes, a block may
	// have (§4.5 item 5).
	MaxBlockSize = 1_000_000

	// MaxTimeOffsetSeconds is how far into the future, relative to wall
	// clock, a header timestamp may be (§4.5 item 4).
	MaxTimeOffsetSeconds = 7200

	// medianTimeBlocks is the number of preceding block timestamps
	// examined for the median-time-past rule (§4.5 item 4).
	medianTimeBlocks = 11
)

// IsCoinBaseTx reports whether tx has the coinbase input shape.
func IsCoinBaseTx(tx *wire.MsgTx) bool {
	return tx.IsCoinBase()
}

// CalcPastMedianTime returns the median of the given timestamps, ordered
// oldest-to-newest, taking the lower of the two middle values when the
// count is even (§4.5 item 4). The caller passes at most the preceding 11
// timestamps.
func CalcPastMedianTime(timestamps []int64) int64 {
	sorted := make([]int64, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[(len(sorted)-1)/2]
}

// CheckProofOfWork verifies that hash, interpreted as a big-endian 256-bit
// integer, does not exceed the target encoded by bits (§4.5 item 1).
func CheckProofOfWork(hash chainhash.Hash, bits uint32) error {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return ruleError(ErrInvalidProofOfWork, "block target is zero or negative")
	}
	hashNum := HashToBig(&hash)
	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrInvalidProofOfWork,
			"block hash does not satisfy the required difficulty target")
	}
	return nil
}

// CheckMerkleRoot recomputes the Merkle root over block's transactions and
// compares it against header.MerkleRoot (§4.5 item 3).
func CheckMerkleRoot(block *wire.MsgBlock) error {
	leaves := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		leaves[i] = tx.Hash()
	}
	root := merkle.Root(leaves)
	if root != block.Header.MerkleRoot {
		return ruleError(ErrMerkleMismatch, "merkle root does not match transactions")
	}
	return nil
}

// CheckBlockTimestamp enforces the non-genesis timestamp rule (§4.5 item
// 4): strictly greater than the median of the preceding timestamps (once
// at least 11 are available), and no more than MaxTimeOffsetSeconds past
// wall-clock now.
func CheckBlockTimestamp(header *wire.BlockHeader, precedingTimestamps []int64, now time.Time) error {
	headerTime := header.Timestamp.Unix()

	if len(precedingTimestamps) >= medianTimeBlocks {
		median := CalcPastMedianTime(precedingTimestamps[len(precedingTimestamps)-medianTimeBlocks:])
		if headerTime <= median {
			return ruleError(ErrBadTimestamp, "block timestamp is not after median time past")
		}
	}

	maxTime := now.Unix() + MaxTimeOffsetSeconds
	if headerTime > maxTime {
		return ruleError(ErrBadTimestamp, "block timestamp too far in the future")
	}
	return nil
}

// CheckBlockSize verifies the block's serialized size does not exceed
// MaxBlockSize (§4.5 item 5).
func CheckBlockSize(block *wire.MsgBlock) error {
	if block.SerializeSize() > MaxBlockSize {
		return ruleError(ErrBlockTooLarge, "serialized block exceeds the maximum block size")
	}
	return nil
}

// CheckCoinbaseStructure verifies transaction 0 is a coinbase, no other
// transaction is, and the sum of coinbase outputs does not exceed the
// allowed reward-plus-fees bound (§4.5 item 6).
func CheckCoinbaseStructure(block *wire.MsgBlock, allowedReward int64) error {
	if len(block.Transactions) == 0 {
		return ruleError(ErrMissingTransactions, "block has no transactions")
	}
	if !IsCoinBaseTx(block.Transactions[0]) {
		return ruleError(ErrBadCoinbase, "first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if IsCoinBaseTx(tx) {
			return ruleError(ErrBadCoinbase, "multiple coinbase transactions in block")
		}
	}

	var total int64
	for _, out := range block.Transactions[0].TxOut {
		total += out.Value
	}
	if total > allowedReward {
		return ruleError(ErrBadCoinbase, "coinbase output total exceeds reward plus fees")
	}
	return nil
}

// CheckDuplicateTxids verifies no two transactions in block share a txid
// (§4.5 item 8).
func CheckDuplicateTxids(block *wire.MsgBlock) error {
	seen := make(map[chainhash.Hash]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		h := tx.Hash()
		if _, ok := seen[h]; ok {
			return ruleError(ErrDuplicateTxid, "duplicate transaction id within block")
		}
		seen[h] = struct{}{}
	}
	return nil
}

// encodeScriptHeight returns the BIP-34-style minimal little-endian
// encoding of a non-negative block height, used as the coinbase's embedded
// height (§3, "signature_script begins with the block height").
func encodeScriptHeight(height int32) []byte {
	if height == 0 {
		return []byte{0x00}
	}
	v := uint32(height)
	var buf []byte
	for v > 0 {
		buf = append(buf, byte(v&0xff))
		v >>= 8
	}
	if buf[len(buf)-1]&0x80 != 0 {
		buf = append(buf, 0x00)
	}
	return buf
}

// CoinbaseHeightScript returns a signature_script prefix embedding height
// followed by extraNonce, suitable for use as a coinbase input's
// signature_script (§4.8 template assembly).
func CoinbaseHeightScript(height int32, extraNonce uint64) []byte {
	heightBytes := encodeScriptHeight(height)
	script := append([]byte{byte(len(heightBytes))}, heightBytes...)

	extraBuf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		extraBuf[i] = byte(extraNonce >> uint(8*i))
	}
	script = append(script, byte(len(extraBuf)))
	script = append(script, extraBuf...)
	return script
}

// ExtractCoinbaseHeight parses the block height embedded at the start of a
// coinbase transaction's signature_script.
func ExtractCoinbaseHeight(tx *wire.MsgTx) (int32, error) {
	if !IsCoinBaseTx(tx) {
		return 0, ruleError(ErrBadCoinbase, "ExtractCoinbaseHeight called on non-coinbase transaction")
	}
	script := tx.TxIn[0].SignatureScript
	if len(script) < 1 {
		return 0, ruleError(ErrBadCoinbaseHeight, "coinbase signature_script is empty")
	}
	length := int(script[0])
	if len(script) < 1+length {
		return 0, ruleError(ErrBadCoinbaseHeight, "coinbase height push is truncated")
	}
	data := script[1 : 1+length]

	var v uint32
	for i, b := range data {
		v |= uint32(b) << uint(8*i)
	}
	return int32(v), nil
}

// CheckSerializedHeight verifies that a coinbase's embedded height matches
// the block's actual chain height (a BIP-34-style supplement to §4.5 item
// 6; genesis is exempt since it predates this convention in every
// Bitcoin-derived implementation).
func CheckSerializedHeight(tx *wire.MsgTx, wantHeight int32) error {
	if wantHeight == 0 {
		return nil
	}
	gotHeight, err := ExtractCoinbaseHeight(tx)
	if err != nil {
		return err
	}
	if gotHeight != wantHeight {
		return ruleError(ErrBadCoinbaseHeight, "coinbase height does not match block height")
	}
	return nil
}

// signatureMessage returns the ASCII "<hex DER sig> <hex compressed
// pubkey>" encoding used as a non-coinbase input's signature_script
// (§4.6).
func signatureMessage(sig, pubkey []byte) []byte {
	return []byte(hex.EncodeToString(sig) + " " + hex.EncodeToString(pubkey))
}

// parseSignatureScript splits a §4.6-format signature_script into its DER
// signature and public key components.
func parseSignatureScript(script []byte) (sig, pubkey []byte, err error) {
	parts := strings.Fields(string(script))
	if len(parts) != 2 {
		return nil, nil, ruleError(ErrBadSignature, "malformed signature_script")
	}
	sig, err = hex.DecodeString(parts[0])
	if err != nil {
		return nil, nil, ruleError(ErrBadSignature, "signature is not valid hex")
	}
	pubkey, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, ruleError(ErrBadSignature, "public key is not valid hex")
	}
	return sig, pubkey, nil
}

// signingBytes returns the canonical serialization both SignInput and
// VerifyInputSignature sign/verify over: tx with every input's
// signature_script cleared, per §4.6's "no per-input substitution" —
// a signature must cover the same bytes regardless of whether any
// signature_script (including its own) has been populated yet.
func signingBytes(tx *wire.MsgTx) ([]byte, error) {
	clone := tx.Copy()
	for _, in := range clone.TxIn {
		in.SignatureScript = nil
	}
	return clone.Bytes()
}

// VerifyInputSignature checks one non-coinbase input's signature against
// the UTXO it claims to spend, per §4.6: hash160(pubkey) must equal the
// UTXO's pubkey_script, and the signature must verify over
// double_sha256(serialize(tx)) with every signature_script cleared — the
// whole transaction, not a per-input substitution.
func VerifyInputSignature(tx *wire.MsgTx, in *wire.TxIn, entry *utxo.Entry) error {
	sig, pubkeyBytes, err := parseSignatureScript(in.SignatureScript)
	if err != nil {
		return err
	}

	if !bytes.Equal(chainhash.Hash160(pubkeyBytes), entry.PkScript) {
		return ruleError(ErrBadSignature, "public key does not match the consumed output's pubkey_script")
	}

	pub, err := keys.DecodePublicKey(pubkeyBytes)
	if err != nil {
		return ruleError(ErrBadSignature, "malformed public key")
	}

	txBytes, err := signingBytes(tx)
	if err != nil {
		return ruleError(ErrBadSignature, "unable to serialize transaction for signature check")
	}
	if !keys.Verify(pub, txBytes, sig) {
		return ruleError(ErrBadSignature, "signature verification failed")
	}
	return nil
}

// SignInput computes and attaches a §4.6-format signature_script for in's
// owning key. Callers (the wallet) use this; the validator only ever
// verifies.
func SignInput(tx *wire.MsgTx, in *wire.TxIn, priv *keys.PrivateKey) {
	pub := keys.DerivePublic(priv)
	pubBytes := keys.CompressedEncode(pub)

	txBytes, _ := signingBytes(tx)
	sig := keys.Sign(priv, txBytes)
	in.SignatureScript = signatureMessage(sig, pubBytes)
}

// CheckTransactionSanity performs the context-free structural checks of
// §4.5 item 7's first bullet: at least one input and one output, no
// coinbase-shaped input, no negative output, each output within
// MaxSatoshi, and the output sum within MaxSatoshi.
func CheckTransactionSanity(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return ruleError(ErrAmountOutOfRange, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 {
		return ruleError(ErrAmountOutOfRange, "transaction has no outputs")
	}
	for _, in := range tx.TxIn {
		if in.PreviousOutPoint.IsNull() {
			return ruleError(ErrBadCoinbase, "non-coinbase transaction has a coinbase-shaped input")
		}
	}

	var total int64
	for _, out := range tx.TxOut {
		if out.Value < 0 {
			return ruleError(ErrAmountOutOfRange, "transaction output value is negative")
		}
		if out.Value > chainutil.MaxSatoshi {
			return ruleError(ErrAmountOutOfRange, "transaction output value exceeds MaxSatoshi")
		}
		total += out.Value
		if total > chainutil.MaxSatoshi {
			return ruleError(ErrAmountOutOfRange, "transaction output sum exceeds MaxSatoshi")
		}
	}
	return nil
}

// ValidateTransaction performs the full contextual checks of §4.5 item 7
// against snapshot, mutating it in place (removing spent outputs, adding
// this transaction's own outputs) so later transactions in the same block
// observe the effects of earlier ones. It returns the transaction's fee
// (sum of inputs minus sum of outputs). If undo is non-nil, every mutation
// is appended to it in order so a caller can later reverse exactly this
// call's effect on snapshot via undo's actions, even when a later action
// in the same undo log re-spends one of this call's own outputs.
func ValidateTransaction(tx *wire.MsgTx, height int32, snapshot *utxo.Set, coinbaseMaturity int32, undo *blockUndo) (int64, error) {
	if err := CheckTransactionSanity(tx); err != nil {
		return 0, err
	}

	var inputTotal int64
	for _, in := range tx.TxIn {
		entry := snapshot.Get(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if entry == nil {
			return 0, ruleError(ErrInputMissing, "input references an output absent from the UTXO set")
		}
		if entry.IsCoinBase && height-entry.BlockHeight < coinbaseMaturity {
			return 0, ruleError(ErrCoinbaseMaturity, "input spends an immature coinbase output")
		}
		if err := VerifyInputSignature(tx, in, entry); err != nil {
			return 0, err
		}
		inputTotal += entry.Value
	}

	var outputTotal int64
	for _, out := range tx.TxOut {
		outputTotal += out.Value
	}
	if inputTotal < outputTotal {
		return 0, ruleError(ErrAmountOutOfRange, "transaction outputs exceed inputs")
	}
	fee := inputTotal - outputTotal

	for _, in := range tx.TxIn {
		removed := snapshot.Remove(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		if undo != nil {
			undo.recordSpent(in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index, removed)
		}
	}
	txid := tx.Hash()
	for i, out := range tx.TxOut {
		snapshot.Add(txid, uint32(i), &utxo.Entry{
			Value:       out.Value,
			PkScript:    out.PkScript,
			BlockHeight: height,
			IsCoinBase:  false,
		})
		if undo != nil {
			undo.recordCreated(txid, uint32(i))
		}
	}
	return fee, nil
}

// NextRequiredDifficulty computes the difficulty_bits required for the
// block following a chain whose tip has oldBits and whose most recent
// AdjustmentInterval window spans [firstTimestamp, lastTimestamp], per
// §4.3/§4.7. heightOfNewBlock is the height of the block being produced,
// not its parent.
func NextRequiredDifficulty(heightOfNewBlock int32, oldBits uint32, firstTimestamp, lastTimestamp int64, p *chaincfg.Params) uint32 {
	if heightOfNewBlock == 0 {
		return p.GenesisBits
	}
	if heightOfNewBlock%p.AdjustmentInterval != 0 {
		return oldBits
	}
	return calcNextRequiredDifficulty(oldBits, firstTimestamp, lastTimestamp, p)
}
