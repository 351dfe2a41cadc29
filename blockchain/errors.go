// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a specific consensus-rule violation (§6.6).
type ErrorCode int

const (
	// ErrInvalidProofOfWork indicates the block hash does not satisfy the
	// target implied by its difficulty_bits.
	ErrInvalidProofOfWork ErrorCode = iota

	// ErrDoesNotConnect indicates the block's previous_block_hash names no
	// known block and isn't the genesis sentinel.
	ErrDoesNotConnect

	// ErrMerkleMismatch indicates the recomputed merkle root disagrees
	// with the header's merkle_root.
	ErrMerkleMismatch

	// ErrBadTimestamp indicates the header timestamp fails the
	// median-time-past or future-time check.
	ErrBadTimestamp

	// ErrBlockTooLarge indicates the serialized block exceeds
	// MaxBlockSize.
	ErrBlockTooLarge

	// ErrBadCoinbase indicates transaction 0 is not a well-formed
	// coinbase, another transaction also looks like one, or the coinbase
	// output sum exceeds the allowed subsidy-plus-fees bound.
	ErrBadCoinbase

	// ErrCoinbaseMaturity indicates a transaction spends a coinbase
	// output before it has reached the required number of confirmations.
	ErrCoinbaseMaturity

	// ErrAmountOutOfRange indicates a negative, zero-input/output, or
	// over-MaxSatoshi amount appeared where the rules forbid it.
	ErrAmountOutOfRange

	// ErrInputMissing indicates a transaction input references an
	// outpoint absent from the UTXO snapshot being validated against.
	ErrInputMissing

	// ErrBadSignature indicates an input's signature failed verification
	// against the UTXO it claims to spend.
	ErrBadSignature

	// ErrDuplicateTxid indicates two transactions in the same block share
	// a txid.
	ErrDuplicateTxid

	// ErrBadDifficulty indicates the header's difficulty_bits does not
	// equal the value §4.3/§4.7 compute for this height.
	ErrBadDifficulty

	// ErrDuplicateBlock indicates a block already known to the chain was
	// submitted again; add_block treats this as a silent no-op rather
	// than a validation failure, but the code is still named for callers
	// that want to distinguish the case.
	ErrDuplicateBlock

	// ErrBadCoinbaseHeight indicates the coinbase signature script's
	// BIP-34 height push disagrees with the block's actual chain height.
	ErrBadCoinbaseHeight

	// ErrMissingTransactions indicates a block has no transactions at
	// all, so it cannot possibly hold the required coinbase.
	ErrMissingTransactions
)

var errorCodeNames = map[ErrorCode]string{
	ErrInvalidProofOfWork:  "InvalidProofOfWork",
	ErrDoesNotConnect:      "DoesNotConnect",
	ErrMerkleMismatch:      "MerkleMismatch",
	ErrBadTimestamp:        "BadTimestamp",
	ErrBlockTooLarge:       "BlockTooLarge",
	ErrBadCoinbase:         "BadCoinbase",
	ErrCoinbaseMaturity:    "CoinbaseMaturity",
	ErrAmountOutOfRange:    "AmountOutOfRange",
	ErrInputMissing:        "InputMissing",
	ErrBadSignature:        "BadSignature",
	ErrDuplicateTxid:       "DuplicateTxid",
	ErrBadDifficulty:       "BadDifficulty",
	ErrDuplicateBlock:      "DuplicateBlock",
	ErrBadCoinbaseHeight:   "BadCoinbaseHeight",
	ErrMissingTransactions: "MissingTransactions",
}

// String returns the error code's name.
func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError identifies a rule violation; it carries both an ErrorCode
// callers can switch on and a human description of the offending entity.
// AddBlock reports a rejection by returning the RuleError to its caller.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// AssertError identifies an internal invariant violation: a bug, never a
// consequence of adversarial input. Code that panics with AssertError
// should only ever do so on inputs the caller was responsible for
// validating first (§7).
type AssertError string

// Error satisfies the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// NoCommonAncestorError is returned by reorg machinery when two chains
// share no ancestor at all (can only happen if one chain's genesis differs
// from the other's, which honest callers never construct).
type NoCommonAncestorError string

func (e NoCommonAncestorError) Error() string {
	return "no common ancestor: " + string(e)
}

// MiningCancelledError signals a miner run ended via cooperative
// cancellation rather than by finding a valid block. It is not a rule
// violation; callers should simply refresh their template and retry.
type MiningCancelledError struct{}

func (MiningCancelledError) Error() string {
	return "mining cancelled"
}
