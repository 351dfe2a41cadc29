// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides a fee-ordered pool of unmined transactions.

A key responsibility of a node is mining user-generated transactions into
blocks. In order to facilitate this, the mining process relies on having a
readily-available source of transactions to include in a block that is
being solved.

At a high level, this package satisfies that requirement by providing an
in-memory pool of transactions, keyed by txid, with a secondary index
ordered by descending fee rate (satoshis per serialized byte). The pool
does not itself perform consensus validation; it only enforces the
acceptance rules described below.

# Feature Overview

  - Maintain a pool of transactions
    1. Reject duplicate txids already present in the pool
    2. Reject coinbase transactions
    3. Reject a transaction that spends an outpoint some existing pool
    member already spends (first-seen wins over the newcomer)
  - Fee-rate-ordered selection for block template assembly, with ties
    broken by first-seen order within a session
  - Purge of confirmed entries when a block is connected, and re-queue of
    unwound transactions on a reorg

# Errors

Errors returned by this package are of type mempool.TxRuleError, which
indicates a mempool-only acceptance rule violation as opposed to a
consensus rule (blockchain.RuleError). Accept returns one directly rather
than a wrapper type, since this package does not call into the consensus
validator itself.
*/
package mempool
