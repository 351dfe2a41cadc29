// Package merkle builds Merkle roots and per-leaf inclusion proofs over
// transaction hashes, following the pairwise double-sha256 combination rule
// used throughout the wider Bitcoin lineage.
package merkle

import (
	"bytes"
	"errors"

	"github.com/coinnode/node/chainhash"
)

// ErrLeafOutOfRange is returned by GenerateProof for an index outside the
// leaf set.
var ErrLeafOutOfRange = errors.New("merkle: leaf index out of range")

// Root computes the Merkle root of leaves (internal, non-reversed byte
// order). An empty list yields the all-zeros hash; a single leaf is
// returned unchanged; otherwise each level pairs adjacent nodes
// (duplicating the last node if the level has an odd count) and combines
// them with double-sha256 until one node remains.
func Root(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = combine(level[2*i], level[2*i+1])
		}
		level = next
	}

	return level[0]
}

func combine(left, right chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.DoubleHashH(buf)
}

// ProofStep is one level of an inclusion proof: the sibling hash at that
// level, and whether the sibling sits on the right (so the running hash
// combines as running‖sibling) or on the left (sibling‖running).
type ProofStep struct {
	Sibling     chainhash.Hash
	SiblingIsLeft bool
}

// Proof is an ordered sequence of ProofStep, leaf level first, that
// reconstructs the Merkle root from a single leaf hash.
type Proof struct {
	Steps []ProofStep
}

// GenerateProof builds the inclusion proof for leaves[index].
func GenerateProof(leaves []chainhash.Hash, index int) (Proof, error) {
	if index < 0 || index >= len(leaves) {
		return Proof{}, ErrLeafOutOfRange
	}
	if len(leaves) == 1 {
		return Proof{}, nil
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)
	idx := index

	var proof Proof
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		var step ProofStep
		if idx%2 == 0 {
			step = ProofStep{Sibling: level[idx+1], SiblingIsLeft: false}
		} else {
			step = ProofStep{Sibling: level[idx-1], SiblingIsLeft: true}
		}
		proof.Steps = append(proof.Steps, step)

		next := make([]chainhash.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = combine(level[2*i], level[2*i+1])
		}
		level = next
		idx /= 2
	}

	return proof, nil
}

// VerifyProof recomputes the root from leaf using proof and reports whether
// it matches root.
func VerifyProof(leaf chainhash.Hash, proof Proof, root chainhash.Hash) bool {
	running := leaf
	for _, step := range proof.Steps {
		if step.SiblingIsLeft {
			running = combine(step.Sibling, running)
		} else {
			running = combine(running, step.Sibling)
		}
	}
	return bytes.Equal(running[:], root[:])
}
