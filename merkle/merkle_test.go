package merkle

import (
	"testing"

	"github.com/coinnode/node/chainhash"
	"github.com/stretchr/testify/require"
)

func leaf(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestRootEmptyIsZeroHash(t *testing.T) {
	require.Equal(t, chainhash.Hash{}, Root(nil))
}

func TestRootSingleLeafIsUnchanged(t *testing.T) {
	l := leaf(0x42)
	require.Equal(t, l, Root([]chainhash.Hash{l}))
}

func TestRootDuplicatesLastNodeOnOddCount(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2), leaf(3)}
	want := combine(combine(leaves[0], leaves[1]), combine(leaves[2], leaves[2]))
	require.Equal(t, want, Root(leaves))
}

func TestRootIsOrderSensitive(t *testing.T) {
	a := Root([]chainhash.Hash{leaf(1), leaf(2)})
	b := Root([]chainhash.Hash{leaf(2), leaf(1)})
	require.NotEqual(t, a, b)
}

func TestGenerateProofRejectsOutOfRangeIndex(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2)}
	_, err := GenerateProof(leaves, 2)
	require.ErrorIs(t, err, ErrLeafOutOfRange)
}

func TestProofRoundTripsForEveryLeaf(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2), leaf(3), leaf(4), leaf(5)}
	root := Root(leaves)

	for i, l := range leaves {
		proof, err := GenerateProof(leaves, i)
		require.NoError(t, err)
		require.True(t, VerifyProof(l, proof, root), "leaf %d must verify against the root", i)
	}
}

func TestVerifyProofRejectsWrongLeaf(t *testing.T) {
	leaves := []chainhash.Hash{leaf(1), leaf(2), leaf(3), leaf(4)}
	root := Root(leaves)
	proof, err := GenerateProof(leaves, 0)
	require.NoError(t, err)
	require.False(t, VerifyProof(leaf(9), proof, root))
}

func TestSingleLeafProofIsEmpty(t *testing.T) {
	leaves := []chainhash.Hash{leaf(7)}
	proof, err := GenerateProof(leaves, 0)
	require.NoError(t, err)
	require.Empty(t, proof.Steps)
	require.True(t, VerifyProof(leaves[0], proof, Root(leaves)))
}
