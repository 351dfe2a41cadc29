package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, 1 << 63}
	for _, v := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, v))
		require.Equal(t, VarIntSize(v), buf.Len(), "value %d", v)

		got, err := ReadVarInt(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestReadVarIntRejectsNonCanonicalEncoding(t *testing.T) {
	// 0xfd followed by a u16 of 5 should have been written as a single byte.
	buf := bytes.NewReader([]byte{0xfd, 0x05, 0x00})
	_, err := ReadVarInt(buf)
	require.Error(t, err)
}

func TestUint32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint32(&buf, 0xdeadbeef))
	got, err := ReadUint32(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), got)
}

func TestInt64RoundTripPreservesSign(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInt64(&buf, -12345))
	got, err := ReadInt64(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(-12345), got)
}
