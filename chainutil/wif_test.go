package chainutil

import (
	"testing"

	"github.com/coinnode/node/encoding"
	"github.com/stretchr/testify/require"
)

func privKeyBytes() []byte {
	priv := make([]byte, 32)
	for i := range priv {
		priv[i] = byte(i + 1)
	}
	return priv
}

func TestEncodeDecodeWIFRoundTripCompressed(t *testing.T) {
	priv := privKeyBytes()
	encoded, err := EncodeWIF(MainNetWIFVersion, priv, true)
	require.NoError(t, err)

	wif, err := DecodeWIF(encoded)
	require.NoError(t, err)
	require.Equal(t, MainNetWIFVersion, wif.Version)
	require.Equal(t, priv, wif.PrivKey[:])
	require.True(t, wif.Compressed)
}

func TestEncodeDecodeWIFRoundTripUncompressed(t *testing.T) {
	priv := privKeyBytes()
	encoded, err := EncodeWIF(TestNetWIFVersion, priv, false)
	require.NoError(t, err)

	wif, err := DecodeWIF(encoded)
	require.NoError(t, err)
	require.False(t, wif.Compressed)
}

func TestEncodeWIFRejectsWrongKeyLength(t *testing.T) {
	_, err := EncodeWIF(MainNetWIFVersion, []byte{0x01}, true)
	require.ErrorIs(t, err, ErrMalformedWIF)
}

func TestDecodeWIFRejectsBadCompressionFlag(t *testing.T) {
	priv := privKeyBytes()
	payload := append(priv, 0x02)
	bad := encoding.Base58CheckEncode(MainNetWIFVersion, payload)
	_, err := DecodeWIF(bad)
	require.ErrorIs(t, err, ErrMalformedWIF)
}
