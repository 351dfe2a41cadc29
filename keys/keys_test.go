package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := DerivePublic(priv)

	msg := []byte("spend this output")
	sig := Sign(priv, msg)
	require.True(t, Verify(pub, msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := DerivePublic(priv)

	sig := Sign(priv, []byte("original"))
	require.False(t, Verify(pub, []byte("tampered"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv1, err := GeneratePrivateKey()
	require.NoError(t, err)
	priv2, err := GeneratePrivateKey()
	require.NoError(t, err)

	msg := []byte("spend this output")
	sig := Sign(priv1, msg)
	require.False(t, Verify(DerivePublic(priv2), msg, sig))
}

func TestPrivateKeyFromBytesRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	restored := PrivateKeyFromBytes(priv.Bytes())
	require.Equal(t, priv.Bytes(), restored.Bytes())
	require.Equal(t, CompressedEncode(DerivePublic(priv)), CompressedEncode(DerivePublic(restored)))
}

func TestCompressedEncodeDecodeRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := DerivePublic(priv)

	decoded, err := DecodePublicKey(CompressedEncode(pub))
	require.NoError(t, err)
	require.Equal(t, CompressedEncode(pub), CompressedEncode(decoded))
}

func TestDecodePublicKeyRejectsWrongLength(t *testing.T) {
	_, err := DecodePublicKey([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, ErrInvalidPubKeyLen)
}
