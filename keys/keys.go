// Package keys implements the key-oracle contract: secp256k1 keypair
// generation, DER-encoded ECDSA signing/verification over double-sha256
// message digests, and compressed public-key (de)serialization. Every
// other package treats signing as an opaque capability through this
// package rather than reaching for the curve library directly.
package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/coinnode/node/chainhash"
)

// ErrInvalidPubKeyLen is returned by DecodePublicKey for byte slices that
// are neither 33 (compressed) nor 65 (uncompressed) bytes long.
var ErrInvalidPubKeyLen = errors.New("keys: public key must be 33 or 65 bytes")

// PrivateKey wraps a secp256k1 scalar.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 curve point.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// GeneratePrivateKey returns a new, randomly generated private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes constructs a private key from its raw 32-byte scalar.
func PrivateKeyFromBytes(b []byte) *PrivateKey {
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}
}

// Bytes returns the raw 32-byte private scalar.
func (p *PrivateKey) Bytes() []byte {
	b := p.key.Serialize()
	return b[:]
}

// DerivePublic returns the public key deterministically derived from priv,
// per the key-oracle contract's derive_public operation.
func DerivePublic(priv *PrivateKey) *PublicKey {
	return &PublicKey{key: priv.key.PubKey()}
}

// CompressedEncode returns the 33-byte compressed SEC1 encoding of pub.
func CompressedEncode(pub *PublicKey) []byte {
	return pub.key.SerializeCompressed()
}

// DecodePublicKey parses a 33-byte compressed or 65-byte uncompressed SEC1
// public key.
func DecodePublicKey(b []byte) (*PublicKey, error) {
	switch len(b) {
	case 33, 65:
	default:
		return nil, ErrInvalidPubKeyLen
	}
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key}, nil
}

// Sign signs double_sha256(message) with priv and returns a DER-encoded
// ECDSA signature, per §4.6 and §6.4's whole-message SIGHASH-ALL-style
// convention.
func Sign(priv *PrivateKey, message []byte) []byte {
	digest := chainhash.DoubleHashB(message)
	sig := ecdsa.Sign(priv.key, digest)
	return sig.Serialize()
}

// Verify verifies a DER-encoded ECDSA signature over double_sha256(message)
// against pub.
func Verify(pub *PublicKey, message []byte, sig []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := chainhash.DoubleHashB(message)
	return parsed.Verify(digest, pub.key)
}
