package chainutil

import (
	"errors"

	"github.com/coinnode/node/encoding"
)

// ErrMalformedWIF is returned when a decoded WIF payload is not a bare
// 32-byte key or a 32-byte key plus the single compression-flag byte.
var ErrMalformedWIF = errors.New("chainutil: malformed WIF payload")

// WIF is a Wallet Import Format encoding of a private key: §6.3.
type WIF struct {
	Version    byte
	PrivKey    [32]byte
	Compressed bool
}

// EncodeWIF returns the Base58Check string for priv under version ver,
// appending the 0x01 compression flag when compressed is true.
func EncodeWIF(ver byte, priv []byte, compressed bool) (string, error) {
	if len(priv) != 32 {
		return "", ErrMalformedWIF
	}
	payload := make([]byte, 0, 33)
	payload = append(payload, priv...)
	if compressed {
		payload = append(payload, 0x01)
	}
	return encoding.Base58CheckEncode(ver, payload), nil
}

// DecodeWIF parses a Base58Check WIF string.
func DecodeWIF(s string) (*WIF, error) {
	ver, payload, err := encoding.Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}

	w := &WIF{Version: ver}
	switch len(payload) {
	case 32:
		copy(w.PrivKey[:], payload)
	case 33:
		if payload[32] != 0x01 {
			return nil, ErrMalformedWIF
		}
		copy(w.PrivKey[:], payload[:32])
		w.Compressed = true
	default:
		return nil, ErrMalformedWIF
	}
	return w, nil
}
