package chainutil

import (
	"errors"
	"fmt"

	"github.com/coinnode/node/encoding"
)

// Address version bytes (§6.2).
const (
	MainNetP2PKHVersion byte = 0x00
	TestNetP2PKHVersion byte = 0x6F
)

// WIF version bytes (§6.3).
const (
	MainNetWIFVersion byte = 0x80
	TestNetWIFVersion byte = 0xEF
)

// ErrInvalidAddressHash is returned when a decoded Base58Check payload is
// not exactly 20 bytes (a hash160).
var ErrInvalidAddressHash = errors.New("chainutil: address payload must be a 20-byte hash160")

// Address is a P2PKH address: a network version byte plus the 20-byte
// hash160 of a compressed public key.
type Address struct {
	Version byte
	Hash160 [20]byte
}

// NewAddressPubKeyHash builds a P2PKH address for the given version and
// hash160.
func NewAddressPubKeyHash(version byte, hash160 []byte) (*Address, error) {
	if len(hash160) != 20 {
		return nil, ErrInvalidAddressHash
	}
	addr := &Address{Version: version}
	copy(addr.Hash160[:], hash160)
	return addr, nil
}

// EncodeAddress returns the Base58Check string form of addr, per §6.2:
// Base58Check(version, hash160(compressed_pubkey)).
func (a *Address) EncodeAddress() string {
	return encoding.Base58CheckEncode(a.Version, a.Hash160[:])
}

// String is equivalent to EncodeAddress.
func (a *Address) String() string {
	return a.EncodeAddress()
}

// DecodeAddress parses a Base58Check-encoded P2PKH address string.
func DecodeAddress(s string) (*Address, error) {
	ver, payload, err := encoding.Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if ver != MainNetP2PKHVersion && ver != TestNetP2PKHVersion {
		return nil, fmt.Errorf("chainutil: unrecognized address version 0x%02x", ver)
	}
	return NewAddressPubKeyHash(ver, payload)
}

// PayToAddrScript returns the P2PKH locking script for addr: the raw
// 20-byte hash160 (this module's simplified scripting model, §4.6, has no
// opcode wrapper — the script body IS the hash160 to match against).
func PayToAddrScript(addr *Address) []byte {
	out := make([]byte, 20)
	copy(out, addr.Hash160[:])
	return out
}
