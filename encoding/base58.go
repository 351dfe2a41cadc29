package encoding

import (
	"errors"
	"math/big"

	"github.com/coinnode/node/chainhash"
)

// base58Alphabet is the Bitcoin Base58 alphabet: the 10 digits, uppercase
// and lowercase letters, minus 0, O, I and l to avoid visual ambiguity.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	bigRadix  = big.NewInt(58)
	bigZero   = big.NewInt(0)
	decodeMap [256]int8
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range base58Alphabet {
		decodeMap[c] = int8(i)
	}
}

// ErrChecksumMismatch is returned by Base58CheckDecode when the trailing
// 4-byte checksum does not match the computed one.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrInvalidBase58Char is returned when decoding a string containing a byte
// outside the Base58 alphabet.
var ErrInvalidBase58Char = errors.New("invalid base58 character")

// ErrInvalidBase58Format is returned by Base58CheckDecode for inputs too
// short to contain a version byte and checksum.
var ErrInvalidBase58Format = errors.New("invalid base58check format")

// Base58Encode encodes b using the Bitcoin Base58 alphabet, preserving
// leading zero bytes as leading '1' characters.
func Base58Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)

	answer := make([]byte, 0, len(b)*138/100+1)
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		answer = append(answer, base58Alphabet[mod.Int64()])
	}

	for _, c := range b {
		if c != 0 {
			break
		}
		answer = append(answer, base58Alphabet[0])
	}

	for i, j := 0, len(answer)-1; i < j; i, j = i+1, j-1 {
		answer[i], answer[j] = answer[j], answer[i]
	}

	return string(answer)
}

// Base58Decode decodes a Base58-encoded string back into bytes, restoring
// leading zero bytes for each leading '1' character.
func Base58Decode(s string) ([]byte, error) {
	answer := big.NewInt(0)
	scratch := new(big.Int)
	for i := 0; i < len(s); i++ {
		d := decodeMap[s[i]]
		if d == -1 {
			return nil, ErrInvalidBase58Char
		}
		answer.Mul(answer, bigRadix)
		scratch.SetInt64(int64(d))
		answer.Add(answer, scratch)
	}

	decoded := answer.Bytes()
	numZeros := 0
	for numZeros < len(s) && s[numZeros] == base58Alphabet[0] {
		numZeros++
	}

	buf := make([]byte, numZeros+len(decoded))
	copy(buf[numZeros:], decoded)
	return buf, nil
}

// Base58CheckEncode encodes ver ‖ payload ‖ first4(double_sha256(ver ‖ payload))
// as a Base58 string.
func Base58CheckEncode(ver byte, payload []byte) string {
	b := make([]byte, 0, 1+len(payload)+4)
	b = append(b, ver)
	b = append(b, payload...)
	cksum := chainhash.DoubleHashB(b)
	b = append(b, cksum[:4]...)
	return Base58Encode(b)
}

// Base58CheckDecode decodes a Base58Check string, returning the version
// byte and payload. It fails with ErrChecksumMismatch if the trailing four
// bytes do not match the computed checksum.
func Base58CheckDecode(s string) (ver byte, payload []byte, err error) {
	decoded, err := Base58Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(decoded) < 5 {
		return 0, nil, ErrInvalidBase58Format
	}

	body := decoded[:len(decoded)-4]
	cksum := decoded[len(decoded)-4:]
	want := chainhash.DoubleHashB(body)
	for i := 0; i < 4; i++ {
		if cksum[i] != want[i] {
			return 0, nil, ErrChecksumMismatch
		}
	}

	return body[0], body[1:], nil
}
