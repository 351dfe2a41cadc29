// Package encoding implements the binary encoding primitives named in the
// wire format: little-endian integers, Bitcoin-style varints, and
// Base58/Base58Check.
package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PutUint32 writes v to buf (which must be at least 4 bytes) in little-endian
// order.
func PutUint32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// Uint32 reads a little-endian uint32 from buf.
func Uint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// WriteUint32 writes v to w as 4 little-endian bytes.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads 4 little-endian bytes from r as a uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteUint64 writes v to w as 8 little-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 little-endian bytes from r as a uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteInt64 writes v to w as 8 little-endian bytes (two's complement).
func WriteInt64(w io.Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}

// ReadInt64 reads 8 little-endian bytes from r as an int64.
func ReadInt64(r io.Reader) (int64, error) {
	u, err := ReadUint64(r)
	return int64(u), err
}

// WriteVarInt writes x to w using the Bitcoin compact-size encoding:
// values below 0xfd encode as a single byte; values up to 0xffff are
// prefixed with 0xfd and a LE u16; up to 0xffffffff prefixed with 0xfe and a
// LE u32; otherwise prefixed with 0xff and a LE u64.
func WriteVarInt(w io.Writer, x uint64) error {
	switch {
	case x < 0xfd:
		_, err := w.Write([]byte{byte(x)})
		return err
	case x <= 0xffff:
		if _, err := w.Write([]byte{0xfd}); err != nil {
			return err
		}
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(x))
		_, err := w.Write(buf[:])
		return err
	case x <= 0xffffffff:
		if _, err := w.Write([]byte{0xfe}); err != nil {
			return err
		}
		return WriteUint32(w, uint32(x))
	default:
		if _, err := w.Write([]byte{0xff}); err != nil {
			return err
		}
		return WriteUint64(w, x)
	}
}

// ReadVarInt reads a Bitcoin compact-size encoded integer from r.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint16(buf[:])
		if v < 0xfd {
			return 0, fmt.Errorf("non-canonical varint encoding for value %d", v)
		}
		return uint64(v), nil
	case 0xfe:
		v, err := ReadUint32(r)
		if err != nil {
			return 0, err
		}
		if v <= 0xffff {
			return 0, fmt.Errorf("non-canonical varint encoding for value %d", v)
		}
		return uint64(v), nil
	case 0xff:
		v, err := ReadUint64(r)
		if err != nil {
			return 0, err
		}
		if v <= 0xffffffff {
			return 0, fmt.Errorf("non-canonical varint encoding for value %d", v)
		}
		return v, nil
	default:
		return uint64(prefix[0]), nil
	}
}

// VarIntSize returns the number of bytes required to encode x as a varint.
func VarIntSize(x uint64) int {
	switch {
	case x < 0xfd:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
