package protocol

import (
	"errors"
	"io"
)

// MaxVarIntLen is the longest encoding of a 32-bit varint.
const MaxVarIntLen = 5

var ErrVarIntTooLong = errors.New("varint longer than 5 bytes")

// ReadVarInt decodes a frame length prefix: seven bits per byte, least
// significant group first, high bit set on every byte but the last. It returns
// the value and how many bytes it consumed.
func ReadVarInt(r io.Reader) (int32, int, error) {
	var (
		result uint32
		one    [1]byte
	)
	for n := 1; n <= MaxVarIntLen; n++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, n - 1, err
		}
		result |= uint32(one[0]&0x7F) << (7 * (n - 1))
		if one[0]&0x80 == 0 {
			return int32(result), n, nil
		}
	}
	return 0, MaxVarIntLen, ErrVarIntTooLong
}

// PutVarInt encodes value into buf, which must hold MaxVarIntLen bytes, and
// returns the encoded length.
func PutVarInt(buf []byte, value int32) int {
	v := uint32(value)
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	return n + 1
}

// VarIntSize returns the encoded length of value.
func VarIntSize(value int32) int {
	v := uint32(value)
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
