package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Capacity is the fixed size of every package buffer. A frame on the wire never
// carries more than Capacity payload bytes.
const Capacity = 1024

var (
	ErrBufferFull      = errors.New("package buffer full")
	ErrBufferUnderflow = errors.New("package buffer underflow")
	ErrFrameTooLarge   = errors.New("frame exceeds package capacity")
	ErrStringTooLong   = errors.New("string longer than 255 bytes")
)

// Buffer is a fixed-capacity package buffer. Writes append at the end of the
// payload; reads consume from a cursor that Rewind resets. It never grows.
type Buffer struct {
	data   [Capacity]byte
	size   int
	cursor int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Reset empties the buffer for a new package.
func (b *Buffer) Reset() {
	b.size = 0
	b.cursor = 0
}

// Rewind moves the read cursor back to the start of the payload.
func (b *Buffer) Rewind() {
	b.cursor = 0
}

// Len returns the payload size.
func (b *Buffer) Len() int { return b.size }

// Free returns how many more bytes can be written.
func (b *Buffer) Free() int { return Capacity - b.size }

// Unread returns how many payload bytes remain past the cursor.
func (b *Buffer) Unread() int { return b.size - b.cursor }

// Payload returns the written bytes. The slice aliases the buffer.
func (b *Buffer) Payload() []byte { return b.data[:b.size] }

func (b *Buffer) grow(n int) ([]byte, error) {
	if b.size+n > Capacity {
		return nil, ErrBufferFull
	}
	p := b.data[b.size : b.size+n]
	b.size += n
	return p, nil
}

func (b *Buffer) next(n int) ([]byte, error) {
	if b.cursor+n > b.size {
		return nil, ErrBufferUnderflow
	}
	p := b.data[b.cursor : b.cursor+n]
	b.cursor += n
	return p, nil
}

func (b *Buffer) WriteU8(v uint8) error {
	p, err := b.grow(1)
	if err != nil {
		return err
	}
	p[0] = v
	return nil
}

func (b *Buffer) WriteU32(v uint32) error {
	p, err := b.grow(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p, v)
	return nil
}

func (b *Buffer) WriteI32(v int32) error { return b.WriteU32(uint32(v)) }

func (b *Buffer) WriteU64(v uint64) error {
	p, err := b.grow(8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p, v)
	return nil
}

func (b *Buffer) WriteI64(v int64) error { return b.WriteU64(uint64(v)) }

func (b *Buffer) WriteF32(v float32) error { return b.WriteU32(math.Float32bits(v)) }

// WriteBytes appends data verbatim.
func (b *Buffer) WriteBytes(data []byte) error {
	p, err := b.grow(len(data))
	if err != nil {
		return err
	}
	copy(p, data)
	return nil
}

// WriteShortString appends a u8 length followed by the bytes of s. Strings longer
// than 255 bytes return ErrStringTooLong.
func (b *Buffer) WriteShortString(s string) error {
	if len(s) > math.MaxUint8 {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if b.Free() < 1+len(s) {
		return ErrBufferFull
	}
	_ = b.WriteU8(uint8(len(s)))
	return b.WriteBytes([]byte(s))
}

func (b *Buffer) ReadU8() (uint8, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) ReadU32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *Buffer) ReadI32() (int32, error) {
	v, err := b.ReadU32()
	return int32(v), err
}

func (b *Buffer) ReadU64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (b *Buffer) ReadI64() (int64, error) {
	v, err := b.ReadU64()
	return int64(v), err
}

func (b *Buffer) ReadF32() (float32, error) {
	v, err := b.ReadU32()
	return math.Float32frombits(v), err
}

// ReadBytes fills dst from the cursor.
func (b *Buffer) ReadBytes(dst []byte) error {
	p, err := b.next(len(dst))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// ReadShortString reads a u8 length and that many bytes.
func (b *Buffer) ReadShortString() (string, error) {
	n, err := b.ReadU8()
	if err != nil {
		return "", err
	}
	p, err := b.next(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// Rest consumes and returns every unread byte. The slice aliases the buffer.
func (b *Buffer) Rest() []byte {
	p := b.data[b.cursor:b.size]
	b.cursor = b.size
	return p
}

// WriteTo sends the payload as one frame: a varint length followed by the bytes.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var frame [5 + Capacity]byte
	n := PutVarInt(frame[:], int32(b.size))
	n += copy(frame[n:], b.data[:b.size])
	written, err := w.Write(frame[:n])
	if err != nil {
		return int64(written), fmt.Errorf("write frame: %w", err)
	}
	return int64(written), nil
}

// ReadFrom replaces the payload with the next frame from r and rewinds.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	b.Reset()
	length, n, err := ReadVarInt(r)
	if err != nil {
		return int64(n), fmt.Errorf("read frame length: %w", err)
	}
	if length < 1 {
		return int64(n), fmt.Errorf("frame length too small: %d", length)
	}
	if length > Capacity {
		return int64(n), fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	read, err := io.ReadFull(r, b.data[:length])
	if err != nil {
		return int64(n + read), fmt.Errorf("read frame payload: %w", err)
	}
	b.size = int(length)
	return int64(n + read), nil
}
