package chunk

import (
	"encoding/binary"
	"fmt"
)

// Chunk dimensions in blocks.
const (
	Width  = 16
	Height = 128
	Length = 16

	// Volume is the number of blocks in one chunk.
	Volume = Width * Height * Length
	// ByteSize is the size of the raw block array: one little-endian uint32 per block.
	ByteSize = Volume * 4
)

// Air is the empty block type.
const Air uint32 = 0

// Chunk holds the block types of one Width×Height×Length column.
// Index = (x*Height + y)*Length + z, matching the on-disk layout.
type Chunk struct {
	Blocks [Volume]uint32
}

// New returns an all-air chunk.
func New() *Chunk {
	return &Chunk{}
}

func index(x, y, z int) int {
	return (x*Height+y)*Length + z
}

// GetBlock returns the block type at local coordinates.
// x, z must be in [0,16), y must be in [0,128).
func (c *Chunk) GetBlock(x, y, z int) uint32 {
	return c.Blocks[index(x, y, z)]
}

// SetBlock sets the block type at local coordinates.
func (c *Chunk) SetBlock(x, y, z int, id uint32) {
	c.Blocks[index(x, y, z)] = id
}

// Clone returns a deep copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	cp := *c
	return &cp
}

// MarshalBinary encodes the raw block array as ByteSize little-endian bytes.
func (c *Chunk) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(make([]byte, 0, ByteSize))
}

// AppendBinary appends the raw block array to dst.
func (c *Chunk) AppendBinary(dst []byte) ([]byte, error) {
	for _, b := range c.Blocks {
		dst = binary.LittleEndian.AppendUint32(dst, b)
	}
	return dst, nil
}

// UnmarshalBinary decodes a raw block array. data must be exactly ByteSize bytes.
func (c *Chunk) UnmarshalBinary(data []byte) error {
	if len(data) != ByteSize {
		return fmt.Errorf("chunk data is %d bytes, want %d", len(data), ByteSize)
	}
	for i := range c.Blocks {
		c.Blocks[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return nil
}
