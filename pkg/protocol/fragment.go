package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// MaxCompressedChunk bounds the declared size of a compressed chunk transfer.
// It covers the worst-case zlib expansion of incompressible data.
const MaxCompressedChunk = chunk.ByteSize + chunk.ByteSize/64 + 64

const (
	startPayload = Capacity - 5 // code + u32 total
	partPayload  = Capacity - 1 // code
)

var ErrFragmentOverflow = errors.New("chunk fragment exceeds declared size")

// WriteChunkData sends data as one ChunkDataStart frame followed by as many
// ChunkDataPart frames as needed. b is used as scratch space.
func WriteChunkData(w io.Writer, b *Buffer, data []byte) error {
	if len(data) > MaxCompressedChunk {
		return fmt.Errorf("compressed chunk of %d bytes exceeds %d", len(data), MaxCompressedChunk)
	}

	b.Reset()
	_ = b.WriteU8(ResponseChunkDataStart)
	_ = b.WriteU32(uint32(len(data)))
	n := min(len(data), startPayload)
	_ = b.WriteBytes(data[:n])
	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("send chunk data start: %w", err)
	}

	for sent := n; sent < len(data); sent += n {
		b.Reset()
		_ = b.WriteU8(ResponseChunkDataPart)
		n = min(len(data)-sent, partPayload)
		_ = b.WriteBytes(data[sent : sent+n])
		if _, err := b.WriteTo(w); err != nil {
			return fmt.Errorf("send chunk data part: %w", err)
		}
	}
	return nil
}

// Reassembler collects the fragments of one chunk transfer into a buffer sized
// to the declared total.
type Reassembler struct {
	data   []byte
	filled int
}

// NewReassembler prepares for a transfer of total bytes.
func NewReassembler(total uint32) (*Reassembler, error) {
	if total == 0 || total > MaxCompressedChunk {
		return nil, fmt.Errorf("declared chunk size %d out of range", total)
	}
	return &Reassembler{data: make([]byte, total)}, nil
}

// Append copies a fragment. A fragment that would run past the declared total
// is rejected and nothing is copied.
func (r *Reassembler) Append(fragment []byte) error {
	if r.filled+len(fragment) > len(r.data) {
		return fmt.Errorf("%w: %d + %d > %d", ErrFragmentOverflow, r.filled, len(fragment), len(r.data))
	}
	r.filled += copy(r.data[r.filled:], fragment)
	return nil
}

// Done reports whether every declared byte has arrived.
func (r *Reassembler) Done() bool { return r.filled == len(r.data) }

// Bytes returns the assembled data.
func (r *Reassembler) Bytes() []byte { return r.data[:r.filled] }

// ReadChunkData completes a transfer whose ChunkDataStart package is in b with
// the cursor just past the code byte. ChunkDataPart frames are read from r into b.
func ReadChunkData(r io.Reader, b *Buffer) ([]byte, error) {
	total, err := b.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("read chunk size: %w", err)
	}
	asm, err := NewReassembler(total)
	if err != nil {
		return nil, err
	}
	if err := asm.Append(b.Rest()); err != nil {
		return nil, err
	}

	for !asm.Done() {
		if _, err := b.ReadFrom(r); err != nil {
			return nil, err
		}
		code, _ := b.ReadU8()
		if code != ResponseChunkDataPart {
			return nil, fmt.Errorf("expected %s, got %s", ResponseName(ResponseChunkDataPart), ResponseName(code))
		}
		if err := asm.Append(b.Rest()); err != nil {
			return nil, err
		}
	}
	return asm.Bytes(), nil
}
