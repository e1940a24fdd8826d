package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// CompressChunk deflates the chunk's raw little-endian layout into a zlib stream.
func CompressChunk(c *chunk.Chunk) ([]byte, error) {
	raw, err := c.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress chunk: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zlib writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DecompressChunk inflates data produced by CompressChunk. The inflated size
// must be exactly chunk.ByteSize.
func DecompressChunk(data []byte) (*chunk.Chunk, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(io.LimitReader(zr, chunk.ByteSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompress chunk: %w", err)
	}
	if len(raw) != chunk.ByteSize {
		return nil, fmt.Errorf("decompressed chunk is %d bytes, want %d", len(raw), chunk.ByteSize)
	}

	c := chunk.New()
	if err := c.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return c, nil
}
