package protocol

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

func noisyChunk(seed int64) *chunk.Chunk {
	r := rand.New(rand.NewSource(seed))
	c := chunk.New()
	for i := range c.Blocks {
		c.Blocks[i] = r.Uint32()
	}
	return c
}

func TestFragmentedTransfer(t *testing.T) {
	c := noisyChunk(1)
	data, err := CompressChunk(c)
	if err != nil {
		t.Fatalf("CompressChunk: %v", err)
	}
	if len(data) <= Capacity {
		t.Fatalf("compressed size %d fits one package; test needs fragmentation", len(data))
	}

	var wire bytes.Buffer
	if err := WriteChunkData(&wire, NewBuffer(), data); err != nil {
		t.Fatalf("WriteChunkData: %v", err)
	}

	b := NewBuffer()
	if _, err := b.ReadFrom(&wire); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if code, _ := b.ReadU8(); code != ResponseChunkDataStart {
		t.Fatalf("first frame code = %s, want chunk_data_start", ResponseName(code))
	}

	got, err := ReadChunkData(&wire, b)
	if err != nil {
		t.Fatalf("ReadChunkData: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("reassembled bytes differ")
	}
	if wire.Len() != 0 {
		t.Errorf("%d bytes left on the wire after transfer", wire.Len())
	}

	out, err := DecompressChunk(got)
	if err != nil {
		t.Fatalf("DecompressChunk: %v", err)
	}
	if out.Blocks != c.Blocks {
		t.Error("transferred chunk differs")
	}
}

func TestFragmentCount(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		frames int
	}{
		{"fits start", startPayload, 1},
		{"one part", startPayload + 1, 2},
		{"two parts", startPayload + partPayload + 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wire bytes.Buffer
			if err := WriteChunkData(&wire, NewBuffer(), make([]byte, tt.size)); err != nil {
				t.Fatalf("WriteChunkData: %v", err)
			}
			b := NewBuffer()
			frames := 0
			for wire.Len() > 0 {
				if _, err := b.ReadFrom(&wire); err != nil {
					t.Fatalf("ReadFrom: %v", err)
				}
				frames++
			}
			if frames != tt.frames {
				t.Errorf("frames = %d, want %d", frames, tt.frames)
			}
		})
	}
}

func TestReassemblerOverflow(t *testing.T) {
	asm, err := NewReassembler(10)
	if err != nil {
		t.Fatalf("NewReassembler: %v", err)
	}
	if err := asm.Append(make([]byte, 8)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := asm.Append(make([]byte, 3)); !errors.Is(err, ErrFragmentOverflow) {
		t.Errorf("Append past total = %v, want ErrFragmentOverflow", err)
	}
	if asm.Done() {
		t.Error("Done() after rejected fragment")
	}
	if err := asm.Append(make([]byte, 2)); err != nil || !asm.Done() {
		t.Errorf("final Append = %v, Done() = %v", err, asm.Done())
	}
}

func TestReassemblerRejectsDeclaredSize(t *testing.T) {
	for _, total := range []uint32{0, MaxCompressedChunk + 1} {
		if _, err := NewReassembler(total); err == nil {
			t.Errorf("NewReassembler(%d) succeeded", total)
		}
	}
}

func TestReadChunkDataUnexpectedCode(t *testing.T) {
	var wire bytes.Buffer
	b := NewBuffer()
	_ = b.WriteU8(ResponseUpdateBlockDiffs)
	_ = b.WriteU8(0)
	_, _ = b.WriteTo(&wire)

	start := NewBuffer()
	_ = start.WriteU8(ResponseChunkDataStart)
	_ = start.WriteU32(2000)
	_ = start.WriteBytes(make([]byte, 100))
	_, _ = start.ReadU8()

	if _, err := ReadChunkData(&wire, start); err == nil {
		t.Error("ReadChunkData accepted a non-part frame")
	}
}
