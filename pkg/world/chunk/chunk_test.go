package chunk

import "testing"

func TestChunkSetGet(t *testing.T) {
	c := New()
	c.SetBlock(15, 127, 15, 9)
	c.SetBlock(0, 0, 0, 3)

	if got := c.GetBlock(15, 127, 15); got != 9 {
		t.Errorf("GetBlock(15,127,15) = %d, want 9", got)
	}
	if got := c.GetBlock(0, 0, 0); got != 3 {
		t.Errorf("GetBlock(0,0,0) = %d, want 3", got)
	}
	if got := c.GetBlock(1, 0, 0); got != Air {
		t.Errorf("GetBlock(1,0,0) = %d, want air", got)
	}
}

func TestChunkBinaryLayout(t *testing.T) {
	c := New()
	c.SetBlock(0, 0, 1, 0x01020304)

	data, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(data) != ByteSize {
		t.Fatalf("len = %d, want %d", len(data), ByteSize)
	}
	// z is the fastest axis; little-endian on disk.
	if data[4] != 0x04 || data[7] != 0x01 {
		t.Errorf("bytes[4:8] = % x, want 04 03 02 01", data[4:8])
	}

	var back Chunk
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if back.Blocks != c.Blocks {
		t.Error("round trip changed blocks")
	}
}

func TestChunkUnmarshalWrongSize(t *testing.T) {
	var c Chunk
	if err := c.UnmarshalBinary(make([]byte, 10)); err == nil {
		t.Error("expected error for short data")
	}
}

func TestChunkClone(t *testing.T) {
	c := New()
	c.SetBlock(1, 2, 3, 4)
	cp := c.Clone()
	cp.SetBlock(1, 2, 3, 5)
	if c.GetBlock(1, 2, 3) != 4 {
		t.Error("Clone shares storage with the original")
	}
}
