package player

import (
	"testing"
	"time"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

func diff(x, y, z int32, typ uint32) protocol.BlockDiff {
	return protocol.BlockDiff{X: x, Y: y, Z: z, Type: typ}
}

func TestTakeIncomingOrderAndLimit(t *testing.T) {
	p := NewPlayer(1, "test")
	for i := 0; i < 70; i++ {
		p.Queue([]protocol.BlockDiff{diff(int32(i), 0, 0, 1)})
	}

	first := p.TakeIncoming(protocol.MaxDiffsPerPackage)
	if len(first) != protocol.MaxDiffsPerPackage {
		t.Fatalf("TakeIncoming returned %d, want %d", len(first), protocol.MaxDiffsPerPackage)
	}
	if first[0].X != 0 || first[62].X != 62 {
		t.Errorf("first batch spans X %d..%d, want 0..62", first[0].X, first[62].X)
	}
	if p.Pending() != 7 {
		t.Errorf("Pending() = %d, want 7", p.Pending())
	}
	rest := p.TakeIncoming(protocol.MaxDiffsPerPackage)
	if len(rest) != 7 || rest[0].X != 63 {
		t.Errorf("second batch = %d diffs starting at X %d", len(rest), rest[0].X)
	}
}

func TestDropSuperseded(t *testing.T) {
	p := NewPlayer(1, "test")
	p.Queue([]protocol.BlockDiff{
		diff(5, 10, 5, 1),
		diff(6, 10, 5, 1),
		diff(5, 10, 5, 3),
		diff(5, 11, 5, 1),
	})

	p.DropSuperseded([]protocol.BlockDiff{diff(5, 10, 5, 2)})

	got := p.TakeIncoming(10)
	want := []protocol.BlockDiff{diff(6, 10, 5, 1), diff(5, 11, 5, 1)}
	if len(got) != len(want) {
		t.Fatalf("kept %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kept[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFinishClosesDone(t *testing.T) {
	p := NewPlayer(1, "test")
	if !p.Alive() {
		t.Fatal("new player not alive")
	}
	p.Finish()
	p.Finish()
	if p.Alive() {
		t.Error("finished player still alive")
	}
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Error("Done not closed after Finish")
	}
}
