package terrain

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

func sorted(keys []chunk.Key) []chunk.Key {
	slices.Sort(keys)
	return keys
}

func TestGetBlockNotResident(t *testing.T) {
	tr := New()
	if got := tr.GetBlock(5, 10, 5); got != chunk.Air {
		t.Errorf("GetBlock on empty terrain = %d, want air", got)
	}
}

func TestGetBlockOutOfRange(t *testing.T) {
	tr := New()
	c := chunk.New()
	for i := range c.Blocks {
		c.Blocks[i] = 1
	}
	tr.Insert(chunk.KeyOf(0, 0), c)

	tests := []struct {
		y    int
		want uint32
	}{
		{-1, chunk.Air},
		{0, 1},
		{chunk.Height - 1, 1},
		{chunk.Height, chunk.Air},
	}
	for _, tt := range tests {
		if got := tr.GetBlock(3, tt.y, 3); got != tt.want {
			t.Errorf("GetBlock(3,%d,3) = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestSetBlockNegativeCoordinates(t *testing.T) {
	tr := New()
	tr.Insert(chunk.KeyOf(-1, -1), chunk.New())

	if !tr.SetBlock(-1, 20, -16, 9) {
		t.Fatal("SetBlock on resident chunk reported false")
	}
	if got := tr.GetBlock(-1, 20, -16); got != 9 {
		t.Errorf("GetBlock(-1,20,-16) = %d, want 9", got)
	}
	c, _ := tr.Chunk(chunk.KeyOf(-1, -1))
	if got := c.GetBlock(15, 20, 0); got != 9 {
		t.Errorf("local block (15,20,0) = %d, want 9", got)
	}
}

func TestSetBlockNotResident(t *testing.T) {
	tr := New()
	if tr.SetBlock(1, 1, 1, 1) {
		t.Error("SetBlock on missing chunk reported true")
	}
	if tr.DirtyLen() != 0 || len(tr.DrainRebuild()) != 0 {
		t.Error("SetBlock on missing chunk marked sets")
	}
}

func TestSetBlockIdempotent(t *testing.T) {
	tr := New()
	key := chunk.KeyOf(0, 0)
	tr.Insert(key, chunk.New())
	tr.DrainRebuild()

	tr.SetBlock(5, 10, 5, 3)
	tr.SetBlock(5, 10, 5, 3)

	if tr.DirtyLen() != 1 {
		t.Errorf("DirtyLen() = %d, want 1", tr.DirtyLen())
	}
	if got := tr.DrainRebuild(); len(got) != 1 || got[0] != key {
		t.Errorf("DrainRebuild() = %v, want [%d]", got, key)
	}
}

func TestSetBlockMarksFaceNeighbors(t *testing.T) {
	center := chunk.KeyOf(0, 0)

	tests := []struct {
		name string
		x, z int
		want []chunk.Key
	}{
		{"interior", 5, 5, []chunk.Key{center}},
		{"west face", 0, 5, []chunk.Key{center, center.Neighbor(-1, 0)}},
		{"east face", 15, 5, []chunk.Key{center, center.Neighbor(1, 0)}},
		{"north face", 5, 0, []chunk.Key{center, center.Neighbor(0, -1)}},
		{"south face", 5, 15, []chunk.Key{center, center.Neighbor(0, 1)}},
		{"corner", 0, 15, []chunk.Key{center, center.Neighbor(-1, 0), center.Neighbor(0, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			for dx := int32(-1); dx <= 1; dx++ {
				for dz := int32(-1); dz <= 1; dz++ {
					tr.Insert(chunk.KeyOf(dx, dz), chunk.New())
				}
			}
			tr.DrainRebuild()

			tr.SetBlock(tt.x, 64, tt.z, 1)
			got := sorted(tr.DrainRebuild())
			want := sorted(slices.Clone(tt.want))
			if !slices.Equal(got, want) {
				t.Errorf("stale = %v, want %v", got, want)
			}
		})
	}
}

func TestSetBlockSkipsMissingNeighbor(t *testing.T) {
	tr := New()
	key := chunk.KeyOf(0, 0)
	tr.Insert(key, chunk.New())
	tr.DrainRebuild()

	tr.SetBlock(0, 64, 0, 1)
	if got := tr.DrainRebuild(); len(got) != 1 || got[0] != key {
		t.Errorf("stale = %v, want only %d", got, key)
	}
}

func TestInsertMarksResidentNeighbors(t *testing.T) {
	tr := New()
	west := chunk.KeyOf(-1, 0)
	diagonal := chunk.KeyOf(1, 1)
	tr.Insert(west, chunk.New())
	tr.Insert(diagonal, chunk.New())
	tr.DrainRebuild()

	key := chunk.KeyOf(0, 0)
	if !tr.Insert(key, chunk.New()) {
		t.Fatal("Insert of new key reported false")
	}
	got := sorted(tr.DrainRebuild())
	want := sorted([]chunk.Key{key, west})
	if !slices.Equal(got, want) {
		t.Errorf("stale after Insert = %v, want %v", got, want)
	}

	if tr.Insert(key, chunk.New()) {
		t.Error("Insert of resident key reported true")
	}
}

func TestUnloadEvictsOutsideRect(t *testing.T) {
	tr := New()
	for x := int32(-3); x <= 3; x++ {
		for z := int32(-3); z <= 3; z++ {
			tr.Insert(chunk.KeyOf(x, z), chunk.New())
		}
	}
	tr.SetBlock(-48, 1, -48, 5) // chunk (-3,-3), dirty
	tr.SetBlock(0, 1, 0, 6)     // chunk (0,0), dirty but kept

	keep := chunk.Rect{MinX: -1, MaxX: 1, MinZ: -1, MaxZ: 1}
	persisted := make(map[chunk.Key]uint32)
	evicted, err := tr.Unload(keep, func(key chunk.Key, c *chunk.Chunk) error {
		persisted[key] = c.GetBlock(0, 1, 0)
		return nil
	})
	if err != nil {
		t.Fatalf("Unload: %v", err)
	}

	if len(evicted) != 49-9 {
		t.Errorf("evicted %d chunks, want %d", len(evicted), 49-9)
	}
	if tr.Len() != 9 {
		t.Errorf("Len() = %d, want 9", tr.Len())
	}
	tr.ForEachChunk(func(key chunk.Key, _ *chunk.Chunk) {
		if !keep.Contains(key) {
			t.Errorf("chunk %d resident outside keep rect", key)
		}
	})

	if len(persisted) != 1 || persisted[chunk.KeyOf(-3, -3)] != 5 {
		t.Errorf("persisted = %v, want only chunk (-3,-3) with block 5", persisted)
	}
	if tr.DirtyLen() != 1 {
		t.Errorf("DirtyLen() = %d, want 1 (kept chunk)", tr.DirtyLen())
	}
	for _, key := range tr.DrainRebuild() {
		if !tr.Has(key) {
			t.Errorf("stale key %d not resident", key)
		}
	}
	if got := tr.DrainReleased(); len(got) != len(evicted) {
		t.Errorf("DrainReleased() returned %d keys, want %d", len(got), len(evicted))
	}
	if got := tr.DrainReleased(); len(got) != 0 {
		t.Errorf("second DrainReleased() = %v, want empty", got)
	}
}

func TestUnloadPersistFailureKeepsChunk(t *testing.T) {
	tr := New()
	key := chunk.KeyOf(10, 10)
	tr.Insert(key, chunk.New())
	tr.SetBlock(160, 1, 160, 1)

	errDisk := errors.New("disk full")
	evicted, err := tr.Unload(chunk.Rect{}, func(chunk.Key, *chunk.Chunk) error { return errDisk })
	if !errors.Is(err, errDisk) {
		t.Fatalf("Unload error = %v, want %v", err, errDisk)
	}
	if len(evicted) != 0 {
		t.Errorf("evicted = %v, want none", evicted)
	}
	if !tr.Has(key) || tr.DirtyLen() != 1 {
		t.Error("chunk with failed persist must stay resident and dirty")
	}
}

func TestSaveDirty(t *testing.T) {
	tr := New()
	tr.Insert(chunk.KeyOf(0, 0), chunk.New())
	tr.Insert(chunk.KeyOf(1, 0), chunk.New())
	tr.SetBlock(1, 1, 1, 1)
	tr.SetBlock(17, 1, 1, 1)

	calls := 0
	saved, err := tr.SaveDirty(func(chunk.Key, *chunk.Chunk) error {
		calls++
		return nil
	})
	if err != nil || saved != 2 || calls != 2 {
		t.Fatalf("SaveDirty = %d, %v (calls %d), want 2, nil", saved, err, calls)
	}
	if tr.DirtyLen() != 0 {
		t.Errorf("DirtyLen() after SaveDirty = %d", tr.DirtyLen())
	}
	if tr.Len() != 2 {
		t.Errorf("SaveDirty evicted chunks: Len() = %d", tr.Len())
	}
}

func TestChunkReturnsCopy(t *testing.T) {
	tr := New()
	key := chunk.KeyOf(0, 0)
	tr.Insert(key, chunk.New())

	c, ok := tr.Chunk(key)
	if !ok {
		t.Fatal("Chunk() missing resident key")
	}
	c.SetBlock(0, 0, 0, 7)
	if tr.GetBlock(0, 0, 0) != chunk.Air {
		t.Error("mutating the returned chunk changed the terrain")
	}
}
