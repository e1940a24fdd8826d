package world

import (
	"sync"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
	"github.com/go-theft-craft/voxelstream/pkg/world/gen"
)

// World is the server's authoritative terrain. Only chunks that received a
// block diff are held; every other chunk is whatever the generator produces.
// Chunks are never evicted and never persisted.
type World struct {
	mu        sync.RWMutex
	generator gen.Generator
	chunks    map[chunk.Key]*chunk.Chunk

	// applyMu orders Apply calls so every client sees diffs in the order the
	// world received them.
	applyMu sync.Mutex
}

// NewWorld creates an empty World with the given generator.
func NewWorld(generator gen.Generator) *World {
	return &World{
		generator: generator,
		chunks:    make(map[chunk.Key]*chunk.Chunk),
	}
}

// Apply writes diffs in order, then calls publish before any later Apply can
// start. Diffs with y outside the chunk height are ignored.
func (w *World) Apply(diffs []protocol.BlockDiff, publish func([]protocol.BlockDiff)) {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	w.applyDiffs(diffs)
	if publish != nil {
		publish(diffs)
	}
}

func (w *World) applyDiffs(diffs []protocol.BlockDiff) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, d := range diffs {
		x, y, z := int(d.X), int(d.Y), int(d.Z)
		if y < 0 || y >= chunk.Height {
			continue
		}
		key := chunk.KeyAt(x, z)
		c, ok := w.chunks[key]
		if !ok {
			c = w.generator.Generate(key)
			w.chunks[key] = c
		}
		c.SetBlock(chunk.LocalIndexOf(x, chunk.Width), y, chunk.LocalIndexOf(z, chunk.Length), d.Type)
	}
}

// Touched reports whether any diff was ever applied to the chunk at key.
func (w *World) Touched(key chunk.Key) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chunks[key]
	return ok
}

// TouchedCount returns the number of chunks held in memory.
func (w *World) TouchedCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// GetBlock returns the block at world coordinates, generating the base state
// of untouched chunks without storing it.
func (w *World) GetBlock(x, y, z int) uint32 {
	if y < 0 || y >= chunk.Height {
		return chunk.Air
	}
	key := chunk.KeyAt(x, z)
	lx, lz := chunk.LocalIndexOf(x, chunk.Width), chunk.LocalIndexOf(z, chunk.Length)

	w.mu.RLock()
	c, ok := w.chunks[key]
	if ok {
		defer w.mu.RUnlock()
		return c.GetBlock(lx, y, lz)
	}
	w.mu.RUnlock()

	return w.generator.Generate(key).GetBlock(lx, y, lz)
}
