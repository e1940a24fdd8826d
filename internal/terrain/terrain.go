// Package terrain holds the resident chunks of a world together with the keys
// that need saving and the keys whose meshes need rebuilding.
package terrain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// PersistFunc writes one chunk to durable storage.
type PersistFunc func(key chunk.Key, c *chunk.Chunk) error

type keySet map[chunk.Key]struct{}

// Terrain is the chunk map plus its dirty and stale sets. Every method takes the
// terrain lock, so gameplay edits, loader inserts and network diffs serialize here.
// A key in the dirty or stale set is always resident.
type Terrain struct {
	mu       sync.RWMutex
	chunks   map[chunk.Key]*chunk.Chunk
	dirty    keySet
	stale    keySet
	released []chunk.Key
}

// New returns an empty terrain.
func New() *Terrain {
	return &Terrain{
		chunks: make(map[chunk.Key]*chunk.Chunk),
		dirty:  make(keySet),
		stale:  make(keySet),
	}
}

// GetBlock returns the block at world coordinates, or air when y is out of range
// or the chunk is not resident.
func (t *Terrain) GetBlock(x, y, z int) uint32 {
	if y < 0 || y >= chunk.Height {
		return chunk.Air
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.chunks[chunk.KeyAt(x, z)]
	if !ok {
		return chunk.Air
	}
	return c.GetBlock(chunk.LocalIndexOf(x, chunk.Width), y, chunk.LocalIndexOf(z, chunk.Length))
}

// SetBlock writes a block and marks its chunk dirty and stale. An edit on a chunk
// face also marks the orthogonal neighbor across that face stale. It reports
// false, changing nothing, when the chunk is not resident.
func (t *Terrain) SetBlock(x, y, z int, typ uint32) bool {
	if y < 0 || y >= chunk.Height {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := chunk.KeyAt(x, z)
	c, ok := t.chunks[key]
	if !ok {
		return false
	}

	lx := chunk.LocalIndexOf(x, chunk.Width)
	lz := chunk.LocalIndexOf(z, chunk.Length)
	c.SetBlock(lx, y, lz, typ)

	t.dirty[key] = struct{}{}
	t.stale[key] = struct{}{}

	switch lx {
	case 0:
		t.markStale(key.Neighbor(-1, 0))
	case chunk.Width - 1:
		t.markStale(key.Neighbor(1, 0))
	}
	switch lz {
	case 0:
		t.markStale(key.Neighbor(0, -1))
	case chunk.Length - 1:
		t.markStale(key.Neighbor(0, 1))
	}
	return true
}

// markStale adds key to the stale set if it is resident. Caller holds mu.
func (t *Terrain) markStale(key chunk.Key) {
	if _, ok := t.chunks[key]; ok {
		t.stale[key] = struct{}{}
	}
}

func (t *Terrain) addToRebuildWithAdjacent(key chunk.Key) {
	t.markStale(key)
	t.markStale(key.Neighbor(-1, 0))
	t.markStale(key.Neighbor(1, 0))
	t.markStale(key.Neighbor(0, -1))
	t.markStale(key.Neighbor(0, 1))
}

// AddToRebuildWithAdjacent marks key and its resident orthogonal neighbors stale.
func (t *Terrain) AddToRebuildWithAdjacent(key chunk.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addToRebuildWithAdjacent(key)
}

// Insert makes c resident under key and marks it and its neighbors for rebuild.
// It reports false and keeps the existing chunk if key is already resident.
func (t *Terrain) Insert(key chunk.Key, c *chunk.Chunk) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.chunks[key]; ok {
		return false
	}
	t.chunks[key] = c
	t.addToRebuildWithAdjacent(key)
	return true
}

// Unload evicts every resident chunk outside keep. Dirty chunks are persisted
// first, still under the terrain lock, so a concurrent reload never reads an
// older copy. A chunk whose persist fails stays resident and dirty; the failures
// are returned joined.
func (t *Terrain) Unload(keep chunk.Rect, persist PersistFunc) ([]chunk.Key, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var evicted []chunk.Key
	var errs []error
	for key, c := range t.chunks {
		if keep.Contains(key) {
			continue
		}
		if _, ok := t.dirty[key]; ok {
			if err := persist(key, c); err != nil {
				errs = append(errs, fmt.Errorf("persist chunk %d: %w", key, err))
				continue
			}
			delete(t.dirty, key)
		}
		delete(t.stale, key)
		delete(t.chunks, key)
		evicted = append(evicted, key)
	}
	t.released = append(t.released, evicted...)
	return evicted, errors.Join(errs...)
}

// SaveDirty persists every dirty chunk and clears it from the dirty set. Chunks
// whose persist fails stay dirty.
func (t *Terrain) SaveDirty(persist PersistFunc) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	saved := 0
	var errs []error
	for key := range t.dirty {
		if err := persist(key, t.chunks[key]); err != nil {
			errs = append(errs, fmt.Errorf("persist chunk %d: %w", key, err))
			continue
		}
		delete(t.dirty, key)
		saved++
	}
	return saved, errors.Join(errs...)
}

// ForEachChunk calls fn for every resident chunk under a read lock. fn must not
// modify the chunk or call back into the terrain for writing.
func (t *Terrain) ForEachChunk(fn func(key chunk.Key, c *chunk.Chunk)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for key, c := range t.chunks {
		fn(key, c)
	}
}

// Chunk returns a copy of the resident chunk for key.
func (t *Terrain) Chunk(key chunk.Key) (*chunk.Chunk, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.chunks[key]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Has reports whether key is resident.
func (t *Terrain) Has(key chunk.Key) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.chunks[key]
	return ok
}

// Len returns the number of resident chunks.
func (t *Terrain) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.chunks)
}

// DirtyLen returns the number of chunks with unsaved edits.
func (t *Terrain) DirtyLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.dirty)
}

// DrainRebuild returns and clears the stale set.
func (t *Terrain) DrainRebuild() []chunk.Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]chunk.Key, 0, len(t.stale))
	for key := range t.stale {
		keys = append(keys, key)
	}
	clear(t.stale)
	return keys
}

// DrainReleased returns and clears the keys evicted since the last call, whose
// meshes the renderer should drop.
func (t *Terrain) DrainReleased() []chunk.Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := t.released
	t.released = nil
	return keys
}
