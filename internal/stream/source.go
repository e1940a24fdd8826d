// Package stream keeps the chunks around a moving observer resident: it queues
// missing chunks for a background loader and evicts distant ones.
package stream

import (
	"context"

	"github.com/go-theft-craft/voxelstream/internal/terrain"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// Source resolves chunks that are not resident and persists evicted or saved
// ones. Single-player uses local storage; multiplayer asks the server.
type Source interface {
	ResolveChunk(ctx context.Context, key chunk.Key) (*chunk.Chunk, error)
	PersistChunk(key chunk.Key, c *chunk.Chunk) error
}

// BlockObserver is implemented by sources that need to hear about local block
// edits, such as a network client forwarding them to a server.
type BlockObserver interface {
	ObserveBlock(x, y, z int, typ uint32)
}

// Syncer is implemented by sources that reconcile the terrain periodically. Sync
// runs on the loader goroutine.
type Syncer interface {
	Sync(ctx context.Context, t *terrain.Terrain) error
}
