// Package storage persists chunks between sessions and falls back to the world
// generator for chunks that were never saved.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// ErrChunkNotFound reports that a store holds no entry for a key.
var ErrChunkNotFound = errors.New("chunk not found")

// Store reads and writes raw chunk block arrays by key.
type Store interface {
	Load(key chunk.Key) (*chunk.Chunk, error)
	Save(key chunk.Key, c *chunk.Chunk) error
	Close() error
}

// Open returns the store named by kind rooted at dir: "file" (the default) or "sqlite".
func Open(kind, dir string, log *slog.Logger) (Store, error) {
	switch kind {
	case "", "file":
		return OpenFileStore(dir, log)
	case "sqlite":
		return OpenSQLiteStore(dir, log)
	default:
		return nil, fmt.Errorf("unknown chunk store %q", kind)
	}
}
