package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
	"github.com/go-theft-craft/voxelstream/pkg/world/gen"
)

// Manager loads chunks from a Store and generates the ones never saved. It is
// the single-player chunk source for the streaming controller.
type Manager struct {
	store     Store
	generator gen.Generator
	log       *slog.Logger
}

// NewManager returns a manager over store that generates missing chunks with g.
func NewManager(store Store, g gen.Generator, log *slog.Logger) *Manager {
	return &Manager{store: store, generator: g, log: log}
}

// LoadChunk returns the stored chunk for key or, when none is stored, a freshly
// generated one.
func (m *Manager) LoadChunk(key chunk.Key) (*chunk.Chunk, error) {
	c, err := m.store.Load(key)
	if errors.Is(err, ErrChunkNotFound) {
		return m.generator.Generate(key), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SaveChunk writes c verbatim under key.
func (m *Manager) SaveChunk(key chunk.Key, c *chunk.Chunk) error {
	return m.store.Save(key, c)
}

func (m *Manager) ResolveChunk(_ context.Context, key chunk.Key) (*chunk.Chunk, error) {
	return m.LoadChunk(key)
}

func (m *Manager) PersistChunk(key chunk.Key, c *chunk.Chunk) error {
	return m.SaveChunk(key, c)
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
