package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-theft-craft/voxelstream/internal/terrain"
	"github.com/go-theft-craft/voxelstream/pkg/protocol"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
	"github.com/go-theft-craft/voxelstream/pkg/world/gen"
)

// Source resolves chunks from a server and keeps local edits and remote diffs
// flowing both ways. It generates unchanged chunks locally with the server's
// seed. Chunks are never persisted on the client.
type Source struct {
	conn      *Conn
	generator gen.Generator
	log       *slog.Logger

	mu       sync.Mutex
	outgoing []protocol.BlockDiff
}

// NewSource returns a source over conn generating unchanged chunks with the
// server's generator and seed.
func NewSource(conn *Conn, log *slog.Logger) *Source {
	settings := conn.Settings()
	return &Source{
		conn:      conn,
		generator: gen.New(settings.Generator, settings.Seed),
		log:       log,
	}
}

func (s *Source) ResolveChunk(ctx context.Context, key chunk.Key) (*chunk.Chunk, error) {
	c, unchanged, err := s.conn.LoadChunk(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load chunk %d from server: %w", key, err)
	}
	if unchanged {
		return s.generator.Generate(key), nil
	}
	return c, nil
}

// PersistChunk is a no-op: the server owns the world.
func (s *Source) PersistChunk(chunk.Key, *chunk.Chunk) error {
	return nil
}

// ObserveBlock queues a local edit for the next sync. Callers queue the edit
// before writing it to the terrain so a concurrent Sync never overwrites it with
// an older remote value.
func (s *Source) ObserveBlock(x, y, z int, typ uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outgoing = append(s.outgoing, protocol.BlockDiff{X: int32(x), Y: int32(y), Z: int32(z), Type: typ})
}

// Pending returns the number of local edits not yet sent.
func (s *Source) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outgoing)
}

// Sync sends queued edits and applies the diffs the server returns. Edits that
// did not fit in one package stay queued for the next call. An incoming diff at a
// coordinate with a queued edit is dropped: the local edit is newer and the
// server takes it on a later sync.
func (s *Source) Sync(ctx context.Context, t *terrain.Terrain) error {
	s.mu.Lock()
	batch := s.outgoing[:min(len(s.outgoing), protocol.MaxDiffsPerPackage)]
	batch = append([]protocol.BlockDiff(nil), batch...)
	s.mu.Unlock()

	sent, incoming, err := s.conn.ExchangeDiffs(ctx, batch)
	if err != nil {
		return fmt.Errorf("exchange block diffs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outgoing = s.outgoing[sent:]

	type pos struct{ x, y, z int32 }
	queued := make(map[pos]struct{}, len(s.outgoing))
	for _, d := range s.outgoing {
		queued[pos{d.X, d.Y, d.Z}] = struct{}{}
	}

	applied := 0
	for _, d := range incoming {
		if _, ok := queued[pos{d.X, d.Y, d.Z}]; ok {
			continue
		}
		t.SetBlock(int(d.X), int(d.Y), int(d.Z), d.Type)
		applied++
	}
	if len(incoming) > 0 {
		s.log.Debug("applied remote diffs", "count", applied, "superseded", len(incoming)-applied)
	}
	return nil
}

// Close closes the server connection.
func (s *Source) Close() error {
	return s.conn.Close()
}
