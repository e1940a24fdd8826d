package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

const fileExt = ".cnk"

// FileStore keeps one file per chunk, <dir>/<key>.cnk, holding the raw
// little-endian block array with no header.
type FileStore struct {
	dir string
	log *slog.Logger
}

// OpenFileStore creates dir if needed and returns a store rooted there.
func OpenFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create world directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Path returns the file that holds key.
func (s *FileStore) Path(key chunk.Key) string {
	return filepath.Join(s.dir, strconv.FormatUint(uint64(key), 10)+fileExt)
}

// Load reads the chunk file for key. A missing file, or one of the wrong size,
// yields ErrChunkNotFound.
func (s *FileStore) Load(key chunk.Key) (*chunk.Chunk, error) {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrChunkNotFound
		}
		return nil, fmt.Errorf("read chunk %d: %w", key, err)
	}
	if len(data) != chunk.ByteSize {
		s.log.Warn("ignoring chunk file with wrong size", "path", path, "size", len(data), "want", chunk.ByteSize)
		return nil, ErrChunkNotFound
	}

	c := chunk.New()
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode chunk %d: %w", key, err)
	}
	return c, nil
}

// Save writes the chunk file for key atomically.
func (s *FileStore) Save(key chunk.Key, c *chunk.Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode chunk %d: %w", key, err)
	}
	return atomicWrite(s.Path(key), data)
}

// Keys lists every chunk with a file in the store. Files whose name is not a
// key are skipped.
func (s *FileStore) Keys() ([]chunk.Key, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list world directory %s: %w", s.dir, err)
	}
	var keys []chunk.Key
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if !ok || e.IsDir() {
			continue
		}
		v, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, chunk.Key(v))
	}
	return keys, nil
}

func (s *FileStore) Close() error { return nil }

// atomicWrite writes data to a temp file and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
