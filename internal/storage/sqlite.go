package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// SQLiteFile is the database file name inside the world directory.
const SQLiteFile = "chunks.db"

// SQLiteStore keeps every chunk of a world in one SQLite database, as the same
// raw block array a FileStore writes.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLiteStore creates dir if needed and opens <dir>/chunks.db.
func OpenSQLiteStore(dir string, log *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create world directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("open chunk database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS chunks (
			key    INTEGER PRIMARY KEY,
			blocks BLOB NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init chunk database: %w", err)
		}
	}
	return &SQLiteStore{db: db, log: log}, nil
}

// Load reads the row for key. A missing row, or a blob of the wrong size,
// yields ErrChunkNotFound.
func (s *SQLiteStore) Load(key chunk.Key) (*chunk.Chunk, error) {
	var data []byte
	err := s.db.QueryRow("SELECT blocks FROM chunks WHERE key = ?", int64(key)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query chunk %d: %w", key, err)
	}
	if len(data) != chunk.ByteSize {
		s.log.Warn("ignoring chunk row with wrong size", "key", uint64(key), "size", len(data), "want", chunk.ByteSize)
		return nil, ErrChunkNotFound
	}

	c := chunk.New()
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode chunk %d: %w", key, err)
	}
	return c, nil
}

// Save upserts the row for key.
func (s *SQLiteStore) Save(key chunk.Key, c *chunk.Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode chunk %d: %w", key, err)
	}
	_, err = s.db.Exec(
		"INSERT INTO chunks(key, blocks) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET blocks = excluded.blocks",
		int64(key), data,
	)
	if err != nil {
		return fmt.Errorf("save chunk %d: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
