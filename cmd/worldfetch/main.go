// Command worldfetch downloads a saved world of .cnk chunk files into the
// worlds directory, optionally importing it into an SQLite chunk store.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	get "github.com/hashicorp/go-getter"

	"github.com/go-theft-craft/voxelstream/internal/config"
	"github.com/go-theft-craft/voxelstream/internal/storage"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		src   = flag.String("src", "", "go-getter source of the world (git::, https://, s3::, local path)")
		force = flag.Bool("force", false, "replace an existing world directory")
	)
	flag.StringVar(&cfg.World.Name, "world", cfg.World.Name, "world name")
	flag.StringVar(&cfg.World.Dir, "dir", cfg.World.Dir, "directory holding worlds")
	flag.StringVar(&cfg.World.Store, "store", cfg.World.Store, "chunk store to import into (file, sqlite)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *src == "" {
		log.Error("source required")
		os.Exit(2)
	}

	path := cfg.WorldDir()
	if _, err := os.Stat(path); err == nil {
		if !*force {
			log.Error("world already exists, use -force to replace it", "dir", path)
			os.Exit(1)
		}
		if err := os.RemoveAll(path); err != nil {
			log.Error("remove world", "dir", path, "error", err)
			os.Exit(1)
		}
	}

	log.Info("start downloading world", "src", *src, "dir", path)
	if err := get.Get(path, *src); err != nil {
		log.Error("download world", "error", err)
		os.Exit(1)
	}

	files, err := storage.OpenFileStore(path, log)
	if err != nil {
		log.Error("open world", "error", err)
		os.Exit(1)
	}
	keys, err := files.Keys()
	if err != nil {
		log.Error("list chunks", "error", err)
		os.Exit(1)
	}
	log.Info("done downloading world", "dir", path, "chunks", len(keys))

	if cfg.World.Store != "sqlite" {
		return
	}

	imported, err := importChunks(files, path, log)
	if err != nil {
		log.Error("import chunks", "error", err)
		os.Exit(1)
	}
	log.Info("imported chunks", "count", imported, "store", "sqlite")
}

// importChunks copies every chunk file under dir into the SQLite store there.
// Chunk files of the wrong size are skipped.
func importChunks(files *storage.FileStore, dir string, log *slog.Logger) (int, error) {
	db, err := storage.OpenSQLiteStore(dir, log)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	keys, err := files.Keys()
	if err != nil {
		return 0, err
	}

	var n int
	for _, key := range keys {
		c, err := files.Load(key)
		if errors.Is(err, storage.ErrChunkNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := db.Save(key, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
