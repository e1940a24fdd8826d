// Command walker moves a headless observer through a world and keeps the
// chunks around it resident, either from local storage or from a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/go-theft-craft/voxelstream/internal/client"
	"github.com/go-theft-craft/voxelstream/internal/config"
	"github.com/go-theft-craft/voxelstream/internal/storage"
	"github.com/go-theft-craft/voxelstream/internal/stream"
	"github.com/go-theft-craft/voxelstream/internal/terrain"
	"github.com/go-theft-craft/voxelstream/pkg/world/gen"
)

type source interface {
	stream.Source
	io.Closer
}

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "voxelstream.yaml", "path to YAML config")
	multiplayer := flag.Bool("remote", false, "stream chunks from the server at -addr")
	seed := flag.Int("seed", int(cfg.World.Seed), "world seed")
	speed := flag.Float64("speed", 8, "walking speed in blocks per second")
	steps := flag.Int("steps", 600, "number of ticks to walk, 0 to walk until interrupted")
	tick := flag.Duration("tick", 50*time.Millisecond, "tick interval")
	flag.StringVar(&cfg.World.Name, "world", cfg.World.Name, "world name")
	flag.StringVar(&cfg.World.Dir, "dir", cfg.World.Dir, "directory holding worlds")
	flag.StringVar(&cfg.World.Generator, "generator", cfg.World.Generator, "terrain generator (default, flat)")
	flag.StringVar(&cfg.World.Store, "store", cfg.World.Store, "chunk store (file, sqlite)")
	flag.IntVar(&cfg.World.VisibleRadius, "radius", cfg.World.VisibleRadius, "visible radius in chunks")
	flag.StringVar(&cfg.Client.Addr, "addr", cfg.Client.Addr, "server address")
	flag.DurationVar(&cfg.Client.DialTimeout, "dial-timeout", cfg.Client.DialTimeout, "connect and request timeout")
	flag.DurationVar(&cfg.Client.SyncInterval, "sync-interval", cfg.Client.SyncInterval, "minimum time between diff exchanges")
	flag.DurationVar(&cfg.Client.IdleInterval, "idle-interval", cfg.Client.IdleInterval, "loader sleep on an empty queue")
	flag.Parse()
	cfg.World.Seed = int32(*seed)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *multiplayer, *speed, *steps, *tick, log); err != nil {
		log.Error("walker error", "error", err)
		os.Exit(1)
	}
}

func openSource(ctx context.Context, cfg *config.Config, remote bool, log *slog.Logger) (source, error) {
	if remote {
		conn, err := client.Dial(ctx, cfg.Client.Addr, cfg.Client.DialTimeout, log)
		if err != nil {
			return nil, err
		}
		if kind := conn.Settings().Generator; kind != cfg.World.Generator {
			log.Warn("using server generator", "server", kind, "configured", cfg.World.Generator)
		}
		return client.NewSource(conn, log), nil
	}

	store, err := storage.Open(cfg.World.Store, cfg.WorldDir(), log)
	if err != nil {
		return nil, err
	}
	log.Info("opened world", "dir", cfg.WorldDir(), "store", cfg.World.Store, "seed", cfg.World.Seed)
	return storage.NewManager(store, gen.New(cfg.World.Generator, cfg.World.Seed), log), nil
}

func run(ctx context.Context, cfg *config.Config, remote bool, speed float64, steps int, tick time.Duration, log *slog.Logger) (err error) {
	src, err := openSource(ctx, cfg, remote, log)
	if err != nil {
		return fmt.Errorf("open chunk source: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctrl := stream.New(terrain.New(), src, stream.Options{
		VisibleRadius: cfg.World.VisibleRadius,
		IdleInterval:  cfg.Client.IdleInterval,
		SyncInterval:  cfg.Client.SyncInterval,
	}, log)
	defer func() {
		if cerr := ctrl.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	pos := mgl64.Vec3{0.5, 0, 0.5}
	if err := ctrl.LoadSurroundingSync(ctx, pos); err != nil {
		return err
	}
	ctrl.Start()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	heading := mgl64.Vec3{1, 0, 0}
	stepLen := speed * tick.Seconds()
	var rebuilt, released int

	for i := 0; steps == 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			log.Info("interrupted", "tick", i)
			return nil
		case <-ticker.C:
		}

		// Turn slowly so the path sweeps a wide arc.
		heading = mgl64.Rotate3DY(mgl64.DegToRad(0.5)).Mul3x1(heading)
		pos = pos.Add(heading.Mul(stepLen))

		if err := ctrl.Update(pos); err != nil {
			log.Warn("update", "error", err)
		}

		if i%40 == 0 {
			x, z := int(math.Floor(pos.X())), int(math.Floor(pos.Z()))
			y := 100
			if ctrl.SetBlock(x, y, z, gen.BlockStone) {
				log.Debug("placed block", "x", x, "y", y, "z", z)
			}
		}

		rebuilt += len(ctrl.Terrain().DrainRebuild())
		released += len(ctrl.Terrain().DrainReleased())

		if i%100 == 0 {
			log.Info("walking",
				"x", int(pos.X()), "z", int(pos.Z()),
				"resident", ctrl.Terrain().Len(),
				"queued", ctrl.Queue().Len(),
				"rebuilt", rebuilt,
				"released", released,
			)
		}
	}
	return nil
}
