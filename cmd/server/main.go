package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-theft-craft/voxelstream/internal/config"
	"github.com/go-theft-craft/voxelstream/internal/server"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "voxelstream.yaml", "path to YAML config")
	seed := flag.Int("seed", int(cfg.World.Seed), "world seed")
	flag.StringVar(&cfg.World.Generator, "generator", cfg.World.Generator, "terrain generator (default, flat)")
	flag.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "server port")
	flag.DurationVar(&cfg.Server.Timeout, "timeout", cfg.Server.Timeout, "per-request read timeout")
	flag.DurationVar(&cfg.Server.PollInterval, "poll-interval", cfg.Server.PollInterval, "accept poll interval")
	flag.Float64Var(&cfg.Server.ChunkRequestsPerSecond, "chunk-rate", cfg.Server.ChunkRequestsPerSecond, "chunk requests per second per client, 0 for unlimited")
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

	srv := server.New(cfg, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
