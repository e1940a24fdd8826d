package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-theft-craft/voxelstream/internal/config"
	"github.com/go-theft-craft/voxelstream/internal/server/conn"
	"github.com/go-theft-craft/voxelstream/internal/server/player"
	"github.com/go-theft-craft/voxelstream/internal/server/world"
	"github.com/go-theft-craft/voxelstream/pkg/world/gen"
)

// Server accepts TCP connections and serves the authoritative world to them,
// one goroutine per client.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	world   *world.World
	players *player.Manager
}

// New creates a new Server with the given config and logger.
func New(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		world:   world.NewWorld(gen.New(cfg.World.Generator, cfg.World.Seed)),
		players: player.NewManager(),
	}
}

// World returns the server's authoritative world.
func (s *Server) World() *world.World { return s.world }

// Players returns the connected-player registry.
func (s *Server) Players() *player.Manager { return s.players }

// Start listens on the configured port and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.log.Info("server started",
		"port", s.cfg.Server.Port,
		"generator", s.cfg.World.Generator,
		"seed", s.cfg.World.Seed,
		"timeout", s.cfg.Server.Timeout,
	)
	return s.Serve(ctx, listener)
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Serve accepts connections on l until the context is cancelled. Between
// accepts it reaps the handlers of disconnected clients. On return every
// handler has exited and l is closed.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	defer l.Close()
	dl, canPoll := l.(deadliner)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Close listener when context is cancelled.
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	var serveErr error
	for ctx.Err() == nil {
		s.reap()

		if canPoll {
			if err := dl.SetDeadline(time.Now().Add(s.cfg.Server.PollInterval)); err != nil && ctx.Err() == nil {
				serveErr = fmt.Errorf("set accept deadline: %w", err)
				break
			}
		}

		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				serveErr = err
				break
			}
			s.log.Error("accept connection", "error", err)
			continue
		}

		p := player.NewPlayer(s.players.AllocateID(), c.RemoteAddr().String())
		s.players.Add(p)
		connection := conn.NewConnection(ctx, c, s.cfg, s.log, s.world, s.players, p)
		go connection.Handle()
	}

	s.log.Info("server shutting down")
	cancel()
	s.shutdown()
	return serveErr
}

func (s *Server) reap() {
	for _, p := range s.players.Reap() {
		s.log.Info("client disconnected", "player", p.ID, "addr", p.Addr)
	}
}

// shutdown waits for every handler. Handlers close their own connections once
// the serve context is cancelled.
func (s *Server) shutdown() {
	s.players.DisconnectAll()
	s.reap()
}
