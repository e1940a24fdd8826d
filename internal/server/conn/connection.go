package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/go-theft-craft/voxelstream/internal/config"
	"github.com/go-theft-craft/voxelstream/internal/server/player"
	"github.com/go-theft-craft/voxelstream/internal/server/world"
	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

// State represents the connection state.
type State int

const (
	StateHandshake State = iota
	StateConnected
)

// Connection serves one client: it reads a request frame, answers it, and
// repeats until the client goes quiet for longer than the timeout.
type Connection struct {
	conn    net.Conn
	cfg     *config.Config
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	world   *world.World
	players *player.Manager
	self    *player.Player

	// Only accessed from the Handle goroutine.
	state   State
	buf     *protocol.Buffer
	limiter *rate.Limiter
}

// NewConnection creates a new Connection from a raw TCP connection.
func NewConnection(ctx context.Context, conn net.Conn, cfg *config.Config, log *slog.Logger, w *world.World, players *player.Manager, self *player.Player) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	limit := rate.Inf
	if cfg.Server.ChunkRequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Server.ChunkRequestsPerSecond)
	}
	return &Connection{
		conn:    conn,
		cfg:     cfg,
		log:     log.With("addr", conn.RemoteAddr().String(), "player", self.ID),
		ctx:     ctx,
		cancel:  cancel,
		world:   w,
		players: players,
		self:    self,
		state:   StateHandshake,
		buf:     protocol.NewBuffer(),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Handle runs the connection lifecycle until the client disconnects, times
// out, sends a malformed request, or the server shuts down.
func (c *Connection) Handle() {
	stop := context.AfterFunc(c.ctx, func() { c.conn.Close() })
	defer func() {
		stop()
		c.cancel()
		c.conn.Close()
		c.self.Finish()
		c.log.Info("connection closed")
	}()

	c.log.Info("connection accepted")

	for {
		if err := c.handleNextRequest(); err != nil {
			c.self.Disconnect()
			if c.ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				c.log.Info("client timed out", "timeout", c.cfg.Server.Timeout)
				return
			}
			c.log.Error("handling request", "state", c.state, "error", err)
			return
		}
	}
}

func (c *Connection) handleNextRequest() error {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.Server.Timeout)); err != nil {
		return err
	}
	if _, err := c.buf.ReadFrom(c.conn); err != nil {
		return err
	}
	code, err := c.buf.ReadU8()
	if err != nil {
		return err
	}

	switch c.state {
	case StateHandshake:
		return c.handleHandshake(code)
	case StateConnected:
		return c.handleRequest(code)
	default:
		return fmt.Errorf("unknown state: %d", c.state)
	}
}

func (c *Connection) handleRequest(code uint8) error {
	switch code {
	case protocol.RequestUpdateBlockDiffs:
		return c.handleBlockDiffs()
	case protocol.RequestLoadChunk:
		return c.handleLoadChunk()
	default:
		return fmt.Errorf("unexpected request %s", protocol.RequestName(code))
	}
}

// send writes the package in buf as one frame.
func (c *Connection) send() error {
	if err := c.extendWriteDeadline(); err != nil {
		return err
	}
	_, err := c.buf.WriteTo(c.conn)
	return err
}

func (c *Connection) extendWriteDeadline() error {
	return c.conn.SetWriteDeadline(time.Now().Add(c.cfg.Server.Timeout))
}
