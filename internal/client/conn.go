// Package client talks to a world server and adapts it to the streaming
// controller as a chunk source.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// ErrDisconnected is returned once the connection to the server has failed.
var ErrDisconnected = errors.New("disconnected from server")

// WorldSettings is what the server announces on connect.
type WorldSettings struct {
	Seed     int32
	PlayerID uint32
	// Generator names the server's terrain generator, as accepted by gen.New.
	Generator string
}

// Conn is a request/response connection to a world server. Round trips are
// serialized; any I/O failure marks the connection dead for good.
type Conn struct {
	conn    net.Conn
	timeout time.Duration
	log     *slog.Logger

	mu       sync.Mutex
	buf      *protocol.Buffer
	settings WorldSettings
	alive    *atomic.Bool
}

// Dial connects to addr and performs the Connect handshake. timeout bounds the
// dial and every later round trip.
func Dial(ctx context.Context, addr string, timeout time.Duration, log *slog.Logger) (*Conn, error) {
	d := net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Conn{
		conn:    nc,
		timeout: timeout,
		log:     log.With("server", addr),
		buf:     protocol.NewBuffer(),
		alive:   atomic.NewBool(true),
	}
	if err := c.connect(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	c.log.Info("connected to server", "seed", c.settings.Seed, "player", c.settings.PlayerID, "generator", c.settings.Generator)
	return c, nil
}

func (c *Conn) connect(ctx context.Context) error {
	return c.roundTrip(ctx, func() error {
		c.buf.Reset()
		_ = c.buf.WriteU8(protocol.RequestConnect)
		code, err := c.exchange()
		if err != nil {
			return err
		}
		if code != protocol.ResponseWorldSettings {
			return unexpected(protocol.ResponseWorldSettings, code)
		}
		if c.settings.Seed, err = c.buf.ReadI32(); err != nil {
			return fmt.Errorf("read seed: %w", err)
		}
		if c.settings.PlayerID, err = c.buf.ReadU32(); err != nil {
			return fmt.Errorf("read player id: %w", err)
		}
		if c.settings.Generator, err = c.buf.ReadShortString(); err != nil {
			return fmt.Errorf("read generator: %w", err)
		}
		return nil
	})
}

// Settings returns the world settings received on connect.
func (c *Conn) Settings() WorldSettings { return c.settings }

// Alive reports whether the connection is still usable.
func (c *Conn) Alive() bool { return c.alive.Load() }

// LoadChunk asks the server for the chunk at key. unchanged is true when the
// server never modified it, in which case the caller generates it locally.
func (c *Conn) LoadChunk(ctx context.Context, key chunk.Key) (ch *chunk.Chunk, unchanged bool, err error) {
	err = c.roundTrip(ctx, func() error {
		c.buf.Reset()
		_ = c.buf.WriteU8(protocol.RequestLoadChunk)
		_ = c.buf.WriteU64(uint64(key))
		code, err := c.exchange()
		if err != nil {
			return err
		}

		switch code {
		case protocol.ResponseChunkIsUnchanged:
			unchanged = true
			return nil
		case protocol.ResponseChunkDataStart:
			data, err := protocol.ReadChunkData(c.conn, c.buf)
			if err != nil {
				return err
			}
			ch, err = protocol.DecompressChunk(data)
			return err
		default:
			return unexpected(protocol.ResponseChunkDataStart, code)
		}
	})
	return ch, unchanged, err
}

// ExchangeDiffs sends up to protocol.MaxDiffsPerPackage of outgoing and returns
// how many were sent along with the diffs the server queued for this client.
func (c *Conn) ExchangeDiffs(ctx context.Context, outgoing []protocol.BlockDiff) (sent int, incoming []protocol.BlockDiff, err error) {
	err = c.roundTrip(ctx, func() error {
		c.buf.Reset()
		_ = c.buf.WriteU8(protocol.RequestUpdateBlockDiffs)
		if sent, err = protocol.WriteBlockDiffs(c.buf, outgoing); err != nil {
			return err
		}
		code, err := c.exchange()
		if err != nil {
			return err
		}
		if code != protocol.ResponseUpdateBlockDiffs {
			return unexpected(protocol.ResponseUpdateBlockDiffs, code)
		}
		incoming, err = protocol.ReadBlockDiffs(c.buf)
		return err
	})
	if err != nil {
		sent = 0
	}
	return sent, incoming, err
}

// Close closes the connection.
func (c *Conn) Close() error {
	c.alive.Store(false)
	return c.conn.Close()
}

// exchange sends the package in buf and reads the reply into it, returning the
// response code.
func (c *Conn) exchange() (uint8, error) {
	if _, err := c.buf.WriteTo(c.conn); err != nil {
		return 0, err
	}
	if _, err := c.buf.ReadFrom(c.conn); err != nil {
		return 0, err
	}
	return c.buf.ReadU8()
}

// roundTrip runs fn with the connection deadline set from timeout and ctx. Any
// error from fn kills the connection.
func (c *Conn) roundTrip(ctx context.Context, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive.Load() {
		return ErrDisconnected
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return c.fail(err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return c.fail(err)
	}
	return nil
}

func (c *Conn) fail(err error) error {
	if c.alive.Swap(false) {
		c.log.Warn("connection lost", "error", err)
		c.conn.Close()
	}
	return fmt.Errorf("%w: %w", ErrDisconnected, err)
}

func unexpected(want, got uint8) error {
	return fmt.Errorf("expected %s response, got %s", protocol.ResponseName(want), protocol.ResponseName(got))
}
