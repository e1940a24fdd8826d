package conn

import (
	"fmt"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

func (c *Connection) handleHandshake(code uint8) error {
	if code != protocol.RequestConnect {
		return fmt.Errorf("expected %s before %s", protocol.RequestName(protocol.RequestConnect), protocol.RequestName(code))
	}

	c.buf.Reset()
	_ = c.buf.WriteU8(protocol.ResponseWorldSettings)
	_ = c.buf.WriteI32(c.cfg.World.Seed)
	_ = c.buf.WriteU32(c.self.ID)
	if err := c.buf.WriteShortString(c.cfg.World.Generator); err != nil {
		return fmt.Errorf("write generator: %w", err)
	}
	if err := c.send(); err != nil {
		return fmt.Errorf("send world settings: %w", err)
	}

	c.state = StateConnected
	c.log.Info("client connected", "seed", c.cfg.World.Seed, "generator", c.cfg.World.Generator)
	return nil
}
