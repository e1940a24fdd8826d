package conn

import (
	"fmt"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

// handleBlockDiffs applies the client's diffs, forwards them to every other
// client, and answers with the diffs queued for this client.
func (c *Connection) handleBlockDiffs() error {
	diffs, err := protocol.ReadBlockDiffs(c.buf)
	if err != nil {
		return fmt.Errorf("read block diffs: %w", err)
	}

	if len(diffs) > 0 {
		c.world.Apply(diffs, func(applied []protocol.BlockDiff) {
			c.players.Broadcast(c.self, applied)
			c.self.DropSuperseded(applied)
		})
		c.log.Debug("applied block diffs", "count", len(diffs))
	}

	incoming := c.self.TakeIncoming(protocol.MaxDiffsPerPackage)
	c.buf.Reset()
	_ = c.buf.WriteU8(protocol.ResponseUpdateBlockDiffs)
	if _, err := protocol.WriteBlockDiffs(c.buf, incoming); err != nil {
		return fmt.Errorf("write block diffs: %w", err)
	}
	if err := c.send(); err != nil {
		return fmt.Errorf("send block diffs: %w", err)
	}
	return nil
}
