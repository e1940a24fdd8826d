package conn

import (
	"fmt"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// handleLoadChunk answers with ChunkIsUnchanged for chunks the server never
// modified, and with the fragmented compressed snapshot otherwise.
func (c *Connection) handleLoadChunk() error {
	raw, err := c.buf.ReadU64()
	if err != nil {
		return fmt.Errorf("read chunk key: %w", err)
	}
	key := chunk.Key(raw)

	if err := c.limiter.Wait(c.ctx); err != nil {
		return err
	}

	data, touched, err := c.world.EncodeChunk(key)
	if err != nil {
		return fmt.Errorf("encode chunk %d: %w", key, err)
	}

	if !touched {
		c.buf.Reset()
		_ = c.buf.WriteU8(protocol.ResponseChunkIsUnchanged)
		return c.send()
	}

	if err := c.extendWriteDeadline(); err != nil {
		return err
	}
	if err := protocol.WriteChunkData(c.conn, c.buf, data); err != nil {
		return fmt.Errorf("send chunk %d: %w", key, err)
	}
	gx, gz := key.Offset()
	c.log.Debug("sent chunk", "x", gx, "z", gz, "bytes", len(data))
	return nil
}
