package stream

import (
	"context"
	"time"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// loop drains the queue until the running flag is cleared.
func (c *Controller) loop(ctx context.Context) {
	defer c.wg.Done()

	syncer, _ := c.source.(Syncer)
	var lastSync time.Time

	for c.running.Load() {
		if syncer != nil && time.Since(lastSync) >= c.opts.SyncInterval {
			if err := syncer.Sync(ctx, c.terrain); err != nil && ctx.Err() == nil {
				c.log.Warn("sync terrain", "error", err)
			}
			lastSync = time.Now()
		}

		key, ok := c.queue.Pop()
		if !ok {
			c.idle(ctx)
			continue
		}
		c.load(ctx, key)
	}
}

func (c *Controller) idle(ctx context.Context) {
	timer := time.NewTimer(c.opts.IdleInterval)
	defer timer.Stop()

	select {
	case <-c.queue.Wake():
	case <-timer.C:
	case <-ctx.Done():
	}
}

// load resolves one key and inserts it. A failed resolve releases the key so a
// later Update can queue it again.
func (c *Controller) load(ctx context.Context, key chunk.Key) {
	defer c.queue.Done(key)

	if c.terrain.Has(key) {
		return
	}
	ch, err := c.source.ResolveChunk(ctx, key)
	if err != nil {
		if ctx.Err() == nil {
			gx, gz := key.Offset()
			c.log.Warn("resolve chunk", "x", gx, "z", gz, "error", err)
		}
		return
	}
	c.terrain.Insert(key, ch)
}
