package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxelstream/internal/terrain"
	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// Options configures a Controller.
type Options struct {
	// VisibleRadius is the render distance in chunks.
	VisibleRadius int
	// IdleInterval is how long the loader sleeps on an empty queue.
	IdleInterval time.Duration
	// SyncInterval is the minimum time between Syncer calls.
	SyncInterval time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		VisibleRadius: 4,
		IdleInterval:  10 * time.Millisecond,
		SyncInterval:  100 * time.Millisecond,
	}
}

// Controller keeps the chunks around an observer resident in a terrain.
type Controller struct {
	terrain *terrain.Terrain
	source  Source
	queue   *Queue
	opts    Options
	log     *slog.Logger

	minRadius   int
	purgeRadius int
	maxResident int

	running *atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns a controller loading into t from src. Call Start to run the
// background loader.
func New(t *terrain.Terrain, src Source, opts Options, log *slog.Logger) *Controller {
	purge := opts.VisibleRadius + 2
	side := 2*purge + 1
	return &Controller{
		terrain:     t,
		source:      src,
		queue:       NewQueue(),
		opts:        opts,
		log:         log,
		minRadius:   opts.VisibleRadius + 1,
		purgeRadius: purge,
		maxResident: side * side * 3,
		running:     atomic.NewBool(false),
	}
}

// Terrain returns the terrain the controller loads into.
func (c *Controller) Terrain() *terrain.Terrain { return c.terrain }

// Queue returns the pending-load queue.
func (c *Controller) Queue() *Queue { return c.queue }

// MaxResident returns the resident chunk count above which Update evicts.
func (c *Controller) MaxResident() int { return c.maxResident }

// Start launches the background loader. It is a no-op if already running.
func (c *Controller) Start() {
	if c.running.Swap(true) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.loop(ctx)
}

// Stop clears the running flag, wakes the loader and waits for it. Keys still
// queued are dropped.
func (c *Controller) Stop() {
	if !c.running.Swap(false) {
		return
	}
	c.cancel()
	c.wg.Wait()
	c.queue.Clear()
}

// Close stops the loader and saves every dirty chunk.
func (c *Controller) Close() error {
	c.Stop()
	return c.Save()
}

// Update queues every chunk within the load radius of pos that is neither
// resident nor pending, then evicts chunks beyond the purge radius once the
// resident count exceeds MaxResident.
func (c *Controller) Update(pos mgl64.Vec3) error {
	for _, key := range chunk.RectAround(pos.X(), pos.Z(), c.minRadius).Keys() {
		if c.terrain.Has(key) || c.queue.Pending(key) {
			continue
		}
		c.queue.Push(key)
	}

	if c.terrain.Len() <= c.maxResident {
		return nil
	}
	evicted, err := c.terrain.Unload(chunk.RectAround(pos.X(), pos.Z(), c.purgeRadius), c.source.PersistChunk)
	if len(evicted) > 0 {
		c.log.Debug("evicted chunks", "count", len(evicted), "resident", c.terrain.Len())
	}
	if err != nil {
		return fmt.Errorf("unload distant chunks: %w", err)
	}
	return nil
}

// LoadSurroundingSync loads every missing chunk within the load radius of pos
// before returning.
func (c *Controller) LoadSurroundingSync(ctx context.Context, pos mgl64.Vec3) error {
	for _, key := range chunk.RectAround(pos.X(), pos.Z(), c.minRadius).Keys() {
		if c.terrain.Has(key) {
			continue
		}
		ch, err := c.source.ResolveChunk(ctx, key)
		if err != nil {
			gx, gz := key.Offset()
			return fmt.Errorf("load chunk (%d, %d): %w", gx, gz, err)
		}
		c.terrain.Insert(key, ch)
	}
	return nil
}

// GetBlock returns the block at world coordinates.
func (c *Controller) GetBlock(x, y, z int) uint32 {
	return c.terrain.GetBlock(x, y, z)
}

// SetBlock writes a block into a resident chunk and, when the source observes
// edits, forwards it there. The observer hears the edit before the terrain
// changes.
func (c *Controller) SetBlock(x, y, z int, typ uint32) bool {
	obs, ok := c.source.(BlockObserver)
	if !ok {
		return c.terrain.SetBlock(x, y, z, typ)
	}
	if y < 0 || y >= chunk.Height || !c.terrain.Has(chunk.KeyAt(x, z)) {
		return false
	}
	obs.ObserveBlock(x, y, z, typ)
	return c.terrain.SetBlock(x, y, z, typ)
}

// Save persists every dirty chunk.
func (c *Controller) Save() error {
	saved, err := c.terrain.SaveDirty(c.source.PersistChunk)
	if saved > 0 {
		c.log.Info("saved chunks", "count", saved)
	}
	if err != nil {
		return fmt.Errorf("save terrain: %w", err)
	}
	return nil
}
