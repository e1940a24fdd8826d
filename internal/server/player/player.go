package player

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

// Player is the server-side state of one connected client: the diffs other
// clients made that it has not received yet, and whether its handler is alive.
type Player struct {
	ID   uint32
	Addr string

	mu       sync.Mutex
	incoming []protocol.BlockDiff

	alive *atomic.Bool
	done  chan struct{}
	once  sync.Once
}

// NewPlayer creates a live player.
func NewPlayer(id uint32, addr string) *Player {
	return &Player{
		ID:    id,
		Addr:  addr,
		alive: atomic.NewBool(true),
		done:  make(chan struct{}),
	}
}

// Queue appends diffs for delivery on the player's next UpdateBlockDiffs.
func (p *Player) Queue(diffs []protocol.BlockDiff) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.incoming = append(p.incoming, diffs...)
}

// TakeIncoming removes and returns up to max queued diffs, oldest first.
func (p *Player) TakeIncoming(max int) []protocol.BlockDiff {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := min(max, len(p.incoming))
	out := make([]protocol.BlockDiff, n)
	copy(out, p.incoming[:n])
	p.incoming = p.incoming[n:]
	return out
}

// DropSuperseded removes queued diffs at any coordinate in written. The player
// itself just wrote those blocks and the server applied its write last, so the
// queued values are older than what the player already holds.
func (p *Player) DropSuperseded(written []protocol.BlockDiff) {
	if len(written) == 0 {
		return
	}
	type pos struct{ x, y, z int32 }
	at := make(map[pos]struct{}, len(written))
	for _, d := range written {
		at[pos{d.X, d.Y, d.Z}] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.incoming[:0]
	for _, d := range p.incoming {
		if _, ok := at[pos{d.X, d.Y, d.Z}]; !ok {
			kept = append(kept, d)
		}
	}
	p.incoming = kept
}

// Pending returns the number of queued diffs.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.incoming)
}

// Alive reports whether the player's handler is still serving it.
func (p *Player) Alive() bool { return p.alive.Load() }

// Disconnect marks the player dead. Broadcasts skip it from then on.
func (p *Player) Disconnect() { p.alive.Store(false) }

// Finish marks the player dead and signals that its handler has returned.
func (p *Player) Finish() {
	p.alive.Store(false)
	p.once.Do(func() { close(p.done) })
}

// Done is closed once the player's handler has returned.
func (p *Player) Done() <-chan struct{} { return p.done }
