package player

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

// Manager tracks all connected players.
type Manager struct {
	mu      sync.RWMutex
	players map[uint32]*Player
	nextID  *atomic.Uint32
}

// NewManager creates an empty player manager.
func NewManager() *Manager {
	return &Manager{
		players: make(map[uint32]*Player),
		nextID:  atomic.NewUint32(0),
	}
}

// AllocateID returns the next unique player ID, starting at 1.
func (m *Manager) AllocateID() uint32 {
	return m.nextID.Inc()
}

// Add registers a player.
func (m *Manager) Add(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
}

// Get returns the player with the given ID.
func (m *Manager) Get(id uint32) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	return p, ok
}

// Count returns the number of registered players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Broadcast queues diffs for every live player except from.
func (m *Manager) Broadcast(from *Player, diffs []protocol.BlockDiff) {
	if len(diffs) == 0 {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.players {
		if p == from || !p.Alive() {
			continue
		}
		p.Queue(diffs)
	}
}

// Reap unregisters every dead player, waits for its handler to return, and
// reports the removed players.
func (m *Manager) Reap() []*Player {
	m.mu.Lock()
	var dead []*Player
	for id, p := range m.players {
		if !p.Alive() {
			dead = append(dead, p)
			delete(m.players, id)
		}
	}
	m.mu.Unlock()

	for _, p := range dead {
		<-p.Done()
	}
	return dead
}

// DisconnectAll marks every player dead.
func (m *Manager) DisconnectAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		p.Disconnect()
	}
}
