package player

import (
	"testing"
	"time"

	"github.com/go-theft-craft/voxelstream/pkg/protocol"
)

func TestAllocateID(t *testing.T) {
	m := NewManager()
	a := m.AllocateID()
	b := m.AllocateID()
	if a != 1 || b != 2 {
		t.Errorf("AllocateID() = %d, %d; want 1, 2", a, b)
	}
}

func TestBroadcastSkipsSenderAndDead(t *testing.T) {
	m := NewManager()
	sender := NewPlayer(m.AllocateID(), "a")
	peer := NewPlayer(m.AllocateID(), "b")
	dead := NewPlayer(m.AllocateID(), "c")
	dead.Disconnect()
	for _, p := range []*Player{sender, peer, dead} {
		m.Add(p)
	}

	m.Broadcast(sender, []protocol.BlockDiff{diff(1, 2, 3, 4)})

	if sender.Pending() != 0 {
		t.Errorf("sender received %d diffs", sender.Pending())
	}
	if peer.Pending() != 1 {
		t.Errorf("peer received %d diffs, want 1", peer.Pending())
	}
	if dead.Pending() != 0 {
		t.Errorf("dead player received %d diffs", dead.Pending())
	}
}

func TestReapWaitsForHandler(t *testing.T) {
	m := NewManager()
	live := NewPlayer(m.AllocateID(), "a")
	gone := NewPlayer(m.AllocateID(), "b")
	m.Add(live)
	m.Add(gone)

	gone.Disconnect()
	finished := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(finished)
		gone.Finish()
	}()

	reaped := m.Reap()
	select {
	case <-finished:
	default:
		t.Fatal("Reap returned before the handler finished")
	}
	if len(reaped) != 1 || reaped[0] != gone {
		t.Errorf("Reap() = %v, want [%d]", reaped, gone.ID)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	if _, ok := m.Get(live.ID); !ok {
		t.Error("live player reaped")
	}
}

func TestDisconnectAll(t *testing.T) {
	m := NewManager()
	p := NewPlayer(m.AllocateID(), "a")
	m.Add(p)
	m.DisconnectAll()
	if p.Alive() {
		t.Error("player alive after DisconnectAll")
	}
}
