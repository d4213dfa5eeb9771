package npc

import (
	"sync"
	"time"
)

// rematchBook tracks when beaten trainers become available again.
// It is safe for concurrent use.
type rematchBook struct {
	mu      sync.RWMutex
	readyAt map[string]time.Time
}

func newRematchBook() *rematchBook {
	return &rematchBook{readyAt: make(map[string]time.Time)}
}

// restore marks trainerID unavailable until readyAt. A later readyAt
// already on the book is kept.
func (b *rematchBook) restore(trainerID string, readyAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.readyAt[trainerID]; ok && cur.After(readyAt) {
		return
	}
	b.readyAt[trainerID] = readyAt
}

// until returns the time trainerID becomes available and whether it is
// still cooling down at now. Expired entries are dropped.
func (b *rematchBook) until(trainerID string, now time.Time) (time.Time, bool) {
	b.mu.RLock()
	at, ok := b.readyAt[trainerID]
	b.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	if !now.Before(at) {
		b.mu.Lock()
		if cur, still := b.readyAt[trainerID]; still && cur.Equal(at) {
			delete(b.readyAt, trainerID)
		}
		b.mu.Unlock()
		return time.Time{}, false
	}
	return at, true
}
