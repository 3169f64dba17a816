package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps live wizard sessions.
type Store interface {
	Save(w *Wizard)
	Get(id uuid.UUID) (*Wizard, bool)
	Delete(id uuid.UUID)
}

// MemoryStore keeps wizards in process memory and forgets those idle for
// longer than ttl.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Wizard
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[uuid.UUID]*Wizard),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Save(w *Wizard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[w.ID()] = w
}

// Get returns the wizard unless it is missing or expired.
func (s *MemoryStore) Get(id uuid.UUID) (*Wizard, bool) {
	s.mu.RLock()
	w, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || s.expired(w) {
		return nil, false
	}
	return w, true
}

func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Len reports the number of stored wizards, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops expired wizards and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, w := range s.items {
		if s.expired(w) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(w *Wizard) bool {
	return s.now().Sub(w.LastSeen()) > s.ttl
}

var _ Store = (*MemoryStore)(nil)
