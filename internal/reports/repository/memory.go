package repository

import (
	"context"
	"sync"

	"avalia_backend/internal/valuation/domain"
)

// MemoryRepo keeps report lists in process memory. Lists are stored
// serialized so reads go through the same upgrade path as durable backends.
type MemoryRepo struct {
	mu    sync.RWMutex
	lists map[string][]byte
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{lists: make(map[string][]byte)}
}

func (r *MemoryRepo) List(_ context.Context, email string) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return decodeList(r.lists[StorageKey(email)])
}

func (r *MemoryRepo) Append(_ context.Context, email string, report domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := StorageKey(email)
	list, err := decodeList(r.lists[key])
	if err != nil {
		return err
	}
	data, err := encodeList(prepend(list, report))
	if err != nil {
		return err
	}
	r.lists[key] = data
	return nil
}

// Put stores a raw serialized list; used to seed data written by older clients.
func (r *MemoryRepo) Put(email string, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[StorageKey(email)] = raw
}

var _ Repository = (*MemoryRepo)(nil)
