package repository

import (
	"context"
	"sync"

	"solar_registration/internal/domain"
)

// MemoryRepo keeps registrations in process memory
type MemoryRepo struct {
	mu      sync.RWMutex
	records []domain.Registration
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Insert(_ context.Context, records []domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		rec.Tree = rec.Tree.Clone()
		r.records = append(r.records, rec)
	}
	return nil
}

func (r *MemoryRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records)), nil
}

// All returns copies of every stored registration in insertion order
func (r *MemoryRepo) All() []domain.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Registration, len(r.records))
	for i, rec := range r.records {
		rec.Tree = rec.Tree.Clone()
		out[i] = rec
	}
	return out
}

func (r *MemoryRepo) Type() string {
	return "memory"
}
