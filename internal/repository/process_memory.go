package repository

import (
	"context"
	"errors"
	"fmt"

	memstore "github.com/soochol/workbench/internal/repository/memory"
	"github.com/soochol/workbench/internal/workbench"
)

var _ ProcessRepository = (*MemoryProcessRepository)(nil)

// MemoryProcessRepository is a thread-safe in-memory ProcessRepository.
type MemoryProcessRepository struct {
	store *memstore.Store[*workbench.ProcessRecord]
}

// NewMemoryProcessRepository creates an empty in-memory repository.
func NewMemoryProcessRepository() *MemoryProcessRepository {
	return &MemoryProcessRepository{
		store: memstore.New(
			func(p *workbench.ProcessRecord) string { return p.ID },
			(*workbench.ProcessRecord).Clone,
		),
	}
}

func (r *MemoryProcessRepository) Create(ctx context.Context, p *workbench.ProcessRecord) error {
	if err := r.store.Insert(ctx, p); errors.Is(err, memstore.ErrExists) {
		return fmt.Errorf("%w: %s", ErrExists, p.ID)
	}
	return nil
}

func (r *MemoryProcessRepository) Get(ctx context.Context, id string) (*workbench.ProcessRecord, error) {
	p, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

func (r *MemoryProcessRepository) List(ctx context.Context) ([]*workbench.ProcessRecord, error) {
	return r.store.Sorted(ctx, newerFirst)
}

func (r *MemoryProcessRepository) Update(ctx context.Context, p *workbench.ProcessRecord) error {
	if err := r.store.Replace(ctx, p); errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return nil
}

func (r *MemoryProcessRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); errors.Is(err, memstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// put caches p regardless of whether it exists.
func (r *MemoryProcessRepository) put(ctx context.Context, p *workbench.ProcessRecord) {
	_ = r.store.Set(ctx, p)
}
