package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soochol/workbench/internal/db"
	"github.com/soochol/workbench/internal/workbench"
)

var _ ProcessRepository = (*PersistentProcessRepository)(nil)

// ProcessDB defines the DB-layer methods needed by the persistent process repo.
// *db.DB satisfies this interface.
type ProcessDB interface {
	CreateProcess(ctx context.Context, p *workbench.ProcessRecord) error
	GetProcess(ctx context.Context, id string) (*workbench.ProcessRecord, error)
	ListProcesses(ctx context.Context) ([]*workbench.ProcessRecord, error)
	UpdateProcess(ctx context.Context, p *workbench.ProcessRecord) error
	DeleteProcess(ctx context.Context, id string) error
}

// PersistentProcessRepository wraps MemoryProcessRepository with a SQL backend.
// Writes go to both. Reads try memory first; on miss, fall back to DB and cache.
type PersistentProcessRepository struct {
	mem *MemoryProcessRepository
	db  ProcessDB
}

func NewPersistentProcessRepository(mem *MemoryProcessRepository, db ProcessDB) *PersistentProcessRepository {
	return &PersistentProcessRepository{mem: mem, db: db}
}

func (r *PersistentProcessRepository) Create(ctx context.Context, p *workbench.ProcessRecord) error {
	if err := r.db.CreateProcess(ctx, p); err != nil {
		return fmt.Errorf("db create process: %w", err)
	}
	r.mem.put(ctx, p)
	return nil
}

func (r *PersistentProcessRepository) Get(ctx context.Context, id string) (*workbench.ProcessRecord, error) {
	if p, err := r.mem.Get(ctx, id); err == nil {
		return p, nil
	}
	p, err := r.db.GetProcess(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r.mem.put(ctx, p)
	return p, nil
}

func (r *PersistentProcessRepository) List(ctx context.Context) ([]*workbench.ProcessRecord, error) {
	processes, err := r.db.ListProcesses(ctx)
	if err == nil {
		return processes, nil
	}
	slog.Warn("db list processes failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx)
}

func (r *PersistentProcessRepository) Update(ctx context.Context, p *workbench.ProcessRecord) error {
	err := r.db.UpdateProcess(ctx, p)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	if err != nil {
		return fmt.Errorf("db update process: %w", err)
	}
	r.mem.put(ctx, p)
	return nil
}

func (r *PersistentProcessRepository) Delete(ctx context.Context, id string) error {
	_ = r.mem.Delete(ctx, id)
	err := r.db.DeleteProcess(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("db delete process: %w", err)
	}
	return nil
}
