package repository

import (
	"context"
	"errors"

	"github.com/soochol/workbench/internal/workbench"
)

var (
	ErrNotFound = errors.New("process not found")
	ErrExists   = errors.New("process already exists")
)

// ProcessRepository is the persistence collaborator for designed processes.
type ProcessRepository interface {
	Create(ctx context.Context, p *workbench.ProcessRecord) error
	Get(ctx context.Context, id string) (*workbench.ProcessRecord, error)
	// List returns processes, most recently updated first.
	List(ctx context.Context) ([]*workbench.ProcessRecord, error)
	Update(ctx context.Context, p *workbench.ProcessRecord) error
	Delete(ctx context.Context, id string) error
}

func newerFirst(a, b *workbench.ProcessRecord) bool {
	if a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.ID < b.ID
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
