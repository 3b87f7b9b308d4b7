package services

import (
	"context"
	"errors"
	"time"

	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/workbench"
)

var ErrNameRequired = errors.New("process name is required")

// ProcessService manages stored process definitions.
type ProcessService struct {
	repo repository.ProcessRepository
}

func NewProcessService(repo repository.ProcessRepository) *ProcessService {
	return &ProcessService{repo: repo}
}

// Create stores a new process. The definition must satisfy every designer
// invariant.
func (s *ProcessService) Create(ctx context.Context, p *workbench.ProcessRecord) error {
	if _, err := designer.Deserialize(p.Definition); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = workbench.GenerateID("proc")
	}
	if p.Name == "" {
		p.Name = p.Definition.Name
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.repo.Create(ctx, p)
}

func (s *ProcessService) Get(ctx context.Context, id string) (*workbench.ProcessRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProcessService) List(ctx context.Context) ([]*workbench.ProcessRecord, error) {
	return s.repo.List(ctx)
}

func (s *ProcessService) Update(ctx context.Context, p *workbench.ProcessRecord) error {
	if _, err := designer.Deserialize(p.Definition); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return s.repo.Update(ctx, p)
}

func (s *ProcessService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
