package services

import (
	"context"
	"errors"
	"testing"

	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/workbench"
)

func emptyDefinition(name string) workbench.Process {
	p := designer.Serialize(designer.NewState())
	p.Name = name
	return p
}

func TestProcessService_CreateAndGet(t *testing.T) {
	svc := NewProcessService(repository.NewMemoryProcessRepository())
	ctx := context.Background()

	p := &workbench.ProcessRecord{Definition: emptyDefinition("Athens POIs")}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.ID == "" {
		t.Error("expected ID to be generated")
	}
	if p.Name != "Athens POIs" {
		t.Errorf("name should default to the definition name, got %q", p.Name)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Athens POIs" {
		t.Errorf("expected name 'Athens POIs', got %q", got.Name)
	}
}

func TestProcessService_CreateRejectsInvalid(t *testing.T) {
	svc := NewProcessService(repository.NewMemoryProcessRepository())
	ctx := context.Background()

	broken := emptyDefinition("broken")
	broken.Groups = append(broken.Groups, workbench.Group{Key: 1, Steps: []workbench.StepKey{}})
	err := svc.Create(ctx, &workbench.ProcessRecord{Definition: broken})
	if !errors.Is(err, designer.ErrInvalidProcess) {
		t.Fatalf("expected ErrInvalidProcess, got %v", err)
	}

	err = svc.Create(ctx, &workbench.ProcessRecord{Definition: emptyDefinition("")})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Errorf("rejected processes must not be stored, got %d", len(list))
	}
}

func TestProcessService_UpdateAndDelete(t *testing.T) {
	svc := NewProcessService(repository.NewMemoryProcessRepository())
	ctx := context.Background()

	p := &workbench.ProcessRecord{Definition: emptyDefinition("v1")}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	created := p.UpdatedAt

	p.Name = "v2"
	p.Definition.Name = "v2"
	if err := svc.Update(ctx, p); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if p.UpdatedAt.Before(created) {
		t.Error("expected UpdatedAt to move forward")
	}
	got, _ := svc.Get(ctx, p.ID)
	if got.Definition.Name != "v2" {
		t.Errorf("expected definition name v2, got %q", got.Definition.Name)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
