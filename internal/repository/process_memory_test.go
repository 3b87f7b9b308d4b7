package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/workbench"
)

func newTestProcess(id string, updated time.Time) *workbench.ProcessRecord {
	return &workbench.ProcessRecord{
		ID:   id,
		Name: "process " + id,
		Definition: workbench.Process{
			Name:   "process " + id,
			Groups: []workbench.Group{{Key: 0, Steps: []workbench.StepKey{}}},
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestMemoryProcessRepository_CRUD(t *testing.T) {
	repo := repository.NewMemoryProcessRepository()
	ctx := context.Background()
	now := time.Now()

	p := newTestProcess("p1", now)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, p); !errors.Is(err, repository.ErrExists) {
		t.Fatalf("duplicate Create: got %v, want ErrExists", err)
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "process p1" {
		t.Errorf("name: got %q", got.Name)
	}

	// Stored records are isolated from the caller's copy.
	got.Name = "mutated"
	got.Definition.Groups[0].Key = 9
	again, _ := repo.Get(ctx, "p1")
	if again.Name != "process p1" || again.Definition.Groups[0].Key != 0 {
		t.Errorf("stored record was mutated: %+v", again)
	}

	p.Name = "renamed"
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.Get(ctx, "p1")
	if got.Name != "renamed" {
		t.Errorf("Update: name = %q", got.Name)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "p1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "p1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete missing: got %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, newTestProcess("nope", now)); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestMemoryProcessRepository_ListNewestFirst(t *testing.T) {
	repo := repository.NewMemoryProcessRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	repo.Create(ctx, newTestProcess("old", base))
	repo.Create(ctx, newTestProcess("new", base.Add(time.Hour)))
	repo.Create(ctx, newTestProcess("mid", base.Add(time.Minute)))

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"new", "mid", "old"}
	if len(list) != len(want) {
		t.Fatalf("List: got %d, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("List[%d] = %q, want %q", i, list[i].ID, id)
		}
	}
}
