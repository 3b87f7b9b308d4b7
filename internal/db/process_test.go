package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soochol/workbench/internal/workbench"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	d, err := New(ctx, DriverSQLite, filepath.Join(t.TempDir(), "workbench.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return d
}

func newRecord(id, name string, updated time.Time) *workbench.ProcessRecord {
	step := workbench.StepKey(1)
	out := workbench.ResourceKey(1)
	return &workbench.ProcessRecord{
		ID:   id,
		Name: name,
		Definition: workbench.Process{
			Name: name,
			Groups: []workbench.Group{
				{Key: 0, Steps: []workbench.StepKey{1}},
				{Key: 1, Steps: []workbench.StepKey{}},
			},
			Steps: []workbench.Step{{
				Key:           1,
				Name:          "TripleGeo",
				Tool:          workbench.ToolTransform,
				Input:         []workbench.StepInput{},
				DataSources:   []workbench.DataSource{},
				OutputKey:     &out,
				Configuration: workbench.Configuration{"profile": "osm"},
			}},
			Resources: []workbench.Resource{{
				Key:          1,
				InputType:    workbench.InputOutput,
				ResourceType: workbench.ResourcePOIData,
				Name:         "TripleGeo",
				StepKey:      &step,
				Tool:         workbench.ToolTransform,
			}},
			Counters: workbench.Counters{Step: 1, Resource: 1},
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	lite := &DB{Driver: DriverSQLite}
	q := `UPDATE processes SET name = $1, definition = $2 WHERE id = $10`
	if got := pg.rebind(q); got != q {
		t.Errorf("postgres rebind changed query: %q", got)
	}
	want := `UPDATE processes SET name = ?1, definition = ?2 WHERE id = ?10`
	if got := lite.rebind(q); got != want {
		t.Errorf("sqlite rebind: got %q, want %q", got, want)
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := New(context.Background(), "oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestProcessCRUD(t *testing.T) {
	d := openSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := d.CreateProcess(ctx, newRecord("p1", "first", base)); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if err := d.CreateProcess(ctx, newRecord("p2", "second", base.Add(time.Hour))); err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}

	got, err := d.GetProcess(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProcess: %v", err)
	}
	if got.Name != "first" || len(got.Definition.Steps) != 1 {
		t.Errorf("GetProcess: got %+v", got)
	}
	if got.Definition.Steps[0].Configuration["profile"] != "osm" {
		t.Errorf("configuration not restored: %v", got.Definition.Steps[0].Configuration)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, base)
	}

	list, err := d.ListProcesses(ctx)
	if err != nil {
		t.Fatalf("ListProcesses: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p2" {
		t.Fatalf("ListProcesses: want p2 first, got %d records", len(list))
	}

	updated := newRecord("p1", "renamed", base.Add(2*time.Hour))
	if err := d.UpdateProcess(ctx, updated); err != nil {
		t.Fatalf("UpdateProcess: %v", err)
	}
	got, _ = d.GetProcess(ctx, "p1")
	if got.Name != "renamed" {
		t.Errorf("UpdateProcess: name = %q", got.Name)
	}

	if err := d.DeleteProcess(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProcess: %v", err)
	}
	if _, err := d.GetProcess(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProcess after delete: got %v, want ErrNotFound", err)
	}
	if err := d.DeleteProcess(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProcess twice: got %v, want ErrNotFound", err)
	}
	if err := d.UpdateProcess(ctx, newRecord("missing", "x", base)); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProcess missing: got %v, want ErrNotFound", err)
	}
}
