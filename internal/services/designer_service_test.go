package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench"
	"github.com/soochol/workbench/internal/workbench/ports"
)

type stubExecutor struct {
	mu      sync.Mutex
	started []string
	err     error
}

func (e *stubExecutor) Start(_ context.Context, processID string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, processID)
	return "exec-" + processID, nil
}

func newTestDesignerService(t *testing.T, exec *stubExecutor) *DesignerService {
	t.Helper()
	reg, err := tools.NewBuiltinRegistry()
	if err != nil {
		t.Fatalf("builtin registry: %v", err)
	}
	processes := NewProcessService(repository.NewMemoryProcessRepository())
	var executor ports.ProcessExecutor
	if exec != nil {
		executor = exec
	}
	svc := NewDesignerService(designer.New(reg), processes, executor, designer.SessionOptions{})
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestDesignerService_OpenEmpty(t *testing.T) {
	svc := newTestDesignerService(t, nil)

	id, sess, err := svc.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected session id")
	}
	if len(sess.State().Groups) != 1 {
		t.Errorf("expected the single drop group, got %d groups", len(sess.State().Groups))
	}
	got, err := svc.Session(id)
	if err != nil || got != sess {
		t.Fatalf("Session(%s): %v", id, err)
	}
	if pid, _ := svc.ProcessID(id); pid != "" {
		t.Errorf("unsaved session should not be bound, got %q", pid)
	}
}

func TestDesignerService_OpenMissingProcess(t *testing.T) {
	svc := newTestDesignerService(t, nil)
	if _, _, err := svc.Open(context.Background(), "proc-missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDesignerService_SaveAndReopen(t *testing.T) {
	svc := newTestDesignerService(t, nil)
	ctx := context.Background()

	id, sess, err := svc.Open(ctx, "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	for _, in := range []designer.Intent{
		designer.SetProcessProperties{Name: "Athens POIs"},
		designer.AddStep{Group: 0, Tool: workbench.ToolTransform},
	} {
		if _, err := sess.Dispatch(ctx, in); err != nil {
			t.Fatalf("dispatch %s: %v", in.Type(), err)
		}
	}

	rec, err := svc.Save(ctx, id)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if rec.ID == "" || rec.Name != "Athens POIs" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if pid, _ := svc.ProcessID(id); pid != rec.ID {
		t.Errorf("session should be bound to %s, got %q", rec.ID, pid)
	}

	// A second save updates the same record.
	if _, err := sess.Dispatch(ctx, designer.AddStep{Group: 1, Tool: workbench.ToolEnrich}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	again, err := svc.Save(ctx, id)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if again.ID != rec.ID {
		t.Errorf("expected update of %s, got new record %s", rec.ID, again.ID)
	}
	list, _ := svc.processes.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 stored process, got %d", len(list))
	}

	_, reopened, err := svc.Open(ctx, rec.ID)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	state := reopened.State()
	if len(state.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(state.Steps))
	}
	if _, ok := state.Steps[0].Errors["profile"]; !ok {
		t.Errorf("reopened steps should be revalidated, errors = %v", state.Steps[0].Errors)
	}
}

func TestDesignerService_SaveDefaultName(t *testing.T) {
	svc := newTestDesignerService(t, nil)
	id, _, err := svc.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	rec, err := svc.Save(context.Background(), id)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if rec.Name != defaultProcessName {
		t.Errorf("expected %q, got %q", defaultProcessName, rec.Name)
	}
}

func TestDesignerService_Start(t *testing.T) {
	exec := &stubExecutor{}
	svc := newTestDesignerService(t, exec)
	ctx := context.Background()

	id, _, err := svc.Open(ctx, "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	executionID, err := svc.Start(ctx, id)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	pid, _ := svc.ProcessID(id)
	if executionID != "exec-"+pid {
		t.Errorf("execution id: got %q", executionID)
	}
	if len(exec.started) != 1 || exec.started[0] != pid {
		t.Errorf("executor calls: %v", exec.started)
	}

	exec.err = errors.New("executor down")
	if _, err := svc.Start(ctx, id); !errors.Is(err, exec.err) {
		t.Errorf("expected executor error, got %v", err)
	}
}

func TestDesignerService_ConcurrentSave(t *testing.T) {
	exec := &stubExecutor{}
	svc := newTestDesignerService(t, exec)
	ctx := context.Background()

	id, _, err := svc.Open(ctx, "")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = svc.Start(ctx, id)
				ids[i], _ = svc.ProcessID(id)
				return
			}
			rec, err := svc.Save(ctx, id)
			errs[i] = err
			if err == nil {
				ids[i] = rec.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
	list, err := svc.processes.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 stored process, got %d", len(list))
	}
	for i, got := range ids {
		if got != list[0].ID {
			t.Errorf("call %d: got process %q, want %q", i, got, list[0].ID)
		}
	}
	if len(exec.started) != n/2 {
		t.Errorf("expected %d starts, got %d", n/2, len(exec.started))
	}
}

func TestDesignerService_StartWithoutExecutor(t *testing.T) {
	svc := newTestDesignerService(t, nil)
	id, _, _ := svc.Open(context.Background(), "")
	if _, err := svc.Start(context.Background(), id); !errors.Is(err, ErrExecutorNotConfigured) {
		t.Fatalf("expected ErrExecutorNotConfigured, got %v", err)
	}
}

func TestDesignerService_Close(t *testing.T) {
	svc := newTestDesignerService(t, nil)
	ctx := context.Background()
	id, sess, _ := svc.Open(ctx, "")

	if err := svc.Close(id); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := svc.Session(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Close(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second close: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := sess.Dispatch(ctx, designer.SelectProcess{}); !errors.Is(err, designer.ErrSessionClosed) {
		t.Errorf("dispatch after close: expected ErrSessionClosed, got %v", err)
	}
	if _, err := svc.Save(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("save after close: expected ErrSessionNotFound, got %v", err)
	}
}
