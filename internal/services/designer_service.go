package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/workbench"
	"github.com/soochol/workbench/internal/workbench/ports"
)

var (
	ErrSessionNotFound       = errors.New("designer session not found")
	ErrExecutorNotConfigured = errors.New("process executor not configured")
)

const defaultProcessName = "Untitled process"

type designSession struct {
	session   *designer.Session
	processID string

	// saveMu serializes saves so only the first one creates the record.
	saveMu sync.Mutex
}

// DesignerService owns the open designer sessions. Each session edits one
// process and is bound to its stored record once saved.
type DesignerService struct {
	designer  *designer.Designer
	processes *ProcessService
	executor  ports.ProcessExecutor
	opts      designer.SessionOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*designSession
}

// NewDesignerService creates the service. executor may be nil, in which case
// Start reports ErrExecutorNotConfigured.
func NewDesignerService(d *designer.Designer, processes *ProcessService, executor ports.ProcessExecutor, opts designer.SessionOptions) *DesignerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &DesignerService{
		designer:  d,
		processes: processes,
		executor:  executor,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[string]*designSession),
	}
}

// Open starts a session. With a process ID the stored definition is loaded
// and every step is revalidated; otherwise the session starts empty.
func (s *DesignerService) Open(ctx context.Context, processID string) (string, *designer.Session, error) {
	state := designer.NewState()
	if processID != "" {
		rec, err := s.processes.Get(ctx, processID)
		if err != nil {
			return "", nil, err
		}
		if state, err = designer.Deserialize(rec.Definition); err != nil {
			return "", nil, fmt.Errorf("load process %s: %w", processID, err)
		}
	}

	sess := designer.NewSession(s.designer, state, s.opts)
	sess.Start(s.ctx)
	if processID != "" {
		if _, err := sess.ValidateAll(ctx); err != nil {
			sess.Close()
			return "", nil, fmt.Errorf("validate process %s: %w", processID, err)
		}
	}

	id := workbench.GenerateID("sess")
	s.mu.Lock()
	s.sessions[id] = &designSession{session: sess, processID: processID}
	s.mu.Unlock()
	slog.Info("designer session opened", "session", id, "process", processID)
	return id, sess, nil
}

// Session returns the open session with id.
func (s *DesignerService) Session(id string) (*designer.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ds.session, nil
}

// ProcessID returns the stored process a session is bound to, or "".
func (s *DesignerService) ProcessID(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sessions[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ds.processID, nil
}

func (s *DesignerService) Close(id string) error {
	s.mu.Lock()
	ds, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	ds.session.Close()
	slog.Info("designer session closed", "session", id)
	return nil
}

// Save persists the current state of a session, creating the process record
// on first save.
func (s *DesignerService) Save(ctx context.Context, id string) (*workbench.ProcessRecord, error) {
	s.mu.RLock()
	ds, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	ds.saveMu.Lock()
	defer ds.saveMu.Unlock()
	s.mu.RLock()
	processID := ds.processID
	s.mu.RUnlock()

	def := designer.Serialize(ds.session.State())
	name := def.Name
	if name == "" {
		name = defaultProcessName
	}

	if processID != "" {
		rec, err := s.processes.Get(ctx, processID)
		if err != nil {
			return nil, err
		}
		rec.Name = name
		rec.Definition = def
		if err := s.processes.Update(ctx, rec); err != nil {
			return nil, err
		}
		slog.Info("process saved", "session", id, "process", rec.ID)
		return rec, nil
	}

	rec := &workbench.ProcessRecord{Name: name, Definition: def}
	if err := s.processes.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.mu.Lock()
	ds.processID = rec.ID
	s.mu.Unlock()
	slog.Info("process created", "session", id, "process", rec.ID)
	return rec, nil
}

// Start saves the session and asks the executor to run the stored process.
func (s *DesignerService) Start(ctx context.Context, id string) (string, error) {
	if s.executor == nil {
		return "", ErrExecutorNotConfigured
	}
	rec, err := s.Save(ctx, id)
	if err != nil {
		return "", err
	}
	executionID, err := s.executor.Start(ctx, rec.ID)
	if err != nil {
		return "", fmt.Errorf("start process %s: %w", rec.ID, err)
	}
	slog.Info("process started", "process", rec.ID, "execution", executionID)
	return executionID, nil
}

// Shutdown closes every open session.
func (s *DesignerService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*designSession)
	s.mu.Unlock()
	s.cancel()
	for _, ds := range sessions {
		ds.session.Close()
	}
}
