package designer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const DefaultQueueSize = 64

var (
	ErrSessionClosed  = errors.New("designer session closed")
	ErrNotConfiguring = errors.New("no configuration in progress")
)

// Snapshot is the state published after an intent was applied.
type Snapshot struct {
	State   *State `json:"state"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
}

type request struct {
	intent Intent
	reply  chan reply
}

type reply struct {
	state *State
	err   error
}

// Session owns the mutable cell holding the current state. Intents are
// applied one at a time by a single goroutine; readers only ever see
// published snapshots.
type Session struct {
	designer *Designer
	history  *History
	queue    chan request
	current  atomic.Pointer[Snapshot]

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	startOnce sync.Once
	workers   sync.WaitGroup
}

// SessionOptions tunes a session. Zero values use the defaults.
type SessionOptions struct {
	HistoryLimit int
	QueueSize    int
}

func NewSession(d *Designer, initial *State, opts SessionOptions) *Session {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	s := &Session{
		designer: d,
		history:  NewHistory(initial, opts.HistoryLimit),
		queue:    make(chan request, opts.QueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	s.publish()
	return s
}

// Start launches the dispatch loop. It stops when ctx is cancelled or Close
// is called.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-s.done:
			return
		case req := <-s.queue:
			state, err := s.history.Apply(s.designer, req.intent)
			s.publish()
			req.reply <- reply{state: state, err: err}
		}
	}
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Close stops the dispatch loop and waits for pending validations to finish.
func (s *Session) Close() {
	s.shutdown()
	started := true
	s.startOnce.Do(func() { started = false })
	if started {
		<-s.stopped
	}
	s.workers.Wait()
}

func (s *Session) publish() {
	s.current.Store(&Snapshot{
		State:   s.history.Present(),
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
	})
}

// Snapshot returns the last published snapshot.
func (s *Session) Snapshot() *Snapshot { return s.current.Load() }

// State returns the last published state.
func (s *Session) State() *State { return s.current.Load().State }

// Dispatch queues in and waits until it has been applied. The returned state
// is the one right after in, regardless of intents queued later.
func (s *Session) Dispatch(ctx context.Context, in Intent) (*State, error) {
	req := request{intent: in, reply: make(chan reply, 1)}
	select {
	case s.queue <- req:
	case <-s.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.state, r.err
	case <-s.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Validation tracks one asynchronous validation run. Done is closed once the
// result has been dispatched, whether or not it was still current.
type Validation struct {
	Seq  uint64
	Done <-chan struct{}
}

// Validate validates the in-progress configuration of target in the
// background. Only the result of the most recent request for a target is
// attached to its editor.
func (s *Session) Validate(ctx context.Context, target Target) (*Validation, error) {
	state, err := s.Dispatch(ctx, RequestValidation{Target: target})
	if err != nil {
		return nil, err
	}
	editor, ok := state.Editor(target)
	if !ok {
		return nil, ErrNotConfiguring
	}
	seq := editor.Seq
	cfg := editor.Current.Clone()

	bg := context.WithoutCancel(ctx)
	done := make(chan struct{})
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		defer close(done)
		errs, err := s.designer.ValidateTarget(state, target, cfg)
		if err != nil {
			s.designer.logger.Warn("validation failed", "step", target.Step, "error", err)
			return
		}
		if _, err := s.Dispatch(bg, ConfigureValidate{Target: target, Errors: errs, Seq: seq}); err != nil {
			s.designer.logger.Debug("validation result dropped", "step", target.Step, "seq", seq, "error", err)
		}
	}()
	return &Validation{Seq: seq, Done: done}, nil
}

// ValidateAll revalidates every committed step configuration concurrently and
// refreshes the stored errors of steps that did not change in the meantime.
func (s *Session) ValidateAll(ctx context.Context) (*State, error) {
	state := s.State()
	results := make([]StepValidation, len(state.Steps))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range state.Steps {
		i, st := i, st
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs, err := s.designer.ValidateTarget(state, StepTarget(st.Key), st.Configuration)
			if err != nil {
				return err
			}
			results[i] = StepValidation{
				Step:          st.Key,
				Configuration: st.Configuration.Clone(),
				Errors:        errs,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, RefreshErrors{Results: results})
}
