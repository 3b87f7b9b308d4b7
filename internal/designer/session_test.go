package designer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/workbench/internal/workbench"
)

func startSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(newTestDesigner(t), nil, SessionOptions{})
	s.Start(context.Background())
	t.Cleanup(s.Close)
	return s
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for validation")
	}
}

func TestSessionDispatch(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	state, err := s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	require.Len(t, state.Steps, 1)
	assert.Same(t, state, s.State())

	snap := s.Snapshot()
	assert.True(t, snap.CanUndo)
	assert.False(t, snap.CanRedo)

	state, err = s.Dispatch(ctx, Undo{})
	require.NoError(t, err)
	assert.Empty(t, state.Steps)
	assert.True(t, s.Snapshot().CanRedo)

	_, err = s.Dispatch(ctx, RemoveStep{Step: 42})
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestSessionDispatchOrder(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	results := make(chan *State, 10)
	for i := 0; i < 10; i++ {
		go func() {
			st, err := s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolEnrich})
			if err == nil {
				results <- st
			}
		}()
	}
	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		select {
		case st := <-results:
			seen[len(st.Steps)] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for dispatch")
		}
	}
	// Each reply carries the state right after its own intent.
	assert.Len(t, seen, 10)
	assert.Len(t, s.State().Steps, 10)
}

func TestSessionValidate(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	state, err := s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	target := StepTarget(1)
	_, err = s.Dispatch(ctx, ConfigureBegin{Target: target, Configuration: state.Steps[0].Configuration})
	require.NoError(t, err)

	v, err := s.Validate(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Seq)
	waitDone(t, v.Done)
	e, ok := s.State().Editor(target)
	require.True(t, ok)
	assert.Contains(t, e.Errors, "profile")

	cfg := state.Steps[0].Configuration.Clone()
	cfg["profile"] = "osm"
	_, err = s.Dispatch(ctx, ConfigureUpdate{Target: target, Configuration: cfg})
	require.NoError(t, err)
	v, err = s.Validate(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Seq)
	waitDone(t, v.Done)
	e, _ = s.State().Editor(target)
	assert.Empty(t, e.Errors)
	assert.Equal(t, PhaseValidate, e.Phase)
}

func TestSessionValidateLastIssuedWins(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	state, err := s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	target := StepTarget(1)
	_, err = s.Dispatch(ctx, ConfigureBegin{Target: target, Configuration: state.Steps[0].Configuration})
	require.NoError(t, err)

	stale, err := s.Validate(ctx, target)
	require.NoError(t, err)

	cfg := state.Steps[0].Configuration.Clone()
	cfg["profile"] = "osm"
	_, err = s.Dispatch(ctx, ConfigureUpdate{Target: target, Configuration: cfg})
	require.NoError(t, err)
	latest, err := s.Validate(ctx, target)
	require.NoError(t, err)
	require.Greater(t, latest.Seq, stale.Seq)

	waitDone(t, stale.Done)
	waitDone(t, latest.Done)

	// Whatever order the results arrived in, the editor shows the latest one.
	e, _ := s.State().Editor(target)
	assert.Empty(t, e.Errors)
	assert.Equal(t, latest.Seq, e.Seq)
}

func TestSessionValidateWithoutEditor(t *testing.T) {
	s := startSession(t)
	_, err := s.Dispatch(context.Background(), AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)

	_, err = s.Validate(context.Background(), StepTarget(1))
	assert.ErrorIs(t, err, ErrNotConfiguring)
}

func TestSessionValidateAll(t *testing.T) {
	s := startSession(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, AddStep{Group: 0, Tool: workbench.ToolEnrich})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, SetConfiguration{
		Target:        StepTarget(1),
		Configuration: workbench.Configuration{"profile": "osm", "version": "1.8", "inputFormat": "CSV", "sourceCRS": "EPSG:4326", "targetCRS": "EPSG:2100"},
	})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, SetConfiguration{
		Target:        StepTarget(2),
		Configuration: workbench.Configuration{"version": "2.2"},
	})
	require.NoError(t, err)

	state, err := s.ValidateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Steps[0].Errors)
	assert.Contains(t, state.Steps[1].Errors, "profile")
}

func TestSessionClosed(t *testing.T) {
	s := NewSession(newTestDesigner(t), nil, SessionOptions{QueueSize: 1})
	s.Start(context.Background())
	s.Close()

	_, err := s.Dispatch(context.Background(), ClearSelection{})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionStopsWithContext(t *testing.T) {
	s := NewSession(newTestDesigner(t), nil, SessionOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	require.Eventually(t, func() bool {
		_, err := s.Dispatch(context.Background(), ClearSelection{})
		return err == ErrSessionClosed
	}, 5*time.Second, 10*time.Millisecond)
	s.Close()
}
