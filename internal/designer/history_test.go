package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/workbench/internal/workbench"
)

func TestHistoryUndoRedo(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(nil, 0)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	afterFirst := h.Present()
	_, err = h.Apply(d, AddStep{Group: 1, Tool: workbench.ToolEnrich})
	require.NoError(t, err)
	afterSecond := h.Present()
	require.Len(t, afterSecond.Steps, 2)

	s, err := h.Apply(d, Undo{})
	require.NoError(t, err)
	assert.Equal(t, afterFirst.Steps, s.Steps)
	assert.Equal(t, afterSecond.Counters, s.Counters)
	assert.True(t, h.CanRedo())

	s, err = h.Apply(d, Redo{})
	require.NoError(t, err)
	assert.Same(t, afterSecond, s)
	assert.False(t, h.CanRedo())

	_, _ = h.Apply(d, Undo{})
	_, _ = h.Apply(d, Undo{})
	assert.Empty(t, h.Present().Steps)
	assert.False(t, h.CanUndo())

	s, err = h.Apply(d, Undo{})
	require.NoError(t, err)
	assert.Empty(t, s.Steps)
}

func TestHistoryRecordedIntents(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 10)

	_, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
	require.NoError(t, err)
	_, err = h.Apply(d, SelectStep{Step: 1})
	require.NoError(t, err)
	_, err = h.Apply(d, FilterResource{Filter: "CATALOG"})
	require.NoError(t, err)
	assert.Equal(t, workbench.SelectStep, h.Present().Selection.Type)

	// Only the AddStep was recorded.
	_, _ = h.Apply(d, Undo{})
	assert.Empty(t, h.Present().Steps)
	assert.False(t, h.CanUndo())
}

func TestHistoryNewIntentClearsRedo(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 10)

	_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
	_, _ = h.Apply(d, Undo{})
	require.True(t, h.CanRedo())

	_, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolEnrich})
	require.NoError(t, err)
	assert.False(t, h.CanRedo())
	assert.Equal(t, workbench.ToolEnrich, h.Present().Steps[0].Tool)
}

func TestHistoryRejectedIntentNotRecorded(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 10)

	_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolRegister})
	before := h.Present()
	s, err := h.Apply(d, CloneStep{Step: 1})
	require.NoError(t, err)
	assert.Same(t, before, s)

	_, _ = h.Apply(d, Undo{})
	assert.Empty(t, h.Present().Steps)

	_, err = h.Apply(d, RemoveStep{Step: 99})
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestHistoryLimit(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 3)
	for i := 0; i < 5; i++ {
		_, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
		require.NoError(t, err)
	}
	undone := 0
	for h.CanUndo() {
		_, _ = h.Apply(d, Undo{})
		undone++
	}
	assert.Equal(t, 3, undone)
	assert.Len(t, h.Present().Steps, 2)
}

func TestHistoryUndoKeepsCounters(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 10)

	_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
	_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
	_, _ = h.Apply(d, Undo{})
	s, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolEnrich})
	require.NoError(t, err)
	assert.Equal(t, []workbench.StepKey{1, 3}, stepKeys(s))
	assert.Equal(t, []workbench.ResourceKey{1, 3}, resourceKeys(s))

	t.Run("undone key is not reissued", func(t *testing.T) {
		h := NewHistory(NewState(), 10)
		first, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolInterlink})
		require.NoError(t, err)
		_, _ = h.Apply(d, Undo{})
		next, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolFuse})
		require.NoError(t, err)
		assert.NotEqual(t, first.Steps[0].Key, next.Steps[0].Key)
		require.NotNil(t, first.Steps[0].OutputKey)
		require.NotNil(t, next.Steps[0].OutputKey)
		assert.NotEqual(t, *first.Steps[0].OutputKey, *next.Steps[0].OutputKey)
	})

	t.Run("redo keeps the higher counters", func(t *testing.T) {
		h := NewHistory(NewState(), 10)
		_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
		_, _ = h.Apply(d, Undo{})
		_, _ = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolTransform})
		_, _ = h.Apply(d, Undo{})
		s, err := h.Apply(d, Redo{})
		require.NoError(t, err)
		assert.Equal(t, []workbench.StepKey{2}, stepKeys(s))
		assert.Equal(t, 2, s.Counters.Step)
	})
}

func TestHistoryStaleValidationAfterUndo(t *testing.T) {
	d := newTestDesigner(t)
	h := NewHistory(NewState(), 10)
	target := StepTarget(1)

	s, err := h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolInterlink})
	require.NoError(t, err)
	_, err = h.Apply(d, ConfigureBegin{Target: target, Configuration: s.Steps[0].Configuration})
	require.NoError(t, err)
	s, err = h.Apply(d, RequestValidation{Target: target})
	require.NoError(t, err)
	e, ok := s.Editor(target)
	require.True(t, ok)
	staleSeq := e.Seq

	_, _ = h.Apply(d, Undo{})
	_, _ = h.Apply(d, Undo{})
	require.Empty(t, h.Present().Steps)

	s, err = h.Apply(d, AddStep{Group: 0, Tool: workbench.ToolFuse})
	require.NoError(t, err)
	fuse := StepTarget(s.Steps[0].Key)
	_, err = h.Apply(d, ConfigureBegin{Target: fuse, Configuration: s.Steps[0].Configuration})
	require.NoError(t, err)
	s, err = h.Apply(d, RequestValidation{Target: fuse})
	require.NoError(t, err)
	e, _ = s.Editor(fuse)
	assert.Greater(t, e.Seq, staleSeq)

	before := h.Present()
	s, err = h.Apply(d, ConfigureValidate{Target: fuse, Errors: workbench.Errors{"metric": "unknown metric"}, Seq: staleSeq})
	require.NoError(t, err)
	assert.Same(t, before, s)
	e, _ = s.Editor(fuse)
	assert.NotContains(t, e.Errors, "metric")
}
