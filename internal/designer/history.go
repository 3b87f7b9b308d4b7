package designer

const DefaultHistoryLimit = 100

// History keeps the present state with undo and redo snapshots. States are
// immutable, so snapshots are shared rather than copied.
type History struct {
	past   []*State
	future []*State
	now    *State
	limit  int
}

// NewHistory starts a history at initial. A limit below one uses
// DefaultHistoryLimit.
func NewHistory(initial *State, limit int) *History {
	if initial == nil {
		initial = NewState()
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{now: initial, limit: limit}
}

func (h *History) Present() *State { return h.now }

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Apply runs in through d and moves the present forward. Undo and Redo step
// through the snapshots; an intent that leaves the state unchanged records
// nothing.
func (h *History) Apply(d *Designer, in Intent) (*State, error) {
	switch in.(type) {
	case Undo:
		h.undo()
		return h.now, nil
	case Redo:
		h.redo()
		return h.now, nil
	}

	next, err := d.Apply(h.now, in)
	if err != nil {
		return h.now, err
	}
	if next == h.now {
		return h.now, nil
	}
	if in.recorded() {
		h.past = append(h.past, h.now)
		if len(h.past) > h.limit {
			h.past = h.past[len(h.past)-h.limit:]
		}
		h.future = nil
	}
	h.now = next
	return h.now, nil
}

func (h *History) undo() {
	if len(h.past) == 0 {
		return
	}
	restored := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.now)
	h.now = carryCounters(restored, h.now)
}

func (h *History) redo() {
	if len(h.future) == 0 {
		return
	}
	restored := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.now)
	h.now = carryCounters(restored, h.now)
}

// carryCounters returns restored with its key counters and validation
// sequence raised to at least those of from. Keys issued by a state that is
// stepped away from are never handed out again.
func carryCounters(restored, from *State) *State {
	c := restored.Counters
	c.Step = max(c.Step, from.Counters.Step)
	c.Resource = max(c.Resource, from.Counters.Resource)
	seq := max(restored.ValidationSeq, from.ValidationSeq)
	if c == restored.Counters && seq == restored.ValidationSeq {
		return restored
	}
	next := restored.Clone()
	next.Counters = c
	next.ValidationSeq = seq
	return next
}
