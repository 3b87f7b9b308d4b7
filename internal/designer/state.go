// Package designer is the process designer core: the in-memory model of a
// workflow under edit and the transitions that mutate it.
//
// A State is never modified in place. Designer.Apply returns a new State for
// every accepted intent, so earlier states can be kept as undo snapshots.
package designer

import (
	"github.com/soochol/workbench/internal/workbench"
)

// Target addresses a configurable entity: a step, or one of its data sources.
type Target struct {
	Step       workbench.StepKey `json:"step"`
	DataSource *int              `json:"dataSource,omitempty"`
}

// StepTarget addresses the configuration of step.
func StepTarget(step workbench.StepKey) Target { return Target{Step: step} }

// DataSourceTarget addresses the configuration of data source key of step.
func DataSourceTarget(step workbench.StepKey, key int) Target {
	return Target{Step: step, DataSource: &key}
}

func (t Target) Equal(o Target) bool {
	if t.Step != o.Step {
		return false
	}
	if t.DataSource == nil || o.DataSource == nil {
		return t.DataSource == nil && o.DataSource == nil
	}
	return *t.DataSource == *o.DataSource
}

func (t Target) clone() Target {
	if t.DataSource != nil {
		k := *t.DataSource
		t.DataSource = &k
	}
	return t
}

// Phase of an open configuration editor.
type Phase string

const (
	PhaseBegin    Phase = "begin"
	PhaseUpdate   Phase = "update"
	PhaseValidate Phase = "validate"
)

// Editor is an open configuration lifecycle. Nothing it holds is visible on
// the step until ConfigureEnd commits it.
type Editor struct {
	Target   Target                  `json:"target"`
	Phase    Phase                   `json:"phase"`
	Snapshot workbench.Configuration `json:"snapshot"`
	Current  workbench.Configuration `json:"current"`
	Errors   workbench.Errors        `json:"errors"`
	// Seq is the last validation sequence number issued for the target.
	Seq uint64 `json:"seq"`
}

func (e Editor) clone() Editor {
	e.Target = e.Target.clone()
	e.Snapshot = e.Snapshot.Clone()
	e.Current = e.Current.Clone()
	e.Errors = e.Errors.Clone()
	return e
}

// State is the designer aggregate.
type State struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Groups      []workbench.Group    `json:"groups"`
	Steps       []workbench.Step     `json:"steps"`
	Resources   []workbench.Resource `json:"resources"`
	Counters    workbench.Counters   `json:"counters"`
	Selection   workbench.Selection  `json:"selection"`
	Filter      string               `json:"filter"`
	Editors     []Editor             `json:"editors"`

	// ValidationSeq is the last validation sequence number issued in the
	// session. Like Counters it never moves backwards.
	ValidationSeq uint64 `json:"validationSeq"`
}

// NewState returns an empty process with the single trailing drop group.
func NewState() *State {
	return &State{
		Groups:    []workbench.Group{{Key: 0, Steps: []workbench.StepKey{}}},
		Steps:     []workbench.Step{},
		Resources: []workbench.Resource{},
		Editors:   []Editor{},
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{
		Name:        s.Name,
		Description: s.Description,
		Groups:      make([]workbench.Group, len(s.Groups)),
		Steps:       make([]workbench.Step, len(s.Steps)),
		Resources:   make([]workbench.Resource, len(s.Resources)),
		Counters:    s.Counters,
		Selection:   s.Selection.Clone(),
		Filter:      s.Filter,
		Editors:     make([]Editor, len(s.Editors)),

		ValidationSeq: s.ValidationSeq,
	}
	for i, g := range s.Groups {
		out.Groups[i] = g.Clone()
	}
	for i, st := range s.Steps {
		out.Steps[i] = st.Clone()
	}
	for i, r := range s.Resources {
		out.Resources[i] = r.Clone()
	}
	for i, e := range s.Editors {
		out.Editors[i] = e.clone()
	}
	return out
}

// StepIndex returns the position of step key in Steps, or -1.
func (s *State) StepIndex(key workbench.StepKey) int {
	for i := range s.Steps {
		if s.Steps[i].Key == key {
			return i
		}
	}
	return -1
}

// Step returns the step with key.
func (s *State) Step(key workbench.StepKey) (*workbench.Step, bool) {
	i := s.StepIndex(key)
	if i < 0 {
		return nil, false
	}
	return &s.Steps[i], true
}

func (s *State) ResourceIndex(key workbench.ResourceKey) int {
	for i := range s.Resources {
		if s.Resources[i].Key == key {
			return i
		}
	}
	return -1
}

// Resource returns the resource with key.
func (s *State) Resource(key workbench.ResourceKey) (*workbench.Resource, bool) {
	i := s.ResourceIndex(key)
	if i < 0 {
		return nil, false
	}
	return &s.Resources[i], true
}

// Producer returns the step that produces resource key, if it is an output.
func (s *State) Producer(key workbench.ResourceKey) (*workbench.Step, bool) {
	r, ok := s.Resource(key)
	if !ok || r.StepKey == nil {
		return nil, false
	}
	return s.Step(*r.StepKey)
}

// Editor returns the open configuration editor for target.
func (s *State) Editor(t Target) (*Editor, bool) {
	for i := range s.Editors {
		if s.Editors[i].Target.Equal(t) {
			return &s.Editors[i], true
		}
	}
	return nil, false
}

// CatalogResources returns the resource bag.
func (s *State) CatalogResources() []workbench.Resource {
	var out []workbench.Resource
	for _, r := range s.Resources {
		if r.IsCatalog() {
			out = append(out, r)
		}
	}
	return out
}

// FilteredResources applies the active resource filter. The filter matches
// either the input type or the resource type.
func (s *State) FilteredResources() []workbench.Resource {
	if s.Filter == "" {
		return s.Resources
	}
	var out []workbench.Resource
	for _, r := range s.Resources {
		if string(r.InputType) == s.Filter || string(r.ResourceType) == s.Filter {
			out = append(out, r)
		}
	}
	return out
}

// GroupSteps returns the steps of group key in the group's listed order.
func (s *State) GroupSteps(key int) []workbench.Step {
	if key < 0 || key >= len(s.Groups) {
		return nil
	}
	out := make([]workbench.Step, 0, len(s.Groups[key].Steps))
	for _, sk := range s.Groups[key].Steps {
		if st, ok := s.Step(sk); ok {
			out = append(out, *st)
		}
	}
	return out
}
