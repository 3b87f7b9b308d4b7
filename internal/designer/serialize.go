package designer

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/soochol/workbench/internal/dag"
	"github.com/soochol/workbench/internal/workbench"
)

// ErrInvalidProcess is returned when a serialized process violates a state
// invariant.
var ErrInvalidProcess = errors.New("invalid process")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidProcess}, args...)...)
}

// Serialize returns the persistent part of s: groups, steps, resources and
// counters. Selection, filter and open editors are session-only.
func Serialize(s *State) workbench.Process {
	c := s.Clone()
	return workbench.Process{
		Name:        c.Name,
		Description: c.Description,
		Groups:      c.Groups,
		Steps:       c.Steps,
		Resources:   c.Resources,
		Counters:    c.Counters,
	}
}

// Deserialize hydrates a state from p after checking every invariant a
// reachable state satisfies.
func Deserialize(p workbench.Process) (*State, error) {
	s := NewState()
	s.Name = p.Name
	s.Description = p.Description
	s.Counters = p.Counters
	if len(p.Groups) > 0 {
		s.Groups = make([]workbench.Group, len(p.Groups))
		for i, g := range p.Groups {
			s.Groups[i] = g.Clone()
		}
	}
	for _, st := range p.Steps {
		s.Steps = append(s.Steps, st.Clone())
	}
	for _, r := range p.Resources {
		s.Resources = append(s.Resources, r.Clone())
	}

	if err := checkSteps(s); err != nil {
		return nil, err
	}
	if err := checkGroups(s); err != nil {
		return nil, err
	}
	if err := checkResources(s); err != nil {
		return nil, err
	}
	graph, err := dag.Build(s.Steps, s.Resources)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if v := graph.OrderViolations(); len(v) > 0 {
		return nil, invalid("step %d consumes the output of later step %d", v[0].To, v[0].From)
	}
	return s, nil
}

func checkSteps(s *State) error {
	seen := make(map[workbench.StepKey]bool, len(s.Steps))
	for i, st := range s.Steps {
		if st.Key < 1 || int(st.Key) > s.Counters.Step {
			return invalid("step key %d outside allocated range 1..%d", st.Key, s.Counters.Step)
		}
		if seen[st.Key] {
			return invalid("duplicate step key %d", st.Key)
		}
		seen[st.Key] = true
		if st.Order != i {
			return invalid("step %d has order %d at position %d", st.Key, st.Order, i)
		}
		dsKeys := make(map[int]bool, len(st.DataSources))
		for _, ds := range st.DataSources {
			if dsKeys[ds.Key] {
				return invalid("step %d has duplicate data source key %d", st.Key, ds.Key)
			}
			dsKeys[ds.Key] = true
		}
	}
	return nil
}

func checkGroups(s *State) error {
	owner := make(map[workbench.StepKey]int, len(s.Steps))
	last := len(s.Groups) - 1
	for i, g := range s.Groups {
		if g.Key != i {
			return invalid("group at position %d has key %d", i, g.Key)
		}
		if len(g.Steps) == 0 && i != last {
			return invalid("empty group %d is not trailing", i)
		}
		for _, key := range g.Steps {
			if _, dup := owner[key]; dup {
				return invalid("step %d listed in more than one group", key)
			}
			owner[key] = g.Key
		}
	}
	if len(s.Groups[last].Steps) != 0 {
		return invalid("missing trailing empty group")
	}
	if len(owner) != len(s.Steps) {
		return invalid("groups list %d steps, process has %d", len(owner), len(s.Steps))
	}
	for _, st := range s.Steps {
		g, ok := owner[st.Key]
		if !ok {
			return invalid("step %d belongs to no group", st.Key)
		}
		if st.Group != g {
			return invalid("step %d records group %d but is listed in group %d", st.Key, st.Group, g)
		}
	}
	return nil
}

func checkResources(s *State) error {
	seen := make(map[workbench.ResourceKey]bool, len(s.Resources))
	for _, r := range s.Resources {
		if r.Key < 1 || int(r.Key) > s.Counters.Resource {
			return invalid("resource key %d outside allocated range 1..%d", r.Key, s.Counters.Resource)
		}
		if seen[r.Key] {
			return invalid("duplicate resource key %d", r.Key)
		}
		seen[r.Key] = true
		if r.IsCatalog() {
			continue
		}
		if r.StepKey == nil {
			return invalid("output resource %d has no producing step", r.Key)
		}
		st, ok := s.Step(*r.StepKey)
		if !ok || st.OutputKey == nil || *st.OutputKey != r.Key {
			return invalid("output resource %d does not match step %d", r.Key, *r.StepKey)
		}
	}
	for _, st := range s.Steps {
		if st.OutputKey != nil && !seen[*st.OutputKey] {
			return invalid("step %d output resource %d is missing", st.Key, *st.OutputKey)
		}
		for _, in := range st.Input {
			if !seen[in.InputKey] {
				return invalid("step %d references unknown resource %d", st.Key, in.InputKey)
			}
		}
	}

	expected := s.Clone()
	reorderResources(expected)
	for i := range expected.Resources {
		if expected.Resources[i].Key != s.Resources[i].Key {
			return invalid("resource %d out of order at position %d", s.Resources[i].Key, i)
		}
	}
	return nil
}

// EncodeJSON serializes s as indented JSON.
func EncodeJSON(s *State) ([]byte, error) {
	return json.MarshalIndent(Serialize(s), "", "  ")
}

func DecodeJSON(data []byte) (*State, error) {
	var p workbench.Process
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode process: %w", err)
	}
	return Deserialize(p)
}

// EncodeYAML serializes s as YAML, the format used for process exports.
func EncodeYAML(s *State) ([]byte, error) {
	return yaml.Marshal(Serialize(s))
}

func DecodeYAML(data []byte) (*State, error) {
	var p workbench.Process
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode process: %w", err)
	}
	return Deserialize(p)
}
