package designer

import (
	"github.com/soochol/workbench/internal/workbench"
)

// renumberGroups drops empty groups, reindexes the rest densely, appends the
// single trailing empty group and points every step at its group's new key.
func renumberGroups(s *State) {
	groups := make([]workbench.Group, 0, len(s.Groups)+1)
	for _, g := range s.Groups {
		if len(g.Steps) == 0 {
			continue
		}
		groups = append(groups, workbench.Group{Key: len(groups), Steps: g.Steps})
	}
	groups = append(groups, workbench.Group{Key: len(groups), Steps: []workbench.StepKey{}})
	s.Groups = groups

	owner := make(map[workbench.StepKey]int, len(s.Steps))
	for _, g := range s.Groups {
		for _, key := range g.Steps {
			owner[key] = g.Key
		}
	}
	for i := range s.Steps {
		s.Steps[i].Group = owner[s.Steps[i].Key]
	}
}

// renumberOrder makes every step's order equal its position in Steps.
func renumberOrder(s *State) {
	for i := range s.Steps {
		s.Steps[i].Order = i
	}
}

// reorderResources puts catalog resources first (keeping their relative
// order), then transform outputs, then all other outputs, each output section
// following step order.
func reorderResources(s *State) {
	outputs := make(map[workbench.StepKey]workbench.Resource)
	var catalog []workbench.Resource
	for _, r := range s.Resources {
		switch {
		case r.IsCatalog():
			catalog = append(catalog, r)
		case r.StepKey != nil:
			outputs[*r.StepKey] = r
		}
	}

	resources := make([]workbench.Resource, 0, len(s.Resources))
	resources = append(resources, catalog...)
	for _, st := range s.Steps {
		if r, ok := outputs[st.Key]; ok && st.Tool == workbench.ToolTransform {
			resources = append(resources, r)
		}
	}
	for _, st := range s.Steps {
		if r, ok := outputs[st.Key]; ok && st.Tool != workbench.ToolTransform {
			resources = append(resources, r)
		}
	}
	s.Resources = resources
}

// renormalize re-establishes every derived invariant after a structural change.
func renormalize(s *State) {
	renumberOrder(s)
	renumberGroups(s)
	reorderResources(s)
}

func moveElement[T any](items []T, from, to int) []T {
	item := items[from]
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
