package designer

import (
	"fmt"

	"github.com/soochol/workbench/internal/workbench"
)

func (d *Designer) addResourceToBag(s *State, in AddResourceToBag) error {
	r := in.Resource.Clone()
	r.InputType = workbench.InputCatalog
	r.StepKey = nil
	r.Tool = ""
	for _, existing := range s.Resources {
		if existing.SameCatalogEntry(r) {
			return reject("catalog resource %d@%d already in bag", r.ID, r.Version)
		}
	}
	if r.ResourceType == "" {
		r.ResourceType = workbench.ResourcePOIData
	}
	r.Key = s.Counters.NextResourceKey()
	s.Resources = append(s.Resources, r)
	reorderResources(s)
	return nil
}

func (d *Designer) removeResourceFromBag(s *State, in RemoveResourceFromBag) error {
	idx := s.ResourceIndex(in.Resource)
	if idx < 0 || !s.Resources[idx].IsCatalog() {
		return fmt.Errorf("%w: catalog resource %d", ErrResourceNotFound, in.Resource)
	}
	s.Resources = append(s.Resources[:idx], s.Resources[idx+1:]...)
	cascadeInputs(s, in.Resource)
	s.Selection = workbench.Selection{}
	return nil
}

// filterResource toggles the single active filter value.
func filterResource(s *State, in FilterResource) {
	if s.Filter == in.Filter {
		s.Filter = ""
		return
	}
	s.Filter = in.Filter
}

// cascadeInputs removes every input entry that references key.
func cascadeInputs(s *State, key workbench.ResourceKey) {
	for i := range s.Steps {
		inputs := make([]workbench.StepInput, 0, len(s.Steps[i].Input))
		for _, in := range s.Steps[i].Input {
			if in.InputKey != key {
				inputs = append(inputs, in)
			}
		}
		s.Steps[i].Input = inputs
	}
}
