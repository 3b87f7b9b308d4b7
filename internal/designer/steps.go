package designer

import (
	"fmt"

	"github.com/soochol/workbench/internal/dag"
	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench"
)

func (d *Designer) descriptor(tool workbench.Tool) (*tools.Descriptor, error) {
	desc, ok := d.tools.Get(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	return desc, nil
}

func (d *Designer) addStep(s *State, in AddStep) (*workbench.Step, error) {
	desc, err := d.descriptor(in.Tool)
	if err != nil {
		return nil, err
	}
	if in.Group < 0 || in.Group >= len(s.Groups) {
		return nil, fmt.Errorf("%w: %d", ErrGroupNotFound, in.Group)
	}

	cfg, err := d.tools.DefaultConfig(in.Tool, d.app)
	if err != nil {
		return nil, err
	}
	// Every instance of a tool stays on the settings schema of the first one.
	for _, st := range s.Steps {
		if st.Tool == in.Tool && st.Configuration.Version() != "" {
			cfg["version"] = st.Configuration.Version()
			break
		}
	}

	step := workbench.Step{
		Key:           s.Counters.NextStepKey(),
		Name:          desc.Title,
		Tool:          in.Tool,
		Input:         []workbench.StepInput{},
		DataSources:   []workbench.DataSource{},
		Configuration: cfg,
		Errors:        tools.ErrorsOf(d.tools.Validate(in.Tool, cfg)),
	}
	return d.insertStep(s, in.Group, step, desc), nil
}

func (d *Designer) cloneStep(s *State, in CloneStep) (*workbench.Step, error) {
	src, ok := s.Step(in.Step)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	desc, err := d.descriptor(src.Tool)
	if err != nil {
		return nil, err
	}
	if !desc.Cloneable {
		return nil, reject("tool %s cannot be cloned", src.Tool)
	}
	step := workbench.Step{
		Key:           s.Counters.NextStepKey(),
		Name:          src.Name + " (Clone)",
		Tool:          src.Tool,
		Input:         []workbench.StepInput{},
		DataSources:   []workbench.DataSource{},
		Configuration: src.Configuration.Clone(),
		Errors:        src.Errors.Clone(),
	}
	return d.insertStep(s, src.Group, step, desc), nil
}

// insertStep appends step to the step sequence and to group, registering its
// output resource. The step key must already be allocated.
func (d *Designer) insertStep(s *State, group int, step workbench.Step, desc *tools.Descriptor) *workbench.Step {
	if desc.ProducesOutput() {
		key := s.Counters.NextResourceKey()
		step.OutputKey = &key
		producer := step.Key
		s.Resources = append(s.Resources, workbench.Resource{
			Key:          key,
			InputType:    workbench.InputOutput,
			ResourceType: desc.ResourceType,
			Name:         step.Name,
			StepKey:      &producer,
			Tool:         step.Tool,
		})
	}
	s.Steps = append(s.Steps, step)
	s.Groups[group].Steps = append(s.Groups[group].Steps, step.Key)
	renormalize(s)
	return &s.Steps[len(s.Steps)-1]
}

func (d *Designer) removeStep(s *State, in RemoveStep) error {
	idx := s.StepIndex(in.Step)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	removed := s.Steps[idx]
	s.Steps = append(s.Steps[:idx], s.Steps[idx+1:]...)

	for i := range s.Groups {
		s.Groups[i].Steps = without(s.Groups[i].Steps, removed.Key)
	}
	if removed.OutputKey != nil {
		cascadeInputs(s, *removed.OutputKey)
		if ri := s.ResourceIndex(*removed.OutputKey); ri >= 0 {
			s.Resources = append(s.Resources[:ri], s.Resources[ri+1:]...)
		}
	}

	editors := s.Editors[:0]
	for _, e := range s.Editors {
		if e.Target.Step != removed.Key {
			editors = append(editors, e)
		}
	}
	s.Editors = editors
	s.Selection = workbench.Selection{}

	renormalize(s)
	return nil
}

// moveStep reorders the step sequence. A move that would make a step consume
// an output produced at or after its own position is rejected.
func (d *Designer) moveStep(s *State, in MoveStep) error {
	n := len(s.Steps)
	if in.DragOrder < 0 || in.DragOrder >= n || in.HoverOrder < 0 || in.HoverOrder >= n {
		return fmt.Errorf("%w: %d -> %d", ErrOrderOutOfRange, in.DragOrder, in.HoverOrder)
	}
	if in.DragOrder == in.HoverOrder {
		return reject("step already at order %d", in.HoverOrder)
	}
	candidate := moveElement(s.Steps, in.DragOrder, in.HoverOrder)
	for i := range candidate {
		candidate[i].Order = i
	}
	graph, err := dag.Build(candidate, s.Resources)
	if err != nil {
		return err
	}
	if v := graph.OrderViolations(); len(v) > 0 {
		return reject("step %d would precede its input producer %d", v[0].To, v[0].From)
	}
	s.Steps = candidate
	renormalize(s)
	return nil
}

func (d *Designer) moveStepInput(s *State, in MoveStepInput) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	n := len(st.Input)
	if in.DragOrder < 0 || in.DragOrder >= n || in.HoverOrder < 0 || in.HoverOrder >= n {
		return fmt.Errorf("%w: %d -> %d", ErrOrderOutOfRange, in.DragOrder, in.HoverOrder)
	}
	if in.DragOrder == in.HoverOrder {
		return reject("input already at position %d", in.HoverOrder)
	}
	st.Input = moveElement(st.Input, in.DragOrder, in.HoverOrder)
	return nil
}

func (d *Designer) setStepProperties(s *State, in SetStepProperties) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	st.Name = in.Name
	if st.OutputKey != nil {
		if r, ok := s.Resource(*st.OutputKey); ok {
			r.Name = in.Name
		}
	}
	return nil
}

func without(keys []workbench.StepKey, key workbench.StepKey) []workbench.StepKey {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
