package designer

import (
	"fmt"

	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench"
)

func normalizePart(part *string) *string {
	if part == nil || *part == workbench.DefaultPart {
		return nil
	}
	p := *part
	return &p
}

// checkPart verifies that part is emitted by the producer of resource r.
func (d *Designer) checkPart(s *State, r *workbench.Resource, part *string) error {
	if part == nil {
		return nil
	}
	producer, ok := s.Producer(r.Key)
	if !ok {
		return reject("resource %d has no named parts", r.Key)
	}
	desc, err := d.descriptor(producer.Tool)
	if err != nil {
		return err
	}
	if !desc.HasPart(*part) {
		return reject("tool %s has no output part %q", producer.Tool, *part)
	}
	return nil
}

func (d *Designer) addStepInput(s *State, in AddStepInput) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	r, ok := s.Resource(in.Resource)
	if !ok {
		return fmt.Errorf("%w: %d", ErrResourceNotFound, in.Resource)
	}
	desc, err := d.descriptor(st.Tool)
	if err != nil {
		return err
	}
	if len(st.Input) >= desc.MaxInputs {
		return reject("step %d accepts at most %d inputs", st.Key, desc.MaxInputs)
	}
	if st.HasInput(r.Key) {
		return reject("resource %d already wired into step %d", r.Key, st.Key)
	}
	if producer, ok := s.Producer(r.Key); ok && producer.Order >= st.Order {
		return reject("step %d cannot consume the output of step %d", st.Key, producer.Key)
	}
	part := normalizePart(in.PartKey)
	if err := d.checkPart(s, r, part); err != nil {
		return err
	}
	st.Input = append(st.Input, workbench.StepInput{InputKey: r.Key, PartKey: part})
	return nil
}

func (d *Designer) removeStepInput(s *State, in RemoveStepInput) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	if !st.HasInput(in.Resource) {
		return fmt.Errorf("%w: step %d resource %d", ErrInputNotFound, in.Step, in.Resource)
	}
	inputs := make([]workbench.StepInput, 0, len(st.Input))
	for _, input := range st.Input {
		if input.InputKey != in.Resource {
			inputs = append(inputs, input)
		}
	}
	st.Input = inputs
	s.Selection = workbench.Selection{}
	return nil
}

func (d *Designer) selectOutputPart(s *State, in SelectOutputPart) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	if !st.HasInput(in.Resource) {
		return fmt.Errorf("%w: step %d resource %d", ErrInputNotFound, in.Step, in.Resource)
	}
	r, ok := s.Resource(in.Resource)
	if !ok {
		return fmt.Errorf("%w: %d", ErrResourceNotFound, in.Resource)
	}
	part := normalizePart(in.PartKey)
	if err := d.checkPart(s, r, part); err != nil {
		return err
	}
	for i := range st.Input {
		if st.Input[i].InputKey == in.Resource {
			st.Input[i].PartKey = normalizePart(part)
		}
	}
	return nil
}

func dataSourceIndex(st *workbench.Step, key int) int {
	for i := range st.DataSources {
		if st.DataSources[i].Key == key {
			return i
		}
	}
	return -1
}

func (d *Designer) addStepDataSource(s *State, in AddStepDataSource) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	if _, ok := d.tools.Source(in.Source); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, in.Source)
	}
	desc, err := d.descriptor(st.Tool)
	if err != nil {
		return err
	}
	if !desc.AcceptsDataSource(in.Source) {
		return reject("tool %s does not read from %s", st.Tool, in.Source)
	}

	cfg := in.Configuration.Clone()
	if cfg == nil {
		if cfg, err = d.tools.DefaultSourceConfig(in.Source); err != nil {
			return err
		}
	}
	// Keys are positional while no data source was removed, and never reuse a
	// live key afterwards.
	key := len(st.DataSources)
	for _, ds := range st.DataSources {
		if ds.Key >= key {
			key = ds.Key + 1
		}
	}
	st.DataSources = append(st.DataSources, workbench.DataSource{
		Key:           key,
		Source:        in.Source,
		Configuration: cfg,
		Errors:        tools.ErrorsOf(d.tools.ValidateSource(in.Source, cfg)),
	})
	return nil
}

func (d *Designer) removeStepDataSource(s *State, in RemoveStepDataSource) error {
	st, ok := s.Step(in.Step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
	}
	idx := dataSourceIndex(st, in.DataSource)
	if idx < 0 {
		return fmt.Errorf("%w: step %d key %d", ErrDataSourceNotFound, in.Step, in.DataSource)
	}
	st.DataSources = append(st.DataSources[:idx], st.DataSources[idx+1:]...)

	target := DataSourceTarget(in.Step, in.DataSource)
	editors := s.Editors[:0]
	for _, e := range s.Editors {
		if !e.Target.Equal(target) {
			editors = append(editors, e)
		}
	}
	s.Editors = editors

	sel := s.Selection
	if sel.Type == workbench.SelectDataSource && sel.Step != nil && *sel.Step == in.Step &&
		sel.Item != nil && *sel.Item == in.DataSource {
		s.Selection = workbench.Selection{}
	}
	return nil
}
