package designer

import (
	"fmt"
	"reflect"

	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench"
)

// resolve returns the committed configuration holder for t.
func resolve(s *State, t Target) (*workbench.Step, *workbench.DataSource, error) {
	st, ok := s.Step(t.Step)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrStepNotFound, t.Step)
	}
	if t.DataSource == nil {
		return st, nil, nil
	}
	idx := dataSourceIndex(st, *t.DataSource)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: step %d key %d", ErrDataSourceNotFound, t.Step, *t.DataSource)
	}
	return st, &st.DataSources[idx], nil
}

func commit(s *State, t Target, cfg workbench.Configuration, errs workbench.Errors) error {
	st, ds, err := resolve(s, t)
	if err != nil {
		return err
	}
	if ds != nil {
		ds.Configuration = cfg.Clone()
		ds.Errors = errs.Clone()
		return nil
	}
	st.Configuration = cfg.Clone()
	st.Errors = errs.Clone()
	return nil
}

func closeEditor(s *State, t Target) {
	editors := s.Editors[:0]
	for _, e := range s.Editors {
		if !e.Target.Equal(t) {
			editors = append(editors, e)
		}
	}
	s.Editors = editors
}

func (d *Designer) configureBegin(s *State, in ConfigureBegin) error {
	if _, _, err := resolve(s, in.Target); err != nil {
		return err
	}
	editor := Editor{
		Target:   in.Target.clone(),
		Phase:    PhaseBegin,
		Snapshot: in.Configuration.Clone(),
		Current:  in.Configuration.Clone(),
	}
	if e, ok := s.Editor(in.Target); ok {
		// Restarting keeps the sequence so results of earlier requests stay stale.
		editor.Seq = e.Seq
		*e = editor
		return nil
	}
	s.Editors = append(s.Editors, editor)
	return nil
}

func (d *Designer) configureUpdate(s *State, in ConfigureUpdate) error {
	e, ok := s.Editor(in.Target)
	if !ok {
		return reject("no configuration in progress for step %d", in.Target.Step)
	}
	e.Current = in.Configuration.Clone()
	e.Phase = PhaseUpdate
	return nil
}

func (d *Designer) requestValidation(s *State, in RequestValidation) error {
	e, ok := s.Editor(in.Target)
	if !ok {
		return reject("no configuration in progress for step %d", in.Target.Step)
	}
	s.ValidationSeq++
	e.Seq = s.ValidationSeq
	return nil
}

func (d *Designer) configureValidate(s *State, in ConfigureValidate) error {
	e, ok := s.Editor(in.Target)
	if !ok {
		return reject("no configuration in progress for step %d", in.Target.Step)
	}
	if in.Seq == 0 || in.Seq != e.Seq {
		return reject("stale validation %d for step %d, latest is %d", in.Seq, in.Target.Step, e.Seq)
	}
	e.Errors = in.Errors.Clone()
	e.Phase = PhaseValidate
	return nil
}

func (d *Designer) configureEnd(s *State, in ConfigureEnd) error {
	if err := commit(s, in.Target, in.Configuration, in.Errors); err != nil {
		return err
	}
	closeEditor(s, in.Target)
	return nil
}

func (d *Designer) configureCancel(s *State, in ConfigureCancel) error {
	if _, ok := s.Editor(in.Target); !ok {
		return reject("no configuration in progress for step %d", in.Target.Step)
	}
	closeEditor(s, in.Target)
	return nil
}

func (d *Designer) setConfiguration(s *State, in SetConfiguration) error {
	if err := commit(s, in.Target, in.Configuration, in.Errors); err != nil {
		return err
	}
	closeEditor(s, in.Target)
	return nil
}

func refreshErrors(s *State, in RefreshErrors) {
	for _, res := range in.Results {
		st, ok := s.Step(res.Step)
		if !ok || !reflect.DeepEqual(st.Configuration, res.Configuration) {
			continue
		}
		st.Errors = res.Errors.Clone()
	}
}

// ValidateTarget runs the validator for the configuration of t. It is pure:
// the state is only read to find out which tool or source kind applies.
func (d *Designer) ValidateTarget(s *State, t Target, cfg workbench.Configuration) (workbench.Errors, error) {
	st, ds, err := resolve(s, t)
	if err != nil {
		return nil, err
	}
	if ds != nil {
		return tools.ErrorsOf(d.tools.ValidateSource(ds.Source, cfg)), nil
	}
	return tools.ErrorsOf(d.tools.Validate(st.Tool, cfg)), nil
}
