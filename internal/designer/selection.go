package designer

import (
	"fmt"

	"github.com/soochol/workbench/internal/workbench"
)

func selectEntity(s *State, in Intent) error {
	switch in := in.(type) {
	case SelectProcess:
		s.Selection = workbench.Selection{Type: workbench.SelectProcess}
	case SelectStep:
		if _, ok := s.Step(in.Step); !ok {
			return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
		}
		s.Selection = workbench.Selection{Type: workbench.SelectStep, Step: &in.Step}
	case SelectInput:
		st, ok := s.Step(in.Step)
		if !ok {
			return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
		}
		if !st.HasInput(in.Resource) {
			return fmt.Errorf("%w: step %d resource %d", ErrInputNotFound, in.Step, in.Resource)
		}
		item := int(in.Resource)
		s.Selection = workbench.Selection{Type: workbench.SelectInput, Step: &in.Step, Item: &item}
	case SelectStepDataSource:
		st, ok := s.Step(in.Step)
		if !ok {
			return fmt.Errorf("%w: %d", ErrStepNotFound, in.Step)
		}
		if dataSourceIndex(st, in.DataSource) < 0 {
			return fmt.Errorf("%w: step %d key %d", ErrDataSourceNotFound, in.Step, in.DataSource)
		}
		s.Selection = workbench.Selection{Type: workbench.SelectDataSource, Step: &in.Step, Item: &in.DataSource}
	case SelectResource:
		if _, ok := s.Resource(in.Resource); !ok {
			return fmt.Errorf("%w: %d", ErrResourceNotFound, in.Resource)
		}
		item := int(in.Resource)
		s.Selection = workbench.Selection{Type: workbench.SelectResource, Item: &item}
	case ClearSelection:
		s.Selection = workbench.Selection{}
	default:
		return fmt.Errorf("unsupported selection intent %T", in)
	}
	return nil
}
