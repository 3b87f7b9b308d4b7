package designer

import (
	"github.com/soochol/workbench/internal/workbench"
)

// Intent is one user-issued transition. The set is closed: only the types in
// this file implement it.
type Intent interface {
	Type() string
	// recorded reports whether applying the intent pushes an undo snapshot.
	recorded() bool
}

type structural struct{}

func (structural) recorded() bool { return true }

type transient struct{}

func (transient) recorded() bool { return false }

// Step graph

type AddStep struct {
	structural
	Group int
	Tool  workbench.Tool
}

type CloneStep struct {
	structural
	Step workbench.StepKey
}

type RemoveStep struct {
	structural
	Step workbench.StepKey
}

type MoveStep struct {
	structural
	DragOrder  int
	HoverOrder int
}

type MoveStepInput struct {
	structural
	Step       workbench.StepKey
	DragOrder  int
	HoverOrder int
}

type SetStepProperties struct {
	structural
	Step workbench.StepKey
	Name string
}

type SetProcessProperties struct {
	structural
	Name        string
	Description string
}

// Resource bag

type AddResourceToBag struct {
	structural
	Resource workbench.Resource
}

type RemoveResourceFromBag struct {
	structural
	Resource workbench.ResourceKey
}

type FilterResource struct {
	transient
	Filter string
}

// Wiring

type AddStepInput struct {
	structural
	Step     workbench.StepKey
	Resource workbench.ResourceKey
	PartKey  *string
}

type RemoveStepInput struct {
	structural
	Step     workbench.StepKey
	Resource workbench.ResourceKey
}

type SelectOutputPart struct {
	structural
	Step     workbench.StepKey
	Resource workbench.ResourceKey
	PartKey  *string
}

type AddStepDataSource struct {
	structural
	Step   workbench.StepKey
	Source string
	// Configuration defaults to the source's default configuration when nil.
	Configuration workbench.Configuration
}

type RemoveStepDataSource struct {
	structural
	Step       workbench.StepKey
	DataSource int
}

// Configuration lifecycle

type ConfigureBegin struct {
	structural
	Target        Target
	Configuration workbench.Configuration
}

type ConfigureUpdate struct {
	structural
	Target        Target
	Configuration workbench.Configuration
}

// RequestValidation issues the next session validation sequence number to
// Target.
type RequestValidation struct {
	transient
	Target Target
}

// ConfigureValidate attaches a validator result. Seq must be the last one
// issued for Target.
type ConfigureValidate struct {
	transient
	Target Target
	Errors workbench.Errors
	Seq    uint64
}

type ConfigureEnd struct {
	structural
	Target        Target
	Configuration workbench.Configuration
	Errors        workbench.Errors
}

type ConfigureCancel struct {
	structural
	Target Target
}

type SetConfiguration struct {
	structural
	Target        Target
	Configuration workbench.Configuration
	Errors        workbench.Errors
}

// StepValidation is the result of validating one committed step configuration.
type StepValidation struct {
	Step          workbench.StepKey
	Configuration workbench.Configuration
	Errors        workbench.Errors
}

// RefreshErrors replaces committed step errors with fresh validator results.
// A result is ignored when the step configuration changed since it was validated.
type RefreshErrors struct {
	transient
	Results []StepValidation
}

// Selection

type SelectProcess struct{ transient }

type SelectStep struct {
	transient
	Step workbench.StepKey
}

type SelectInput struct {
	transient
	Step     workbench.StepKey
	Resource workbench.ResourceKey
}

type SelectStepDataSource struct {
	transient
	Step       workbench.StepKey
	DataSource int
}

type SelectResource struct {
	transient
	Resource workbench.ResourceKey
}

type ClearSelection struct{ transient }

// Workspace

// Reset empties the workspace, keeping the resource bag.
type Reset struct{ structural }

// Load replaces the workspace with a deserialized process.
type Load struct {
	structural
	Process workbench.Process
}

// Undo and Redo are handled by History.
type Undo struct{ transient }

type Redo struct{ transient }

func (AddStep) Type() string               { return "add_step" }
func (CloneStep) Type() string             { return "clone_step" }
func (RemoveStep) Type() string            { return "remove_step" }
func (MoveStep) Type() string              { return "move_step" }
func (MoveStepInput) Type() string         { return "move_step_input" }
func (SetStepProperties) Type() string     { return "set_step_properties" }
func (SetProcessProperties) Type() string  { return "set_process_properties" }
func (AddResourceToBag) Type() string      { return "add_resource_to_bag" }
func (RemoveResourceFromBag) Type() string { return "remove_resource_from_bag" }
func (FilterResource) Type() string        { return "filter_resource" }
func (AddStepInput) Type() string          { return "add_step_input" }
func (RemoveStepInput) Type() string       { return "remove_step_input" }
func (SelectOutputPart) Type() string      { return "select_output_part" }
func (AddStepDataSource) Type() string     { return "add_step_data_source" }
func (RemoveStepDataSource) Type() string  { return "remove_step_data_source" }
func (ConfigureBegin) Type() string        { return "configure_begin" }
func (ConfigureUpdate) Type() string       { return "configure_update" }
func (RequestValidation) Type() string     { return "request_validation" }
func (ConfigureValidate) Type() string     { return "configure_validate" }
func (ConfigureEnd) Type() string          { return "configure_end" }
func (ConfigureCancel) Type() string       { return "configure_cancel" }
func (SetConfiguration) Type() string      { return "set_configuration" }
func (RefreshErrors) Type() string         { return "refresh_errors" }
func (SelectProcess) Type() string         { return "select_process" }
func (SelectStep) Type() string            { return "select_step" }
func (SelectInput) Type() string           { return "select_input" }
func (SelectStepDataSource) Type() string  { return "select_step_data_source" }
func (SelectResource) Type() string        { return "select_resource" }
func (ClearSelection) Type() string        { return "clear_selection" }
func (Reset) Type() string                 { return "reset" }
func (Load) Type() string                  { return "load" }
func (Undo) Type() string                  { return "undo" }
func (Redo) Type() string                  { return "redo" }
