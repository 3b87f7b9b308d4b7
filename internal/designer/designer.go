package designer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soochol/workbench/internal/tools"
)

// Programmer errors: the caller referenced an entity that does not exist.
// The state is left unchanged.
var (
	ErrStepNotFound       = errors.New("step not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrDataSourceNotFound = errors.New("data source not found")
	ErrInputNotFound      = errors.New("step input not found")
	ErrOrderOutOfRange    = errors.New("order out of range")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrUnknownSource      = errors.New("unknown data source kind")
)

// errRejected marks a structural rejection: a legal intent that is refused as
// a no-op. It never leaves Apply.
var errRejected = errors.New("rejected")

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errRejected}, args...)...)
}

// Designer applies intents to states. It holds only read-only collaborators,
// so one Designer can serve any number of sessions.
type Designer struct {
	tools  *tools.Registry
	app    tools.AppConfig
	logger *slog.Logger
}

type Option func(*Designer)

// WithLogger sets the logger rejections are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Designer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithAppConfig sets the application configuration passed to tool defaults.
func WithAppConfig(app tools.AppConfig) Option {
	return func(d *Designer) {
		d.app = app
	}
}

func New(registry *tools.Registry, opts ...Option) *Designer {
	d := &Designer{
		tools:  registry,
		app:    tools.AppConfig{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tools returns the tool-configuration collaborator.
func (d *Designer) Tools() *tools.Registry { return d.tools }

// Apply returns the state that results from applying in to s. A rejected
// intent returns s itself and a nil error; a programmer error returns s and
// the error. s is never modified.
func (d *Designer) Apply(s *State, in Intent) (*State, error) {
	next := s.Clone()
	var err error
	switch in := in.(type) {
	case AddStep:
		_, err = d.addStep(next, in)
	case CloneStep:
		_, err = d.cloneStep(next, in)
	case RemoveStep:
		err = d.removeStep(next, in)
	case MoveStep:
		err = d.moveStep(next, in)
	case MoveStepInput:
		err = d.moveStepInput(next, in)
	case SetStepProperties:
		err = d.setStepProperties(next, in)
	case SetProcessProperties:
		next.Name = in.Name
		next.Description = in.Description
	case AddResourceToBag:
		err = d.addResourceToBag(next, in)
	case RemoveResourceFromBag:
		err = d.removeResourceFromBag(next, in)
	case FilterResource:
		filterResource(next, in)
	case AddStepInput:
		err = d.addStepInput(next, in)
	case RemoveStepInput:
		err = d.removeStepInput(next, in)
	case SelectOutputPart:
		err = d.selectOutputPart(next, in)
	case AddStepDataSource:
		err = d.addStepDataSource(next, in)
	case RemoveStepDataSource:
		err = d.removeStepDataSource(next, in)
	case ConfigureBegin:
		err = d.configureBegin(next, in)
	case ConfigureUpdate:
		err = d.configureUpdate(next, in)
	case RequestValidation:
		err = d.requestValidation(next, in)
	case ConfigureValidate:
		err = d.configureValidate(next, in)
	case ConfigureEnd:
		err = d.configureEnd(next, in)
	case ConfigureCancel:
		err = d.configureCancel(next, in)
	case SetConfiguration:
		err = d.setConfiguration(next, in)
	case RefreshErrors:
		refreshErrors(next, in)
	case SelectProcess, SelectStep, SelectInput, SelectStepDataSource, SelectResource, ClearSelection:
		err = selectEntity(next, in)
	case Reset:
		next = resetState(s)
	case Load:
		next, err = Deserialize(in.Process)
		if err != nil {
			err = fmt.Errorf("load process: %w", err)
		} else {
			next.ValidationSeq = s.ValidationSeq
		}
	case Undo, Redo:
		err = fmt.Errorf("%s must be applied through History", in.Type())
	default:
		err = fmt.Errorf("unsupported intent %T", in)
	}
	if errors.Is(err, errRejected) {
		d.logger.Debug("intent rejected", "intent", in.Type(), "reason", err)
		return s, nil
	}
	if err != nil {
		return s, err
	}
	return next, nil
}

// resetState empties the workspace, keeping catalog resources and the
// resource counter.
func resetState(s *State) *State {
	next := NewState()
	next.Counters = s.Counters
	next.Counters.Reset()
	next.ValidationSeq = s.ValidationSeq
	for _, r := range s.Resources {
		if r.IsCatalog() {
			next.Resources = append(next.Resources, r.Clone())
		}
	}
	return next
}
