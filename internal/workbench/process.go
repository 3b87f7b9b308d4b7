package workbench

import "time"

// Counters hands out step and resource keys. Both only grow, except that a
// workspace reset zeroes the step counter.
type Counters struct {
	Step     int `json:"step" yaml:"step"`
	Resource int `json:"resource" yaml:"resource"`
}

func (c *Counters) NextStepKey() StepKey {
	c.Step++
	return StepKey(c.Step)
}

func (c *Counters) NextResourceKey() ResourceKey {
	c.Resource++
	return ResourceKey(c.Resource)
}

// Reset keeps the resource counter so catalog resources that survive a reset
// keep their keys.
func (c *Counters) Reset() {
	c.Step = 0
}

// SelectionType names the kind of entity currently focused in the editor.
type SelectionType string

const (
	SelectNone       SelectionType = ""
	SelectProcess    SelectionType = "PROCESS"
	SelectStep       SelectionType = "STEP"
	SelectInput      SelectionType = "INPUT"
	SelectDataSource SelectionType = "DATA_SOURCE"
	SelectResource   SelectionType = "RESOURCE"
)

// Selection is the single focused entity. Item holds a resource key for
// Input/Resource selections and a data-source key for DataSource selections.
type Selection struct {
	Type SelectionType `json:"type"`
	Step *StepKey      `json:"step"`
	Item *int          `json:"item"`
}

func (s Selection) Clone() Selection {
	if s.Step != nil {
		k := *s.Step
		s.Step = &k
	}
	if s.Item != nil {
		i := *s.Item
		s.Item = &i
	}
	return s
}

// Process is the serialized form of a designed workflow as exchanged with the
// persistence collaborator.
type Process struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Groups      []Group    `json:"groups" yaml:"groups"`
	Steps       []Step     `json:"steps" yaml:"steps"`
	Resources   []Resource `json:"resources" yaml:"resources"`
	Counters    Counters   `json:"counters" yaml:"counters"`
}

// ProcessRecord is a stored process definition.
type ProcessRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Definition Process   `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns a deep copy of p.
func (p Process) Clone() Process {
	out := p
	out.Groups = make([]Group, len(p.Groups))
	for i, g := range p.Groups {
		out.Groups[i] = g.Clone()
	}
	out.Steps = make([]Step, len(p.Steps))
	for i, s := range p.Steps {
		out.Steps[i] = s.Clone()
	}
	out.Resources = make([]Resource, len(p.Resources))
	for i, r := range p.Resources {
		out.Resources[i] = r.Clone()
	}
	return out
}

func (r *ProcessRecord) Clone() *ProcessRecord {
	out := *r
	out.Definition = r.Definition.Clone()
	return &out
}
