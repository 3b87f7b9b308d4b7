package workbench

import (
	"github.com/tiendc/go-deepcopy"
)

// StepKey identifies a step for the lifetime of a process.
type StepKey int

// ResourceKey identifies a catalog or output resource.
type ResourceKey int

type Tool string

const (
	ToolTransform        Tool = "transform"
	ToolInterlink        Tool = "interlink"
	ToolFuse             Tool = "fuse"
	ToolEnrich           Tool = "enrich"
	ToolRegister         Tool = "register"
	ToolReverseTransform Tool = "reverse_transform"
)

// InputType tells catalog resources apart from step outputs.
type InputType string

const (
	InputCatalog InputType = "CATALOG"
	InputOutput  InputType = "OUTPUT"
)

type ResourceType string

const (
	ResourcePOIData    ResourceType = "POI_DATA"
	ResourceLinkedData ResourceType = "LINKED_DATA"
	ResourceFile       ResourceType = "FILE"
)

// DefaultPart is the sentinel the UI sends for "the producer's default output".
// It is normalized to a nil part key.
const DefaultPart = "__default__"

// Configuration is a tool-specific settings object. The designer treats it as opaque
// apart from the "version" field.
type Configuration map[string]any

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	var out Configuration
	if err := deepcopy.Copy(&out, c); err != nil {
		// Configurations only hold decoded JSON/YAML values; fall back to a shallow copy.
		out = make(Configuration, len(c))
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

// Version returns the settings schema version, or "" when unset.
func (c Configuration) Version() string {
	v, _ := c["version"].(string)
	return v
}

// Errors maps configuration fields to validation messages.
type Errors map[string]string

func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Group is one execution stage. Key always equals the group's position.
type Group struct {
	Key   int       `json:"key" yaml:"key"`
	Steps []StepKey `json:"steps" yaml:"steps"`
}

func (g Group) Clone() Group {
	return Group{Key: g.Key, Steps: append([]StepKey{}, g.Steps...)}
}

// StepInput wires a resource into a step. PartKey selects a named sub-output of
// the producing step; nil means the default output.
type StepInput struct {
	InputKey ResourceKey `json:"inputKey" yaml:"inputKey"`
	PartKey  *string     `json:"partKey" yaml:"partKey"`
}

func (in StepInput) Clone() StepInput {
	if in.PartKey != nil {
		p := *in.PartKey
		in.PartKey = &p
	}
	return in
}

// DataSource binds an external source (file, URL, harvester) to a step.
// Keys are local to the owning step.
type DataSource struct {
	Key           int           `json:"key" yaml:"key"`
	Source        string        `json:"source" yaml:"source"`
	Configuration Configuration `json:"configuration" yaml:"configuration"`
	Errors        Errors        `json:"errors" yaml:"errors"`
}

func (ds DataSource) Clone() DataSource {
	ds.Configuration = ds.Configuration.Clone()
	ds.Errors = ds.Errors.Clone()
	return ds
}

type Step struct {
	Key           StepKey       `json:"key" yaml:"key"`
	Name          string        `json:"name" yaml:"name"`
	Tool          Tool          `json:"tool" yaml:"tool"`
	Group         int           `json:"group" yaml:"group"`
	Order         int           `json:"order" yaml:"order"`
	Input         []StepInput   `json:"input" yaml:"input"`
	DataSources   []DataSource  `json:"dataSources" yaml:"dataSources"`
	OutputKey     *ResourceKey  `json:"outputKey" yaml:"outputKey"`
	Configuration Configuration `json:"configuration" yaml:"configuration"`
	Errors        Errors        `json:"errors" yaml:"errors"`
}

func (s Step) Clone() Step {
	out := s
	out.Input = make([]StepInput, len(s.Input))
	for i, in := range s.Input {
		out.Input[i] = in.Clone()
	}
	out.DataSources = make([]DataSource, len(s.DataSources))
	for i, ds := range s.DataSources {
		out.DataSources[i] = ds.Clone()
	}
	if s.OutputKey != nil {
		k := *s.OutputKey
		out.OutputKey = &k
	}
	out.Configuration = s.Configuration.Clone()
	out.Errors = s.Errors.Clone()
	return out
}

// HasInput reports whether the step consumes resource key.
func (s Step) HasInput(key ResourceKey) bool {
	for _, in := range s.Input {
		if in.InputKey == key {
			return true
		}
	}
	return false
}

// Resource is a data entity that can be wired into a step: either a catalog
// entry selected into the resource bag or the output of a step.
type Resource struct {
	Key          ResourceKey  `json:"key" yaml:"key"`
	InputType    InputType    `json:"inputType" yaml:"inputType"`
	ResourceType ResourceType `json:"resourceType" yaml:"resourceType"`
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`

	// Catalog resources
	ID       int64             `json:"id,omitempty" yaml:"id,omitempty"`
	Version  int64             `json:"version,omitempty" yaml:"version,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Output resources
	StepKey *StepKey `json:"stepKey,omitempty" yaml:"stepKey,omitempty"`
	Tool    Tool     `json:"tool,omitempty" yaml:"tool,omitempty"`
}

func (r Resource) Clone() Resource {
	out := r
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	if r.StepKey != nil {
		k := *r.StepKey
		out.StepKey = &k
	}
	return out
}

func (r Resource) IsCatalog() bool { return r.InputType == InputCatalog }

// SameCatalogEntry reports whether r and other point at the same catalog entity.
func (r Resource) SameCatalogEntry(other Resource) bool {
	return r.IsCatalog() && other.IsCatalog() && r.ID == other.ID && r.Version == other.Version
}
