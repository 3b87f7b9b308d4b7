package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/soochol/workbench/internal/workbench"
)

// Rule is a boolean expr-lang expression evaluated against a configuration.
// When it evaluates to false, Message is reported for Field.
type Rule struct {
	Field   string `json:"field" yaml:"field"`
	Expr    string `json:"expr" yaml:"expr"`
	Message string `json:"message" yaml:"message"`
}

// Descriptor describes one tool the designer can place in a process.
type Descriptor struct {
	Tool  workbench.Tool `json:"tool"`
	Title string         `json:"title"`

	// Cloneable tools can be duplicated with CloneStep.
	Cloneable bool `json:"cloneable"`

	// ResourceType of the produced resource; empty for terminal tools.
	ResourceType workbench.ResourceType `json:"resource_type,omitempty"`

	// Parts lists named sub-outputs a consumer may select.
	Parts []string `json:"parts,omitempty"`

	// MaxInputs is the number of resources the tool consumes. Zero means the
	// tool reads only from data sources.
	MaxInputs int `json:"max_inputs"`

	// DataSources lists the source kinds the tool accepts.
	DataSources []string `json:"data_sources,omitempty"`

	Versions []string                `json:"versions,omitempty"`
	Defaults workbench.Configuration `json:"defaults,omitempty"`
	Rules    []Rule                  `json:"rules,omitempty"`
}

// ProducesOutput reports whether steps of this tool create an output resource.
func (d *Descriptor) ProducesOutput() bool { return d.ResourceType != "" }

func (d *Descriptor) HasPart(part string) bool {
	for _, p := range d.Parts {
		if p == part {
			return true
		}
	}
	return false
}

func (d *Descriptor) AcceptsDataSource(source string) bool {
	for _, s := range d.DataSources {
		if s == source {
			return true
		}
	}
	return false
}

// SourceDescriptor describes a data-source kind (file system, URL, harvester).
type SourceDescriptor struct {
	Source   string                  `json:"source"`
	Title    string                  `json:"title"`
	Defaults workbench.Configuration `json:"defaults,omitempty"`
	Rules    []Rule                  `json:"rules,omitempty"`
}

// Settings carries application-level overrides for one tool.
type Settings struct {
	Version  string
	Defaults map[string]any
	Rules    []Rule
}

// AppConfig maps tools to their application settings.
type AppConfig map[workbench.Tool]Settings

// ValidationError is the field-keyed result of a failed validation.
type ValidationError struct {
	Fields workbench.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// ErrorsOf extracts the field map from err. A nil error yields nil; any other
// error is reported under the empty field.
func ErrorsOf(err error) workbench.Errors {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields.Clone()
	}
	return workbench.Errors{"": err.Error()}
}
