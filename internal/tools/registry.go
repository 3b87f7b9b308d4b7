package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/soochol/workbench/internal/workbench"
)

type compiledRule struct {
	Rule
	program *vm.Program
}

type toolEntry struct {
	desc  Descriptor
	rules []compiledRule
}

type sourceEntry struct {
	desc  SourceDescriptor
	rules []compiledRule
}

// Registry holds the tool and data-source descriptors the designer works with.
// It is the tool-configuration collaborator: default configurations and pure
// validators are looked up here.
type Registry struct {
	mu      sync.RWMutex
	tools   map[workbench.Tool]*toolEntry
	sources map[string]*sourceEntry
}

func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[workbench.Tool]*toolEntry),
		sources: make(map[string]*sourceEntry),
	}
}

// Register adds a tool descriptor, compiling its validation rules.
func (r *Registry) Register(d Descriptor) error {
	rules, err := compileRules(d.Rules)
	if err != nil {
		return fmt.Errorf("tool %s: %w", d.Tool, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[d.Tool] = &toolEntry{desc: d, rules: rules}
	return nil
}

// RegisterSource adds a data-source descriptor.
func (r *Registry) RegisterSource(d SourceDescriptor) error {
	rules, err := compileRules(d.Rules)
	if err != nil {
		return fmt.Errorf("data source %s: %w", d.Source, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[d.Source] = &sourceEntry{desc: d, rules: rules}
	return nil
}

// Configure appends application-level rules to registered tools.
func (r *Registry) Configure(app AppConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tool, settings := range app {
		e, ok := r.tools[tool]
		if !ok {
			return fmt.Errorf("configure unknown tool %q", tool)
		}
		rules, err := compileRules(settings.Rules)
		if err != nil {
			return fmt.Errorf("tool %s: %w", tool, err)
		}
		e.desc.Rules = append(e.desc.Rules, settings.Rules...)
		e.rules = append(e.rules, rules...)
	}
	return nil
}

// Get returns the descriptor for tool.
func (r *Registry) Get(tool workbench.Tool) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[tool]
	if !ok {
		return nil, false
	}
	d := e.desc
	return &d, true
}

func (r *Registry) Source(source string) (*SourceDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sources[source]
	if !ok {
		return nil, false
	}
	d := e.desc
	return &d, true
}

// List returns all tool descriptors sorted by tool name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.tools))
	for _, e := range r.tools {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool < out[j].Tool })
	return out
}

func (r *Registry) Sources() []SourceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SourceDescriptor, 0, len(r.sources))
	for _, e := range r.sources {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// DefaultConfig builds the initial configuration of a new step of tool.
// Application defaults override the descriptor's; the application version, when
// set, wins over the newest supported version.
func (r *Registry) DefaultConfig(tool workbench.Tool, app AppConfig) (workbench.Configuration, error) {
	d, ok := r.Get(tool)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	cfg := d.Defaults.Clone()
	if cfg == nil {
		cfg = workbench.Configuration{}
	}
	settings := app[tool]
	for k, v := range workbench.Configuration(settings.Defaults).Clone() {
		cfg[k] = v
	}
	switch {
	case settings.Version != "":
		cfg["version"] = settings.Version
	case cfg.Version() == "" && len(d.Versions) > 0:
		cfg["version"] = d.Versions[len(d.Versions)-1]
	}
	return cfg, nil
}

// DefaultSourceConfig returns the initial configuration of a data source.
func (r *Registry) DefaultSourceConfig(source string) (workbench.Configuration, error) {
	d, ok := r.Source(source)
	if !ok {
		return nil, fmt.Errorf("unknown data source %q", source)
	}
	cfg := d.Defaults.Clone()
	if cfg == nil {
		cfg = workbench.Configuration{}
	}
	return cfg, nil
}

// Validate runs the validator of tool against cfg. It returns a
// *ValidationError when any rule fails.
func (r *Registry) Validate(tool workbench.Tool, cfg workbench.Configuration) error {
	r.mu.RLock()
	e, ok := r.tools[tool]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}
	fields := workbench.Errors{}
	if len(e.desc.Versions) > 0 && !contains(e.desc.Versions, cfg.Version()) {
		fields["version"] = fmt.Sprintf("unsupported version %q", cfg.Version())
	}
	evaluate(e.rules, cfg, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateSource runs the validator of a data-source kind against cfg.
func (r *Registry) ValidateSource(source string, cfg workbench.Configuration) error {
	r.mu.RLock()
	e, ok := r.sources[source]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown data source %q", source)
	}
	fields := workbench.Errors{}
	evaluate(e.rules, cfg, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		program, err := expr.Compile(rule.Expr, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("compile rule for %q: %w", rule.Field, err)
		}
		out = append(out, compiledRule{Rule: rule, program: program})
	}
	return out, nil
}

// evaluate records the first failing rule per field.
func evaluate(rules []compiledRule, cfg workbench.Configuration, fields workbench.Errors) {
	env := map[string]any(cfg)
	if env == nil {
		env = map[string]any{}
	}
	for _, rule := range rules {
		if _, failed := fields[rule.Field]; failed {
			continue
		}
		result, err := expr.Run(rule.program, env)
		if err != nil {
			fields[rule.Field] = rule.Message
			continue
		}
		if ok, _ := result.(bool); !ok {
			fields[rule.Field] = rule.Message
		}
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
