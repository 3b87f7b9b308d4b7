package dag

import (
	"fmt"
	"sort"

	"github.com/soochol/workbench/internal/workbench"
)

// Edge is a data dependency: To consumes Resource, produced by From.
type Edge struct {
	From     workbench.StepKey
	To       workbench.StepKey
	Resource workbench.ResourceKey
}

// DAG is the step dependency graph implied by step inputs.
type DAG struct {
	steps     map[workbench.StepKey]*workbench.Step
	children  map[workbench.StepKey][]workbench.StepKey
	parents   map[workbench.StepKey][]workbench.StepKey
	edges     []Edge
	topoOrder []workbench.StepKey
}

// Build derives the graph from steps and the resources they consume. Inputs must
// reference known resources; output resources must name a known producer.
func Build(steps []workbench.Step, resources []workbench.Resource) (*DAG, error) {
	d := &DAG{
		steps:    make(map[workbench.StepKey]*workbench.Step),
		children: make(map[workbench.StepKey][]workbench.StepKey),
		parents:  make(map[workbench.StepKey][]workbench.StepKey),
	}

	for i := range steps {
		s := &steps[i]
		if _, exists := d.steps[s.Key]; exists {
			return nil, fmt.Errorf("duplicate step key: %d", s.Key)
		}
		d.steps[s.Key] = s
	}

	producers := make(map[workbench.ResourceKey]*workbench.Resource, len(resources))
	for i := range resources {
		producers[resources[i].Key] = &resources[i]
	}

	for _, s := range steps {
		for _, in := range s.Input {
			r, ok := producers[in.InputKey]
			if !ok {
				return nil, fmt.Errorf("step %d references unknown resource: %d", s.Key, in.InputKey)
			}
			if r.IsCatalog() {
				continue
			}
			if r.StepKey == nil {
				return nil, fmt.Errorf("output resource %d has no producing step", r.Key)
			}
			from := *r.StepKey
			if _, ok := d.steps[from]; !ok {
				return nil, fmt.Errorf("resource %d references unknown step: %d", r.Key, from)
			}
			if from == s.Key {
				return nil, fmt.Errorf("step %d consumes its own output", s.Key)
			}
			d.edges = append(d.edges, Edge{From: from, To: s.Key, Resource: in.InputKey})
			d.children[from] = append(d.children[from], s.Key)
			d.parents[s.Key] = append(d.parents[s.Key], from)
		}
	}

	order, err := d.topoSort()
	if err != nil {
		return nil, err
	}
	d.topoOrder = order
	return d, nil
}

// topoSort is Kahn's algorithm; ties are broken by step order so that a graph
// without violations sorts exactly into its order sequence.
func (d *DAG) topoSort() ([]workbench.StepKey, error) {
	inDegree := make(map[workbench.StepKey]int, len(d.steps))
	for key := range d.steps {
		inDegree[key] = 0
	}
	for _, children := range d.children {
		for _, c := range children {
			inDegree[c]++
		}
	}
	var queue []workbench.StepKey
	for key, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, key)
		}
	}
	d.sortByOrder(queue)
	var order []workbench.StepKey
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		order = append(order, key)
		for _, c := range d.children[key] {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
		d.sortByOrder(queue)
	}
	if len(order) != len(d.steps) {
		return nil, fmt.Errorf("cycle detected in step dependencies")
	}
	return order, nil
}

func (d *DAG) sortByOrder(keys []workbench.StepKey) {
	sort.Slice(keys, func(i, j int) bool {
		return d.steps[keys[i]].Order < d.steps[keys[j]].Order
	})
}

func (d *DAG) TopologicalOrder() []workbench.StepKey             { return d.topoOrder }
func (d *DAG) Children(key workbench.StepKey) []workbench.StepKey { return d.children[key] }
func (d *DAG) Parents(key workbench.StepKey) []workbench.StepKey  { return d.parents[key] }
func (d *DAG) Edges() []Edge                                      { return d.edges }

func (d *DAG) Roots() []workbench.StepKey {
	var roots []workbench.StepKey
	for key := range d.steps {
		if len(d.parents[key]) == 0 {
			roots = append(roots, key)
		}
	}
	d.sortByOrder(roots)
	return roots
}

// OrderViolations returns the edges whose producer does not come strictly
// before its consumer in step order.
func (d *DAG) OrderViolations() []Edge {
	var out []Edge
	for _, e := range d.edges {
		if d.steps[e.From].Order >= d.steps[e.To].Order {
			out = append(out, e)
		}
	}
	return out
}
