package transform

import (
	"log"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
)

// Visitor runs a list of rules against every schema node the generator
// visits and counts the edits each rule made.
type Visitor struct {
	rules   []Rule
	verbose bool

	mu    sync.Mutex
	edits map[string]int
}

// NewVisitor creates a visitor applying rules in order.
func NewVisitor(rules []Rule, verbose bool) *Visitor {
	return &Visitor{
		rules:   rules,
		verbose: verbose,
		edits:   make(map[string]int),
	}
}

// Visit is a tsgen.TransformFunc. Every rule sees the node; the first
// override returned wins.
func (v *Visitor) Visit(schema *yaml.Node, location string) tsgen.Type {
	var result tsgen.Type
	for _, rule := range v.rules {
		override, applied := rule.Apply(schema)
		if !applied {
			continue
		}
		v.record(rule.Name())
		if v.verbose {
			log.Printf("Applied %s at %s", rule.Name(), location)
		}
		if result == nil && override != nil {
			result = override
		}
	}
	return result
}

func (v *Visitor) record(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edits[name]++
}

// Edits returns a copy of the per-rule edit counts.
func (v *Visitor) Edits() map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]int, len(v.edits))
	for k, n := range v.edits {
		out[k] = n
	}
	return out
}
