package script

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/telemetry"
)

var (
	// ErrUnknownName is returned when a name does not refer to any attribute.
	ErrUnknownName = errors.New("unknown name")
	// ErrNotParameter is returned when an override targets an attribute that
	// is not defined by a plain number.
	ErrNotParameter = errors.New("not a parameter")
)

// Graph is one evaluation of a Program: a computation graph plus the names
// that point into it.
type Graph struct {
	values map[string]*autodiff.Value
	names  []string // source order
}

// Eval builds a fresh computation graph for the program.
//
// overrides replaces the value of parameters by name; it may be nil. Every
// reference to an attribute yields the same *autodiff.Value, so an attribute
// used twice is a shared node. Every number literal inside an expression
// becomes its own constant leaf. Nodes are labeled with the first attribute
// name (in source order) that refers to them.
func (p *Program) Eval(ctx context.Context, overrides map[string]float64) (*Graph, error) {
	for _, name := range sortedKeys(overrides) {
		if _, ok := p.attrs[name]; !ok {
			return nil, fmt.Errorf("override %q: %w", name, ErrUnknownName)
		}
		if _, ok := p.params[name]; !ok {
			return nil, fmt.Errorf("override %q: %w", name, ErrNotParameter)
		}
	}

	g := &Graph{
		values: make(map[string]*autodiff.Value, len(p.order)),
		names:  p.names,
	}
	for _, name := range p.order {
		if v, ok := p.params[name]; ok {
			if o, ok := overrides[name]; ok {
				v = o
			}
			g.values[name] = autodiff.New(v)
			continue
		}
		g.values[name] = g.build(p.attrs[name].expr)
	}

	for _, name := range p.names {
		if v := g.values[name]; v.Label() == "" {
			v.SetLabel(name)
		}
	}

	telemetry.FromContext(ctx).Debug("Evaluated graph.",
		"file", p.filename,
		"attributes", len(g.values),
		"overrides", len(overrides),
	)
	return g, nil
}

// build allocates the nodes for e. References must already be evaluated,
// which the dependency order guarantees.
func (g *Graph) build(e *expr) *autodiff.Value {
	switch e.kind {
	case exprNumber:
		return autodiff.New(e.num)
	case exprRef:
		return g.values[e.name]
	case exprAdd:
		return g.build(e.args[0]).Add(g.build(e.args[1]))
	case exprSub:
		return g.build(e.args[0]).Sub(g.build(e.args[1]))
	case exprMul:
		return g.build(e.args[0]).Mul(g.build(e.args[1]))
	case exprNeg:
		return g.build(e.args[0]).Neg()
	case exprReLU:
		return g.build(e.args[0]).ReLU()
	default:
		panic(fmt.Sprintf("script: unknown expression kind %d", e.kind))
	}
}

// Lookup returns the node bound to name.
func (g *Graph) Lookup(name string) (*autodiff.Value, bool) {
	v, ok := g.values[name]
	return v, ok
}

// Get is like Lookup but returns ErrUnknownName for a missing name.
func (g *Graph) Get(name string) (*autodiff.Value, error) {
	v, ok := g.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return v, nil
}

// Names returns the attribute names in source order.
func (g *Graph) Names() []string {
	return slices.Clone(g.names)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
