// Package autodiff implements scalar reverse-mode automatic differentiation.
//
// A Value is one node of a computation graph: a float64, the gradient
// accumulated into it by the last backward pass, the operation that produced
// it, and the operands that operation consumed. Applying an operator never
// changes its operands; it allocates a new Value that points at them. The
// graph is therefore a DAG by construction and nodes are shared freely
// between consumers.
//
// Architecture:
//   - Value: node with data, grad, op kind and ordered operands
//   - ops.Kind: closed set of operations with their local derivative rules
//   - TopologicalOrder: identity-keyed DFS producing a root-first order
//   - Backward: reset, seed the root with 1, replay the order accumulating grads
//
// Usage:
//
//	x := autodiff.New(-4)
//	z := autodiff.ScalarMul(2, x).AddScalar(2).Add(x) // z = 2x + 2 + x
//	y := z.ReLU().Add(z.Mul(x))                       // y = relu(z) + z*x
//
//	autodiff.Backward(y)
//	fmt.Println(x.Grad()) // dy/dx
//
// Values are not safe for concurrent backward passes over overlapping graphs,
// since Backward writes grad in place. Independent graphs can be built and
// differentiated on separate goroutines.
package autodiff

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Value is a scalar node in a computation graph.
//
// Identity is the pointer: two Values with equal data are still different
// nodes, and *Value is the key used for any per-node bookkeeping.
type Value struct {
	data     float64  // forward value, fixed at creation
	grad     float64  // dRoot/dThis from the last backward pass
	op       ops.Kind // operation that produced this value
	operands []*Value // inputs of op, in slot order
	label    string   // display only
}

// New lifts a number into the graph as a constant leaf.
func New(x float64) *Value {
	return &Value{data: x, op: ops.Constant}
}

// apply allocates the node for op over operands.
func apply(op ops.Kind, operands ...*Value) *Value {
	in := make([]float64, len(operands))
	for i, o := range operands {
		in[i] = o.data
	}
	return &Value{
		data:     ops.Forward(op, in),
		op:       op,
		operands: operands,
	}
}

// Add returns v + other. Operands are recorded as [v, other].
func (v *Value) Add(other *Value) *Value {
	return apply(ops.Add, v, other)
}

// Mul returns v * other. Operands are recorded as [v, other].
func (v *Value) Mul(other *Value) *Value {
	return apply(ops.Mul, v, other)
}

// ReLU returns max(v, 0).
func (v *Value) ReLU() *Value {
	return apply(ops.ReLU, v)
}

// AddScalar returns v + New(x).
func (v *Value) AddScalar(x float64) *Value {
	return v.Add(New(x))
}

// MulScalar returns v * New(x).
func (v *Value) MulScalar(x float64) *Value {
	return v.Mul(New(x))
}

// ScalarAdd returns New(x) + v, keeping the constant in the first slot.
func ScalarAdd(x float64, v *Value) *Value {
	return New(x).Add(v)
}

// ScalarMul returns New(x) * v, keeping the constant in the first slot.
func ScalarMul(x float64, v *Value) *Value {
	return New(x).Mul(v)
}

// Neg returns -v, built as v * -1.
func (v *Value) Neg() *Value {
	return v.MulScalar(-1)
}

// Sub returns v - other, built as v + (-other).
func (v *Value) Sub(other *Value) *Value {
	return v.Add(other.Neg())
}

// Data returns the forward value.
func (v *Value) Data() float64 {
	return v.data
}

// Grad returns the gradient accumulated by the last backward pass.
func (v *Value) Grad() float64 {
	return v.grad
}

// Op returns the operation that produced v.
func (v *Value) Op() ops.Kind {
	return v.op
}

// Operands returns a copy of the operands in slot order.
// It is empty for constants.
func (v *Value) Operands() []*Value {
	if len(v.operands) == 0 {
		return nil
	}
	out := make([]*Value, len(v.operands))
	copy(out, v.operands)
	return out
}

// Label returns the display label, or "" if none was set.
func (v *Value) Label() string {
	return v.label
}

// SetLabel sets the display label. It has no effect on computation.
func (v *Value) SetLabel(label string) {
	v.label = label
}

// String implements fmt.Stringer.
func (v *Value) String() string {
	if v.label != "" {
		return fmt.Sprintf("Value(%s, data=%g, grad=%g, op=%s)", v.label, v.data, v.grad, v.op)
	}
	return fmt.Sprintf("Value(data=%g, grad=%g, op=%s)", v.data, v.grad, v.op)
}
