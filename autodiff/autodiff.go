// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation.
//
// Every arithmetic call creates a new Value that remembers its operands.
// Backward walks the resulting graph from a root and fills in the gradient
// of the root with respect to every node that reaches it.
//
// Example:
//
//	import "github.com/born-ml/micrograd/autodiff"
//
//	func main() {
//	    x := autodiff.New(-4)
//	    y := x.MulScalar(2).Add(x).ReLU()
//	    y.Backward()
//	    fmt.Println(y.Data(), x.Grad())
//	}
package autodiff

import (
	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Value is a node of the computation graph.
type Value = autodiff.Value

// Op identifies the operation that produced a Value.
type Op = ops.Kind

// Operations.
const (
	OpConstant = ops.Constant
	OpAdd      = ops.Add
	OpMul      = ops.Mul
	OpReLU     = ops.ReLU
)

// New creates a leaf Value holding x with gradient 0.
func New(x float64) *Value {
	return autodiff.New(x)
}

// ScalarAdd returns a node for x + v, with the number lifted to a constant.
func ScalarAdd(x float64, v *Value) *Value {
	return autodiff.ScalarAdd(x, v)
}

// ScalarMul returns a node for x * v, with the number lifted to a constant.
func ScalarMul(x float64, v *Value) *Value {
	return autodiff.ScalarMul(x, v)
}

// Backward sets the gradient of every node reachable from root to
// d(root)/d(node). Gradients from earlier passes over the same nodes are
// discarded first.
func Backward(root *Value) {
	autodiff.Backward(root)
}

// ZeroGrad sets the gradient of every node reachable from root to 0.
func ZeroGrad(root *Value) {
	autodiff.ZeroGrad(root)
}

// TopologicalOrder returns the nodes reachable from root, root first, each
// node before all of its operands.
func TopologicalOrder(root *Value) []*Value {
	return autodiff.TopologicalOrder(root)
}
