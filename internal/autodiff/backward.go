package autodiff

import "github.com/born-ml/micrograd/internal/autodiff/ops"

// Backward computes d(root)/d(node) for every node reachable from root and
// stores it in the node's gradient.
//
// Algorithm:
//  1. Build the topological order (root first)
//  2. Reset the gradient of every node in the order to 0
//  3. Seed root's gradient with 1
//  4. Walk the order front to back; for each non-constant node apply its
//     local derivative rule and add each contribution to the operand's gradient
//
// Because a node is visited only after every node that consumes it, its
// gradient is complete by the time it propagates further. Contributions are
// always added, so a node used in several places (or twice by one operation,
// as in x + x) collects the sum.
//
// Gradients are reset on entry, so calling Backward again on the same root, or
// on another root sharing part of the graph, never double counts. Gradients
// of nodes not reachable from root are left untouched.
//
// Backward on a constant sets its gradient to 1 and does nothing else.
func Backward(root *Value) {
	order := TopologicalOrder(root)
	if len(order) == 0 {
		return
	}

	for _, node := range order {
		node.grad = 0
	}
	root.grad = 1

	for _, node := range order {
		if node.op == ops.Constant {
			continue
		}
		in := make([]float64, len(node.operands))
		for i, operand := range node.operands {
			in[i] = operand.data
		}
		for i, g := range ops.Backward(node.op, node.grad, in) {
			node.operands[i].grad += g
		}
	}
}

// Backward is shorthand for Backward(v).
func (v *Value) Backward() {
	Backward(v)
}

// ZeroGrad sets the gradient of every node reachable from root to 0.
func ZeroGrad(root *Value) {
	for _, node := range TopologicalOrder(root) {
		node.grad = 0
	}
}
