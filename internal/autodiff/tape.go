package autodiff

import "slices"

// TopologicalOrder returns every node reachable from root through operands,
// root first, such that each node comes before all of its operands.
//
// Algorithm:
//  1. Depth-first search over operands in slot order, emitting each node
//     after all of its operands (post-order)
//  2. Reverse the post-order
//
// A node shared by several consumers appears exactly once; the visited set is
// keyed by node identity, not by value. The search uses an explicit stack so
// long chains do not grow the goroutine stack.
//
// The order depends only on graph structure, so the same graph always yields
// the same order. Returns nil for a nil root.
func TopologicalOrder(root *Value) []*Value {
	if root == nil {
		return nil
	}

	type frame struct {
		node *Value
		next int // index of the next operand to visit
	}

	visited := map[*Value]struct{}{root: {}}
	stack := []frame{{node: root}}
	order := make([]*Value, 0, 16)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.operands) {
			child := top.node.operands[top.next]
			top.next++
			if _, seen := visited[child]; !seen {
				visited[child] = struct{}{}
				stack = append(stack, frame{node: child})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(order)
	return order
}
