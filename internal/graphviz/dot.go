// Package graphviz renders a computation graph in Graphviz DOT format.
//
// Each reachable Value becomes a record node showing its label, data and
// grad. Each non-constant Value also gets a small circle node for its
// operation, with one edge per operand slot:
//
//	operand -> op -> result
//
// Node ids are assigned in topological order (root is n0), so the same graph
// always renders to the same text.
package graphviz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// GraphName is the name of the emitted digraph.
const GraphName = "Micrograd"

// Write renders the graph reachable from root to w.
// A nil root produces an empty digraph.
func Write(w io.Writer, root *autodiff.Value) error {
	order := autodiff.TopologicalOrder(root)

	ids := make(map[*autodiff.Value]string, len(order))
	for i, n := range order {
		ids[n] = fmt.Sprintf("n%d", i)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %s {\n", GraphName)
	fmt.Fprintln(bw, "  rankdir=LR;")

	for _, n := range order {
		id := ids[n]
		fmt.Fprintf(bw, "  %s [shape=record,label=\"{ %s | data %.4f | grad %.4f }\"];\n",
			id, escapeRecord(nodeLabel(n)), n.Data(), n.Grad())

		if len(n.Operands()) == 0 {
			continue
		}
		fmt.Fprintf(bw, "  %s_op [shape=circle,label=\"%s\"];\n", id, escapeString(n.Op().Symbol()))
		fmt.Fprintf(bw, "  %s_op -> %s;\n", id, id)
	}

	for _, n := range order {
		for slot, operand := range n.Operands() {
			fmt.Fprintf(bw, "  %s -> %s_op [label=\"%d\"];\n", ids[operand], ids[n], slot)
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// String renders the graph reachable from root and returns it.
func String(root *autodiff.Value) string {
	var sb strings.Builder
	_ = Write(&sb, root) // strings.Builder never fails
	return sb.String()
}

// nodeLabel falls back to the formatted data for unlabeled nodes.
func nodeLabel(n *autodiff.Value) string {
	if l := n.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("%g", n.Data())
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeString escapes text for a quoted DOT string.
func escapeString(s string) string {
	return stringEscaper.Replace(s)
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`,
	`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// escapeRecord escapes text for a field of a record-shaped node.
func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}
