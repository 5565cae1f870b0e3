// Package script compiles graph definition files into computation graphs.
//
// A graph file is an HCL body made only of attributes. Each attribute names a
// node; its expression says how the node is computed from numbers and other
// attributes:
//
//	x = -4
//	z = 2*x + 2 + x
//	q = relu(z) + z*x
//	h = relu(z*z)
//	y = h + q + q*x
//
// Supported expressions are number literals, references to other attributes,
// parentheses, the binary operators +, - and *, unary minus, and relu(e).
// Subtraction and negation are sugar over add and multiply (a - b is
// a + b*-1), so every compiled graph uses only the core operations.
//
// An attribute whose expression is a plain number (optionally negated) is a
// parameter: a named leaf whose value can be overridden at evaluation time.
//
// Compilation checks the whole file up front (unsupported syntax, unknown
// names, reference cycles) and reports problems as hcl.Diagnostics with
// source ranges. A compiled Program is immutable; Eval builds a fresh graph
// on every call and may be called from several goroutines at once.
package script
