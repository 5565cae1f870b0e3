package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// exprKind enumerates the expression forms a graph file may use.
type exprKind uint8

const (
	exprNumber exprKind = iota
	exprRef
	exprAdd
	exprSub
	exprMul
	exprNeg
	exprReLU
)

// expr is a compiled, validated expression.
type expr struct {
	kind exprKind
	num  float64   // exprNumber
	name string    // exprRef
	args []*expr   // operands, in source order
	rng  hcl.Range // source range, for diagnostics
}

// reluFunc is the only function graph files may call.
const reluFunc = "relu"

const supportedDetail = "Graph expressions may only use numbers, attribute names, parentheses, " +
	"the operators +, - and *, unary minus and relu(...)."

func errorDiag(summary, detail string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}

// compileExpr converts an HCL syntax tree into an expr, reporting every
// unsupported construct it finds.
func compileExpr(e hclsyntax.Expression) (*expr, hcl.Diagnostics) {
	switch e := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return compileNumber(e.Val, e.SrcRange)

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return nil, hcl.Diagnostics{errorDiag(
				"Unsupported reference",
				"Only plain attribute names can be referenced; attribute access and indexing are not supported.",
				e.SrcRange,
			)}
		}
		return &expr{kind: exprRef, name: e.Traversal.RootName(), rng: e.SrcRange}, nil

	case *hclsyntax.ParenthesesExpr:
		return compileExpr(e.Expression)

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return nil, hcl.Diagnostics{errorDiag("Unsupported operator", supportedDetail, e.SrcRange)}
		}
		arg, diags := compileExpr(e.Val)
		if diags.HasErrors() {
			return nil, diags
		}
		if arg.kind == exprNumber {
			// Fold -literal into a single literal so "x = -4" is a parameter.
			return &expr{kind: exprNumber, num: -arg.num, rng: e.SrcRange}, nil
		}
		return &expr{kind: exprNeg, args: []*expr{arg}, rng: e.SrcRange}, nil

	case *hclsyntax.BinaryOpExpr:
		var kind exprKind
		switch e.Op {
		case hclsyntax.OpAdd:
			kind = exprAdd
		case hclsyntax.OpSubtract:
			kind = exprSub
		case hclsyntax.OpMultiply:
			kind = exprMul
		default:
			return nil, hcl.Diagnostics{errorDiag("Unsupported operator", supportedDetail, e.SrcRange)}
		}
		lhs, diags := compileExpr(e.LHS)
		rhs, rhsDiags := compileExpr(e.RHS)
		diags = append(diags, rhsDiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr{kind: kind, args: []*expr{lhs, rhs}, rng: e.SrcRange}, nil

	case *hclsyntax.FunctionCallExpr:
		rng := e.Range()
		if e.Name != reluFunc {
			return nil, hcl.Diagnostics{errorDiag(
				"Unknown function",
				fmt.Sprintf("There is no function named %q; only %s(...) is available.", e.Name, reluFunc),
				e.NameRange,
			)}
		}
		if len(e.Args) != 1 || e.ExpandFinal {
			return nil, hcl.Diagnostics{errorDiag(
				"Wrong number of arguments",
				fmt.Sprintf("%s takes exactly one argument.", reluFunc),
				rng,
			)}
		}
		arg, diags := compileExpr(e.Args[0])
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr{kind: exprReLU, args: []*expr{arg}, rng: rng}, nil

	default:
		return nil, hcl.Diagnostics{errorDiag("Unsupported expression", supportedDetail, e.Range())}
	}
}

// compileNumber converts a literal cty value to float64.
func compileNumber(val cty.Value, rng hcl.Range) (*expr, hcl.Diagnostics) {
	if val.IsNull() {
		return nil, hcl.Diagnostics{errorDiag("Number expected", "Literal values must be numbers, not null.", rng)}
	}
	if !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return nil, hcl.Diagnostics{errorDiag(
			"Number expected",
			fmt.Sprintf("Literal values must be numbers, not %s.", val.Type().FriendlyName()),
			rng,
		)}
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return nil, hcl.Diagnostics{errorDiag("Invalid number", err.Error(), rng)}
	}
	if math.IsInf(f, 0) {
		return nil, hcl.Diagnostics{errorDiag("Number out of range", "The literal does not fit in a 64-bit float.", rng)}
	}
	return &expr{kind: exprNumber, num: f, rng: rng}, nil
}

// refs appends every attribute reference inside e, in source order.
func (e *expr) refs(dst []*expr) []*expr {
	if e.kind == exprRef {
		return append(dst, e)
	}
	for _, a := range e.args {
		dst = a.refs(dst)
	}
	return dst
}

// orderAttributes returns attribute names so that every attribute comes after
// the attributes it references. Ties keep source order.
func orderAttributes(names []string, attrs map[string]*attribute) ([]string, hcl.Diagnostics) {
	const (
		unvisited = iota
		visiting
		done
	)

	var diags hcl.Diagnostics
	state := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	var path []string

	var visit func(name string)
	visit = func(name string) {
		switch state[name] {
		case done:
			return
		case visiting:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			diags = append(diags, errorDiag(
				"Reference cycle",
				fmt.Sprintf("Attributes refer to each other in a loop: %s.", strings.Join(cycle, " -> ")),
				attrs[name].nameRange,
			))
			return
		}

		state[name] = visiting
		path = append(path, name)
		for _, ref := range attrs[name].expr.refs(nil) {
			if _, ok := attrs[ref.name]; !ok {
				diags = append(diags, errorDiag(
					"Unknown name",
					fmt.Sprintf("No attribute named %q is defined in this file.", ref.name),
					ref.rng,
				))
				continue
			}
			visit(ref.name)
		}
		path = path[:len(path)-1]
		state[name] = done
		order = append(order, name)
	}

	for _, name := range names {
		visit(name)
	}
	return order, diags
}
