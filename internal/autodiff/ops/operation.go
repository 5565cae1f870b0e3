// Package ops defines the closed set of scalar operations and their local derivative rules.
//
// Every node in a computation graph carries a Kind. The Kind decides how the
// node's value is computed from its operands (Forward) and how the node's
// gradient is split between its operands (Backward, one chain-rule step).
//
// Supported operations:
//   - Constant: leaf value, no operands
//   - Add: a + b (d(a+b)/da = 1, d(a+b)/db = 1)
//   - Mul: a * b (d(a*b)/da = b, d(a*b)/db = a)
//   - ReLU: max(a, 0) (d(ReLU(a))/da = 1 if a > 0, else 0)
//
// The set is closed on purpose: a switch over Kind is exhaustive, and adding an
// operation means adding a constant here plus its forward/backward pair.
package ops

import "fmt"

// Kind identifies the operation that produced a node.
type Kind uint8

// Operation kinds.
const (
	Constant Kind = iota // leaf lifted from a plain number
	Add                  // a + b
	Mul                  // a * b
	ReLU                 // max(a, 0)
)

// String returns the lower-case name of the operation.
func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Add:
		return "add"
	case Mul:
		return "mul"
	case ReLU:
		return "relu"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Symbol returns the short operator form used in graph dumps ("+", "*", "relu").
// Constant has no symbol.
func (k Kind) Symbol() string {
	switch k {
	case Add:
		return "+"
	case Mul:
		return "*"
	case ReLU:
		return "relu"
	default:
		return ""
	}
}

// Arity returns the number of operands the operation takes.
func (k Kind) Arity() int {
	switch k {
	case Constant:
		return 0
	case Add, Mul:
		return 2
	case ReLU:
		return 1
	default:
		panic(fmt.Sprintf("ops: unknown kind %d", uint8(k)))
	}
}

// Forward computes the value of an operation from its operand values.
//
// Panics if operands does not match the arity of k, or if k is Constant
// (a constant has no operands to compute from).
func Forward(k Kind, operands []float64) float64 {
	checkArity(k, operands)
	switch k {
	case Add:
		return addForward(operands[0], operands[1])
	case Mul:
		return mulForward(operands[0], operands[1])
	case ReLU:
		return reluForward(operands[0])
	default:
		panic(fmt.Sprintf("ops: %s has no forward rule", k))
	}
}

// Backward computes the gradient contribution for each operand, given the
// gradient of the operation's output and the operand values.
//
// The returned slice has one entry per operand, in operand order. Callers add
// the entries into the operands' gradients; Backward never writes anywhere.
//
// Example for Mul:
//
//	operands:   [a, b]
//	outputGrad: dL/d(a*b)
//	returns:    [b * outputGrad, a * outputGrad]
func Backward(k Kind, outputGrad float64, operands []float64) []float64 {
	checkArity(k, operands)
	switch k {
	case Add:
		gradA, gradB := addBackward(outputGrad)
		return []float64{gradA, gradB}
	case Mul:
		gradA, gradB := mulBackward(outputGrad, operands[0], operands[1])
		return []float64{gradA, gradB}
	case ReLU:
		return []float64{reluBackward(outputGrad, operands[0])}
	default:
		panic(fmt.Sprintf("ops: %s has no backward rule", k))
	}
}

func checkArity(k Kind, operands []float64) {
	if n := k.Arity(); len(operands) != n {
		panic(fmt.Sprintf("ops: %s expects %d operands, got %d", k, n, len(operands)))
	}
}
