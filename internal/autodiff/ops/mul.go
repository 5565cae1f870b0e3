package ops

// Multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a

func mulForward(a, b float64) float64 {
	return a * b
}

func mulBackward(outputGrad, a, b float64) (gradA, gradB float64) {
	return b * outputGrad, a * outputGrad
}
