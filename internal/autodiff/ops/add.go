package ops

// Addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// When a and b are the same node both contributions land on it, which is how
// x + x ends up with gradient 2.

func addForward(a, b float64) float64 {
	return a + b
}

func addBackward(outputGrad float64) (gradA, gradB float64) {
	return outputGrad, outputGrad
}
