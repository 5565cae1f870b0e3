package ops

// ReLU (Rectified Linear Unit): output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//
// The kink at exactly x == 0 takes the sub-gradient 0: relu(0) passes no gradient.

// NaN is passed through unchanged.
func reluForward(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func reluBackward(outputGrad, x float64) float64 {
	if x > 0 {
		return outputGrad
	}
	return 0
}
