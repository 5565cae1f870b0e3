package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/micrograd/internal/autodiff"
)

// numericalGradient computes the gradient using central finite differences.
// f: function that builds a graph from x and returns its output value.
// x: point at which to compute the gradient.
// epsilon: small value for finite difference.
func numericalGradient(f func(*autodiff.Value) *autodiff.Value, x, epsilon float64) float64 {
	plus := f(autodiff.New(x + epsilon)).Data()
	minus := f(autodiff.New(x - epsilon)).Data()
	return (plus - minus) / (2 * epsilon)
}

// autodiffGradient builds the graph at x, runs Backward and returns dx.
func autodiffGradient(f func(*autodiff.Value) *autodiff.Value, x float64) float64 {
	leaf := autodiff.New(x)
	autodiff.Backward(f(leaf))
	return leaf.Grad()
}

// TestNumericalGradient compares Backward with finite differences on a set of
// scalar functions, away from ReLU kinks.
func TestNumericalGradient(t *testing.T) {
	const epsilon = 1e-6

	tests := []struct {
		name   string
		f      func(*autodiff.Value) *autodiff.Value
		points []float64
	}{
		{
			name:   "square",
			f:      func(x *autodiff.Value) *autodiff.Value { return x.Mul(x) },
			points: []float64{-3, 0.5, 3},
		},
		{
			name: "composite (x + 2) * 3",
			f: func(x *autodiff.Value) *autodiff.Value {
				return x.AddScalar(2).MulScalar(3)
			},
			points: []float64{-1, 5},
		},
		{
			name: "polynomial x^3 - 2x^2 + x",
			f: func(x *autodiff.Value) *autodiff.Value {
				x2 := x.Mul(x)
				x3 := x2.Mul(x)
				return x3.Sub(x2.MulScalar(2)).Add(x)
			},
			points: []float64{-2, 0.25, 2},
		},
		{
			name: "relu mix",
			f: func(x *autodiff.Value) *autodiff.Value {
				return x.MulScalar(3).ReLU().Add(x.Mul(x).ReLU()).Mul(x)
			},
			points: []float64{-1.5, 0.75, 2},
		},
		{
			name: "sanity chain",
			f: func(x *autodiff.Value) *autodiff.Value {
				z := autodiff.ScalarMul(2, x).AddScalar(2).Add(x)
				q := z.ReLU().Add(z.Mul(x))
				h := z.Mul(z).ReLU()
				return h.Add(q).Add(q.Mul(x))
			},
			points: []float64{-4, 1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range tt.points {
				analytic := autodiffGradient(tt.f, p)
				numeric := numericalGradient(tt.f, p, epsilon)

				// Finite differences carry truncation and rounding error;
				// relative tolerance of 1e-5 is comfortably above it here.
				tol := 1e-5 * math.Max(1, math.Abs(analytic))
				if math.Abs(analytic-numeric) > tol {
					t.Errorf("x=%g: autodiff grad %g differs from numerical grad %g by %g",
						p, analytic, numeric, analytic-numeric)
				}
			}
		})
	}
}
