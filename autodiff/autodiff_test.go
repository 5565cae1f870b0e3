// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/autodiff"
)

func TestSanityChain(t *testing.T) {
	x := autodiff.New(-4)
	z := autodiff.ScalarMul(2, x).AddScalar(2).Add(x)
	q := z.ReLU().Add(z.Mul(x))
	h := z.Mul(z).ReLU()
	y := h.Add(q).Add(q.Mul(x))

	autodiff.Backward(y)

	assert.Equal(t, -20.0, y.Data())
	assert.Equal(t, 46.0, x.Grad())
	assert.Equal(t, -8.0, z.Grad())
	assert.Equal(t, autodiff.OpAdd, y.Op())
}

func TestTopologicalOrderAndZeroGrad(t *testing.T) {
	a := autodiff.New(2)
	b := autodiff.ScalarAdd(1, a)
	c := a.Mul(b)

	order := autodiff.TopologicalOrder(c)
	require.NotEmpty(t, order)
	assert.Same(t, c, order[0])

	c.Backward()
	assert.Equal(t, 5.0, a.Grad())

	autodiff.ZeroGrad(c)
	for _, n := range order {
		assert.Zero(t, n.Grad())
	}
	assert.Equal(t, autodiff.OpConstant, a.Op())
	assert.Equal(t, autodiff.OpMul, c.Op())
	assert.Equal(t, autodiff.OpReLU, c.ReLU().Op())
}
