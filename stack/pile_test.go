// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMatPileStacksRowBlocks(t *testing.T) {
	p := NewMatPile(2)
	require.NoError(t, p.Stack(mat.NewDense(1, 2, []float64{1, 2})))
	require.NoError(t, p.StackScaled(mat.NewDense(2, 2, []float64{3, 4, 5, 6}), -1))
	require.Equal(t, 3, p.Rows())

	want := mat.NewDense(3, 2, []float64{1, 2, -3, -4, -5, -6})
	assert.True(t, mat.Equal(want, p.Matrix()))
}

func TestMatPileRejectsColumnMismatch(t *testing.T) {
	p := NewMatPile(3)
	err := p.Stack(mat.NewDense(1, 2, []float64{1, 2}))
	require.ErrorIs(t, err, ErrDimension)
	assert.Equal(t, 0, p.Rows())
}

func TestMatPileIgnoresNilAndEmpty(t *testing.T) {
	p := NewMatPile(2)
	require.NoError(t, p.Stack(nil))
	assert.Nil(t, p.Matrix())
}

func TestVecPileConcatenates(t *testing.T) {
	var p VecPile
	p.Stack(mat.NewVecDense(2, []float64{1, 2}))
	p.StackScaled(mat.NewVecDense(1, []float64{3}), 0.5)
	p.Stack(nil)

	require.Equal(t, 3, p.Len())
	want := mat.NewVecDense(3, []float64{1, 2, 1.5})
	assert.True(t, mat.Equal(want, p.Vector()))
}

func TestVecPileEmptyIsNil(t *testing.T) {
	var p VecPile
	assert.Nil(t, p.Vector())
}

func TestPolicyFlags(t *testing.T) {
	require.NoError(t, AggregationPolicy(0).Validate())
	require.NoError(t, (EqualitiesToInequalities | UnilateralToBilateral).Validate())
	require.ErrorIs(t, AggregationPolicy(0x40).Validate(), ErrPolicy)

	p := EqualitiesToInequalities
	assert.True(t, p.FoldEqualities())
	assert.False(t, p.Bilateral())
	assert.Equal(t, "equalities-to-inequalities", p.String())
	assert.Equal(t, "none", AggregationPolicy(0).String())
}
