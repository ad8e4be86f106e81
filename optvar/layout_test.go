// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLayoutOffsets(t *testing.T) {
	l, err := NewLayout([]Pair{{"q", 7}, {"tau", 7}, {"slack", 3}})
	require.NoError(t, err)

	assert.Equal(t, 17, l.Size())
	assert.Equal(t, []string{"q", "tau", "slack"}, l.Names())
}

func TestLayoutVarExtractsSegment(t *testing.T) {
	l, err := NewLayout([]Pair{{"q", 2}, {"tau", 3}})
	require.NoError(t, err)

	tau, err := l.Var("tau")
	require.NoError(t, err)
	require.Equal(t, 3, tau.Rows())
	require.Equal(t, 5, tau.InputSize())

	x := mat.NewVecDense(5, []float64{1, 2, 10, 20, 30})
	got, err := tau.Value(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewVecDense(3, []float64{10, 20, 30}), got))

	q, err := l.Var("q")
	require.NoError(t, err)
	got, err = q.Value(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewVecDense(2, []float64{1, 2}), got))
}

func TestLayoutRejectsDuplicateNames(t *testing.T) {
	_, err := NewLayout([]Pair{{"q", 7}, {"q", 3}})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestLayoutRejectsBadSegmentSize(t *testing.T) {
	_, err := NewLayout([]Pair{{"q", 0}})
	require.ErrorIs(t, err, ErrSegmentSize)
}

func TestLayoutUnknownVariableLookup(t *testing.T) {
	l, err := NewLayout([]Pair{{"q", 7}})
	require.NoError(t, err)

	_, err = l.Var("missing")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestAffineStackAndSum(t *testing.T) {
	l, err := NewLayout([]Pair{{"a", 1}, {"b", 1}})
	require.NoError(t, err)

	va, err := l.Var("a")
	require.NoError(t, err)
	vb, err := l.Var("b")
	require.NoError(t, err)

	x := mat.NewVecDense(2, []float64{3, 4})

	both, err := Stack(va, vb)
	require.NoError(t, err)
	got, err := both.Value(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewVecDense(2, []float64{3, 4}), got))

	sum, err := Sum(va, vb)
	require.NoError(t, err)
	got, err = sum.Value(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewVecDense(1, []float64{7}), got))
}

func TestAffineShapeValidation(t *testing.T) {
	_, err := NewAffine(mat.NewDense(2, 3, nil), mat.NewVecDense(1, nil))
	require.Error(t, err)

	a, err := NewAffine(mat.NewDense(2, 3, nil), mat.NewVecDense(2, nil))
	require.NoError(t, err)
	_, err = a.Value(mat.NewVecDense(2, nil))
	require.Error(t, err)
}
