// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/stack"
)

func TestConstraintValidation(t *testing.T) {
	_, err := NewConstraint("", 2)
	require.Error(t, err)
	_, err = NewConstraint("c", 0)
	require.Error(t, err)

	c, err := NewConstraint("c", 2)
	require.NoError(t, err)

	// single box side
	err = c.SetBounds(mat.NewVecDense(2, nil), nil)
	require.ErrorIs(t, err, stack.ErrBounds)

	// inverted box
	err = c.SetBounds(
		mat.NewVecDense(2, []float64{1, 0}),
		mat.NewVecDense(2, []float64{0, 1}))
	require.ErrorIs(t, err, stack.ErrBounds)

	// equality row/rhs mismatch
	err = c.SetEqualities(mat.NewDense(2, 2, nil), mat.NewVecDense(1, nil))
	require.ErrorIs(t, err, stack.ErrDimension)

	// inequality without any bound side
	err = c.SetInequalities(mat.NewDense(1, 2, nil), nil, nil)
	require.ErrorIs(t, err, stack.ErrDimension)

	// wrong column count
	err = c.SetEqualities(mat.NewDense(1, 3, nil), mat.NewVecDense(1, nil))
	require.ErrorIs(t, err, stack.ErrDimension)

	// untouched constraint exposes nothing
	assert.Nil(t, c.LowerBound())
	assert.Nil(t, c.Aeq())
	assert.Nil(t, c.Aineq())
	assert.NoError(t, c.Update(mat.NewVecDense(2, nil)))
}

func TestTaskValidation(t *testing.T) {
	_, err := NewTask("", mat.NewDense(1, 2, nil), mat.NewVecDense(1, nil))
	require.Error(t, err)
	_, err = NewTask("t", mat.NewDense(2, 2, nil), mat.NewVecDense(1, nil))
	require.ErrorIs(t, err, stack.ErrDimension)

	task, err := NewTask("t", mat.NewDense(1, 2, []float64{1, 2}), mat.NewVecDense(1, []float64{3}))
	require.NoError(t, err)

	assert.Equal(t, 2, task.XSize())
	assert.Equal(t, 1.0, task.Lambda())
	assert.Equal(t, stack.HessianSemidef, task.HessianType())
	assert.True(t, mat.Equal(mat.NewDense(1, 1, []float64{1}), task.Weight()))

	require.ErrorIs(t, task.SetWeight(mat.NewDense(2, 2, nil)), stack.ErrDimension)
	require.ErrorIs(t, task.SetLambda(-1), stack.ErrDimension)

	other, err := NewConstraint("other", 3)
	require.NoError(t, err)
	require.ErrorIs(t, task.AttachConstraint(other), stack.ErrXSizeMismatch)
}
