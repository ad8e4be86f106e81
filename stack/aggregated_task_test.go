// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/generic"
	"github.com/curioloop/taskstack/stack"
)

func staticTask(t *testing.T, id string, xSize int, a, b []float64) *generic.Task {
	t.Helper()
	task, err := generic.NewTask(id,
		mat.NewDense(len(b), xSize, a),
		mat.NewVecDense(len(b), b))
	require.NoError(t, err)
	return task
}

func scaledIdentity(n int, s float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, s)
	}
	return m
}

func TestTaskWeighting(t *testing.T) {
	t1 := staticTask(t, "t1", 2, []float64{1, 0, 0, 1}, []float64{1, 2})
	require.NoError(t, t1.SetWeight(scaledIdentity(2, 2)))

	t2 := staticTask(t, "t2", 2, []float64{1, 1}, []float64{4})
	require.NoError(t, t2.SetLambda(0.5))

	agg, err := stack.PairTasks(t1, t2, 2)
	require.NoError(t, err)

	wantA := mat.NewDense(3, 2, []float64{2, 0, 0, 2, 1, 1})
	wantB := mat.NewVecDense(3, []float64{2, 4, 2})
	assert.True(t, mat.Equal(wantA, agg.A()))
	assert.True(t, mat.Equal(wantB, agg.B()))

	// merged weight defaults to identity over the merged rows
	assert.True(t, mat.Equal(scaledIdentity(3, 1), agg.Weight()))
	assert.Equal(t, stack.HessianSemidef, agg.HessianType())
	assert.Equal(t, "aggregated", agg.TaskID())
	assert.Equal(t, 1.0, agg.Lambda())
}

func TestTaskConstraintListsConcatenate(t *testing.T) {
	shared, err := generic.NewConstraint("shared", 2)
	require.NoError(t, err)
	require.NoError(t, shared.SetBounds(
		mat.NewVecDense(2, []float64{-1, -1}),
		mat.NewVecDense(2, []float64{1, 1})))
	own, err := generic.NewConstraint("own", 2)
	require.NoError(t, err)

	t1 := staticTask(t, "t1", 2, []float64{1, 0}, []float64{0})
	require.NoError(t, t1.AttachConstraint(shared))
	require.NoError(t, t1.AttachConstraint(own))
	t2 := staticTask(t, "t2", 2, []float64{0, 1}, []float64{0})
	require.NoError(t, t2.AttachConstraint(shared))

	agg, err := stack.PairTasks(t1, t2, 2)
	require.NoError(t, err)

	cons := agg.Constraints()
	require.Len(t, cons, 3)
	// order-preserving, duplicates allowed: shared appears twice
	assert.True(t, cons[0] == stack.Constraint(shared))
	assert.True(t, cons[1] == stack.Constraint(own))
	assert.True(t, cons[2] == stack.Constraint(shared))
}

func TestTaskAggregateIdempotence(t *testing.T) {
	t1 := staticTask(t, "t1", 2, []float64{1, 2, 3, 4}, []float64{5, 6})
	agg, err := stack.NewAggregatedTask([]stack.Task{t1}, 2)
	require.NoError(t, err)

	a0 := mat.DenseCopyOf(agg.A())
	b0 := mat.VecDenseCopyOf(agg.B())
	require.NoError(t, agg.GenerateAll())
	assert.True(t, mat.Equal(a0, agg.A()))
	assert.True(t, mat.Equal(b0, agg.B()))
}

func TestTaskXSizeMismatchFailsConstruction(t *testing.T) {
	t1 := staticTask(t, "t1", 6, make([]float64, 6), []float64{0})
	t2 := staticTask(t, "t2", 7, make([]float64, 7), []float64{0})

	_, err := stack.NewAggregatedTask([]stack.Task{t1, t2}, 6)
	require.ErrorIs(t, err, stack.ErrXSizeMismatch)
}

func TestTaskAggregateRequiresChildren(t *testing.T) {
	_, err := stack.NewAggregatedTask(nil, 3)
	require.ErrorIs(t, err, stack.ErrNoChildren)
}

func TestTaskAggregateSetWeight(t *testing.T) {
	t1 := staticTask(t, "t1", 2, []float64{1, 0, 0, 1}, []float64{0, 0})
	agg, err := stack.NewAggregatedTask([]stack.Task{t1}, 2)
	require.NoError(t, err)

	require.ErrorIs(t, agg.SetWeight(scaledIdentity(3, 1)), stack.ErrDimension)
	require.NoError(t, agg.SetWeight(scaledIdentity(2, 10)))
	assert.True(t, mat.Equal(scaledIdentity(2, 10), agg.Weight()))
}

// trackedTask counts Update calls to observe forwarding.
type trackedTask struct {
	*generic.Task
	updates int
}

func (c *trackedTask) Update(x *mat.VecDense) error {
	c.updates++
	return c.Task.Update(x)
}

func TestTaskUpdateForwardsToChildren(t *testing.T) {
	inner := staticTask(t, "inner", 2, []float64{1, 0}, []float64{0})
	tracked := &trackedTask{Task: inner}

	agg, err := stack.AggregateTasksAt([]stack.Task{tracked}, mat.NewVecDense(2, nil))
	require.NoError(t, err)
	require.Equal(t, 1, tracked.updates)

	require.NoError(t, agg.Update(mat.NewVecDense(2, []float64{1, 1})))
	assert.Equal(t, 2, tracked.updates)
}
