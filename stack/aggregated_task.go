// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// AggregatedTask merges a list of child tasks into one weighted composite
// objective. Per child, in list order, the merged system gains the block
//
//	𝐀 ← [𝐀 ; 𝐖ᵢ𝐀ᵢ]    𝐛 ← [𝐛 ; 𝐖ᵢλᵢ𝐛ᵢ]
//
// so child weights pre-multiply before stacking and λ pre-multiplies only the
// b side. The children's constraint lists concatenate order-preserving,
// duplicates allowed: a constraint shared by two tasks appears twice. The
// merged weight starts as identity over the merged rows (a neutral default a
// caller may override) and the hessian is reported semi-definite, since a
// stack of independent least-squares blocks carries no definiteness
// guarantee.
type AggregatedTask struct {
	xSize    int
	children []Task

	a           *mat.Dense
	b           *mat.VecDense
	weight      *mat.Dense
	lambda      float64
	constraints []Constraint
}

// NewAggregatedTask builds an aggregate over xSize decision variables from
// at least one child task and runs the first merge.
func NewAggregatedTask(tasks []Task, xSize int) (*AggregatedTask, error) {
	t, err := newAggregatedTask(tasks, xSize)
	if err != nil {
		return nil, err
	}
	if err := t.GenerateAll(); err != nil {
		return nil, err
	}
	t.weight = identity(matRows(t.a))
	return t, nil
}

// AggregateTasksAt is the seed-vector form of NewAggregatedTask: the x size
// is taken from x and every child is updated against x before the first
// merge.
func AggregateTasksAt(tasks []Task, x *mat.VecDense) (*AggregatedTask, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil seed vector", ErrDimension)
	}
	t, err := newAggregatedTask(tasks, x.Len())
	if err != nil {
		return nil, err
	}
	if err := t.Update(x); err != nil {
		return nil, err
	}
	t.weight = identity(matRows(t.a))
	return t, nil
}

// PairTasks aggregates exactly two tasks.
func PairTasks(t1, t2 Task, xSize int) (*AggregatedTask, error) {
	return NewAggregatedTask([]Task{t1, t2}, xSize)
}

func newAggregatedTask(tasks []Task, xSize int) (*AggregatedTask, error) {
	if len(tasks) == 0 {
		return nil, ErrNoChildren
	}
	if xSize <= 0 {
		return nil, fmt.Errorf("%w: x size %d", ErrDimension, xSize)
	}
	t := &AggregatedTask{
		xSize:    xSize,
		children: slices.Clone(tasks),
		lambda:   1,
	}
	if err := t.checkSizes(); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckSizes verifies that every child still reports the aggregate's x size.
func (t *AggregatedTask) CheckSizes() error { return t.checkSizes() }

func (t *AggregatedTask) checkSizes() error {
	for _, c := range t.children {
		if c.XSize() != t.xSize {
			return fmt.Errorf("%w: task %q has x size %d, aggregate has %d",
				ErrXSizeMismatch, c.TaskID(), c.XSize(), t.xSize)
		}
	}
	return nil
}

// Update forwards x to every child task and regenerates the merged
// objective. The merged weight is left untouched: it belongs to the caller
// once construction is done.
func (t *AggregatedTask) Update(x *mat.VecDense) error {
	for _, c := range t.children {
		if err := c.Update(x); err != nil {
			return fmt.Errorf("task %q: %w", c.TaskID(), err)
		}
	}
	return t.GenerateAll()
}

// GenerateAll recomputes the merged objective and constraint list purely
// from the children's current state.
func (t *AggregatedTask) GenerateAll() error {
	t.a, t.b = nil, nil
	t.constraints = t.constraints[:0]

	aPile := NewMatPile(t.xSize)
	var bPile VecPile
	var wa mat.Dense
	var wb mat.VecDense

	for _, c := range t.children {
		cA, cB, cW := c.A(), c.B(), c.Weight()
		rows := matRows(cA)
		if rows != vecLen(cB) {
			return fmt.Errorf("%w: task %q has %d objective rows and %d targets",
				ErrDimension, c.TaskID(), rows, vecLen(cB))
		}
		if rows == 0 {
			continue
		}
		if matCols(cA) != t.xSize {
			return fmt.Errorf("%w: task %q objective has %d columns, want %d",
				ErrDimension, c.TaskID(), matCols(cA), t.xSize)
		}
		if wr, wc := matRows(cW), matCols(cW); wr != rows || wc != rows {
			return fmt.Errorf("%w: task %q weight is %dx%d for %d objective rows",
				ErrDimension, c.TaskID(), wr, wc, rows)
		}

		wa.Reset()
		wa.Mul(cW, cA)
		if err := aPile.Stack(&wa); err != nil {
			return err
		}
		wb.Reset()
		wb.MulVec(cW, cB)
		bPile.StackScaled(&wb, c.Lambda())

		t.constraints = append(t.constraints, c.Constraints()...)
	}

	t.a, t.b = aPile.Matrix(), bPile.Vector()
	return nil
}

func identity(n int) *mat.Dense {
	if n == 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// SetWeight overrides the merged weight matrix. The matrix must be square
// over the current merged row count.
func (t *AggregatedTask) SetWeight(w *mat.Dense) error {
	rows := matRows(t.a)
	if wr, wc := matRows(w), matCols(w); wr != rows || wc != rows {
		return fmt.Errorf("%w: weight is %dx%d for %d merged rows", ErrDimension, wr, wc, rows)
	}
	t.weight = w
	return nil
}

// SetLambda sets the aggregate's own gain, applied by the consuming solver
// on top of the child gains already folded into b.
func (t *AggregatedTask) SetLambda(lambda float64) error {
	if lambda < 0 {
		return fmt.Errorf("%w: negative lambda %g", ErrDimension, lambda)
	}
	t.lambda = lambda
	return nil
}

// TaskID reports the fixed composite task name.
func (t *AggregatedTask) TaskID() string { return "aggregated" }

func (t *AggregatedTask) XSize() int { return t.xSize }

// Children returns the child list shared with the caller.
func (t *AggregatedTask) Children() []Task { return t.children }

func (t *AggregatedTask) A() *mat.Dense            { return t.a }
func (t *AggregatedTask) B() *mat.VecDense         { return t.b }
func (t *AggregatedTask) Weight() *mat.Dense       { return t.weight }
func (t *AggregatedTask) Lambda() float64          { return t.lambda }
func (t *AggregatedTask) HessianType() HessianType { return HessianSemidef }

// Constraints returns the concatenation of every child's constraint list in
// child order.
func (t *AggregatedTask) Constraints() []Constraint { return t.constraints }

var _ Task = (*AggregatedTask)(nil)
