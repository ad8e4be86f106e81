// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package generic provides model-free Task and Constraint implementations
// over caller-supplied matrices. They hold whatever linear system they were
// given and return it unchanged from Update, which makes them the building
// block for composing hierarchies whose matrices come from outside the
// robot-model world: tests, precomputed systems, external planners.
package generic

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/stack"
)

// Constraint is a static stack.Constraint. Any subset of the three
// representations may be set; each setter validates shapes against the
// constraint's x size so a malformed system is rejected at assembly time,
// not inside an aggregate merge.
type Constraint struct {
	id    string
	xSize int

	lower, upper   *mat.VecDense
	aeq            *mat.Dense
	beq            *mat.VecDense
	aineq          *mat.Dense
	bLower, bUpper *mat.VecDense
}

// NewConstraint returns an empty constraint over xSize decision variables.
func NewConstraint(id string, xSize int) (*Constraint, error) {
	if xSize <= 0 {
		return nil, fmt.Errorf("%w: x size %d", stack.ErrDimension, xSize)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty constraint id", stack.ErrDimension)
	}
	return &Constraint{id: id, xSize: xSize}, nil
}

// SetBounds installs the box lower ≤ x ≤ upper. Both sides are required and
// must be xSize long with lower ≤ upper element-wise.
func (c *Constraint) SetBounds(lower, upper *mat.VecDense) error {
	if lower == nil || upper == nil {
		return fmt.Errorf("%w: constraint %q needs both box sides", stack.ErrBounds, c.id)
	}
	if lower.Len() != c.xSize || upper.Len() != c.xSize {
		return fmt.Errorf("%w: constraint %q box lengths %d/%d, want %d",
			stack.ErrBounds, c.id, lower.Len(), upper.Len(), c.xSize)
	}
	for i := 0; i < c.xSize; i++ {
		if lower.AtVec(i) > upper.AtVec(i) {
			return fmt.Errorf("%w: constraint %q lower[%d]=%g above upper[%d]=%g",
				stack.ErrBounds, c.id, i, lower.AtVec(i), i, upper.AtVec(i))
		}
	}
	c.lower, c.upper = lower, upper
	return nil
}

// SetEqualities installs 𝐀x = 𝐛.
func (c *Constraint) SetEqualities(a *mat.Dense, b *mat.VecDense) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: constraint %q needs both equality sides", stack.ErrDimension, c.id)
	}
	r, cols := a.Dims()
	if r != b.Len() {
		return fmt.Errorf("%w: constraint %q equalities have %d rows and %d right-hand sides",
			stack.ErrDimension, c.id, r, b.Len())
	}
	if cols != c.xSize {
		return fmt.Errorf("%w: constraint %q equality block has %d columns, want %d",
			stack.ErrDimension, c.id, cols, c.xSize)
	}
	c.aeq, c.beq = a, b
	return nil
}

// SetInequalities installs lower ≤ 𝐀x ≤ upper. Either bound side may be nil
// meaning unbounded on that side; at least one must be present.
func (c *Constraint) SetInequalities(a *mat.Dense, lower, upper *mat.VecDense) error {
	if a == nil {
		return fmt.Errorf("%w: constraint %q inequality matrix is required", stack.ErrDimension, c.id)
	}
	if lower == nil && upper == nil {
		return fmt.Errorf("%w: constraint %q needs at least one inequality bound side",
			stack.ErrDimension, c.id)
	}
	r, cols := a.Dims()
	if cols != c.xSize {
		return fmt.Errorf("%w: constraint %q inequality block has %d columns, want %d",
			stack.ErrDimension, c.id, cols, c.xSize)
	}
	if lower != nil && lower.Len() != r {
		return fmt.Errorf("%w: constraint %q inequality lower bound length %d for %d rows",
			stack.ErrDimension, c.id, lower.Len(), r)
	}
	if upper != nil && upper.Len() != r {
		return fmt.Errorf("%w: constraint %q inequality upper bound length %d for %d rows",
			stack.ErrDimension, c.id, upper.Len(), r)
	}
	c.aineq, c.bLower, c.bUpper = a, lower, upper
	return nil
}

func (c *Constraint) ConstraintID() string { return c.id }
func (c *Constraint) XSize() int           { return c.xSize }

// Update is a no-op: the held system is static.
func (c *Constraint) Update(*mat.VecDense) error { return nil }

func (c *Constraint) LowerBound() *mat.VecDense  { return c.lower }
func (c *Constraint) UpperBound() *mat.VecDense  { return c.upper }
func (c *Constraint) Aeq() *mat.Dense            { return c.aeq }
func (c *Constraint) Beq() *mat.VecDense         { return c.beq }
func (c *Constraint) Aineq() *mat.Dense          { return c.aineq }
func (c *Constraint) BLowerBound() *mat.VecDense { return c.bLower }
func (c *Constraint) BUpperBound() *mat.VecDense { return c.bUpper }

var _ stack.Constraint = (*Constraint)(nil)

// Task is a static stack.Task around a fixed objective 𝐀x − λ𝐛 with an
// identity default weight and unit gain.
type Task struct {
	id     string
	xSize  int
	a      *mat.Dense
	b      *mat.VecDense
	weight *mat.Dense
	lambda float64
	cons   []stack.Constraint
}

// NewTask returns a task over the objective (a, b); the x size is taken from
// the column count of a and the weight defaults to identity over its rows.
func NewTask(id string, a *mat.Dense, b *mat.VecDense) (*Task, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty task id", stack.ErrDimension)
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: task %q needs both objective sides", stack.ErrDimension, id)
	}
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: task %q objective is %dx%d", stack.ErrDimension, id, rows, cols)
	}
	if rows != b.Len() {
		return nil, fmt.Errorf("%w: task %q has %d objective rows and %d targets",
			stack.ErrDimension, id, rows, b.Len())
	}
	w := mat.NewDense(rows, rows, nil)
	for i := 0; i < rows; i++ {
		w.Set(i, i, 1)
	}
	return &Task{id: id, xSize: cols, a: a, b: b, weight: w, lambda: 1}, nil
}

// SetWeight overrides the task weight, square over the objective rows.
func (t *Task) SetWeight(w *mat.Dense) error {
	rows, _ := t.a.Dims()
	if w == nil {
		return fmt.Errorf("%w: task %q weight is required", stack.ErrDimension, t.id)
	}
	if wr, wc := w.Dims(); wr != rows || wc != rows {
		return fmt.Errorf("%w: task %q weight is %dx%d for %d objective rows",
			stack.ErrDimension, t.id, wr, wc, rows)
	}
	t.weight = w
	return nil
}

// SetLambda sets the task gain.
func (t *Task) SetLambda(lambda float64) error {
	if lambda < 0 {
		return fmt.Errorf("%w: task %q negative lambda %g", stack.ErrDimension, t.id, lambda)
	}
	t.lambda = lambda
	return nil
}

// AttachConstraint appends a constraint contributed to solvers that accept
// per-task constraints. The constraint must share the task's x size.
func (t *Task) AttachConstraint(c stack.Constraint) error {
	if c.XSize() != t.xSize {
		return fmt.Errorf("%w: constraint %q has x size %d, task %q has %d",
			stack.ErrXSizeMismatch, c.ConstraintID(), c.XSize(), t.id, t.xSize)
	}
	t.cons = append(t.cons, c)
	return nil
}

func (t *Task) TaskID() string { return t.id }
func (t *Task) XSize() int     { return t.xSize }

// Update is a no-op: the held objective is static.
func (t *Task) Update(*mat.VecDense) error { return nil }

func (t *Task) A() *mat.Dense                  { return t.a }
func (t *Task) B() *mat.VecDense               { return t.b }
func (t *Task) Weight() *mat.Dense             { return t.weight }
func (t *Task) Lambda() float64                { return t.lambda }
func (t *Task) HessianType() stack.HessianType { return stack.HessianSemidef }
func (t *Task) Constraints() []stack.Constraint {
	return t.cons
}

var _ stack.Task = (*Task)(nil)
