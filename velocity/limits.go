// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package velocity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/stack"
)

// Limits bounds every joint velocity: |dqᵢ| ≤ q̇max·dt. The limit is
// runtime-adjustable, which is how velocity allocation schemes retune
// individual stack levels mid-run.
type Limits struct {
	xSize   int
	qDotMax float64
	dt      float64

	lower, upper *mat.VecDense
}

// NewLimits builds the symmetric velocity box for xSize joints from the
// velocity limit in rad/s and the control period dt in seconds.
func NewLimits(qDotMax, dt float64, xSize int) (*Limits, error) {
	if xSize <= 0 {
		return nil, fmt.Errorf("%w: x size %d", stack.ErrDimension, xSize)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: control period %g", stack.ErrBounds, dt)
	}
	l := &Limits{
		xSize: xSize,
		dt:    dt,
		lower: mat.NewVecDense(xSize, nil),
		upper: mat.NewVecDense(xSize, nil),
	}
	if err := l.SetVelocityLimit(qDotMax); err != nil {
		return nil, err
	}
	return l, nil
}

// VelocityLimit returns the current limit in rad/s.
func (l *Limits) VelocityLimit() float64 { return l.qDotMax }

// SetVelocityLimit replaces the limit and recomputes the box.
func (l *Limits) SetVelocityLimit(qDotMax float64) error {
	if qDotMax <= 0 {
		return fmt.Errorf("%w: velocity limit %g", stack.ErrBounds, qDotMax)
	}
	l.qDotMax = qDotMax
	step := qDotMax * l.dt
	for i := 0; i < l.xSize; i++ {
		l.lower.SetVec(i, -step)
		l.upper.SetVec(i, step)
	}
	return nil
}

// Update is a no-op: the box does not depend on the configuration.
func (l *Limits) Update(*mat.VecDense) error { return nil }

func (l *Limits) ConstraintID() string { return "velocity_limits" }
func (l *Limits) XSize() int           { return l.xSize }

func (l *Limits) LowerBound() *mat.VecDense  { return l.lower }
func (l *Limits) UpperBound() *mat.VecDense  { return l.upper }
func (l *Limits) Aeq() *mat.Dense            { return nil }
func (l *Limits) Beq() *mat.VecDense         { return nil }
func (l *Limits) Aineq() *mat.Dense          { return nil }
func (l *Limits) BLowerBound() *mat.VecDense { return nil }
func (l *Limits) BUpperBound() *mat.VecDense { return nil }

var _ stack.Constraint = (*Limits)(nil)

// AsLimits is the typed capability query used to locate a velocity limit
// inside a generic constraint list, e.g. to retune one stack level. It
// replaces an unchecked downcast: the second result reports whether c
// actually is a *Limits.
func AsLimits(c stack.Constraint) (*Limits, bool) {
	l, ok := c.(*Limits)
	return l, ok
}

// IsLimits reports whether c is a velocity limit constraint.
func IsLimits(c stack.Constraint) bool {
	_, ok := AsLimits(c)
	return ok
}
