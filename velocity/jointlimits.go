// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package velocity provides concrete tasks and constraints over a joint
// velocity decision vector: position limits and velocity limits expressed as
// boxes on dq, and a postural objective driving the configuration toward a
// reference. None of them need a robot model, only the current
// configuration q.
package velocity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/stack"
)

// JointLimits keeps the next configuration q + dq inside [qmin, qmax] by
// bounding dq with scaling·(qlim − q). The bound scaling below one slows the
// approach to the limit, trading reach for margin.
type JointLimits struct {
	xSize      int
	qMin, qMax *mat.VecDense
	scaling    float64

	lower, upper *mat.VecDense
}

// NewJointLimits builds the constraint from the current configuration and
// the position limits, all of one length, with an initial bound scaling of
// one.
func NewJointLimits(q, qMin, qMax *mat.VecDense) (*JointLimits, error) {
	if q == nil || qMin == nil || qMax == nil {
		return nil, fmt.Errorf("%w: joint limits need q, qmin and qmax", stack.ErrBounds)
	}
	n := q.Len()
	if qMin.Len() != n || qMax.Len() != n {
		return nil, fmt.Errorf("%w: joint limit lengths %d/%d for %d joints",
			stack.ErrBounds, qMin.Len(), qMax.Len(), n)
	}
	for i := 0; i < n; i++ {
		if qMin.AtVec(i) > qMax.AtVec(i) {
			return nil, fmt.Errorf("%w: joint %d has qmin %g above qmax %g",
				stack.ErrBounds, i, qMin.AtVec(i), qMax.AtVec(i))
		}
	}
	j := &JointLimits{
		xSize:   n,
		qMin:    mat.VecDenseCopyOf(qMin),
		qMax:    mat.VecDenseCopyOf(qMax),
		scaling: 1,
		lower:   mat.NewVecDense(n, nil),
		upper:   mat.NewVecDense(n, nil),
	}
	if err := j.Update(q); err != nil {
		return nil, err
	}
	return j, nil
}

// SetBoundScaling sets the scaling in (0, 1] applied to both bound sides.
func (j *JointLimits) SetBoundScaling(s float64) error {
	if s <= 0 || s > 1 {
		return fmt.Errorf("%w: bound scaling %g outside (0, 1]", stack.ErrBounds, s)
	}
	j.scaling = s
	return nil
}

// Update recomputes the dq box around the current configuration.
func (j *JointLimits) Update(q *mat.VecDense) error {
	if q == nil || q.Len() != j.xSize {
		return fmt.Errorf("%w: joint limits expect a configuration of length %d",
			stack.ErrDimension, j.xSize)
	}
	for i := 0; i < j.xSize; i++ {
		j.lower.SetVec(i, j.scaling*(j.qMin.AtVec(i)-q.AtVec(i)))
		j.upper.SetVec(i, j.scaling*(j.qMax.AtVec(i)-q.AtVec(i)))
	}
	return nil
}

func (j *JointLimits) ConstraintID() string { return "joint_limits" }
func (j *JointLimits) XSize() int           { return j.xSize }

func (j *JointLimits) LowerBound() *mat.VecDense  { return j.lower }
func (j *JointLimits) UpperBound() *mat.VecDense  { return j.upper }
func (j *JointLimits) Aeq() *mat.Dense            { return nil }
func (j *JointLimits) Beq() *mat.VecDense         { return nil }
func (j *JointLimits) Aineq() *mat.Dense          { return nil }
func (j *JointLimits) BLowerBound() *mat.VecDense { return nil }
func (j *JointLimits) BUpperBound() *mat.VecDense { return nil }

var _ stack.Constraint = (*JointLimits)(nil)
