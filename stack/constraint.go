// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stack composes independent control objectives into the single
// linear system a QP solver consumes each control cycle.
//
// A Constraint contributes linear bounds, equalities and inequalities over a
// shared decision vector x ∈ ℝⁿ; a Task contributes a weighted least-squares
// objective 𝚖𝚒𝚗 ‖𝐖¹ᐟ²(𝐀x − λ𝐛)‖₂². AggregatedConstraint and AggregatedTask
// merge arbitrary lists of either into one object with the same contract,
// recomputed from scratch on every Update. The package holds no locks and
// performs no I/O: callers drive it once per control cycle and serialize
// access themselves.
package stack

import (
	"gonum.org/v1/gonum/mat"
)

// Constraint is the capability shared by everything that restricts the
// decision vector. A concrete constraint may expose any subset of three
// representations; a nil result means "not applicable".
//
//   - box bounds:   lower ≤ x ≤ upper, both length XSize or both nil
//   - equalities:   𝐀eq·x = 𝐛eq, rows(𝐀eq) == len(𝐛eq)
//   - inequalities: 𝐛lo ≤ 𝐀ineq·x ≤ 𝐛up, either side may be nil (unbounded)
//
// Update recomputes the representations against a fresh state vector. A
// Constraint must not change its XSize after construction.
type Constraint interface {
	ConstraintID() string
	XSize() int
	Update(x *mat.VecDense) error

	LowerBound() *mat.VecDense
	UpperBound() *mat.VecDense
	Aeq() *mat.Dense
	Beq() *mat.VecDense
	Aineq() *mat.Dense
	BLowerBound() *mat.VecDense
	BUpperBound() *mat.VecDense
}

func vecLen(v *mat.VecDense) int {
	if v == nil {
		return 0
	}
	return v.Len()
}

func matRows(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	return r
}

func matCols(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	_, c := m.Dims()
	return c
}
