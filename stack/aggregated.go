// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// AggregatedConstraint merges a list of child constraints into a single
// Constraint with one internally consistent representation:
//
//   - box bounds intersect element-wise (the tighter side always wins)
//   - equality blocks row-stack, or fold into the inequality block as
//     𝐛 ≤ 𝐀x ≤ 𝐛 under EqualitiesToInequalities
//   - inequality blocks are normalized to the policy's sidedness before
//     stacking: bilateral rows get sentinel-filled missing sides, pure
//     unilateral mode flips lower-bound rows and splits two-sided rows
//
// The merge is recomputed from scratch by GenerateAll; no incremental state
// survives between calls, so the result is a pure function of the children's
// current representations. Children are shared, never mutated except through
// their own Update.
type AggregatedConstraint struct {
	id       string
	xSize    int
	policy   AggregationPolicy
	children []Constraint

	lower, upper   *mat.VecDense
	aeq            *mat.Dense
	beq            *mat.VecDense
	aineq          *mat.Dense
	bLower, bUpper *mat.VecDense
}

// NewAggregatedConstraint builds an aggregate over xSize decision variables
// from at least one child and runs the first merge. Every child must report
// the same x size; the check happens once here, a child changing its size
// afterwards is a contract violation of the child.
func NewAggregatedConstraint(children []Constraint, xSize int, policy AggregationPolicy) (*AggregatedConstraint, error) {
	a, err := newAggregatedConstraint(children, xSize, policy)
	if err != nil {
		return nil, err
	}
	if err := a.GenerateAll(); err != nil {
		return nil, err
	}
	return a, nil
}

// AggregateConstraintsAt is the seed-vector form of NewAggregatedConstraint:
// the x size is taken from x and every child is updated against x before the
// first merge.
func AggregateConstraintsAt(children []Constraint, x *mat.VecDense, policy AggregationPolicy) (*AggregatedConstraint, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil seed vector", ErrDimension)
	}
	a, err := newAggregatedConstraint(children, x.Len(), policy)
	if err != nil {
		return nil, err
	}
	if err := a.Update(x); err != nil {
		return nil, err
	}
	return a, nil
}

// PairConstraints aggregates exactly two constraints.
func PairConstraints(c1, c2 Constraint, xSize int, policy AggregationPolicy) (*AggregatedConstraint, error) {
	return NewAggregatedConstraint([]Constraint{c1, c2}, xSize, policy)
}

func newAggregatedConstraint(children []Constraint, xSize int, policy AggregationPolicy) (*AggregatedConstraint, error) {
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if xSize <= 0 {
		return nil, fmt.Errorf("%w: x size %d", ErrDimension, xSize)
	}
	a := &AggregatedConstraint{
		id:       joinConstraintIDs(children),
		xSize:    xSize,
		policy:   policy,
		children: slices.Clone(children),
	}
	if err := a.checkSizes(); err != nil {
		return nil, err
	}
	return a, nil
}

func joinConstraintIDs(children []Constraint) string {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.ConstraintID()
	}
	return strings.Join(ids, "+")
}

// CheckSizes verifies that every child still reports the aggregate's x size.
// The check runs once at construction; it is not repeated on Update, so this
// re-verification exists for callers that cannot trust their children.
func (a *AggregatedConstraint) CheckSizes() error { return a.checkSizes() }

func (a *AggregatedConstraint) checkSizes() error {
	for _, c := range a.children {
		if c.XSize() != a.xSize {
			return fmt.Errorf("%w: constraint %q has x size %d, aggregate has %d",
				ErrXSizeMismatch, c.ConstraintID(), c.XSize(), a.xSize)
		}
	}
	return nil
}

// Update forwards x to every child and regenerates the merged state.
func (a *AggregatedConstraint) Update(x *mat.VecDense) error {
	for _, c := range a.children {
		if err := c.Update(x); err != nil {
			return fmt.Errorf("constraint %q: %w", c.ConstraintID(), err)
		}
	}
	return a.GenerateAll()
}

// GenerateAll recomputes the merged bounds, equality and inequality blocks
// purely from the children's current state. It must run once after
// construction and after every child update; both entry points do so.
func (a *AggregatedConstraint) GenerateAll() error {
	a.lower, a.upper = nil, nil
	a.aeq, a.beq = nil, nil
	a.aineq, a.bLower, a.bUpper = nil, nil, nil

	eqPile := NewMatPile(a.xSize)
	ineqPile := NewMatPile(a.xSize)
	var beq, bLower, bUpper VecPile

	for _, c := range a.children {
		if err := a.mergeBounds(c); err != nil {
			return err
		}
		if err := a.mergeEqualities(c, eqPile, &beq, ineqPile, &bLower, &bUpper); err != nil {
			return err
		}
		if err := a.mergeInequalities(c, ineqPile, &bLower, &bUpper); err != nil {
			return err
		}
	}

	a.aeq, a.beq = eqPile.Matrix(), beq.Vector()
	a.aineq = ineqPile.Matrix()
	a.bLower, a.bUpper = bLower.Vector(), bUpper.Vector()

	return a.checkConsistency()
}

// mergeBounds intersects the child's box with the running box. The first
// child exposing bounds is adopted verbatim, later boxes tighten per axis:
// the aggregate must satisfy every child simultaneously, so the greater
// lower and the smaller upper bound win.
func (a *AggregatedConstraint) mergeBounds(c Constraint) error {
	lo, up := c.LowerBound(), c.UpperBound()
	if lo == nil && up == nil {
		return nil
	}
	if vecLen(lo) != a.xSize || vecLen(up) != a.xSize {
		return fmt.Errorf("%w: constraint %q box bounds have lengths %d/%d, want %d",
			ErrBounds, c.ConstraintID(), vecLen(lo), vecLen(up), a.xSize)
	}
	if a.lower == nil {
		// first valid bounds found
		a.lower = mat.VecDenseCopyOf(lo)
		a.upper = mat.VecDenseCopyOf(up)
		return nil
	}
	for i := 0; i < a.xSize; i++ {
		a.upper.SetVec(i, math.Min(a.upper.AtVec(i), up.AtVec(i)))
		a.lower.SetVec(i, math.Max(a.lower.AtVec(i), lo.AtVec(i)))
	}
	return nil
}

func (a *AggregatedConstraint) mergeEqualities(c Constraint, eqPile *MatPile, beq *VecPile, ineqPile *MatPile, bLower, bUpper *VecPile) error {
	eqA, eqB := c.Aeq(), c.Beq()
	if eqA == nil && eqB == nil {
		return nil
	}
	if matRows(eqA) != vecLen(eqB) {
		return fmt.Errorf("%w: constraint %q equalities have %d rows and %d right-hand sides",
			ErrDimension, c.ConstraintID(), matRows(eqA), vecLen(eqB))
	}
	if matCols(eqA) != a.xSize {
		return fmt.Errorf("%w: constraint %q equality block has %d columns, want %d",
			ErrDimension, c.ConstraintID(), matCols(eqA), a.xSize)
	}

	if !a.policy.FoldEqualities() {
		if err := eqPile.Stack(eqA); err != nil {
			return err
		}
		beq.Stack(eqB)
		return nil
	}

	// fold 𝐀x = 𝐛 into 𝐛 ≤ 𝐀x ≤ 𝐛
	if err := ineqPile.Stack(eqA); err != nil {
		return err
	}
	bUpper.Stack(eqB)
	if a.policy.Bilateral() {
		bLower.Stack(eqB)
		return nil
	}
	// pure-unilateral mode has no lower-bound vector,
	// so the lower side becomes the extra block −𝐀x ≤ −𝐛
	if err := ineqPile.StackScaled(eqA, -1); err != nil {
		return err
	}
	bUpper.StackScaled(eqB, -1)
	return nil
}

func (a *AggregatedConstraint) mergeInequalities(c Constraint, ineqPile *MatPile, bLower, bUpper *VecPile) error {
	inA, lo, up := c.Aineq(), c.BLowerBound(), c.BUpperBound()
	if inA == nil && lo == nil && up == nil {
		return nil
	}
	rows := matRows(inA)
	if rows == 0 || (lo == nil && up == nil) {
		return fmt.Errorf("%w: constraint %q inequality block needs rows and at least one bound side",
			ErrDimension, c.ConstraintID())
	}
	if matCols(inA) != a.xSize {
		return fmt.Errorf("%w: constraint %q inequality block has %d columns, want %d",
			ErrDimension, c.ConstraintID(), matCols(inA), a.xSize)
	}
	sideLen := func(side string, v *mat.VecDense) error {
		if v != nil && v.Len() != rows {
			return fmt.Errorf("%w: constraint %q %s bound has length %d for %d inequality rows",
				ErrDimension, c.ConstraintID(), side, v.Len(), rows)
		}
		return nil
	}
	if err := sideLen("lower", lo); err != nil {
		return err
	}
	if err := sideLen("upper", up); err != nil {
		return err
	}

	if a.policy.Bilateral() {
		// fill the missing side with a sentinel so every row is two-sided
		switch {
		case up == nil:
			up = constVec(rows, math.Inf(1))
		case lo == nil:
			lo = constVec(rows, -math.MaxFloat64)
		}
		if err := ineqPile.Stack(inA); err != nil {
			return err
		}
		bUpper.Stack(up)
		bLower.Stack(lo)
		return nil
	}

	switch {
	case up == nil:
		// 𝐥 ≤ 𝐀x becomes −𝐀x ≤ −𝐥
		if err := ineqPile.StackScaled(inA, -1); err != nil {
			return err
		}
		bUpper.StackScaled(lo, -1)
	case lo == nil:
		if err := ineqPile.Stack(inA); err != nil {
			return err
		}
		bUpper.Stack(up)
	default:
		// two-sided row splits into 𝐀x ≤ 𝐮 and −𝐀x ≤ −𝐥
		if err := ineqPile.Stack(inA); err != nil {
			return err
		}
		bUpper.Stack(up)
		if err := ineqPile.StackScaled(inA, -1); err != nil {
			return err
		}
		bUpper.StackScaled(lo, -1)
	}
	return nil
}

// checkConsistency verifies the merged state before it can reach a solver.
// A failure here means the children were mutually inconsistent; the
// aggregate must surface that instead of handing over a malformed problem.
func (a *AggregatedConstraint) checkConsistency() error {
	if n := vecLen(a.lower); n != 0 && n != a.xSize {
		return fmt.Errorf("%w: merged lower bound length %d", ErrBounds, n)
	}
	if n := vecLen(a.upper); n != 0 && n != a.xSize {
		return fmt.Errorf("%w: merged upper bound length %d", ErrBounds, n)
	}
	if (a.lower == nil) != (a.upper == nil) {
		return fmt.Errorf("%w: merged box has a single side", ErrBounds)
	}

	if matRows(a.aeq) != vecLen(a.beq) {
		return fmt.Errorf("%w: merged equalities have %d rows and %d right-hand sides",
			ErrDimension, matRows(a.aeq), vecLen(a.beq))
	}
	if matRows(a.aeq) > 0 && matCols(a.aeq) != a.xSize {
		return fmt.Errorf("%w: merged equality block has %d columns, want %d",
			ErrDimension, matCols(a.aeq), a.xSize)
	}

	if matRows(a.aineq) != vecLen(a.bUpper) {
		return fmt.Errorf("%w: merged inequalities have %d rows and %d upper bounds",
			ErrDimension, matRows(a.aineq), vecLen(a.bUpper))
	}
	if a.policy.Bilateral() {
		if matRows(a.aineq) != vecLen(a.bLower) {
			return fmt.Errorf("%w: merged inequalities have %d rows and %d lower bounds",
				ErrDimension, matRows(a.aineq), vecLen(a.bLower))
		}
	} else if a.bLower != nil {
		return fmt.Errorf("%w: unilateral aggregate carries a lower-bound vector", ErrDimension)
	}
	if matRows(a.aineq) > 0 && matCols(a.aineq) != a.xSize {
		return fmt.Errorf("%w: merged inequality block has %d columns, want %d",
			ErrDimension, matCols(a.aineq), a.xSize)
	}
	return nil
}

func constVec(n int, v float64) *mat.VecDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return mat.NewVecDense(n, data)
}

// ConstraintID returns the child IDs joined with "+".
func (a *AggregatedConstraint) ConstraintID() string { return a.id }

func (a *AggregatedConstraint) XSize() int { return a.xSize }

// Policy returns the aggregation policy fixed at construction.
func (a *AggregatedConstraint) Policy() AggregationPolicy { return a.policy }

// Children returns the child list shared with the caller.
func (a *AggregatedConstraint) Children() []Constraint { return a.children }

func (a *AggregatedConstraint) LowerBound() *mat.VecDense  { return a.lower }
func (a *AggregatedConstraint) UpperBound() *mat.VecDense  { return a.upper }
func (a *AggregatedConstraint) Aeq() *mat.Dense            { return a.aeq }
func (a *AggregatedConstraint) Beq() *mat.VecDense         { return a.beq }
func (a *AggregatedConstraint) Aineq() *mat.Dense          { return a.aineq }
func (a *AggregatedConstraint) BLowerBound() *mat.VecDense { return a.bLower }
func (a *AggregatedConstraint) BUpperBound() *mat.VecDense { return a.bUpper }

var _ Constraint = (*AggregatedConstraint)(nil)
