// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package velocity

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/taskstack/stack"
)

// Postural drives the configuration toward a reference posture: 𝐀 is the
// identity and Update sets 𝐛 = q_ref − q, so the weighted objective pulls
// dq toward λ(q_ref − q). The first Update after construction adopts the
// current configuration as the reference, yielding zero initial error.
type Postural struct {
	xSize  int
	a      *mat.Dense
	b      *mat.VecDense
	weight *mat.Dense
	lambda float64
	qRef   *mat.VecDense
	cons   []stack.Constraint
}

// NewPostural builds the task over the current configuration q.
func NewPostural(q *mat.VecDense) (*Postural, error) {
	if q == nil || q.Len() == 0 {
		return nil, fmt.Errorf("%w: postural task needs a configuration", stack.ErrDimension)
	}
	n := q.Len()
	a := mat.NewDense(n, n, nil)
	w := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, 1)
		w.Set(i, i, 1)
	}
	p := &Postural{
		xSize:  n,
		a:      a,
		b:      mat.NewVecDense(n, nil),
		weight: w,
		lambda: 1,
		qRef:   mat.VecDenseCopyOf(q),
	}
	if err := p.Update(q); err != nil {
		return nil, err
	}
	return p, nil
}

// SetReference replaces the reference posture.
func (p *Postural) SetReference(qRef *mat.VecDense) error {
	if qRef == nil || qRef.Len() != p.xSize {
		return fmt.Errorf("%w: postural reference must have length %d", stack.ErrDimension, p.xSize)
	}
	p.qRef = mat.VecDenseCopyOf(qRef)
	return nil
}

// Reference returns a copy of the current reference posture.
func (p *Postural) Reference() *mat.VecDense { return mat.VecDenseCopyOf(p.qRef) }

// SetLambda sets the task gain.
func (p *Postural) SetLambda(lambda float64) error {
	if lambda < 0 {
		return fmt.Errorf("%w: negative lambda %g", stack.ErrBounds, lambda)
	}
	p.lambda = lambda
	return nil
}

// SetWeight overrides the joint weighting, square over the joint count.
// Raising individual diagonal entries stiffens those joints in the posture.
func (p *Postural) SetWeight(w *mat.Dense) error {
	if w == nil {
		return fmt.Errorf("%w: postural weight is required", stack.ErrDimension)
	}
	if wr, wc := w.Dims(); wr != p.xSize || wc != p.xSize {
		return fmt.Errorf("%w: postural weight is %dx%d for %d joints",
			stack.ErrDimension, wr, wc, p.xSize)
	}
	p.weight = w
	return nil
}

// AttachConstraint appends a constraint contributed to solvers that accept
// per-task constraints.
func (p *Postural) AttachConstraint(c stack.Constraint) error {
	if c.XSize() != p.xSize {
		return fmt.Errorf("%w: constraint %q has x size %d, postural task has %d",
			stack.ErrXSizeMismatch, c.ConstraintID(), c.XSize(), p.xSize)
	}
	p.cons = append(p.cons, c)
	return nil
}

// Update recomputes the posture error against the current configuration.
func (p *Postural) Update(q *mat.VecDense) error {
	if q == nil || q.Len() != p.xSize {
		return fmt.Errorf("%w: postural task expects a configuration of length %d",
			stack.ErrDimension, p.xSize)
	}
	p.b.SubVec(p.qRef, q)
	return nil
}

func (p *Postural) TaskID() string { return "postural" }
func (p *Postural) XSize() int     { return p.xSize }

func (p *Postural) A() *mat.Dense                   { return p.a }
func (p *Postural) B() *mat.VecDense                { return p.b }
func (p *Postural) Weight() *mat.Dense              { return p.weight }
func (p *Postural) Lambda() float64                 { return p.lambda }
func (p *Postural) HessianType() stack.HessianType  { return stack.HessianPosdef }
func (p *Postural) Constraints() []stack.Constraint { return p.cons }

var _ stack.Task = (*Postural)(nil)
