// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MatPile accumulates matrix blocks top to bottom into one dense matrix with
// a fixed column count. Every merged linear system in this package is built
// through a pile, so a block with the wrong width is rejected before it can
// corrupt the aggregate.
type MatPile struct {
	cols int
	rows int
	data []float64 // row-major
}

// NewMatPile returns an empty pile whose blocks must all have cols columns.
func NewMatPile(cols int) *MatPile {
	return &MatPile{cols: cols}
}

// Stack appends the rows of m to the pile.
// A nil or zero-row m contributes nothing.
func (p *MatPile) Stack(m mat.Matrix) error {
	return p.StackScaled(m, 1)
}

// StackScaled appends s·m to the pile.
func (p *MatPile) StackScaled(m mat.Matrix, s float64) error {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	if r == 0 {
		return nil
	}
	if c != p.cols {
		return fmt.Errorf("%w: piling %d columns onto %d", ErrDimension, c, p.cols)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			p.data = append(p.data, s*m.At(i, j))
		}
	}
	p.rows += r
	return nil
}

// Rows returns the number of rows piled so far.
func (p *MatPile) Rows() int { return p.rows }

// Matrix materializes the pile, or nil when no rows were piled.
func (p *MatPile) Matrix() *mat.Dense {
	if p.rows == 0 {
		return nil
	}
	return mat.NewDense(p.rows, p.cols, p.data)
}

// VecPile accumulates vector segments into one dense vector.
type VecPile struct {
	data []float64
}

// Stack appends v to the pile. A nil or empty v contributes nothing.
func (p *VecPile) Stack(v *mat.VecDense) {
	p.StackScaled(v, 1)
}

// StackScaled appends s·v to the pile.
func (p *VecPile) StackScaled(v *mat.VecDense, s float64) {
	if v == nil {
		return
	}
	for i := 0; i < v.Len(); i++ {
		p.data = append(p.data, s*v.AtVec(i))
	}
}

// Len returns the number of elements piled so far.
func (p *VecPile) Len() int { return len(p.data) }

// Vector materializes the pile, or nil when nothing was piled.
func (p *VecPile) Vector() *mat.VecDense {
	if len(p.data) == 0 {
		return nil
	}
	return mat.NewVecDense(len(p.data), p.data)
}
