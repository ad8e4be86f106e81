// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optvar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Affine is the view 𝐌·x + 𝐪 over the full composite vector. Layout.Var
// produces pure selection views; callers combine them into arbitrary affine
// expressions of the decision vector.
type Affine struct {
	M *mat.Dense
	Q *mat.VecDense
}

// NewAffine validates that 𝐌 and 𝐪 agree on the output dimension.
func NewAffine(m *mat.Dense, q *mat.VecDense) (Affine, error) {
	if m == nil || q == nil {
		return Affine{}, fmt.Errorf("affine view needs both M and q")
	}
	if r, _ := m.Dims(); r != q.Len() {
		return Affine{}, fmt.Errorf("affine view has %d matrix rows and %d offset entries", r, q.Len())
	}
	return Affine{M: m, Q: q}, nil
}

// Rows returns the output dimension of the view.
func (a Affine) Rows() int {
	if a.M == nil {
		return 0
	}
	r, _ := a.M.Dims()
	return r
}

// InputSize returns the expected length of the full vector.
func (a Affine) InputSize() int {
	if a.M == nil {
		return 0
	}
	_, c := a.M.Dims()
	return c
}

// Value evaluates 𝐌·x + 𝐪.
func (a Affine) Value(x *mat.VecDense) (*mat.VecDense, error) {
	if x == nil || x.Len() != a.InputSize() {
		return nil, fmt.Errorf("affine view expects a vector of length %d", a.InputSize())
	}
	out := mat.NewVecDense(a.Rows(), nil)
	out.MulVec(a.M, x)
	out.AddVec(out, a.Q)
	return out, nil
}

// Stack concatenates two views vertically. Both must read the same full
// vector.
func Stack(a, b Affine) (Affine, error) {
	if a.InputSize() != b.InputSize() {
		return Affine{}, fmt.Errorf("stacking affine views over inputs of size %d and %d",
			a.InputSize(), b.InputSize())
	}
	rows, cols := a.Rows()+b.Rows(), a.InputSize()
	m := mat.NewDense(rows, cols, nil)
	q := mat.NewVecDense(rows, nil)
	for i := 0; i < a.Rows(); i++ {
		q.SetVec(i, a.Q.AtVec(i))
		for j := 0; j < cols; j++ {
			m.Set(i, j, a.M.At(i, j))
		}
	}
	for i := 0; i < b.Rows(); i++ {
		q.SetVec(a.Rows()+i, b.Q.AtVec(i))
		for j := 0; j < cols; j++ {
			m.Set(a.Rows()+i, j, b.M.At(i, j))
		}
	}
	return Affine{M: m, Q: q}, nil
}

// Sum adds two views of equal shape.
func Sum(a, b Affine) (Affine, error) {
	if a.Rows() != b.Rows() || a.InputSize() != b.InputSize() {
		return Affine{}, fmt.Errorf("summing affine views of shapes %dx%d and %dx%d",
			a.Rows(), a.InputSize(), b.Rows(), b.InputSize())
	}
	m := mat.NewDense(a.Rows(), a.InputSize(), nil)
	m.Add(a.M, b.M)
	q := mat.NewVecDense(a.Rows(), nil)
	q.AddVec(a.Q, b.Q)
	return Affine{M: m, Q: q}, nil
}
