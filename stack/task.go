// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"gonum.org/v1/gonum/mat"
)

// HessianType hints the curvature structure of a task's implied hessian
// 𝐀ᵀ𝐖𝐀 so a solver can pick a factorization strategy.
type HessianType int

const (
	HessianUnknown HessianType = iota
	HessianZero
	HessianIdentity
	HessianPosdef
	HessianSemidef
)

// Task is the capability shared by every control objective
// 𝚖𝚒𝚗 ‖𝐖¹ᐟ²(𝐀x − λ𝐛)‖₂² over the decision vector.
//
// A task may additionally carry constraints of its own; solvers that accept
// per-task constraints read them through Constraints. Update recomputes A
// and b against a fresh state vector. A Task must not change its XSize after
// construction.
type Task interface {
	TaskID() string
	XSize() int
	Update(x *mat.VecDense) error

	A() *mat.Dense
	B() *mat.VecDense
	Weight() *mat.Dense
	Lambda() float64
	HessianType() HessianType
	Constraints() []Constraint
}
