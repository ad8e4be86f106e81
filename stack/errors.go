// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import "errors"

// Configuration errors. All of them mean the hierarchy was assembled from
// mutually inconsistent pieces and the resulting problem must not be handed
// to a solver. They are reported synchronously from constructors, Update and
// GenerateAll, never deferred.
var (
	// ErrNoChildren an aggregate needs at least one child.
	ErrNoChildren = errors.New("aggregate requires at least one child")
	// ErrXSizeMismatch a child declares a different decision-variable size
	// than its aggregate.
	ErrXSizeMismatch = errors.New("child x size differs from aggregate x size")
	// ErrDimension row/column counts do not line up while stacking.
	ErrDimension = errors.New("dimension mismatch")
	// ErrBounds a box bound pair is malformed: one side missing, wrong
	// length, or lower above upper.
	ErrBounds = errors.New("malformed bounds")
	// ErrPolicy an aggregation policy value carries unknown bits.
	ErrPolicy = errors.New("invalid aggregation policy")
)
