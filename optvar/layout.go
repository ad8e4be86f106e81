// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optvar maps named variable segments into one flat decision vector.
//
// Composite problems are built from named sub-blocks (joint velocities,
// contact wrenches, slack variables...); a Layout assigns each block its
// offset in the full vector and hands out affine selection views that
// extract a block as 𝐌·x + 𝐪.
package optvar

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDuplicateName two segments were registered under one name.
	// This is a configuration error: the layout cannot be built.
	ErrDuplicateName = errors.New("duplicate variable name")
	// ErrUnknownVariable a name was queried that was never registered.
	// Unlike ErrDuplicateName this is an ordinary runtime lookup failure
	// the caller may recover from.
	ErrUnknownVariable = errors.New("unknown variable name")
	// ErrSegmentSize a segment was registered with a non-positive size.
	ErrSegmentSize = errors.New("segment size must be positive")
)

// Pair names one variable segment and its size.
type Pair struct {
	Name string
	Size int
}

type segment struct {
	start, size int
}

// Layout is the offset map over an ordered list of uniquely named segments.
// It is immutable after construction.
type Layout struct {
	size  int
	order []string
	segs  map[string]segment
}

// NewLayout builds the layout from the ordered segment list. Segment offsets
// follow list order; the total size is the sum of all segment sizes.
func NewLayout(pairs []Pair) (*Layout, error) {
	l := &Layout{segs: make(map[string]segment, len(pairs))}
	for _, p := range pairs {
		if p.Size <= 0 {
			return nil, fmt.Errorf("%w: %q has size %d", ErrSegmentSize, p.Name, p.Size)
		}
		if _, ok := l.segs[p.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		l.segs[p.Name] = segment{start: l.size, size: p.Size}
		l.order = append(l.order, p.Name)
		l.size += p.Size
	}
	return l, nil
}

// Size returns the total size of the composite vector.
func (l *Layout) Size() int { return l.size }

// Names returns the segment names in registration order.
func (l *Layout) Names() []string {
	return append([]string(nil), l.order...)
}

// Var returns the selection view for the named segment: 𝐌 is the segment's
// block of the identity placed at its offset and 𝐪 is zero, so 𝐌·x + 𝐪
// extracts the segment from the full vector.
func (l *Layout) Var(name string) (Affine, error) {
	seg, ok := l.segs[name]
	if !ok {
		return Affine{}, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	m := mat.NewDense(seg.size, l.size, nil)
	for i := 0; i < seg.size; i++ {
		m.Set(i, seg.start+i, 1)
	}
	return Affine{M: m, Q: mat.NewVecDense(seg.size, nil)}, nil
}
