// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stack

import (
	"fmt"
	"strings"
)

// AggregationPolicy selects how child constraint representations are
// normalized while merging. The two flags are independent axes:
//
//   - EqualitiesToInequalities folds every child equality block
//     𝐀x = 𝐛 into the inequality block as 𝐛 ≤ 𝐀x ≤ 𝐛.
//   - UnilateralToBilateral keeps every inequality row with both a lower
//     and an upper bound. When unset the aggregate carries only
//     upper-bound rows 𝐀x ≤ 𝐛, sign-flipping lower bounds in.
//
// The policy is fixed at construction of an aggregate.
type AggregationPolicy uint8

const (
	EqualitiesToInequalities AggregationPolicy = 1 << iota
	UnilateralToBilateral

	policyAll = EqualitiesToInequalities | UnilateralToBilateral
)

// Validate reports ErrPolicy when p carries bits outside the two known flags.
func (p AggregationPolicy) Validate() error {
	if p&^policyAll != 0 {
		return fmt.Errorf("%w: %#x", ErrPolicy, uint8(p))
	}
	return nil
}

// FoldEqualities reports whether equality blocks are folded into
// inequalities.
func (p AggregationPolicy) FoldEqualities() bool {
	return p&EqualitiesToInequalities != 0
}

// Bilateral reports whether inequality rows carry both bound sides.
func (p AggregationPolicy) Bilateral() bool {
	return p&UnilateralToBilateral != 0
}

func (p AggregationPolicy) String() string {
	if p == 0 {
		return "none"
	}
	var s []string
	if p.FoldEqualities() {
		s = append(s, "equalities-to-inequalities")
	}
	if p.Bilateral() {
		s = append(s, "unilateral-to-bilateral")
	}
	if rest := p &^ policyAll; rest != 0 {
		s = append(s, fmt.Sprintf("unknown(%#x)", uint8(rest)))
	}
	return strings.Join(s, "|")
}
