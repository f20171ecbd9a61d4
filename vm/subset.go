// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import "github.com/jisp-lang/jisp/document"

// subsetMatch implements spec.md §4.5's subset-match relation used by test:
// scalars must be structurally equal, arrays must be element-wise strictly
// equal, and every key present in expected must recursively subset-match in
// actual (extra keys in actual are tolerated). Type mismatches never match.
func subsetMatch(expected, actual document.Value) bool {
	switch exp := expected.(type) {
	case document.Object:
		act, ok := actual.(document.Object)
		if !ok {
			return false
		}
		for k, ev := range exp {
			av, present := act[k]
			if !present || !subsetMatch(ev, av) {
				return false
			}
		}
		return true
	case document.Array:
		act, ok := actual.(document.Array)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !strictEqual(exp[i], act[i]) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(expected, actual)
	}
}

// strictEqual implements spec §4.5 clause (b): array elements must be
// strictly equal, not subset-matched — an object element must have exactly
// the same keys and values as its counterpart, not merely contain them.
func strictEqual(a, b document.Value) bool {
	switch av := a.(type) {
	case document.Object:
		bv, ok := b.(document.Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, ev := range av {
			other, present := bv[k]
			if !present || !strictEqual(ev, other) {
				return false
			}
		}
		return true
	case document.Array:
		bv, ok := b.(document.Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !strictEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(a, b)
	}
}

func scalarEqual(a, b document.Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	default:
		an, aok := a.(interface{ String() string })
		bn, bok := b.(interface{ String() string })
		if aok && bok {
			return an.String() == bn.String()
		}
		return false
	}
}
