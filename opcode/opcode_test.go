// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opcode_test

import (
	"testing"

	"github.com/jisp-lang/jisp/opcode"
)

func TestLookupKnownOpcode(t *testing.T) {
	r := opcode.NewRegistry()
	kind, ok := r.Lookup("add_two_top")
	if !ok {
		t.Fatal("expected add_two_top to be registered")
	}
	if kind != opcode.AddTwoTop {
		t.Fatalf("kind = %v, want AddTwoTop", kind)
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	r := opcode.NewRegistry()
	if _, ok := r.Lookup("not_a_real_opcode"); ok {
		t.Fatal("expected an unregistered name to miss")
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	r := opcode.NewRegistry()
	if _, ok := r.Lookup("Add_Two_Top"); ok {
		t.Fatal("opcode lookup should be case-sensitive")
	}
}

func TestKindNameRoundTrips(t *testing.T) {
	r := opcode.NewRegistry()
	for _, name := range []string{
		"duplicate_top", "pop_and_store", "add_two_top", "get", "set",
		"append", "map_over", "enter", "exit", "ptr_new", "ptr_release",
		"ptr_get", "ptr_set", "test", "print_error", "load", "store",
		"undo", "step", "print_json",
	} {
		kind, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if kind.Name() != name {
			t.Fatalf("Kind(%s).Name() = %q, want %q", name, kind.Name(), name)
		}
	}
}

func TestUnknownKindNameIsSafe(t *testing.T) {
	if got := opcode.Kind(9999).Name(); got != "unknown" {
		t.Fatalf("Name() for an out-of-range kind = %q, want unknown", got)
	}
}
