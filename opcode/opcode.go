// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opcode defines the built-in opcode vocabulary (spec.md §4.5) as a
// tagged-variant enumeration, per the design note in spec.md §9: the source
// interpreter dispatches through a numeric-id → function-pointer table;
// here dispatch is an exhaustive switch over a Kind, matching the pattern
// wagon's wasm/operators package uses for its own opcode table (a name,
// an id and a bit of metadata, built once at init time).
package opcode

// Kind identifies one built-in opcode.
type Kind int

const (
	DuplicateTop Kind = iota
	PopAndStore
	AddTwoTop
	Get
	Set
	Append
	MapOver
	Enter
	Exit
	PtrNew
	PtrRelease
	PtrGet
	PtrSet
	Test
	PrintError
	Load
	Store
	Undo
	Step
	PrintJSON
)

// Info describes one opcode's identity for diagnostics and disassembly.
type Info struct {
	Kind Kind
	Name string
}

var table = []Info{
	{DuplicateTop, "duplicate_top"},
	{PopAndStore, "pop_and_store"},
	{AddTwoTop, "add_two_top"},
	{Get, "get"},
	{Set, "set"},
	{Append, "append"},
	{MapOver, "map_over"},
	{Enter, "enter"},
	{Exit, "exit"},
	{PtrNew, "ptr_new"},
	{PtrRelease, "ptr_release"},
	{PtrGet, "ptr_get"},
	{PtrSet, "ptr_set"},
	{Test, "test"},
	{PrintError, "print_error"},
	{Load, "load"},
	{Store, "store"},
	{Undo, "undo"},
	{Step, "step"},
	{PrintJSON, "print_json"},
}

// Registry is a name → opcode lookup table, built by NewRegistry and
// read-only thereafter (spec.md §5 "The opcode registry is read-only after
// initialization"). It is the concrete instance of the "name→opcode table"
// spec.md §1 requires the core to be handed.
type Registry struct {
	byName map[string]Kind
}

// NewRegistry constructs the registry populated with the built-in opcodes
// from spec.md §4.5. Names are case-sensitive (spec.md §6).
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Kind, len(table))}
	for _, info := range table {
		r.byName[info.Name] = info.Kind
	}
	return r
}

// Lookup reports whether name is a registered opcode and, if so, its Kind.
func (r *Registry) Lookup(name string) (Kind, bool) {
	k, ok := r.byName[name]
	return k, ok
}

// Name returns the registered name for k.
func (k Kind) Name() string {
	if int(k) >= 0 && int(k) < len(table) {
		return table[k].Name
	}
	return "unknown"
}
