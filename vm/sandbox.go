// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/jisp-lang/jisp/document"
)

// runSandbox implements spec.md §4.8 for test: it deep-copies prog into a
// fresh document, retains it once, runs the walker over its /entrypoint,
// and hands back the resulting document without ever sharing storage with
// the caller. A non-nil Fault means prog itself aborted fatally inside the
// sandbox.
func (vm *VM) runSandbox(prog document.Value) (*document.Document, *Fault) {
	doc, err := sandboxDocument(prog)
	if err != nil {
		return nil, &Fault{Err: err, Opcode: "test"}
	}
	sub := New(vm.Registry, doc, vm.Out)
	if fault := sub.Run(); fault != nil {
		return nil, fault
	}
	return doc, nil
}

func sandboxDocument(prog document.Value) (*document.Document, error) {
	cp := document.DeepCopy(prog)
	return document.NewFromValue(cp)
}

// sandboxUndo implements the undo opcode (spec.md §4.5, §4.7): within an
// isolated copy of prog, pop the last residual entry and apply its
// inverse, then return the mutated copy (never the caller's original
// value) for pushing back onto the parent stack.
func (vm *VM) sandboxUndo(prog document.Value) document.Value {
	doc, err := sandboxDocument(prog)
	if err != nil {
		panic(err)
	}
	entry, ok := doc.PopResidual()
	if ok {
		invert(doc, entry)
	}
	return document.Value(doc.Root)
}

// sandboxStep implements the step opcode: execute a single instruction of
// prog's /entrypoint at its /pc (default 0), advance pc, and return the
// mutated copy.
func (vm *VM) sandboxStep(prog document.Value) document.Value {
	doc, err := sandboxDocument(prog)
	if err != nil {
		panic(err)
	}

	ep, _ := doc.Root[document.KeyEntrypoint].(document.Array)
	pc := int64(0)
	if v, ok := doc.Root["pc"]; ok {
		pc = document.GetInt("step", v)
	}
	if pc >= 0 && int(pc) < len(ep) {
		sub := New(vm.Registry, doc, vm.Out)
		sub.walk(document.Array{ep[pc]}, "/step")
	}
	doc.Root["pc"] = document.NumberFromInt(pc + 1)
	return document.Value(doc.Root)
}

// invert applies the inverse of a single residual entry or a flattened
// group (in reverse order), per spec.md §4.7's restricted inversion set.
func invert(doc *document.Document, entry document.Value) {
	if group, ok := entry.(document.Array); ok {
		for i := len(group) - 1; i >= 0; i-- {
			invertOne(doc, group[i])
		}
		return
	}
	invertOne(doc, entry)
}

func invertOne(doc *document.Document, entry document.Value) {
	op, ok := objectToOperation(entry)
	if !ok {
		return
	}
	switch {
	case string(op.Op) == "add" && op.Path == "/stack/-":
		s := doc.Stack()
		if len(s) > 0 {
			doc.SetStack(s[:len(s)-1])
		}
	case string(op.Op) == "remove":
		// The captured value on a stack removal is the only rigorously
		// invertible non-add case (spec.md §4.7): push it back.
		doc.SetStack(append(doc.Stack(), op.Value))
	default:
		// replace/add at non-stack paths: best-effort no-op, a documented
		// limitation (spec.md §4.7, §9).
	}
}
