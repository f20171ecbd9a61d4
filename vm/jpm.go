// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/internal/stack"
)

// jpmCapacity bounds the pointer handle stack (spec.md §4.6: "capacity
// >= 64").
const jpmCapacity = 64

// handle is a JPM entry: spec.md §4.2 describes it as a tuple of (document
// reference, target value, optional origin path). Per the conservative
// translation suggested in spec.md §9, it keeps only the document reference
// and the origin path, and re-resolves (parent container, key) against the
// live tree on every read/write rather than caching a (parent, key) pair
// captured once at ptr_new time. Caching would alias a slice/map header that
// can itself be replaced or reallocated between ptr_new and a later
// ptr_get/ptr_set (e.g. an array append that grows past capacity), silently
// orphaning the handle; re-resolving by path on every use sidesteps that.
type handle struct {
	doc    *document.Document
	origin string // resolution path
}

// jpm is the VM's pointer stack (spec.md §4.6).
type jpm struct {
	stack.Stack[*handle]
}

func (vm *VM) ptrNew(path string) {
	if vm.jpm.Len() >= jpmCapacity {
		panic(PointerStackOverflowError{Capacity: jpmCapacity})
	}
	if _, _, _, err := resolveHandle(vm.Doc, path); err != nil {
		panic(PathError{Op: "ptr_new", Err: err})
	}
	vm.jpm.Push(&handle{doc: vm.Doc, origin: path})
	vm.Doc.Retain()
}

func (vm *VM) ptrRelease() {
	h, ok := vm.jpm.Pop()
	if !ok {
		panic(PointerStackUnderflowError{Op: "ptr_release"})
	}
	_ = h
	vm.Doc.Release()
}

func (vm *VM) ptrPeek(op string) *handle {
	h, ok := vm.jpm.Peek()
	if !ok {
		panic(PointerStackUnderflowError{Op: op})
	}
	return h
}

func (h *handle) resolve(op string) (parent document.Value, key any) {
	parent, key, _, err := resolveHandle(h.doc, h.origin)
	if err != nil {
		panic(PathError{Op: op, Err: err})
	}
	return parent, key
}

func (h *handle) read() document.Value {
	parent, key := h.resolve("ptr_get")
	switch c := parent.(type) {
	case document.Object:
		return c[key.(string)]
	case document.Array:
		return c[key.(int)]
	default:
		panic(document.TypeMismatchError{Op: "ptr_get", Expected: "resolvable handle", Got: parent})
	}
}

func (h *handle) write(value document.Value) {
	parent, key := h.resolve("ptr_set")
	document.ScalarAssign(parent, key, value)
}
