// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vm implements the entrypoint-driven evaluator (spec.md §4.4), the
// opcode library (§4.5), the JPM pointer stack (§4.6), the residual log and
// undo (§4.7) and sandboxed sub-execution (§4.8). The shape of VM/Run
// mirrors wagon's exec.VM: a small struct holding the mutable execution
// context plus whatever static tables (here, the opcode registry) it was
// built with, and a single dispatch loop that either handles control flow
// directly or falls through to a per-opcode function.
package vm

import (
	"fmt"
	"io"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/opcode"
	"github.com/jisp-lang/jisp/pointer"
)

// Fault is returned by Run when execution aborts fatally (spec.md §7).
// It carries the document snapshot spec.md §7 requires fatal handling to
// dump, the opcode (if any) that raised it, and the call-stack frame trace
// at the moment of failure.
type Fault struct {
	Err       error
	Opcode    string
	CallStack []string
	Snapshot  document.Value
}

func (f *Fault) Error() string {
	if f.Opcode != "" {
		return fmt.Sprintf("jisp: fatal in %s: %v", f.Opcode, f.Err)
	}
	return fmt.Sprintf("jisp: fatal: %v", f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// VM is the execution context for one document (spec.md §1 "run(document)").
type VM struct {
	Doc      *document.Document
	Registry *opcode.Registry
	Out      io.Writer

	jpm      jpm
	rec      *recorder
	curOp    string // name of the opcode currently executing, for Fault reporting
}

// New builds a VM over doc, driven by registry, writing print_json/
// print_error output to out.
func New(registry *opcode.Registry, doc *document.Document, out io.Writer) *VM {
	return &VM{
		Doc:      doc,
		Registry: registry,
		Out:      out,
		rec:      newRecorder(doc),
	}
}

// Run drives execution of the document's /entrypoint array (spec.md §1,
// §4.4). Documents without an entrypoint key are a no-op (spec.md §6
// "Only objects with entrypoint produce interesting execution"); an
// entrypoint that is not an array is fatal.
func (vm *VM) Run() (err *Fault) {
	defer func() {
		if r := recover(); r != nil {
			err = vm.toFault(r)
		}
	}()

	ep, ok := vm.Doc.Root[document.KeyEntrypoint]
	if !ok {
		return nil
	}
	arr, ok := ep.(document.Array)
	if !ok {
		panic(document.TypeMismatchError{Op: "entrypoint", Expected: "array", Got: ep})
	}
	vm.walk(arr, "/entrypoint")
	return nil
}

func (vm *VM) toFault(r any) *Fault {
	var e error
	switch t := r.(type) {
	case error:
		e = t
	default:
		e = fmt.Errorf("%v", t)
	}
	return &Fault{
		Err:       e,
		Opcode:    vm.curOp,
		CallStack: append([]string(nil), vm.Doc.CallStack()...),
		Snapshot:  document.DeepCopy(vm.Doc.Root),
	}
}

// walk is the entrypoint walker (spec.md §4.4): it executes instrs in
// order, classifying each element by JSON shape and either pushing a
// literal or dispatching an opcode/macro/nested frame.
func (vm *VM) walk(instrs document.Array, framePath string) {
	vm.Doc.PushFrame(framePath)
	defer vm.Doc.PopFrame()

	for idx, instr := range instrs {
		if vm.Doc.ConsumeInterrupt() {
			break
		}
		vm.step(instr, framePath, idx)
	}
	// exit as the final instruction of a frame sets the interrupt flag with
	// no further loop iteration left to consume it; drain it here so it
	// never leaks into the document as leftover VM bookkeeping (spec.md §3:
	// _interrupt_exit is transient).
	vm.Doc.ConsumeInterrupt()
}

// step classifies and dispatches a single instruction (spec.md §4.4 step 3).
func (vm *VM) step(instr document.Value, framePath string, idx int) {
	obj, isObject := instr.(document.Object)
	if !isObject {
		// String, number, array (and null/bool, outside the strict §4.4
		// enumeration but harmless to treat the same way) all push as a
		// literal.
		vm.pushLiteral(instr)
		return
	}

	dot, hasDot := obj["."]
	if !hasDot {
		vm.pushLiteral(instr)
		return
	}

	switch name := dot.(type) {
	case string:
		if kind, ok := vm.Registry.Lookup(name); ok {
			vm.dispatch(kind, name)
			return
		}
		if macro, ok := vm.Doc.Root[name]; ok {
			if macroArr, ok := macro.(document.Array); ok {
				vm.walk(macroArr, "/"+name)
				return
			}
		}
		vm.pushLiteral(instr)
	case document.Array:
		vm.walk(name, fmt.Sprintf("%s/%d/.", framePath, idx))
	default:
		panic(InvalidDirectiveError{Value: dot})
	}
}

func (vm *VM) dispatch(kind opcode.Kind, name string) {
	prevOp := vm.curOp
	vm.curOp = name
	defer func() { vm.curOp = prevOp }()
	vm.invoke(kind)
}

// pushLiteral deep-copies v and appends it to /stack, logging the push per
// spec.md §4.3.
func (vm *VM) pushLiteral(v document.Value) {
	cp := document.DeepCopy(v)
	vm.Doc.SetStack(append(vm.Doc.Stack(), cp))
	vm.rec.stackAdd(cp)
}

// popTop pops the top of /stack, logging the removal per spec.md §4.3.
// op names the caller for StackUnderflowError.
func (vm *VM) popTop(op string) document.Value {
	s := vm.Doc.Stack()
	if len(s) == 0 {
		panic(StackUnderflowError{Op: op})
	}
	n := len(s)
	top := s[n-1]
	vm.Doc.SetStack(s[:n-1])
	vm.rec.stackRemove(n, document.DeepCopy(top))
	return top
}

func resolveHandle(doc *document.Document, path string) (parent document.Value, key any, value document.Value, err error) {
	return pointer.ResolveForHandle(document.Value(doc.Root), path)
}
