// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/opcode"
	"github.com/jisp-lang/jisp/pointer"
)

// invoke dispatches kind to its implementation (spec.md §4.5). This is the
// exhaustive switch the design note in spec.md §9 calls for in place of the
// source's numeric-id → function-pointer table.
func (vm *VM) invoke(kind opcode.Kind) {
	switch kind {
	case opcode.DuplicateTop:
		vm.opDuplicateTop()
	case opcode.PopAndStore:
		vm.opPopAndStore()
	case opcode.AddTwoTop:
		vm.opAddTwoTop()
	case opcode.Get:
		vm.opGet()
	case opcode.Set:
		vm.opSet()
	case opcode.Append:
		vm.opAppend()
	case opcode.MapOver:
		vm.opMapOver()
	case opcode.Enter:
		vm.opEnter()
	case opcode.Exit:
		vm.opExit()
	case opcode.PtrNew:
		vm.opPtrNew()
	case opcode.PtrRelease:
		vm.opPtrRelease()
	case opcode.PtrGet:
		vm.opPtrGet()
	case opcode.PtrSet:
		vm.opPtrSet()
	case opcode.Test:
		vm.opTest()
	case opcode.PrintError:
		vm.opPrintError()
	case opcode.Load:
		vm.opLoad()
	case opcode.Store:
		vm.opStore()
	case opcode.Undo:
		vm.opUndo()
	case opcode.Step:
		vm.opStep()
	case opcode.PrintJSON:
		vm.opPrintJSON()
	default:
		panic(fmt.Errorf("jisp: unregistered opcode kind %d", kind))
	}
}

// duplicate_top: [.., A] -> [.., A, A']
func (vm *VM) opDuplicateTop() {
	s := vm.Doc.Stack()
	if len(s) == 0 {
		panic(StackUnderflowError{Op: "duplicate_top"})
	}
	vm.pushLiteral(s[len(s)-1])
}

// pop_and_store: [.., V, K] -> [..]; sets root[K] = V.
func (vm *VM) opPopAndStore() {
	k := vm.popTop("pop_and_store")
	key, ok := k.(string)
	if !ok {
		panic(NonStringKeyError{Value: k})
	}
	v := vm.popTop("pop_and_store")
	existed := document.ObjAdd(vm.Doc.Root, key, v)
	vm.rec.rootWrite(key, document.DeepCopy(v), existed)
}

// add_two_top: [.., A, B] -> [.., A+B]. Grouped patch.
func (vm *VM) opAddTwoTop() {
	commit := vm.rec.beginGroup()
	defer commit()

	b := vm.popTop("add_two_top")
	a := vm.popTop("add_two_top")
	an, ok := a.(json.Number)
	if !ok {
		panic(document.TypeMismatchError{Op: "add_two_top", Expected: "number", Got: a})
	}
	bn, ok := b.(json.Number)
	if !ok {
		panic(document.TypeMismatchError{Op: "add_two_top", Expected: "number", Got: b})
	}
	vm.pushLiteral(addNumbers(an, bn))
}

// addNumbers sums two json.Number leaves, preserving integer-ness when both
// operands are integral (spec.md §9 open question, resolved in that
// direction).
func addNumbers(a, b json.Number) json.Number {
	if document.IsIntegral(a) && document.IsIntegral(b) {
		ai, _ := a.Int64()
		bi, _ := b.Int64()
		return json.Number(fmt.Sprintf("%d", ai+bi))
	}
	af, _ := a.Float64()
	bf, _ := b.Float64()
	return json.Number(fmt.Sprintf("%g", af+bf))
}

// get: [.., P] -> [.., V]
func (vm *VM) opGet() {
	commit := vm.rec.beginGroup()
	defer commit()

	p := vm.popTop("get")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "get", Expected: "string path", Got: p})
	}
	val, err := pointer.Resolve(document.Value(vm.Doc.Root), path)
	if err != nil {
		panic(PathError{Op: "get", Err: err})
	}
	vm.pushLiteral(val)
}

// set: [.., V, P] -> [..]; in-place scalar assignment only.
func (vm *VM) opSet() {
	commit := vm.rec.beginGroup()
	defer commit()

	p := vm.popTop("set")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "set", Expected: "string path", Got: p})
	}
	v := vm.popTop("set")

	parent, key, _, err := resolveHandle(vm.Doc, path)
	if err != nil {
		panic(PathError{Op: "set", Err: err})
	}
	if parent == nil {
		panic(document.TypeMismatchError{Op: "set", Expected: "non-root target", Got: v})
	}
	document.ScalarAssign(parent, key, v)
	vm.rec.replace(path, document.DeepCopy(v))
}

// append: [.., V, P] -> [..]; P resolves to an array.
func (vm *VM) opAppend() {
	commit := vm.rec.beginGroup()
	defer commit()

	p := vm.popTop("append")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "append", Expected: "string path", Got: p})
	}
	v := vm.popTop("append")

	parent, key, target, err := resolveHandle(vm.Doc, path)
	if err != nil {
		panic(PathError{Op: "append", Err: err})
	}
	arr, ok := target.(document.Array)
	if !ok {
		panic(document.TypeMismatchError{Op: "append", Expected: "array", Got: target})
	}
	cp := document.DeepCopy(v)
	grown := append(arr, cp)
	if parent == nil {
		vm.Doc.Root[document.KeyStack] = grown // append's target was the root itself, degenerate but harmless
	} else {
		replaceContainerInPlace(parent, key, grown)
	}
	vm.rec.arrayAppend(path, cp)
}

func replaceContainerInPlace(parent document.Value, key any, newContainer document.Value) {
	switch c := parent.(type) {
	case document.Object:
		c[key.(string)] = newContainer
	case document.Array:
		c[key.(int)] = newContainer
	default:
		panic(document.TypeMismatchError{Op: "append", Expected: "container parent", Got: parent})
	}
}

// map_over: [.., D, F] -> [.., R]
func (vm *VM) opMapOver() {
	commit := vm.rec.beginGroup()
	defer commit()

	f := vm.popTop("map_over")
	d := vm.popTop("map_over")
	fArr, ok := f.(document.Array)
	if !ok {
		panic(document.TypeMismatchError{Op: "map_over", Expected: "array", Got: f})
	}
	dArr, ok := d.(document.Array)
	if !ok {
		panic(document.TypeMismatchError{Op: "map_over", Expected: "array", Got: d})
	}

	result := make(document.Array, 0, len(dArr))
	for i, elem := range dArr {
		before := len(vm.Doc.Stack())
		vm.pushLiteral(elem)
		vm.walk(fArr, fmt.Sprintf("/map_over/%d", i))
		after := len(vm.Doc.Stack())
		if after != before+1 {
			panic(StackSizeViolationError{Before: before, After: after})
		}
		result = append(result, vm.popTop("map_over"))
	}
	vm.pushLiteral(result)
}

// enter: [.., T] -> [..]
func (vm *VM) opEnter() {
	t := vm.popTop("enter")
	switch v := t.(type) {
	case string:
		val, err := pointer.Resolve(document.Value(vm.Doc.Root), v)
		if err != nil {
			panic(PathError{Op: "enter", Err: err})
		}
		arr, ok := val.(document.Array)
		if !ok {
			panic(document.TypeMismatchError{Op: "enter", Expected: "array", Got: val})
		}
		vm.walk(arr, "/enter"+v)
	case document.Array:
		vm.walk(v, "/enter")
	default:
		panic(document.TypeMismatchError{Op: "enter", Expected: "string or array", Got: t})
	}
}

// exit: [..] -> [..]; sets the interrupt flag consumed by the walker.
func (vm *VM) opExit() {
	vm.Doc.SetInterrupt()
}

// ptr_new: [.., P] -> [..]
func (vm *VM) opPtrNew() {
	p := vm.popTop("ptr_new")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "ptr_new", Expected: "string path", Got: p})
	}
	vm.ptrNew(path)
}

// ptr_release: [..] -> [..]
func (vm *VM) opPtrRelease() {
	vm.ptrRelease()
}

// ptr_get: [..] -> [.., V]
func (vm *VM) opPtrGet() {
	h := vm.ptrPeek("ptr_get")
	vm.pushLiteral(h.read())
}

// ptr_set: [.., V] -> [..]
func (vm *VM) opPtrSet() {
	h := vm.ptrPeek("ptr_set")
	v := vm.popTop("ptr_set")
	h.write(v)
	if h.origin != "" {
		vm.rec.replace(h.origin, document.DeepCopy(v))
	}
}

// test: [.., Prog, Expect] -> [..] or [.., Err]
func (vm *VM) opTest() {
	expect := vm.popTop("test")
	prog := vm.popTop("test")

	doc, fault := vm.runSandbox(prog)
	if fault != nil {
		vm.pushLiteral(structuredError("assertion_failure", fault.Error(), document.Object{
			"fault": fmt.Sprint(fault),
		}))
		return
	}
	if !subsetMatch(expect, document.Value(doc.Root)) {
		vm.pushLiteral(structuredError("test_failure", "expected values do not subset-match actual", document.Object{
			"expected": document.DeepCopy(expect),
			"actual":   document.DeepCopy(document.Value(doc.Root)),
		}))
	}
}

// print_error: [.., E] -> [..]
func (vm *VM) opPrintError() {
	e := vm.popTop("print_error")
	vm.printError(e)
}

// load: [.., P] -> [.., V]
func (vm *VM) opLoad() {
	p := vm.popTop("load")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "load", Expected: "string path", Got: p})
	}
	f, err := os.Open(path)
	if err != nil {
		panic(IOError{Op: "load", Err: err})
	}
	defer f.Close()
	val, err := document.Parse(f)
	if err != nil {
		panic(IOError{Op: "load", Err: err})
	}
	vm.pushLiteral(val)
}

// store: [.., V, P] -> [..]; writes the selected value only (spec.md §9
// resolves the ambiguity in the source in that direction).
func (vm *VM) opStore() {
	p := vm.popTop("store")
	path, ok := p.(string)
	if !ok {
		panic(document.TypeMismatchError{Op: "store", Expected: "string path", Got: p})
	}
	v := vm.popTop("store")
	f, err := os.Create(path)
	if err != nil {
		panic(IOError{Op: "store", Err: err})
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(IOError{Op: "store", Err: err})
	}
}

// undo: [.., Prog] -> [.., Prog']
func (vm *VM) opUndo() {
	prog := vm.popTop("undo")
	result := vm.sandboxUndo(prog)
	vm.pushLiteral(result)
}

// step: [.., Prog] -> [.., Prog']
func (vm *VM) opStep() {
	prog := vm.popTop("step")
	result := vm.sandboxStep(prog)
	vm.pushLiteral(result)
}

// print_json: [..] -> [..]
func (vm *VM) opPrintJSON() {
	vm.printDocument()
}

func structuredError(kind, message string, details document.Object) document.Object {
	return document.Object{
		"error":   true,
		"kind":    kind,
		"message": message,
		"details": details,
	}
}
