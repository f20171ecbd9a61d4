// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/opcode"
	"github.com/jisp-lang/jisp/vm"
)

func runProgram(t *testing.T, src string) *document.Document {
	t.Helper()
	val, err := document.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, err := document.NewFromValue(val)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	machine := vm.New(opcode.NewRegistry(), doc, &bytes.Buffer{})
	if fault := machine.Run(); fault != nil {
		t.Fatalf("fatal: %v", fault)
	}
	return doc
}

// S1 — arithmetic store
func TestArithmeticStore(t *testing.T) {
	doc := runProgram(t, `{"stack":[], "entrypoint":[10, 20, {".":"add_two_top"}, "temp_sum", {".":"pop_and_store"}]}`)

	if got := document.GetInt("test", doc.Root["temp_sum"]); got != 30 {
		t.Fatalf("temp_sum = %d, want 30", got)
	}
	if n := document.ArrSize(doc.Root[document.KeyStack]); n != 0 {
		t.Fatalf("stack has %d elements, want 0", n)
	}
}

// S2 — pointer in-place edit
func TestPointerInPlaceEdit(t *testing.T) {
	doc := runProgram(t, `{"stack":[0,0,0], "entrypoint":["/stack/1", {".":"ptr_new"}, 99, {".":"ptr_set"}, {".":"ptr_release"}]}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 3 {
		t.Fatalf("stack len = %d, want 3", len(stack))
	}
	if got := document.GetInt("test", stack[1]); got != 99 {
		t.Fatalf("stack[1] = %d, want 99", got)
	}
}

// S3 — macro call via "." name
func TestMacroCall(t *testing.T) {
	doc := runProgram(t, `{"stack":[], "my_macro":[5, 7, {".":"add_two_top"}], "entrypoint":[{".":"my_macro"}, "sum", {".":"pop_and_store"}]}`)

	if got := document.GetInt("test", doc.Root["sum"]); got != 12 {
		t.Fatalf("sum = %d, want 12", got)
	}
}

// S4 — map_over driven through the entrypoint, doubling each element.
func TestMapOverViaEntrypoint(t *testing.T) {
	doc := runProgram(t, `{
		"stack": [],
		"entrypoint": [
			[1,2,3],
			[{".":"duplicate_top"}, {".":"add_two_top"}],
			{".":"map_over"}
		]
	}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 1 {
		t.Fatalf("stack len = %d, want 1", len(stack))
	}
	result := document.ArrIter(stack[0])
	want := []int64{2, 4, 6}
	if len(result) != len(want) {
		t.Fatalf("result len = %d, want %d", len(result), len(want))
	}
	for i, w := range want {
		if got := document.GetInt("test", result[i]); got != w {
			t.Fatalf("result[%d] = %d, want %d", i, got, w)
		}
	}
}

// S5 — test subset-match success pushes nothing
func TestSubsetMatchSuccess(t *testing.T) {
	doc := runProgram(t, `{
		"stack": [
			{"entrypoint": [1, "x", {".":"pop_and_store"}, 2, "y", {".":"pop_and_store"}]},
			{"x": 1}
		],
		"entrypoint": [{".":"test"}]
	}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 0 {
		t.Fatalf("expected no pushed error, stack = %#v", stack)
	}
}

// S6 — test subset-match failure pushes a structured error
func TestSubsetMatchFailure(t *testing.T) {
	doc := runProgram(t, `{
		"stack": [
			{"entrypoint": [1, "x", {".":"pop_and_store"}]},
			{"x": 2}
		],
		"entrypoint": [{".":"test"}]
	}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 1 {
		t.Fatalf("expected one pushed error, got %d", len(stack))
	}
	errObj, ok := stack[0].(document.Object)
	if !ok {
		t.Fatalf("expected an object, got %T", stack[0])
	}
	if errObj["kind"] != "test_failure" {
		t.Fatalf("kind = %v, want test_failure", errObj["kind"])
	}
	details, ok := errObj["details"].(document.Object)
	if !ok {
		t.Fatalf("details missing or wrong type: %#v", errObj["details"])
	}
	if _, ok := details["expected"]; !ok {
		t.Fatalf("details missing expected")
	}
	if _, ok := details["actual"]; !ok {
		t.Fatalf("details missing actual")
	}
}

// Boundary: test's array elements must be strictly equal, not merely
// subset-matched — an actual object element with an extra key must fail
// against an expected element that omits it, even though subset-match would
// tolerate the extra key at the top level.
func TestSubsetMatchArrayElementsAreStrict(t *testing.T) {
	doc := runProgram(t, `{
		"stack": [
			{"entrypoint": [[{"a": 1, "b": 2}], "items", {".":"pop_and_store"}]},
			{"items": [{"a": 1}]}
		],
		"entrypoint": [{".":"test"}]
	}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 1 {
		t.Fatalf("expected strict array mismatch to push an error, stack = %#v", stack)
	}
	errObj, ok := stack[0].(document.Object)
	if !ok || errObj["kind"] != "test_failure" {
		t.Fatalf("expected test_failure, got %#v", stack[0])
	}
}

// S7 — undo of grouped arithmetic restores the pre-add_two_top stack
func TestUndoGroupedArithmetic(t *testing.T) {
	doc := runProgram(t, `{"stack":[3,4], "is_reversible": true, "entrypoint":[{".":"add_two_top"}]}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 1 {
		t.Fatalf("stack len after add = %d, want 1", len(stack))
	}
	if got := document.GetInt("test", stack[0]); got != 7 {
		t.Fatalf("sum = %d, want 7", got)
	}

	residual := document.ArrIter(doc.Root[document.KeyResidual])
	if len(residual) != 1 {
		t.Fatalf("residual entries = %d, want 1 (one group)", len(residual))
	}
	group, ok := residual[0].(document.Array)
	if !ok {
		t.Fatalf("expected the single residual entry to be a flat group array, got %T", residual[0])
	}
	if len(group) != 3 {
		t.Fatalf("group has %d patches, want 3 (two removes + one add)", len(group))
	}

	// step runs the same add_two_top inside a sandbox with recording on;
	// undo then pops that grouped entry and inverts it.
	outer := runProgram(t, `{
		"stack": [{"stack":[3,4], "is_reversible": true, "entrypoint":[{".":"add_two_top"}]}],
		"entrypoint": [{".":"step"}, {".":"undo"}]
	}`)
	outerStack := document.ArrIter(outer.Root[document.KeyStack])
	if len(outerStack) != 1 {
		t.Fatalf("outer stack len = %d, want 1", len(outerStack))
	}
	prog, ok := outerStack[0].(document.Object)
	if !ok {
		t.Fatalf("expected the undone program object, got %T", outerStack[0])
	}
	restored := document.ArrIter(prog[document.KeyStack])
	if len(restored) != 2 {
		t.Fatalf("stack after undo = %#v, want [3 4]", restored)
	}
	for i, w := range []int64{3, 4} {
		if got := document.GetInt("test", restored[i]); got != w {
			t.Fatalf("stack after undo [%d] = %d, want %d", i, got, w)
		}
	}
}

// Boundary: stack underflow is fatal and names the opcode.
func TestStackUnderflowIsFatal(t *testing.T) {
	val, err := document.Parse(strings.NewReader(`{"stack":[], "entrypoint":[{".":"duplicate_top"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, err := document.NewFromValue(val)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	machine := vm.New(opcode.NewRegistry(), doc, &bytes.Buffer{})
	fault := machine.Run()
	if fault == nil {
		t.Fatal("expected a fatal fault")
	}
	if !strings.Contains(fault.Error(), "duplicate_top") {
		t.Fatalf("fault %v doesn't name the opcode", fault)
	}
}

// Boundary: exit at the top of entrypoint terminates cleanly.
func TestExitAtTopLevelIsClean(t *testing.T) {
	doc := runProgram(t, `{"stack":[], "entrypoint":[1, {".":"exit"}, 2]}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if len(stack) != 1 {
		t.Fatalf("stack = %#v, want only the literal pushed before exit", stack)
	}
}

// Boundary: ptr_release on an empty pointer stack is fatal.
func TestPtrReleaseUnderflow(t *testing.T) {
	val, _ := document.Parse(strings.NewReader(`{"stack":[], "entrypoint":[{".":"ptr_release"}]}`))
	doc, _ := document.NewFromValue(val)
	machine := vm.New(opcode.NewRegistry(), doc, &bytes.Buffer{})
	if fault := machine.Run(); fault == nil {
		t.Fatal("expected a fatal fault on pointer stack underflow")
	}
}

// Boundary: exit never leaves its bookkeeping flag in the final document,
// even when it is the last instruction of a frame (no further loop
// iteration is left to consume the flag).
func TestExitAsFinalInstructionLeavesNoInterruptFlag(t *testing.T) {
	doc := runProgram(t, `{"stack":[], "entrypoint":[1, {".":"exit"}]}`)

	if _, ok := doc.Root["_interrupt_exit"]; ok {
		t.Fatalf("_interrupt_exit leaked into the document: %#v", doc.Root)
	}
}

// Regression: a ptr_new handle must re-resolve against the live document on
// every ptr_set, not write into a (parent, key) pair captured once at
// ptr_new time — otherwise a later array growth that reallocates the
// pinned target's backing array silently orphans the write.
func TestPtrSetSurvivesArrayReallocation(t *testing.T) {
	doc := runProgram(t, `{
		"stack": [1, 2],
		"entrypoint": [
			"/stack/0", {".":"ptr_new"},
			7, 8, 9, 10, 11,
			99, {".":"ptr_set"},
			{".":"ptr_release"}
		]
	}`)

	stack := document.ArrIter(doc.Root[document.KeyStack])
	if got := document.GetInt("test", stack[0]); got != 99 {
		t.Fatalf("stack[0] = %d, want 99 (ptr_set must survive backing-array growth)", got)
	}
}
