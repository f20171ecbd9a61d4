// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import "errors"

// ErrRootNotObject is returned when the parsed program's root value is not
// a JSON object, violating the invariant that opcodes mutating the heap
// require an object root.
var ErrRootNotObject = errors.New("jisp: document root must be an object")

// Reserved root keys, spec.md §3.
const (
	KeyStack        = "stack"
	KeyEntrypoint   = "entrypoint"
	KeyCallStack    = "call_stack"
	KeyResidual     = "residual"
	KeyIsReversible = "is_reversible"
	KeyRef          = "ref"
	KeyInterrupt    = "_interrupt_exit"
)

// Document is the mutable JSON tree a VM executes against. Root is always
// an Object per spec.md §3. Ref mirrors the source's in-document retain
// count but is tracked outside the tree (design note in spec.md §9): moving
// it off the JSON payload keeps state dumps free of a field the language
// semantics never actually require.
type Document struct {
	Root Object
	ref  int
}

// New wraps root as a fresh document with an initial retain count of 1.
func New(root Object) (*Document, error) {
	if root == nil {
		return nil, ErrRootNotObject
	}
	return &Document{Root: root, ref: 1}, nil
}

// NewFromValue validates that v is an object before wrapping it.
func NewFromValue(v Value) (*Document, error) {
	obj, ok := v.(Object)
	if !ok {
		return nil, ErrRootNotObject
	}
	return New(obj)
}

// Ref returns the current retain count.
func (d *Document) Ref() int { return d.ref }

// Retain increments the retain count and returns the new value.
func (d *Document) Retain() int {
	d.ref++
	return d.ref
}

// Release decrements the retain count. It reports whether the document has
// reached zero references (spec.md invariant 3: ref >= 0, ref == 0 triggers
// release). Go's garbage collector reclaims the backing storage once no
// handle or caller keeps a reference to *Document; Release exists so the
// bookkeeping invariant itself is observable and testable.
func (d *Document) Release() bool {
	if d.ref <= 0 {
		panic(errors.New("jisp: release of document with ref <= 0"))
	}
	d.ref--
	return d.ref == 0
}

// Stack returns the /stack array, creating it if absent. Most opcodes
// require it to already be an array (invariant 1); Stack panics via
// TypeMismatchError when the existing value isn't one.
func (d *Document) Stack() Array {
	v, ok := d.Root[KeyStack]
	if !ok {
		arr := Array{}
		d.Root[KeyStack] = arr
		return arr
	}
	arr, ok := v.(Array)
	if !ok {
		panic(TypeMismatchError{Op: "stack", Expected: "array", Got: v})
	}
	return arr
}

// SetStack replaces the /stack array.
func (d *Document) SetStack(arr Array) {
	d.Root[KeyStack] = arr
}

// IsReversible reports the value of /is_reversible.
func (d *Document) IsReversible() bool {
	v, ok := d.Root[KeyIsReversible]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Residual returns the /residual array, creating it if is_reversible is
// true and it is absent.
func (d *Document) Residual() Array {
	v, ok := d.Root[KeyResidual]
	if !ok {
		arr := Array{}
		if d.IsReversible() {
			d.Root[KeyResidual] = arr
		}
		return arr
	}
	arr, _ := v.(Array)
	return arr
}

// AppendResidual appends entry to /residual when is_reversible is true.
func (d *Document) AppendResidual(entry Value) {
	if !d.IsReversible() {
		return
	}
	arr, _ := d.Root[KeyResidual].(Array)
	d.Root[KeyResidual] = append(arr, entry)
}

// PopResidual removes and returns the last /residual entry, or (nil, false)
// if empty.
func (d *Document) PopResidual() (Value, bool) {
	arr, _ := d.Root[KeyResidual].(Array)
	if len(arr) == 0 {
		return nil, false
	}
	last := arr[len(arr)-1]
	d.Root[KeyResidual] = arr[:len(arr)-1]
	return last, true
}

// CallStack returns the /call_stack array of frame-path strings.
func (d *Document) CallStack() []string {
	v, ok := d.Root[KeyCallStack]
	if !ok {
		return nil
	}
	arr, _ := v.(Array)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// PushFrame appends framePath to /call_stack.
func (d *Document) PushFrame(framePath string) {
	arr, _ := d.Root[KeyCallStack].(Array)
	d.Root[KeyCallStack] = append(arr, framePath)
}

// PopFrame removes the last entry from /call_stack. It is a no-op if empty,
// which should never happen given the walker's symmetric push/pop
// discipline (spec.md §4.4 step 1).
func (d *Document) PopFrame() {
	arr, _ := d.Root[KeyCallStack].(Array)
	if len(arr) == 0 {
		return
	}
	d.Root[KeyCallStack] = arr[:len(arr)-1]
}

// ConsumeInterrupt clears and returns the _interrupt_exit flag.
func (d *Document) ConsumeInterrupt() bool {
	v, ok := d.Root[KeyInterrupt]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	if b {
		delete(d.Root, KeyInterrupt)
	}
	return b
}

// SetInterrupt sets the _interrupt_exit flag, used by the exit opcode.
func (d *Document) SetInterrupt() {
	d.Root[KeyInterrupt] = true
}
