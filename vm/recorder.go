// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"fmt"

	jsonpatch "github.com/agentflare-ai/go-jsonpatch"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/pointer"
)

// recorder implements spec.md §4.7's recording protocol and §4.5's
// "multi-edit opcodes begin a residual group, record each edit into the
// group, and commit the group as one entry" rule.
//
// Residual entries are built as jsonpatch.Operation values (the same
// RFC 6902 operation type agentflare-ai/go-jsonpatch uses) and only
// flattened into a plain document.Object at the point they're written into
// the document tree, since the residual log itself is just ordinary JSON
// living at /residual.
type recorder struct {
	doc   *document.Document
	group *document.Array // non-nil while a group is active; invariant 4 keeps it flat even when groups nest.
}

func newRecorder(doc *document.Document) *recorder {
	return &recorder{doc: doc}
}

// beginGroup starts buffering residual entries instead of appending them
// directly. If a group is already active (nested grouped opcodes, e.g. get
// called from within a map_over function), edits flatten into the existing
// buffer rather than creating a nested array, per invariant 4. The returned
// commit func must be called exactly once, typically via defer.
func (r *recorder) beginGroup() (commit func()) {
	if r.group != nil {
		return func() {}
	}
	buf := document.Array{}
	r.group = &buf
	return func() {
		r.group = nil
		if r.doc.IsReversible() && len(buf) > 0 {
			r.doc.AppendResidual(buf)
		}
	}
}

func (r *recorder) record(op jsonpatch.Operation) {
	if !r.doc.IsReversible() {
		return
	}
	entry := operationToObject(op)
	if r.group != nil {
		*r.group = append(*r.group, entry)
		return
	}
	r.doc.AppendResidual(entry)
}

func (r *recorder) stackAdd(value document.Value) {
	r.record(jsonpatch.Operation{Op: jsonpatch.Add, Path: "/stack/-", Value: value})
}

func (r *recorder) stackRemove(indexBeforePop int, value document.Value) {
	r.record(jsonpatch.Operation{
		Op:    jsonpatch.Remove,
		Path:  fmt.Sprintf("/stack/%d", indexBeforePop-1),
		Value: value,
	})
}

func (r *recorder) rootWrite(key string, value document.Value, existed bool) {
	op := jsonpatch.Add
	if existed {
		op = jsonpatch.Replace
	}
	r.record(jsonpatch.Operation{Op: op, Path: "/" + pointer.EncodeKey(key), Value: value})
}

func (r *recorder) arrayAppend(arrayPath string, value document.Value) {
	r.record(jsonpatch.Operation{Op: jsonpatch.Add, Path: arrayPath + "/-", Value: value})
}

// replace records a best-effort (non-rigorously-invertible) edit at an
// arbitrary resolved path, used by set/ptr_set. spec.md §4.7/§9 document
// that undo of replace at non-stack paths is a known, deliberate gap.
func (r *recorder) replace(path string, value document.Value) {
	r.record(jsonpatch.Operation{Op: jsonpatch.Replace, Path: path, Value: value})
}

func operationToObject(op jsonpatch.Operation) document.Object {
	obj := document.Object{
		"op":   string(op.Op),
		"path": op.Path,
	}
	if op.Value != nil {
		obj["value"] = op.Value
	}
	return obj
}

func objectToOperation(v document.Value) (jsonpatch.Operation, bool) {
	obj, ok := v.(document.Object)
	if !ok {
		return jsonpatch.Operation{}, false
	}
	opName, ok := obj["op"].(string)
	if !ok {
		return jsonpatch.Operation{}, false
	}
	path, _ := obj["path"].(string)
	return jsonpatch.Operation{Op: jsonpatch.Op(opName), Path: path, Value: obj["value"]}, true
}
