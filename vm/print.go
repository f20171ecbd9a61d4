// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vm

import (
	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/dump"
)

// printDocument implements print_json: emit the document, not a mutation.
func (vm *VM) printDocument() {
	if vm.Out == nil {
		return
	}
	_ = dump.Document(vm.Out, document.Value(vm.Doc.Root))
}

// printError implements print_error: pretty-print a structured error
// object (spec.md §6 "Error objects").
func (vm *VM) printError(e document.Value) {
	if vm.Out == nil {
		return
	}
	_ = dump.StructuredError(vm.Out, e)
}
