// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump implements the diagnostic pretty-printer hook spec.md §1
// requires the core to expose, in the spirit of wagon's disasm package:
// where disasm renders WASM bytecode back into readable instructions, dump
// renders a JSON document (or a fatal Fault) back into readable text.
package dump

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document pretty-prints v to w as indented JSON followed by a newline
// (spec.md §6 "Output format").
func Document(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Compact prints v to w as compact JSON followed by a newline (-c flag).
func Compact(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Raw prints s unquoted, for -r mode when the document root is a string.
func Raw(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

// StructuredError renders a test/print_error error object (spec.md §6
// "Error objects"): kind, message and details, one per line.
func StructuredError(w io.Writer, e any) error {
	obj, ok := e.(map[string]any)
	if !ok {
		return Document(w, e)
	}
	fmt.Fprintf(w, "error: %v\n", obj["kind"])
	fmt.Fprintf(w, "  message: %v\n", obj["message"])
	if details, ok := obj["details"]; ok {
		fmt.Fprintln(w, "  details:")
		enc := json.NewEncoder(w)
		enc.SetIndent("  ", "  ")
		return enc.Encode(details)
	}
	return nil
}

// Fault renders a fatal error's diagnostic header and document snapshot
// (spec.md §7 "emit diagnostic header, dump current document state").
func Fault(w io.Writer, opcode string, err error, snapshot any) {
	if opcode != "" {
		fmt.Fprintf(w, "jisp: fatal error in opcode %q: %v\n", opcode, err)
	} else {
		fmt.Fprintf(w, "jisp: fatal error: %v\n", err)
	}
	fmt.Fprintln(w, "--- document state ---")
	Document(w, snapshot)
}
