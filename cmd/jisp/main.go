// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jisp is the CLI front-end for the interpreter in package vm. It
// is deliberately thin: spec.md §1 treats argument parsing, file I/O for
// the top-level program and the streaming chunker as external
// collaborators, not part of the core. Its shape follows wagon's
// cmd/wasm-run: stdlib flag parsing, log.Fatal on setup failures, and a
// run() helper that the tests can drive directly against a buffer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/dump"
	"github.com/jisp-lang/jisp/opcode"
	"github.com/jisp-lang/jisp/vm"
)

func main() {
	log.SetPrefix("jisp: ")
	log.SetFlags(0)

	raw := flag.Bool("r", false, "raw mode: print an unquoted string root")
	compact := flag.Bool("c", false, "compact mode: no pretty-print")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jisp [-rc] [file|-]\n\noptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	name := "-"
	if flag.NArg() >= 1 {
		name = flag.Arg(0)
	}

	in, err := openInput(name)
	if err != nil {
		log.Fatalf("could not open %s: %v", name, err)
	}
	if in != os.Stdin {
		defer in.Close()
	}

	if err := run(os.Stdout, in, *raw, *compact); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openInput(name string) (*os.File, error) {
	if name == "" || name == "-" {
		return os.Stdin, nil
	}
	return os.Open(name)
}

// run executes every top-level JSON value streamed from in (spec.md §6
// "Multiple top-level JSON values may be streamed"), each against a fresh
// document, writing pretty-printed (or raw/compact) output to out.
func run(out io.Writer, in io.Reader, raw, compact bool) error {
	registry := opcode.NewRegistry()
	stream := document.NewStream(in)

	for {
		val, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("jisp: parse error: %w", err)
		}

		result := val
		if obj, ok := val.(document.Object); ok {
			doc, err := document.New(obj)
			if err != nil {
				return fmt.Errorf("jisp: %w", err)
			}

			machine := vm.New(registry, doc, out)
			if fault := machine.Run(); fault != nil {
				dump.Fault(out, fault.Opcode, fault.Err, fault.Snapshot)
				return fault
			}
			result = document.Value(doc.Root)
		}

		if err := printResult(out, result, raw, compact); err != nil {
			return err
		}
	}
}

func printResult(out io.Writer, root document.Value, raw, compact bool) error {
	if raw {
		if s, ok := root.(string); ok {
			return dump.Raw(out, s)
		}
	}
	if compact {
		return dump.Compact(out, root)
	}
	return dump.Document(out, root)
}
