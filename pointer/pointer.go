// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pointer implements spec.md §4.2: RFC 6901 JSON Pointer
// resolution, classified into the four failure modes JISP's fatal-error
// reporting distinguishes (not-found, type, range, invalid).
//
// Token splitting/unescaping is delegated to
// github.com/agentflare-ai/jsonpointer (the same library
// agentflare-ai/go-jsonpatch uses for RFC 6901 decoding), so this package
// doesn't re-derive the `~0`/`~1` escaping rules by hand; it owns the
// traversal and the JISP-specific error taxonomy on top.
package pointer

import (
	"fmt"
	"strconv"

	"github.com/agentflare-ai/jsonpointer"

	"github.com/jisp-lang/jisp/document"
)

// Kind classifies a resolution failure.
type Kind int

const (
	NotFound Kind = iota
	TypeError
	RangeError
	Invalid
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case TypeError:
		return "type"
	case RangeError:
		return "range"
	default:
		return "invalid"
	}
}

// Error reports a classified pointer resolution failure.
type Error struct {
	Kind Kind
	Path string
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("jisp: pointer %s: %s (%s)", e.Path, e.Msg, e.Kind)
}

// tokens splits path into RFC 6901 reference tokens, already unescaped.
func tokens(path string) ([]string, error) {
	if path == "" || path == "/" {
		return nil, nil
	}
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, Error{Kind: Invalid, Path: path, Msg: err.Error()}
	}
	return []string(p), nil
}

// location is a resolved (parent container, key) pair plus the target
// value itself; it is exactly what a JPM handle needs to perform an
// in-place scalar assignment (spec.md §9 "parent-mediated replacement").
type location struct {
	parent document.Value // nil when the target is the document root
	key    any             // string for object keys, int for array indices
	value  document.Value
}

// Resolve walks path from root and returns the resolved value (not a deep
// copy — callers that need isolation must copy themselves, per spec.md
// §4.1's discipline that only crossing a semantic boundary copies).
func Resolve(root document.Value, path string) (document.Value, error) {
	loc, err := resolveLocation(root, path)
	if err != nil {
		return nil, err
	}
	return loc.value, nil
}

// ResolveForHandle resolves path and reports the parent/key needed to
// mutate the target in place, for ptr_new.
func ResolveForHandle(root document.Value, path string) (parent document.Value, key any, value document.Value, err error) {
	loc, err := resolveLocation(root, path)
	if err != nil {
		return nil, nil, nil, err
	}
	return loc.parent, loc.key, loc.value, nil
}

func resolveLocation(root document.Value, path string) (location, error) {
	toks, err := tokens(path)
	if err != nil {
		return location{}, err
	}
	if len(toks) == 0 {
		return location{value: root}, nil
	}

	var parent document.Value
	var key any
	cur := root
	for i, tok := range toks {
		switch c := cur.(type) {
		case document.Object:
			v, ok := c[tok]
			if !ok {
				return location{}, Error{Kind: NotFound, Path: path, Msg: fmt.Sprintf("no member %q", tok)}
			}
			parent, key, cur = c, tok, v
		case document.Array:
			if tok == "-" {
				return location{}, Error{Kind: RangeError, Path: path, Msg: "'-' is not a resolvable array index"}
			}
			idx, convErr := strconv.Atoi(tok)
			if convErr != nil || idx < 0 || strconv.Itoa(idx) != tok {
				return location{}, Error{Kind: Invalid, Path: path, Msg: fmt.Sprintf("invalid array index %q", tok)}
			}
			if idx >= len(c) {
				return location{}, Error{Kind: RangeError, Path: path, Msg: fmt.Sprintf("index %d out of bounds (len %d)", idx, len(c))}
			}
			parent, key, cur = c, idx, c[idx]
		default:
			_ = i
			return location{}, Error{Kind: TypeError, Path: path, Msg: fmt.Sprintf("cannot descend into %T at %q", cur, tok)}
		}
	}
	return location{parent: parent, key: key, value: cur}, nil
}

// EncodeKey escapes a single object key for embedding in a pointer path,
// used by the residual logger when synthesizing `/<enc(K)>` paths.
func EncodeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, key[i])
		}
	}
	return string(out)
}
