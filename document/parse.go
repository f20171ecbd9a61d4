// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package document

import (
	"bytes"
	"encoding/json"
	"io"
)

// Parse decodes a single JSON value from r into a Value tree, tolerating
// `//` and `/* */` comments and trailing commas in arrays/objects (spec.md
// §6 "Input format"). No comment-tolerant JSON library appears anywhere in
// the retrieval pack this repository was built from, so this pre-pass is
// deliberately the one piece of the front door built directly on
// encoding/json rather than on a third-party decoder (see DESIGN.md).
func Parse(r io.Reader) (Value, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cleaned := stripCommentsAndTrailingCommas(raw)
	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.UseNumber()
	var v Value
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// Stream returns a decoder that yields successive top-level JSON values
// from r, for the CLI's multi-document mode (spec.md §6). Each call to
// Next reads and normalizes the next value.
type Stream struct {
	dec *json.Decoder
}

// NewStream wraps r. Comment/trailing-comma tolerance is not applied in
// streaming mode since the whole input can't be buffered and rewritten
// without breaking decoder offsets; streamed programs are expected to be
// strict JSON, one value immediately after another.
func NewStream(r io.Reader) *Stream {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Stream{dec: dec}
}

// Next decodes the next top-level value. It returns io.EOF when the input
// is exhausted.
func (s *Stream) Next() (Value, error) {
	var v Value
	if err := s.dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize converts the generic map[string]interface{}/[]interface{} tree
// produced by encoding/json into our named Object/Array types.
func normalize(v any) Value {
	switch t := v.(type) {
	case map[string]any:
		out := make(Object, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return t
	}
}

// stripCommentsAndTrailingCommas removes // and /* */ comments and commas
// that precede a closing ] or } delimiter, leaving string literal contents
// untouched.
func stripCommentsAndTrailingCommas(src []byte) []byte {
	var out bytes.Buffer
	inString := false
	escaped := false
	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i--
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i++
		case c == ',':
			j := i + 1
			for j < len(src) && isJSONSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == ']' || src[j] == '}') {
				// drop the trailing comma
				continue
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

func isJSONSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
