// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointer_test

import (
	"encoding/json"
	"testing"

	"github.com/jisp-lang/jisp/document"
	"github.com/jisp-lang/jisp/pointer"
)

func root() document.Object {
	return document.Object{
		"a": document.Object{
			"b/c": json.Number("1"),
			"d~e": json.Number("2"),
		},
		"list": document.Array{json.Number("10"), json.Number("20")},
	}
}

func TestResolveRoot(t *testing.T) {
	v, err := pointer.Resolve(root(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(document.Object); !ok {
		t.Fatalf("expected an object resolving the empty pointer, got %T", v)
	}
}

func TestResolveEscapedSlash(t *testing.T) {
	v, err := pointer.Resolve(root(), "/a/b~1c")
	if err != nil {
		t.Fatal(err)
	}
	if v != json.Number("1") {
		t.Fatalf("/a/b~1c = %v, want 1", v)
	}
}

func TestResolveEscapedTilde(t *testing.T) {
	v, err := pointer.Resolve(root(), "/a/d~0e")
	if err != nil {
		t.Fatal(err)
	}
	if v != json.Number("2") {
		t.Fatalf("/a/d~0e = %v, want 2", v)
	}
}

func TestResolveArrayIndex(t *testing.T) {
	v, err := pointer.Resolve(root(), "/list/1")
	if err != nil {
		t.Fatal(err)
	}
	if v != json.Number("20") {
		t.Fatalf("/list/1 = %v, want 20", v)
	}
}

func TestResolveNotFound(t *testing.T) {
	_, err := pointer.Resolve(root(), "/missing")
	perr, ok := err.(pointer.Error)
	if !ok {
		t.Fatalf("expected a pointer.Error, got %T (%v)", err, err)
	}
	if perr.Kind != pointer.NotFound {
		t.Fatalf("kind = %v, want NotFound", perr.Kind)
	}
}

func TestResolveRangeErrorOutOfBounds(t *testing.T) {
	_, err := pointer.Resolve(root(), "/list/5")
	perr, ok := err.(pointer.Error)
	if !ok || perr.Kind != pointer.RangeError {
		t.Fatalf("expected RangeError, got %#v", err)
	}
}

func TestResolveRangeErrorDashToken(t *testing.T) {
	_, err := pointer.Resolve(root(), "/list/-")
	perr, ok := err.(pointer.Error)
	if !ok || perr.Kind != pointer.RangeError {
		t.Fatalf("expected RangeError for '-', got %#v", err)
	}
}

func TestResolveTypeErrorDescendingIntoScalar(t *testing.T) {
	_, err := pointer.Resolve(root(), "/list/0/x")
	perr, ok := err.(pointer.Error)
	if !ok || perr.Kind != pointer.TypeError {
		t.Fatalf("expected TypeError, got %#v", err)
	}
}

func TestResolveInvalidArrayIndex(t *testing.T) {
	_, err := pointer.Resolve(root(), "/list/abc")
	perr, ok := err.(pointer.Error)
	if !ok || perr.Kind != pointer.Invalid {
		t.Fatalf("expected Invalid, got %#v", err)
	}
}

func TestResolveForHandleReturnsParentAndKey(t *testing.T) {
	r := root()
	parent, key, value, err := pointer.ResolveForHandle(r, "/list/0")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parent.(document.Array); !ok {
		t.Fatalf("parent = %T, want document.Array", parent)
	}
	if key.(int) != 0 {
		t.Fatalf("key = %v, want 0", key)
	}
	if value != json.Number("10") {
		t.Fatalf("value = %v, want 10", value)
	}
}

func TestEncodeKeyRoundTrips(t *testing.T) {
	if got := pointer.EncodeKey("a/b~c"); got != "a~1b~0c" {
		t.Fatalf("EncodeKey = %q, want a~1b~0c", got)
	}
}
