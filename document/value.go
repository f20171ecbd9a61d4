// Copyright 2026 The jisp Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package document implements the mutable JSON document model described in
// spec.md §4.1: typed accessors over a JSON tree, structural deep copy and
// the scalar-only in-place assignment that the pointer handles rely on.
//
// A Value is always one of: nil, bool, json.Number, string, []Value (array)
// or map[string]Value (object). Numbers are kept as json.Number so that
// integer-valued literals round-trip without drifting to float64, matching
// the "preserve integer-ness" note in spec.md §9.
package document

import (
	"encoding/json"
	"fmt"
)

// Value is any node in a document tree.
type Value = any

// Array is the concrete representation of a JSON array.
type Array = []Value

// Object is the concrete representation of a JSON object. Key iteration
// order is not guaranteed (Go maps), matching the fact that JSON objects
// are unordered.
type Object = map[string]Value

// TypeMismatchError reports that an opcode or accessor found the wrong JSON
// type at a usage site.
type TypeMismatchError struct {
	Op       string
	Expected string
	Got      Value
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("jisp: %s: expected %s, got %T", e.Op, e.Expected, e.Got)
}

func IsNull(v Value) bool { return v == nil }

func IsBool(v Value) bool { _, ok := v.(bool); return ok }

func IsNumber(v Value) bool { _, ok := v.(json.Number); return ok }

func IsString(v Value) bool { _, ok := v.(string); return ok }

func IsArray(v Value) bool { _, ok := v.(Array); return ok }

func IsObject(v Value) bool { _, ok := v.(Object); return ok }

// GetBool returns v's boolean payload. Panics with TypeMismatchError if v is
// not a bool.
func GetBool(op string, v Value) bool {
	b, ok := v.(bool)
	if !ok {
		panic(TypeMismatchError{Op: op, Expected: "bool", Got: v})
	}
	return b
}

// GetString returns v's string payload.
func GetString(op string, v Value) string {
	s, ok := v.(string)
	if !ok {
		panic(TypeMismatchError{Op: op, Expected: "string", Got: v})
	}
	return s
}

// GetInt coerces v's numeric payload to an int64, truncating any fractional
// part.
func GetInt(op string, v Value) int64 {
	n, ok := v.(json.Number)
	if !ok {
		panic(TypeMismatchError{Op: op, Expected: "number", Got: v})
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		panic(TypeMismatchError{Op: op, Expected: "number", Got: v})
	}
	return int64(f)
}

// GetReal coerces v's numeric payload to a float64.
func GetReal(op string, v Value) float64 {
	n, ok := v.(json.Number)
	if !ok {
		panic(TypeMismatchError{Op: op, Expected: "number", Got: v})
	}
	f, err := n.Float64()
	if err != nil {
		panic(TypeMismatchError{Op: op, Expected: "number", Got: v})
	}
	return f
}

// IsIntegral reports whether n is written as an integer literal that fits
// an int64 (so "42.0" and "1e2" are not integral), used to preserve
// integer-ness across arithmetic opcodes.
func IsIntegral(n json.Number) bool {
	_, err := n.Int64()
	return err == nil
}

// NumberFromInt builds a json.Number leaf from an int64.
func NumberFromInt(i int64) json.Number {
	return json.Number(fmt.Sprintf("%d", i))
}

// ObjGet reads a key from an object value, returning (nil, false) if v is
// not an object or the key is absent.
func ObjGet(v Value, key string) (Value, bool) {
	obj, ok := v.(Object)
	if !ok {
		return nil, false
	}
	val, ok := obj[key]
	return val, ok
}

// ObjAdd sets key on the object in place (creating or overwriting the
// entry) and reports whether the key already existed.
func ObjAdd(v Value, key string, val Value) (existed bool) {
	obj, ok := v.(Object)
	if !ok {
		panic(TypeMismatchError{Op: "obj_add", Expected: "object", Got: v})
	}
	_, existed = obj[key]
	obj[key] = val
	return existed
}

// ObjRemove deletes key from the object in place.
func ObjRemove(v Value, key string) {
	obj, ok := v.(Object)
	if !ok {
		panic(TypeMismatchError{Op: "obj_remove", Expected: "object", Got: v})
	}
	delete(obj, key)
}

// ArrSize returns the length of an array value.
func ArrSize(v Value) int {
	arr, ok := v.(Array)
	if !ok {
		panic(TypeMismatchError{Op: "arr_size", Expected: "array", Got: v})
	}
	return len(arr)
}

// ArrIter returns the elements of an array value for ranging over.
func ArrIter(v Value) Array {
	arr, ok := v.(Array)
	if !ok {
		panic(TypeMismatchError{Op: "arr_iter", Expected: "array", Got: v})
	}
	return arr
}

// ArrAppend appends val to the array stored at v's address. Since Array is
// a slice header, the caller must store the returned Array back into the
// backing container when that container is itself a map entry or slice
// element.
func ArrAppend(v Value, val Value) Array {
	arr, ok := v.(Array)
	if !ok {
		panic(TypeMismatchError{Op: "arr_append", Expected: "array", Got: v})
	}
	return append(arr, val)
}

// ArrRemoveLast returns the array with its last element dropped, and the
// removed element. Panics if the array is empty.
func ArrRemoveLast(v Value) (Array, Value) {
	arr, ok := v.(Array)
	if !ok {
		panic(TypeMismatchError{Op: "arr_remove_last", Expected: "array", Got: v})
	}
	if len(arr) == 0 {
		panic(TypeMismatchError{Op: "arr_remove_last", Expected: "non-empty array", Got: v})
	}
	last := arr[len(arr)-1]
	return arr[:len(arr)-1], last
}

// DeepCopy produces an independent copy of v, recursing through arrays and
// objects. Scalars (including json.Number, which is just a string under the
// hood) are copied by value already.
func DeepCopy(v Value) Value {
	switch t := v.(type) {
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = DeepCopy(e)
		}
		return out
	case Object:
		out := make(Object, len(t))
		for k, e := range t {
			out[k] = DeepCopy(e)
		}
		return out
	default:
		return t
	}
}

// ScalarAssign overwrites the node at (container, key) in place. container
// must be an Object (key is a string) or an Array (key is an int). Only
// null/bool/number/string values may be assigned; container-to-container
// replacement is disallowed per spec.md §4.1.
func ScalarAssign(container Value, key any, value Value) {
	if IsArray(value) || IsObject(value) {
		panic(TypeMismatchError{Op: "scalar_assign", Expected: "scalar", Got: value})
	}
	switch c := container.(type) {
	case Object:
		k, ok := key.(string)
		if !ok {
			panic(TypeMismatchError{Op: "scalar_assign", Expected: "string key", Got: key})
		}
		c[k] = value
	case Array:
		idx, ok := key.(int)
		if !ok {
			panic(TypeMismatchError{Op: "scalar_assign", Expected: "int index", Got: key})
		}
		if idx < 0 || idx >= len(c) {
			panic(TypeMismatchError{Op: "scalar_assign", Expected: "in-bounds index", Got: key})
		}
		c[idx] = value
	default:
		panic(TypeMismatchError{Op: "scalar_assign", Expected: "container", Got: container})
	}
}
