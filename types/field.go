package types

import (
	"bytes"
	"encoding/json"
)

// Field is a patchable JSON value. It tells apart a key that was absent
// from the payload, a key explicitly set to null, and a concrete value.
//
// The zero Field is unset, so struct fields tagged with omitzero are left out
// of encoded payloads.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a Field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// IsSet reports whether the key was present, either with a value or null.
func (f Field[T]) IsSet() bool {
	return f.set
}

// IsNull reports whether the key was present with a null value.
func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Value returns the held value and true when the field carries one.
func (f Field[T]) Value() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Ptr returns a pointer to a copy of the held value, or nil.
func (f Field[T]) Ptr() *T {
	v, ok := f.Value()
	if !ok {
		return nil
	}
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	v, ok := f.Value()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
