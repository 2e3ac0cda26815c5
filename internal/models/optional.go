// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Optional is a patch field with three states: absent, null and set.
//
// The zero value is absent. Absent fields are left untouched by an update,
// null clears the stored value and set replaces it. When decoding JSON a
// missing key stays absent and a literal null becomes Null.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// IsSet reports whether the field is present in the patch, either as a
// value or as null.
func (o Optional[T]) IsSet() bool { return o.present }

// IsNull reports whether the field is an explicit null.
func (o Optional[T]) IsNull() bool { return o.present && o.null }

// Get returns the value and whether one is held. Null and absent both
// report false.
func (o Optional[T]) Get() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// ApplyTo writes the field into dst. Null writes the zero value.
func (o Optional[T]) ApplyTo(dst *T) {
	if !o.present {
		return
	}
	if o.null {
		var zero T
		*dst = zero
		return
	}
	*dst = o.value
}

// ApplyToPtr writes the field into a nullable destination.
func (o Optional[T]) ApplyToPtr(dst **T) {
	if !o.present {
		return
	}
	if o.null {
		*dst = nil
		return
	}
	v := o.value
	*dst = &v
}

// SQLValue returns the value to bind in an UPDATE: nil for null.
func (o Optional[T]) SQLValue() any {
	if o.null {
		return nil
	}
	return o.value
}

// MarshalJSON encodes null or the value. Absent fields should be omitted
// by the caller.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON is only called for keys present in the input.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}
