package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a patch field that remembers whether it was supplied.
//
// The three states are:
//   - omitted:         Set == false
//   - explicit null:   Set == true, Valid == false
//   - value supplied:  Set == true, Valid == true, Value holds it
//
// Optional only tracks presence when it is decoded as a struct field; encoding/json
// does not call UnmarshalJSON for keys that are missing, so the zero value means
// omitted.
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true, Valid: true}
}

// Null returns an Optional that is present but explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Omitted and null both encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a pointer, nil for null.
// It must only be used on a set Optional.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// requireValue rejects an explicit null for non-nullable fields.
func requireValue[T any](field string, o Optional[T]) error {
	if o.Set && !o.Valid {
		return NewValidationError(field, "cannot be null", ErrNullNotAllowed)
	}
	return nil
}
