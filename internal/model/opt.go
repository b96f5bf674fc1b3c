package model

import (
	"bytes"
	"encoding/json"
)

// Opt holds a metric value that may be Unavailable for a tick.
// The zero value is Unavailable, which is distinct from a valid zero reading.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some wraps an available reading.
func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// None returns the Unavailable sentinel.
func None[T any]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) Get() (T, bool) { return o.Value, o.Valid }

// Or returns the value, or def when Unavailable.
func (o Opt[T]) Or(def T) T {
	if !o.Valid {
		return def
	}
	return o.Value
}

// MarshalJSON encodes Unavailable as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
