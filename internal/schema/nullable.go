package schema

import (
	"bytes"
	"encoding/json"
	"reflect"
)

type nullState uint8

const (
	stateAbsent nullState = iota
	stateNull
	statePresent
)

// Nullable distinguishes a field that was never sent, one sent as null and
// one sent with a value. Declare it with `json:",omitzero"` so that the
// absent state stays off the wire.
type Nullable[T any] struct {
	value T
	state nullState
}

func Absent[T any]() Nullable[T] { return Nullable[T]{} }

func Null[T any]() Nullable[T] { return Nullable[T]{state: stateNull} }

func Some[T any](v T) Nullable[T] { return Nullable[T]{value: v, state: statePresent} }

func (n Nullable[T]) IsAbsent() bool  { return n.state == stateAbsent }
func (n Nullable[T]) IsNull() bool    { return n.state == stateNull }
func (n Nullable[T]) IsPresent() bool { return n.state == statePresent }

// IsZero drives omitzero: only the absent state is omitted.
func (n Nullable[T]) IsZero() bool { return n.state == stateAbsent }

func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.state == statePresent
}

func (n Nullable[T]) OrElse(def T) T {
	if n.state == statePresent {
		return n.value
	}
	return def
}

// Equal compares state first, then the held value by its wire form.
func (n Nullable[T]) Equal(other Nullable[T]) bool {
	if n.state != other.state {
		return false
	}
	if n.state != statePresent {
		return true
	}
	return Equal(n.value, other.value)
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.state != statePresent {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.value = zero
		n.state = stateNull
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value = v
	n.state = statePresent
	return nil
}

// nullable lets reflection-driven code (render, json schema, validation)
// look through a Nullable without knowing T.
type nullable interface {
	nullableValue() (any, nullState)
	nullableType() reflect.Type
}

func (n Nullable[T]) nullableValue() (any, nullState) { return n.value, n.state }

func (n Nullable[T]) nullableType() reflect.Type { return reflect.TypeFor[T]() }

// RegisterNullable makes the validator see a Nullable[T] as a *T: nil unless
// a value was sent. With `omitempty,min=1` an absent or null quantity passes
// and a present 0 fails.
func RegisterNullable[T any]() {
	engine().RegisterCustomTypeFunc(func(v reflect.Value) any {
		n, ok := v.Interface().(Nullable[T])
		if !ok {
			return nil
		}
		if val, present := n.Get(); present {
			return &val
		}
		return nil
	}, Nullable[T]{})
}
