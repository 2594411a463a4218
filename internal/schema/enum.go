package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Enum is a closed vocabulary. Members are the Go constants, and each
// member's string value is its wire label.
type Enum[T ~string] struct {
	name    string
	members []T
	byLabel map[string]T
}

// NewEnum builds the label table for T and adds it to the package catalog.
// It panics on duplicate labels since that is a declaration bug.
func NewEnum[T ~string](name string, members ...T) *Enum[T] {
	e := &Enum[T]{
		name:    name,
		members: make([]T, 0, len(members)),
		byLabel: make(map[string]T, len(members)),
	}
	for _, m := range members {
		if _, dup := e.byLabel[string(m)]; dup {
			panic(fmt.Sprintf("schema: enum %s declares %q twice", name, m))
		}
		e.byLabel[string(m)] = m
		e.members = append(e.members, m)
	}
	catalog.add(reflect.TypeFor[T](), &enumEntry{
		name:   name,
		labels: e.Labels(),
		parse: func(label string) (string, error) {
			v, err := e.Parse(label)
			return string(v), err
		},
	})
	return e
}

func (e *Enum[T]) Name() string { return e.name }

// Parse is an exact lookup: no case folding, no trimming.
func (e *Enum[T]) Parse(label string) (T, error) {
	if v, ok := e.byLabel[label]; ok {
		return v, nil
	}
	var zero T
	return zero, &UnrecognizedEnumValueError{Type: e.name, Label: label}
}

func (e *Enum[T]) Label(v T) string { return string(v) }

func (e *Enum[T]) Contains(v T) bool {
	_, ok := e.byLabel[string(v)]
	return ok
}

func (e *Enum[T]) Members() []T {
	out := make([]T, len(e.members))
	copy(out, e.members)
	return out
}

func (e *Enum[T]) Labels() []string {
	out := make([]string, 0, len(e.members))
	for _, m := range e.members {
		out = append(out, string(m))
	}
	return out
}

// Decode backs the UnmarshalJSON of every enum type. A JSON null leaves dst
// untouched so that requiredness is reported by validation instead.
func (e *Enum[T]) Decode(data []byte, dst *T) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return &MalformedPayloadError{Reason: e.name + " must be a string label", Cause: err}
	}
	v, err := e.Parse(label)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

type enumEntry struct {
	name   string
	labels []string
	parse  func(string) (string, error)
}

type enumCatalog struct {
	mu     sync.RWMutex
	byName map[string]*enumEntry
	byType map[reflect.Type]*enumEntry
}

var catalog = &enumCatalog{
	byName: make(map[string]*enumEntry),
	byType: make(map[reflect.Type]*enumEntry),
}

func (c *enumCatalog) add(t reflect.Type, entry *enumEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[entry.name] = entry
	c.byType[t] = entry
}

func (c *enumCatalog) forType(t reflect.Type) (*enumEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byType[t]
	return entry, ok
}

func (c *enumCatalog) forName(name string) (*enumEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byName[name]
	return entry, ok
}

// Enums lists every registered closed set by name.
func Enums() map[string][]string {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	out := make(map[string][]string, len(catalog.byName))
	for name, entry := range catalog.byName {
		labels := make([]string, len(entry.labels))
		copy(labels, entry.labels)
		out[name] = labels
	}
	return out
}

func EnumNames() []string {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	names := make([]string, 0, len(catalog.byName))
	for name := range catalog.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseEnum resolves a label against a closed set looked up by name.
func ParseEnum(name, label string) (string, error) {
	entry, ok := catalog.forName(name)
	if !ok {
		return "", fmt.Errorf("%w: enum %s", ErrUnknownContract, name)
	}
	return entry.parse(label)
}
