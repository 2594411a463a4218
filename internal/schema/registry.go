package schema

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Descriptor is what the registry knows about one contract type.
type Descriptor struct {
	Name   string       `json:"name"`
	Family string       `json:"family"`
	Doc    string       `json:"doc,omitempty"`
	Event  bool         `json:"event"`
	Type   reflect.Type `json:"-"`
}

type DescriptorOption func(*Descriptor)

// AsEvent marks a contract as publishable on the event stream.
func AsEvent() DescriptorOption {
	return func(d *Descriptor) { d.Event = true }
}

func WithDoc(doc string) DescriptorOption {
	return func(d *Descriptor) { d.Doc = doc }
}

// Registry maps contract names to their Go types.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Descriptor
	compiled map[string]*jsonschema.Schema
}

func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Descriptor),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register adds T under its Go type name. Types implementing Invariant are
// hooked into validation here, so registration belongs in init.
func Register[T any](r *Registry, family string, opts ...DescriptorOption) *Descriptor {
	t := reflect.TypeFor[T]()
	d := &Descriptor{Name: t.Name(), Family: family, Type: t}
	for _, opt := range opts {
		opt(d)
	}
	var zero T
	if inv, ok := any(zero).(Invariant); ok {
		RegisterInvariants(inv)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[d.Name]; dup {
		panic(fmt.Sprintf("schema: contract %s registered twice", d.Name))
	}
	r.byName[d.Name] = d
	return d
}

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

func (r *Registry) mustLookup(name string) (*Descriptor, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	return d, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Descriptors() []*Descriptor {
	names := r.Names()
	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		d, _ := r.Lookup(name)
		out = append(out, d)
	}
	return out
}

// Families groups contract names by feature area.
func (r *Registry) Families() map[string][]string {
	out := map[string][]string{}
	for _, d := range r.Descriptors() {
		out[d.Family] = append(out[d.Family], d.Name)
	}
	return out
}

// New allocates a record of the named contract with its defaults applied.
func (r *Registry) New(name string) (any, error) {
	d, err := r.mustLookup(name)
	if err != nil {
		return nil, err
	}
	v := reflect.New(d.Type).Interface()
	ApplyDefaults(v)
	return v, nil
}

// Decode reads a payload as the named contract. The result is a pointer to
// the contract's struct type.
func (r *Registry) Decode(name string, data []byte, opts ...DecodeOption) (any, error) {
	v, err := r.New(name)
	if err != nil {
		return nil, err
	}
	if err := DecodeInto(data, v, opts...); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Registry) JSONSchema(name string) (map[string]any, error) {
	d, err := r.mustLookup(name)
	if err != nil {
		return nil, err
	}
	return JSONSchemaFor(d.Type), nil
}

// ValidateRaw checks the undecoded shape of a payload against the contract's
// generated JSON Schema. Compiled documents are cached.
func (r *Registry) ValidateRaw(name string, data []byte) error {
	compiled, err := r.compiledSchema(name)
	if err != nil {
		return err
	}
	return CheckRaw(name, compiled, data)
}

func (r *Registry) compiledSchema(name string) (*jsonschema.Schema, error) {
	r.mu.RLock()
	compiled, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	doc, err := r.JSONSchema(name)
	if err != nil {
		return nil, err
	}
	compiled, err = CompileJSONSchema(name, doc)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.compiled[name] = compiled
	r.mu.Unlock()
	return compiled, nil
}
