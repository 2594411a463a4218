package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

type decodeConfig struct {
	disallowUnknown bool
}

type DecodeOption func(*decodeConfig)

// DisallowUnknownFields rejects payloads carrying keys the record does not declare.
func DisallowUnknownFields() DecodeOption {
	return func(c *decodeConfig) { c.disallowUnknown = true }
}

// Decode reads a complete record of type T from data. Declared defaults are
// applied first so that any key present on the wire wins; unset collections
// come back empty. Either the whole record is valid or an error is returned.
func Decode[T any](data []byte, opts ...DecodeOption) (*T, error) {
	v := new(T)
	if err := DecodeInto(data, v, opts...); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeInto is Decode for a caller-allocated record pointer.
func DecodeInto(data []byte, v any, opts ...DecodeOption) error {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	name := TypeName(v)

	ApplyDefaults(v)

	dec := json.NewDecoder(bytes.NewReader(data))
	if cfg.disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return attribute(data, v, classify(name, err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return &MalformedPayloadError{Type: name, Reason: "trailing data after record"}
	}

	Normalize(v)
	return Validate(v)
}

// Encode normalizes v in place, validates it and writes the wire form.
// An invalid record is never written.
func Encode(v any) ([]byte, error) {
	Normalize(v)
	if err := Validate(v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Canonical is the wire form with object keys sorted, used for comparisons.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// Equal reports whether a and b have the same wire form. Decimal scale,
// timestamp offsets and the absent/null/value state of Nullable fields all
// take part in the comparison.
func Equal(a, b any) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

func classify(typeName string, err error) error {
	var enumErr *UnrecognizedEnumValueError
	if errors.As(err, &enumErr) {
		return enumErr
	}
	var malformed *MalformedPayloadError
	if errors.As(err, &malformed) {
		if malformed.Type == "" {
			malformed.Type = typeName
		}
		return malformed
	}

	mp := &MalformedPayloadError{Type: typeName, Cause: err}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	switch {
	case errors.Is(err, io.EOF):
		mp.Reason = "empty payload"
	case errors.Is(err, io.ErrUnexpectedEOF):
		mp.Reason = "truncated payload"
	case errors.As(err, &syntaxErr):
		mp.Reason = fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		mp.Field = typeErr.Field
		mp.Reason = fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value)
	case errors.As(err, &timeErr):
		mp.Reason = "unparsable timestamp " + strconv.Quote(timeErr.Value)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		mp.Field = strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		mp.Reason = "unknown field"
	default:
		mp.Reason = err.Error()
	}
	return mp
}

// attribute fills in the field of a malformed payload error that came out of
// a custom unmarshaler, which never knows the key it was called for.
func attribute(data []byte, v any, err error) error {
	var mp *MalformedPayloadError
	if !errors.As(err, &mp) || mp.Field != "" {
		return err
	}
	if path, bad := locate(data, reflect.TypeOf(v)); bad && path != "" {
		mp.Field = path
	}
	return err
}

// locate re-decodes raw piece by piece as type t and returns the wire path of
// the first value that fails. bad is false when raw decodes cleanly.
func locate(raw json.RawMessage, t reflect.Type) (path string, bad bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return "", json.Unmarshal(raw, reflect.New(t).Interface()) != nil
	}

	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", true
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, ok := jsonName(f)
			if !ok {
				continue
			}
			val, present := obj[name]
			if !present {
				continue
			}
			if sub, bad := locate(val, f.Type); bad {
				return joinPath(name, sub), true
			}
		}
		return "", false
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			break
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", true
		}
		for i, item := range items {
			if sub, bad := locate(item, t.Elem()); bad {
				return joinPath("["+strconv.Itoa(i)+"]", sub), true
			}
		}
		return "", false
	case reflect.Map:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", true
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if sub, bad := locate(obj[k], t.Elem()); bad {
				return joinPath(k, sub), true
			}
		}
		return "", false
	}
	return "", json.Unmarshal(raw, reflect.New(t).Interface()) != nil
}

func joinPath(head, tail string) string {
	switch {
	case tail == "":
		return head
	case strings.HasPrefix(tail, "["):
		return head + tail
	default:
		return head + "." + tail
	}
}

var (
	unmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	timeType        = reflect.TypeFor[time.Time]()
	rawType         = reflect.TypeFor[json.RawMessage]()
)

// Normalize replaces every unset list or map reachable from v with an empty
// one. v must be a pointer for the change to stick.
func Normalize(v any) {
	normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			normalizeValue(v.Elem())
		}
	case reflect.Struct:
		if v.Type() == timeType {
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			f := v.Field(i)
			switch f.Kind() {
			case reflect.Slice:
				if f.Type().Elem().Kind() == reflect.Uint8 {
					continue
				}
				if f.IsNil() && f.CanSet() {
					f.Set(reflect.MakeSlice(f.Type(), 0, 0))
				}
			case reflect.Map:
				if f.IsNil() && f.CanSet() {
					f.Set(reflect.MakeMap(f.Type()))
				}
			}
			normalizeValue(f)
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return
		}
		for i := 0; i < v.Len(); i++ {
			normalizeValue(v.Index(i))
		}
	}
}

// ApplyDefaults sets the `default:"..."` value of each top-level field of
// the record v points to. Nested records are left to their own constructors.
func ApplyDefaults(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		raw, ok := sf.Tag.Lookup("default")
		if !ok || !sf.IsExported() {
			continue
		}
		if err := setDefault(rv.Field(i), raw); err != nil {
			panic(fmt.Sprintf("schema: %s.%s default %q: %v", t.Name(), sf.Name, raw, err))
		}
	}
	Normalize(v)
}

func setDefault(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.String:
		f.SetString(raw)
	default:
		if f.Type() == reflect.TypeFor[Decimal]() {
			d, err := ParseDecimal(raw)
			if err != nil {
				return err
			}
			f.Set(reflect.ValueOf(d))
			return nil
		}
		return fmt.Errorf("unsupported default for %s", f.Type())
	}
	return nil
}
