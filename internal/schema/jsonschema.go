package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const draft7 = "http://json-schema.org/draft-07/schema#"

var (
	decimalType = reflect.TypeFor[Decimal]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
	uuidPattern = `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`
	decPattern  = `^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`
)

// JSONSchemaFor describes the wire form of record type t as a Draft-7 document.
// Bounds the document cannot express (decimal ranges, invariants) are left
// to Validate.
func JSONSchemaFor(t reflect.Type) map[string]any {
	doc := typeSchema(t, nil)
	doc["$schema"] = draft7
	doc["title"] = t.Name()
	return doc
}

func typeSchema(t reflect.Type, rules []string) map[string]any {
	if t.Kind() == reflect.Pointer {
		return map[string]any{"anyOf": []any{typeSchema(t.Elem(), rules), map[string]any{"type": "null"}}}
	}
	if n, ok := reflect.Zero(t).Interface().(nullable); ok {
		return map[string]any{"anyOf": []any{typeSchema(n.nullableType(), rules), map[string]any{"type": "null"}}}
	}
	if entry, ok := catalog.forType(t); ok {
		enum := make([]any, 0, len(entry.labels))
		for _, l := range entry.labels {
			enum = append(enum, l)
		}
		return map[string]any{"type": "string", "title": entry.name, "enum": enum}
	}

	switch t {
	case decimalType:
		return map[string]any{"anyOf": []any{
			map[string]any{"type": "number"},
			map[string]any{"type": "string", "pattern": decPattern},
		}}
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case uuidType:
		return map[string]any{"type": "string", "pattern": uuidPattern}
	case rawType:
		return map[string]any{}
	}

	s := map[string]any{}
	switch t.Kind() {
	case reflect.String:
		s["type"] = "string"
		applyBounds(s, rules, "minLength", "maxLength")
		for _, r := range rules {
			if name, ok := strings.CutPrefix(r, "pattern="); ok {
				if re, found := patterns[name]; found {
					s["pattern"] = re.String()
				}
			}
		}
	case reflect.Bool:
		s["type"] = "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s["type"] = "integer"
		applyBounds(s, rules, "minimum", "maximum")
	case reflect.Float32, reflect.Float64:
		s["type"] = "number"
		applyBounds(s, rules, "minimum", "maximum")
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{}
		}
		s["type"] = "array"
		s["items"] = typeSchema(t.Elem(), diveRules(rules))
		applyBounds(s, rules, "minItems", "maxItems")
	case reflect.Map:
		s["type"] = "object"
		s["additionalProperties"] = typeSchema(t.Elem(), diveRules(rules))
	case reflect.Struct:
		s["type"] = "object"
		props := map[string]any{}
		required := []any{}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, ok := jsonName(f)
			if !ok {
				continue
			}
			fieldRules := strings.Split(f.Tag.Get("validate"), ",")
			fs := typeSchema(f.Type, fieldRules)
			if def, ok := f.Tag.Lookup("default"); ok {
				fs["default"] = defaultLiteral(f.Type, def)
			}
			props[name] = fs
			if hasRule(fieldRules, "required") {
				required = append(required, name)
			}
		}
		s["properties"] = props
		if len(required) > 0 {
			s["required"] = required
		}
	}
	return s
}

// applyBounds maps min/max/gte/lte style tags onto the given keywords.
// Rules after a dive belong to the elements and are skipped here.
func applyBounds(s map[string]any, rules []string, lowKey, highKey string) {
	for _, r := range rules {
		if r == "dive" {
			return
		}
		tag, param, ok := strings.Cut(r, "=")
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(param, 64)
		if err != nil {
			continue
		}
		switch tag {
		case "min", "gte":
			s[lowKey] = n
		case "max", "lte":
			s[highKey] = n
		case "len":
			s[lowKey] = n
			s[highKey] = n
		case "gt":
			if lowKey == "minimum" {
				s["exclusiveMinimum"] = n
			}
		case "lt":
			if highKey == "maximum" {
				s["exclusiveMaximum"] = n
			}
		}
	}
}

func diveRules(rules []string) []string {
	for i, r := range rules {
		if r == "dive" {
			return rules[i+1:]
		}
	}
	return nil
}

func hasRule(rules []string, rule string) bool {
	for _, r := range rules {
		if r == "dive" {
			return false
		}
		if r == rule {
			return true
		}
	}
	return false
}

func defaultLiteral(t reflect.Type, raw string) any {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// CompileJSONSchema turns a generated document into a validator.
func CompileJSONSchema(name string, doc map[string]any) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	url := "mem://econgate/" + name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// CheckRaw validates an undecoded payload against a compiled document and
// reports failures with the same kinds Decode uses: a value of the wrong JSON
// type or an unreadable decimal, uuid or timestamp is a MalformedPayloadError,
// a label outside a closed set is an UnrecognizedEnumValueError, and the
// remaining constraint failures come back as ValidationErrors keyed by path.
func CheckRaw(name string, compiled *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return classify(name, err)
	}
	err := compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	rc := &rawCheck{name: name, root: compiled, doc: doc}
	rc.collect(ve)
	return rc.result(ve)
}

type rawCheck struct {
	name       string
	root       *jsonschema.Schema
	doc        any
	malformed  []*MalformedPayloadError
	enums      []*UnrecognizedEnumValueError
	invalid    ValidationErrors
	mismatched []string // instance locations that failed the type keyword
}

// result picks the most basic failure, the order Decode would hit them in.
func (rc *rawCheck) result(top *jsonschema.ValidationError) error {
	switch {
	case len(rc.malformed) > 0:
		return rc.malformed[0]
	case len(rc.enums) > 0:
		return rc.enums[0]
	case len(rc.invalid) > 0:
		return rc.invalid
	}
	return ValidationErrors{{Type: rc.name, Rule: "schema", Message: top.Message}}
}

func (rc *rawCheck) collect(ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		rc.leaf(ve)
		return
	}
	if strings.HasSuffix(ve.KeywordLocation, "/anyOf") {
		rc.anyOf(ve)
		return
	}
	for _, c := range ve.Causes {
		rc.collect(c)
	}
}

// anyOf reports the branch the value was meant for: the first one that did
// not fail on the value's JSON type alone. When every branch is a type
// mismatch the value itself is malformed.
func (rc *rawCheck) anyOf(ve *jsonschema.ValidationError) {
	for _, branch := range ve.Causes {
		sub := &rawCheck{name: rc.name, root: rc.root, doc: rc.doc}
		sub.collect(branch)
		if sub.typeMismatchOnly(ve.InstanceLocation) {
			continue
		}
		rc.malformed = append(rc.malformed, sub.malformed...)
		rc.enums = append(rc.enums, sub.enums...)
		rc.invalid = append(rc.invalid, sub.invalid...)
		return
	}
	rc.malformed = append(rc.malformed, &MalformedPayloadError{
		Type:   rc.name,
		Field:  pointerToField(ve.InstanceLocation),
		Reason: "unexpected JSON type " + jsonKind(valueAt(rc.doc, ve.InstanceLocation)),
	})
}

func (rc *rawCheck) typeMismatchOnly(instance string) bool {
	if len(rc.enums) > 0 || len(rc.invalid) > 0 || len(rc.malformed) != len(rc.mismatched) {
		return false
	}
	for _, loc := range rc.mismatched {
		if loc != instance {
			return false
		}
	}
	return len(rc.mismatched) > 0
}

func (rc *rawCheck) leaf(ve *jsonschema.ValidationError) {
	loc := ve.KeywordLocation
	keyword := loc
	if i := strings.LastIndexByte(loc, '/'); i >= 0 {
		keyword = loc[i+1:]
		loc = loc[:i]
	}
	field := pointerToField(ve.InstanceLocation)
	owner := subschema(rc.root, loc)

	switch {
	case keyword == "type":
		rc.malformed = append(rc.malformed, &MalformedPayloadError{Type: rc.name, Field: field, Reason: ve.Message})
		rc.mismatched = append(rc.mismatched, ve.InstanceLocation)
		return
	case keyword == "format", keyword == "pattern" && owner != nil && owner.Pattern != nil && wirePattern(owner.Pattern.String()):
		rc.malformed = append(rc.malformed, &MalformedPayloadError{Type: rc.name, Field: field, Reason: ve.Message})
		return
	case keyword == "enum" && owner != nil && owner.Title != "":
		if label, ok := valueAt(rc.doc, ve.InstanceLocation).(string); ok {
			if _, known := catalog.forName(owner.Title); known {
				rc.enums = append(rc.enums, &UnrecognizedEnumValueError{Type: owner.Title, Label: label})
				return
			}
		}
	}
	rc.invalid = append(rc.invalid, &ValidationError{
		Type:    rc.name,
		Field:   field,
		Rule:    keyword,
		Message: ve.Message,
	})
}

// wirePattern reports whether re is one of the patterns standing in for a
// wire type rather than a declared constraint.
func wirePattern(re string) bool {
	return re == decPattern || re == uuidPattern
}

// subschema follows a keyword location such as "/properties/tiers/items"
// down the compiled document.
func subschema(s *jsonschema.Schema, ptr string) *jsonschema.Schema {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return s
	}
	segs := strings.Split(ptr, "/")
	for i := 0; i < len(segs) && s != nil; i++ {
		switch segs[i] {
		case "properties":
			i++
			if i >= len(segs) {
				return nil
			}
			s = s.Properties[unescapePointer(segs[i])]
		case "anyOf":
			i++
			if i >= len(segs) {
				return nil
			}
			n, err := strconv.Atoi(segs[i])
			if err != nil || n >= len(s.AnyOf) {
				return nil
			}
			s = s.AnyOf[n]
		case "items":
			s, _ = s.Items.(*jsonschema.Schema)
		case "additionalProperties":
			s, _ = s.AdditionalProperties.(*jsonschema.Schema)
		default:
			return nil
		}
	}
	return s
}

// valueAt returns the instance value at a JSON pointer, or nil.
func valueAt(doc any, ptr string) any {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return doc
	}
	for _, seg := range strings.Split(ptr, "/") {
		switch node := doc.(type) {
		case map[string]any:
			doc = node[unescapePointer(seg)]
		case []any:
			n, err := strconv.Atoi(seg)
			if err != nil || n < 0 || n >= len(node) {
				return nil
			}
			doc = node[n]
		default:
			return nil
		}
	}
	return doc
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return "object"
	}
}

func unescapePointer(seg string) string {
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
}

// pointerToField turns "/buy_orders/0/price" into "buy_orders[0].price".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, seg := range strings.Split(ptr, "/") {
		seg = unescapePointer(seg)
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(seg)
	}
	return b.String()
}
