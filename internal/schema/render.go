package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

const renderIndent = "    "

// Render is a diagnostic dump of a record: one `wire_name: value` line per
// field, nested records indented. It is not a wire format.
func Render(v any) string {
	var b strings.Builder
	renderValue(&b, reflect.ValueOf(v), 0)
	return b.String()
}

func renderValue(b *strings.Builder, v reflect.Value, depth int) {
	if !v.IsValid() {
		b.WriteString("null")
		return
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case nullable:
			val, state := x.nullableValue()
			switch state {
			case stateAbsent:
				b.WriteString("<absent>")
			case stateNull:
				b.WriteString("null")
			default:
				renderValue(b, reflect.ValueOf(val), depth)
			}
			return
		case Decimal:
			b.WriteString(x.Text())
			return
		case time.Time:
			b.WriteString(x.Format(time.RFC3339Nano))
			return
		case fmt.Stringer:
			// uuid.UUID and similar value types
			if v.Kind() == reflect.Array || v.Kind() == reflect.Struct {
				b.WriteString(x.String())
				return
			}
		}
	}

	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		if v.Len() == 0 {
			b.WriteString("null")
			return
		}
		b.Write(v.Bytes())
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			b.WriteString("null")
			return
		}
		renderValue(b, v.Elem(), depth)
	case reflect.Struct:
		t := v.Type()
		b.WriteString(t.Name())
		b.WriteString(" {\n")
		for i := 0; i < t.NumField(); i++ {
			name, ok := jsonName(t.Field(i))
			if !ok {
				continue
			}
			writeIndent(b, depth+1)
			b.WriteString(name)
			b.WriteString(": ")
			renderValue(b, v.Field(i), depth+1)
			b.WriteString("\n")
		}
		writeIndent(b, depth)
		b.WriteString("}")
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteString("null")
			return
		}
		if v.Len() == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i := 0; i < v.Len(); i++ {
			writeIndent(b, depth+1)
			renderValue(b, v.Index(i), depth+1)
			b.WriteString("\n")
		}
		writeIndent(b, depth)
		b.WriteString("]")
	case reflect.Map:
		if v.IsNil() {
			b.WriteString("null")
			return
		}
		if v.Len() == 0 {
			b.WriteString("{}")
			return
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		b.WriteString("{\n")
		for _, k := range keys {
			writeIndent(b, depth+1)
			fmt.Fprint(b, k.Interface())
			b.WriteString(": ")
			renderValue(b, v.MapIndex(k), depth+1)
			b.WriteString("\n")
		}
		writeIndent(b, depth)
		b.WriteString("}")
	case reflect.String:
		b.WriteString(v.String())
	default:
		if v.CanInterface() {
			fmt.Fprint(b, v.Interface())
			return
		}
		b.WriteString(v.Kind().String())
	}
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(renderIndent)
	}
}
