package schema

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Patterns are referenced from struct tags as `pattern=<name>`.
var patterns = map[string]*regexp.Regexp{
	"currency": regexp.MustCompile(`^[A-Z]{3}$`),
	"ticker":   regexp.MustCompile(`^[A-Z]{1,6}$`),
	"code":     regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`),
}

// PatternFor exposes the regex behind a named pattern.
func PatternFor(name string) (string, bool) {
	re, ok := patterns[name]
	if !ok {
		return "", false
	}
	return re.String(), true
}

// Violation is a cross-field rule failure reported by an Invariant.
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// Invariant is implemented (on the value receiver) by records whose fields
// constrain one another.
type Invariant interface {
	Invariants() []Violation
}

type enumMember interface {
	IsValid() bool
}

var (
	engineOnce sync.Once
	validate   *validator.Validate

	decimalParams  sync.Map // param string -> decimal.Decimal
	invariantRules sync.Map // rule -> struct{}
)

func engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, ok := jsonName(fld)
			if !ok {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			d, ok := field.Interface().(Decimal)
			if !ok || !d.IsSet() {
				return nil
			}
			return d.Decimal
		}, Decimal{})

		mustRegister(v, "dgt", decimalRule(func(d, p decimal.Decimal) bool { return d.GreaterThan(p) }))
		mustRegister(v, "dgte", decimalRule(func(d, p decimal.Decimal) bool { return d.GreaterThanOrEqual(p) }))
		mustRegister(v, "dlt", decimalRule(func(d, p decimal.Decimal) bool { return d.LessThan(p) }))
		mustRegister(v, "dlte", decimalRule(func(d, p decimal.Decimal) bool { return d.LessThanOrEqual(p) }))
		mustRegister(v, "pattern", func(fl validator.FieldLevel) bool {
			re, ok := patterns[fl.Param()]
			if !ok {
				return false
			}
			return re.MatchString(fl.Field().String())
		})
		mustRegister(v, "enum", func(fl validator.FieldLevel) bool {
			m, ok := fl.Field().Interface().(enumMember)
			return ok && m.IsValid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: register %s: %v", tag, err))
	}
}

func decimalRule(cmp func(d, p decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		p, err := decimalParam(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, p)
	}
}

func decimalParam(raw string) (decimal.Decimal, error) {
	if cached, ok := decimalParams.Load(raw); ok {
		return cached.(decimal.Decimal), nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	decimalParams.Store(raw, p)
	return p, nil
}

// RegisterInvariants hooks each record type's Invariants into validation,
// wherever the record appears in a payload. Call from init.
func RegisterInvariants(records ...Invariant) {
	types := make([]any, 0, len(records))
	for _, r := range records {
		types = append(types, r)
	}
	engine().RegisterStructValidation(func(sl validator.StructLevel) {
		inv, ok := sl.Current().Interface().(Invariant)
		if !ok {
			return
		}
		for _, v := range inv.Invariants() {
			invariantRules.Store(v.Rule, struct{}{})
			// the message travels in the param slot and is unpacked in toValidationErrors
			sl.ReportError(nil, v.Field, v.Field, v.Rule, v.Message)
		}
	}, types...)
}

// Validate checks declared constraints and registered invariants on v,
// which must be a struct or a pointer to one.
func Validate(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return toValidationErrors(TypeName(v), fieldErrs)
	}
	return err
}

func toValidationErrors(typeName string, fieldErrs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve := &ValidationError{
			Type:  typeName,
			Field: relativeField(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		}
		if _, isInvariant := invariantRules.Load(fe.Tag()); isInvariant {
			ve.Message = fe.Param()
			ve.Param = ""
		} else {
			ve.Message = describe(fe)
		}
		out = append(out, ve)
	}
	return out
}

// relativeField drops the root type from a validator namespace.
func relativeField(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	p := fe.Param()
	sized := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	unit := "items"
	if fe.Kind() == reflect.String {
		unit = "characters"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if sized {
			return fmt.Sprintf("must have at least %s %s", p, unit)
		}
		return "must be >= " + p
	case "max":
		if sized {
			return fmt.Sprintf("must have at most %s %s", p, unit)
		}
		return "must be <= " + p
	case "len":
		return fmt.Sprintf("must have exactly %s %s", p, unit)
	case "gte", "dgte":
		return "must be >= " + p
	case "lte", "dlte":
		return "must be <= " + p
	case "gt", "dgt":
		return "must be > " + p
	case "lt", "dlt":
		return "must be < " + p
	case "pattern":
		if re, ok := patterns[p]; ok {
			return "must match " + re.String()
		}
		return "must match pattern " + p
	case "enum":
		return fmt.Sprintf("%v is not a declared member", fe.Value())
	case "oneof":
		return "must be one of " + p
	default:
		return "violates " + fe.Tag()
	}
}

// TypeName is the bare Go type name used in error reports.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

func jsonName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, true
}
