package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrUnrecognizedEnum = errors.New("unrecognized enum value")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownContract  = errors.New("unknown contract")
)

// ValidationError reports one violated constraint on one field.
// Field is the wire path relative to the record, e.g. "buy_orders[0].price".
type ValidationError struct {
	Type    string `json:"type"`
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s", e.Type, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors is every violation found on a single record.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (es ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}
	return out
}

// Has reports whether field failed rule.
func (es ValidationErrors) Has(field, rule string) bool {
	for _, e := range es {
		if e.Field == field && e.Rule == rule {
			return true
		}
	}
	return false
}

func (es ValidationErrors) Fields() []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Field)
	}
	return out
}

// UnrecognizedEnumValueError is returned when a label matches no member of a closed set.
type UnrecognizedEnumValueError struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

func (e *UnrecognizedEnumValueError) Error() string {
	return fmt.Sprintf("unrecognized %s value %q", e.Type, e.Label)
}

func (e *UnrecognizedEnumValueError) Is(target error) bool {
	return target == ErrUnrecognizedEnum
}

// MalformedPayloadError is returned when wire data cannot be read as the declared type.
type MalformedPayloadError struct {
	Type   string `json:"type"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
	Cause  error  `json:"-"`
}

func (e *MalformedPayloadError) Error() string {
	var b strings.Builder
	b.WriteString("malformed ")
	if e.Type != "" {
		b.WriteString(e.Type)
		b.WriteString(" ")
	}
	b.WriteString("payload")
	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *MalformedPayloadError) Unwrap() error { return e.Cause }

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}
