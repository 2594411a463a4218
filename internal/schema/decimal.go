package schema

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is the wire type for every monetary and ratio field. It reads a
// JSON string or number and always writes a quoted string that keeps the
// scale it was read with, so "12.50" is echoed as "12.50".
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal { return Decimal{Decimal: d} }

func DecimalFromInt(i int64) Decimal { return Decimal{Decimal: decimal.NewFromInt(i)} }

func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Decimal: d}, nil
}

// MustDecimal is for literals in code and tests.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(fmt.Sprintf("schema: bad decimal literal %q: %v", s, err))
	}
	return d
}

// IsSet is false only for the Go zero value, which never comes off the wire.
func (d Decimal) IsSet() bool {
	return d.Decimal != (decimal.Decimal{})
}

// Ptr is shorthand for optional decimal fields.
func (d Decimal) Ptr() *Decimal { return &d }

// Text renders the value with its original scale.
func (d Decimal) Text() string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Text() + `"`), nil
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v decimal.Decimal
	if err := v.UnmarshalJSON(data); err != nil {
		return &MalformedPayloadError{Reason: fmt.Sprintf("non-numeric decimal %s", data), Cause: err}
	}
	d.Decimal = v
	return nil
}
