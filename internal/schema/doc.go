// Package schema is the contract layer shared by every economy DTO.
//
// It provides the wire building blocks (Decimal, Nullable, closed-set Enum),
// declarative validation on top of go-playground/validator, a JSON codec
// that applies defaults and reports ValidationErrors,
// UnrecognizedEnumValueError or MalformedPayloadError, and a Registry that
// looks contracts up by name and exports a Draft-7 JSON Schema for each.
//
// Nothing here does I/O or holds shared mutable state after init; records
// are plain values owned by whoever decoded them.
package schema
