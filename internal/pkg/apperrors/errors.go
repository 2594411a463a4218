package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/GoPolymarket/econgate/internal/schema"
)

type ErrorType string

const (
	ErrValidation     ErrorType = "VALIDATION_FAILED"
	ErrUnrecognized   ErrorType = "UNRECOGNIZED_ENUM"
	ErrMalformed      ErrorType = "MALFORMED_PAYLOAD"
	ErrUnknown        ErrorType = "UNKNOWN_CONTRACT"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrReadOnly       ErrorType = "READ_ONLY"
	ErrForbidden      ErrorType = "FORBIDDEN"
	ErrRateLimited    ErrorType = "RATE_LIMITED"
	ErrConflict       ErrorType = "CONFLICT"
	ErrSystemPanic    ErrorType = "SYSTEM_PANIC"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
	ErrNotFound       ErrorType = "NOT_FOUND"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

// WithDetails attaches a machine-readable payload to the response body.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if mapped := FromSchema(err); mapped != nil {
		return mapped
	}
	return New(ErrInternal, err.Error(), err)
}

// FromSchema maps contract errors onto API errors, carrying the offending
// fields as details. It returns nil for anything else.
func FromSchema(err error) *AppError {
	var ves schema.ValidationErrors
	var enumErr *schema.UnrecognizedEnumValueError
	var malformed *schema.MalformedPayloadError
	switch {
	case errors.As(err, &ves):
		return New(ErrValidation, fmt.Sprintf("%d constraint violation(s)", len(ves)), err).WithDetails(ves)
	case errors.As(err, &enumErr):
		return New(ErrUnrecognized, enumErr.Error(), err).WithDetails(enumErr)
	case errors.As(err, &malformed):
		return New(ErrMalformed, malformed.Error(), err).WithDetails(malformed)
	case errors.Is(err, schema.ErrUnknownContract):
		return New(ErrUnknown, err.Error(), err)
	}
	return nil
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation, ErrUnrecognized, ErrMalformed, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrReadOnly, ErrForbidden:
		return http.StatusForbidden
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrConflict:
		return http.StatusConflict
	case ErrSystemPanic:
		return http.StatusServiceUnavailable
	case ErrNotFound, ErrUnknown:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrValidation:
		return "Fix the listed fields and resend."
	case ErrUnrecognized:
		return "Use one of the labels listed under /v1/enums."
	case ErrMalformed:
		return "Check the payload is a single JSON object of the declared types."
	case ErrUnknown:
		return "List available contracts at /v1/contracts."
	case ErrConflict:
		return "Retry the request."
	case ErrAuthFailed:
		return "Check API keys."
	case ErrReadOnly:
		return "The gateway is in read-only mode."
	case ErrSystemPanic:
		return "Wait for system recovery."
	default:
		return ""
	}
}
