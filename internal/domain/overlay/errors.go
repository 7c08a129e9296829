package overlay

import (
	"errors"
	"fmt"
)

// ErrorCode identifies well-known error categories raised by the overlay
// engine.
type ErrorCode string

const (
	ErrCodeMeasurementTimeout ErrorCode = "MEASUREMENT_TIMEOUT"
	ErrCodeMeasurementFailure ErrorCode = "MEASUREMENT_FAILURE"
	ErrCodeInvalidOptions     ErrorCode = "INVALID_OPTIONS"
	ErrCodeDisposed           ErrorCode = "DISPOSED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a typed error enriched with contextual data while
// remaining free from host dependencies.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any DomainError carrying the same code, so sentinel values such
// as ErrMeasurementTimeout work with errors.Is regardless of message.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if !errors.As(target, &domainErr) {
		return false
	}
	return e.Code == domainErr.Code
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrMeasurementTimeout = &DomainError{Code: ErrCodeMeasurementTimeout, Message: "overlay never became measurable"}
	ErrMeasurementFailure = &DomainError{Code: ErrCodeMeasurementFailure, Message: "measure failed"}
	ErrInvalidOptions     = &DomainError{Code: ErrCodeInvalidOptions, Message: "invalid options"}
	ErrDisposed           = &DomainError{Code: ErrCodeDisposed, Message: "controller disposed"}
)

// NewDomainError constructs a DomainError with the supplied code and message.
func NewDomainError(code ErrorCode, message string, cause error, context map[string]interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// NewMeasurementTimeout reports that the retry guard was exceeded after the
// given number of attempts. cause is the last measurement failure, if any.
func NewMeasurementTimeout(attempts int, cause error) *DomainError {
	return NewDomainError(ErrCodeMeasurementTimeout, "overlay never became measurable", cause, map[string]interface{}{
		"attempts": attempts,
	})
}

// NewMeasurementFailure wraps an error reported by the host while measuring
// the named element.
func NewMeasurementFailure(element string, cause error) *DomainError {
	return NewDomainError(ErrCodeMeasurementFailure, "measure failed", cause, map[string]interface{}{
		"element": element,
	})
}

// NewInvalidOptions reports a rejected option value.
func NewInvalidOptions(field, message string) *DomainError {
	return NewDomainError(ErrCodeInvalidOptions, message, nil, map[string]interface{}{
		"field": field,
	})
}

// IsCode reports whether err wraps a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	for err != nil {
		if errors.As(err, &domainErr) {
			if domainErr.Code == code {
				return true
			}
			err = domainErr.Cause
			continue
		}
		return false
	}
	return false
}
