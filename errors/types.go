package errors

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Operation gating
	ErrCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"

	// Remote endpoint errors
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"

	// Helper process errors
	ErrCodeHelperNotFound ErrorCode = "HELPER_NOT_FOUND"
	ErrCodeHelperFailed   ErrorCode = "HELPER_FAILED"
	ErrCodeAlreadyIdling  ErrorCode = "ALREADY_IDLING"

	// Durable state errors
	ErrCodeStateCorrupt ErrorCode = "STATE_CORRUPT"
	ErrCodeStateIO      ErrorCode = "STATE_IO"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// IdlerError represents a structured error with context
type IdlerError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *IdlerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *IdlerError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *IdlerError) WithDetail(key string, value interface{}) *IdlerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *IdlerError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new IdlerError
func New(code ErrorCode, message string) *IdlerError {
	return &IdlerError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an IdlerError
func Wrap(err error, code ErrorCode, message string) *IdlerError {
	return &IdlerError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific IdlerError code anywhere in its chain
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	idlerErr, ok := err.(*IdlerError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	if idlerErr.Code == code {
		return true
	}
	return Is(idlerErr.Cause, code)
}

// GetCode extracts the outermost error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	idlerErr, ok := err.(*IdlerError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return idlerErr.Code
}
