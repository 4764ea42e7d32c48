package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CodeNotFound is the error code the service answers with when the queried
// voucher does not exist yet.
const CodeNotFound = 602

var (
	// ErrNoResult marks a call the service answered with an error list
	// instead of a result.
	ErrNoResult = errors.New("no result")

	// ErrMissingField marks a successful response that lacks a field the
	// caller depends on.
	ErrMissingField = errors.New("response field missing")
)

// TransportFault represents a failure of the RPC channel itself (network,
// HTTP status or SOAP fault). It is always surfaced to the caller as is.
type TransportFault struct {
	Operation string
	Code      string
	Message   string
	Cause     error
}

func (e *TransportFault) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("transport fault [%s] %s: %s", e.Code, e.Operation, e.Message)
	}
	return fmt.Sprintf("transport fault %s: %s", e.Operation, e.Message)
}

func (e *TransportFault) Unwrap() error {
	return e.Cause
}

// NewTransportFault creates a new transport fault
func NewTransportFault(operation, code, message string, cause error) *TransportFault {
	return &TransportFault{
		Operation: operation,
		Code:      code,
		Message:   message,
		Cause:     cause,
	}
}

// ApplicationError is one entry of the error list returned by the service
// inside an otherwise well-formed response.
type ApplicationError struct {
	Operation string
	Code      int
	Message   string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s rejected [%d]: %s", e.Operation, e.Code, e.Message)
}

// NewApplicationError creates a new application error
func NewApplicationError(operation string, code int, message string) *ApplicationError {
	return &ApplicationError{
		Operation: operation,
		Code:      code,
		Message:   message,
	}
}

// AuthError represents a failure to obtain an access ticket
type AuthError struct {
	Service string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth [%s]: %s (%v)", e.Service, e.Message, e.Cause)
	}
	return fmt.Sprintf("auth [%s]: %s", e.Service, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new auth error
func NewAuthError(service, message string, cause error) *AuthError {
	return &AuthError{
		Service: service,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ErrorCode extracts the numeric service code carried by err, if any.
// Application errors carry it directly; transport faults carry it when the
// fault code (without its namespace prefix) or, failing that, the fault
// message starts with a number.
func ErrorCode(err error) (int, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}

	var fault *TransportFault
	if errors.As(err, &fault) {
		code := fault.Code
		if i := strings.LastIndexByte(code, ':'); i >= 0 {
			code = code[i+1:]
		}
		if code, ok := leadingNumber(code); ok {
			return code, true
		}
		return leadingNumber(fault.Message)
	}

	return 0, false
}

// IsNotFound reports whether err carries CodeNotFound
func IsNotFound(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeNotFound
}

func leadingNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
