package apperr

import (
	"fmt"
	"strings"
)

// Code is the stable, client-visible error identifier.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeInvalidJSON   Code = "INVALID_JSON"
	CodeBusinessRule  Code = "BUSINESS_RULE_VIOLATION"
	CodeNotFound      Code = "NOT_FOUND"
	CodeRouteNotFound Code = "ROUTE_NOT_FOUND"
	CodeDatabase      Code = "DATABASE_ERROR"
	CodeInternal      Code = "INTERNAL_SERVER_ERROR"
	CodeRateLimited   Code = "RATE_LIMITED"
)

// ValidationError carries every rule violation found in a request.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Errors, "; "))
}

func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Message: "Validation failed", Errors: errs}
}

// InvalidJSONError signals a request body that is not well-formed JSON.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid json: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// BusinessRuleError is a well-formed request rejected by a domain rule.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// StoreError wraps an underlying storage fault.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// PanicError is produced by the recovery middleware.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}
