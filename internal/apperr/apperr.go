// Package apperr defines the domain error taxonomy surfaced to GraphQL clients.
//
// Every error carries a stable machine-readable code and an HTTP-like status, both
// exposed through GraphQL error extensions.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error code.
type Code string

const (
	CodeNotFound        Code = "RESOURCE_NOT_FOUND"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeConflict        Code = "CONFLICT"
	CodeForeignKey      Code = "FOREIGN_KEY_VIOLATION"
	CodeDatabase        Code = "DATABASE_ERROR"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
	CodeRateLimited     Code = "RATE_LIMITED"
)

// Error is a domain error with a code, a status and an optional cause.
type Error struct {
	Code    Code
	Status  int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Extensions implements graphql-go's extended error interface.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": string(e.Code),
		"http": map[string]interface{}{"status": e.Status},
	}
	if len(e.Fields) > 0 {
		fields := make(map[string]interface{}, len(e.Fields))
		for k, v := range e.Fields {
			fields[k] = v
		}
		ext["fields"] = fields
	}
	return ext
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s with ID '%s' not found", resource, id),
	}
}

// Validation reports malformed or out-of-range input.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// ValidationFields reports input errors keyed by field name.
func ValidationFields(message string, fields map[string]string) *Error {
	e := Validation(message)
	e.Fields = fields
	return e
}

// Unauthenticated reports a missing or invalid credential.
func Unauthenticated(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{Code: CodeUnauthenticated, Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller without permission.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Permission denied"
	}
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string, cause error) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message, cause: cause}
}

// ForeignKey reports a reference to a related row that does not exist, or a delete
// blocked by dependent rows.
func ForeignKey(message string, cause error) *Error {
	return &Error{Code: CodeForeignKey, Status: http.StatusConflict, Message: message, cause: cause}
}

// Database wraps an unrecognized backend failure.
func Database(cause error) *Error {
	return &Error{
		Code:    CodeDatabase,
		Status:  http.StatusInternalServerError,
		Message: "Database operation failed",
		cause:   cause,
	}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		cause:   cause,
	}
}

// RateLimited reports a rejected request.
func RateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Status: http.StatusTooManyRequests, Message: message}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// Normalize converts any error into a domain error. Domain errors pass through,
// everything else becomes a database error.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Database(err)
}
