package todo

import (
	"errors"
	"fmt"
)

// Error is returned by Service operations.
//
// The store underneath never fails; Error exists because callers of the
// service (CLI, HTTP) need to tell a missing or ambiguous id apart from bad
// input.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID is the todo id or id prefix involved, if any.
	ID string
}

// ErrorCode categorizes service errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates no todo matches the given id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAmbiguous indicates an id prefix matches more than one todo.
	ErrCodeAmbiguous ErrorCode = "AMBIGUOUS_ID"

	// ErrCodeInvalid indicates the input failed validation.
	ErrCodeInvalid ErrorCode = "INVALID_INPUT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsAmbiguous reports whether err is an ambiguous-id error.
func IsAmbiguous(err error) bool {
	return hasCode(err, ErrCodeAmbiguous)
}

// IsInvalid reports whether err is a validation error.
func IsInvalid(err error) bool {
	return hasCode(err, ErrCodeInvalid)
}

// CodeOf returns the code of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func notFound(id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "no such todo", ID: id}
}

func ambiguous(prefix string, n int) *Error {
	return &Error{
		Code:    ErrCodeAmbiguous,
		Message: fmt.Sprintf("id prefix matches %d todos", n),
		ID:      prefix,
	}
}

func invalidf(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// messageOf returns the message of err without its code prefix.
func messageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
