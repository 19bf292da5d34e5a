package errs

import (
	"errors"
	"net/http"
)

// Code is an application error code.
type Code string

const (
	InvalidArgument Code = "invalid_argument"
	Unprocessable   Code = "unprocessable"
	Unauthorized    Code = "unauthorized"
	NotFound        Code = "not_found"
	Conflict        Code = "conflict"
	Internal        Code = "internal"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// NotFoundErr is the uniform "absent or not yours" error. Every owner-scoped
// read, update, and delete reports this same value so a caller cannot tell
// another user's entity apart from one that does not exist.
func NotFoundErr() error {
	return New(NotFound, "Not Found")
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// MessageOf returns a user-facing error message.
// If the error has no typed wrapper, returns "Internal Server Error" to prevent
// leaking raw store errors, index names, or connection strings to API responses.
func MessageOf(err error) string {
	if err == nil {
		return "Internal Server Error"
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Code != Internal && coded.Message != "" {
		return coded.Message
	}
	return "Internal Server Error"
}

// HTTPStatus maps error code to HTTP status. Conflict maps to 400, not 409:
// duplicate names and folder-in-use have always surfaced as Bad Request on
// this API and clients depend on it.
func HTTPStatus(code Code) int {
	switch code {
	case InvalidArgument, Conflict:
		return http.StatusBadRequest
	case Unprocessable:
		return http.StatusUnprocessableEntity
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
