package watchlist

import (
	"errors"
	"fmt"
)

const (
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeInvalidName      = "INVALID_NAME"
	CodeForbidden        = "FORBIDDEN"
	CodeCycle            = "CYCLE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError. Cause may be nil.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// CodeOf returns the code carried by err, or "" when err is not a CodedError.
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

func notFound(format string, args ...any) error {
	return &CodedError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func alreadyExists(format string, args ...any) error {
	return &CodedError{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func invalidName(format string, args ...any) error {
	return &CodedError{Code: CodeInvalidName, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &CodedError{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}
