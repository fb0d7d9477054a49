// Package apierr defines the error taxonomy shared by the call-tone core.
// Errors carry machine-readable codes only; HTTP status mapping happens in
// the transport layer.
package apierr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidFileType    Code = "invalid_file_type"
	CodeFileTooLarge       Code = "file_too_large"
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeUnauthorized       Code = "unauthorized"
	CodeInternal           Code = "internal"
)

type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the taxonomy code from err, or CodeInternal for anything
// that is not an *Error.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func IsNotFound(err error) bool  { return HasCode(err, CodeNotFound) }
func IsForbidden(err error) bool { return HasCode(err, CodeForbidden) }
