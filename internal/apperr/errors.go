// Package apperr defines the error vocabulary shared by the services and the
// HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindStorage
	KindEncoding
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindEncoding:
		return "encoding"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Client reports whether the kind is attributable to the caller's input.
func (k Kind) Client() bool {
	return k == KindValidation || k == KindConflict || k == KindNotFound
}

// Error carries a kind, a caller-safe message and an optional cause.
// Code is a stable machine-readable identifier such as "DUPLICATE_ROLL_NO".
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func Wrap(err error, kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg, Err: err}
}

func Validation(code, format string, a ...any) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, a...))
}

func Conflict(code, msg string) *Error { return New(KindConflict, code, msg) }

func NotFound(code, msg string) *Error { return New(KindNotFound, code, msg) }

func Storage(err error, msg string) *Error {
	return Wrap(err, KindStorage, "STORAGE_UNAVAILABLE", msg)
}

func Encoding(err error, msg string) *Error {
	return Wrap(err, KindEncoding, "QR_GENERATION_FAILED", msg)
}

func Internal(err error, msg string) *Error {
	return Wrap(err, KindInternal, "INTERNAL_ERROR", msg)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
