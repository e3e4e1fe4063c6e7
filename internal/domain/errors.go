package domain

import (
	"errors"
	"fmt"
)

// Kind groups error codes into the failure classes handled at the operation boundary.
type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindNotFound
	KindVersioningIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindVersioningIntegrity:
		return "versioning integrity"
	default:
		return "storage"
	}
}

// Stable error codes reported to callers.
const (
	CodeEmptyFrontText        = "EmptyFrontText"
	CodeEmptyBackText         = "EmptyBackText"
	CodeEmptyAnswer           = "EmptyAnswer"
	CodeEmptyDelay            = "EmptyDelay"
	CodeInvalidDurationFormat = "InvalidDurationFormat"
	CodeDelayTooLarge         = "DelayTooLarge"
	CodeInvalidArgument       = "InvalidArgument"
	CodeUnknownOperation      = "UnknownOperation"
	CodeNotFound              = "NotFound"
	CodeVersioningIntegrity   = "VersioningIntegrityError"
	CodeStorage               = "StorageError"
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrVersioningIntegrity = &Error{Kind: KindVersioningIntegrity}
	ErrStorage             = &Error{Kind: KindStorage}
)

// Error is the typed failure returned by every engine operation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, and of the same
// Code when target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Validation creates a validation error with the given code.
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error for the given entity and id.
func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// VersioningIntegrity reports that a capture-then-mutate step touched the wrong number of rows.
func VersioningIntegrity(table string, key any, rows int64) *Error {
	return &Error{
		Kind:    KindVersioningIntegrity,
		Code:    CodeVersioningIntegrity,
		Message: fmt.Sprintf("expected exactly one %s row for key %v, got %d", table, key, rows),
	}
}

// AsError converts any error into an *Error. Errors that are not already
// typed become storage errors carrying the original message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindStorage, Code: CodeStorage, Message: err.Error(), Err: err}
}
