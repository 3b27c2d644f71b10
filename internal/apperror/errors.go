// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package apperror

import (
	"errors"
	"fmt"

	"github.com/canonical/project-hub/internal/storage"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "internal"
}

// Error is a failure classified at the point it was detected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func Unauthenticated(format string, args ...any) *Error {
	return newError(KindUnauthenticated, format, args...)
}

// Internal wraps an unexpected failure. The message is safe to log, never to expose.
func Internal(err error, format string, args ...any) *Error {
	e := newError(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first classified error in the chain,
// unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Classify turns storage failures into classified errors, errors already
// classified are returned untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return &Error{Kind: KindConflict, Message: "resource already exists", Err: err}
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "resource not found", Err: err}
	case errors.Is(err, storage.ErrForeignKeyViolation):
		return &Error{Kind: KindValidation, Message: "referenced resource does not exist", Err: err}
	case errors.Is(err, storage.ErrCheckViolation):
		return &Error{Kind: KindValidation, Message: "value out of range", Err: err}
	}

	return Internal(err, "unexpected failure")
}
