package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a service operation can report
type ErrorKind string

const (
	KindPrecondition      ErrorKind = "precondition"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindConflict          ErrorKind = "conflict"
	KindStore             ErrorKind = "store"
)

// AppError is the single failure shape returned by mutating operations.
// A nil error means the operation fully applied; a non-nil one means
// nothing was applied.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can write errors.Is(err, service.ErrNotFound)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrPrecondition      = &AppError{Kind: KindPrecondition}
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrInsufficientStock = &AppError{Kind: KindInsufficientStock}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrStore             = &AppError{Kind: KindStore}
)

// ErrNoAssociation is returned whenever the caller's identity has no tenant
var ErrNoAssociation = &AppError{Kind: KindNotFound, Message: "no association found"}

func precondition(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func insufficientStock(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(message string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Err: err}
}

// KindOf reports the kind of err; unknown errors are store failures
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// asAppError passes AppErrors through and wraps anything else as a store failure
func asAppError(message string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return storeFailure(message, err)
}
