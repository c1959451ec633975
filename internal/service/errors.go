package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns on purpose wraps one of these;
// anything else is an internal failure.
var (
	ErrValidation = errors.New("validation")
	ErrAuth       = errors.New("unauthorized")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error { return newError(ErrValidation, format, args...) }
func notFoundf(format string, args ...any) error   { return newError(ErrNotFound, format, args...) }
func duplicatef(format string, args ...any) error  { return newError(ErrDuplicate, format, args...) }
func authf(format string, args ...any) error       { return newError(ErrAuth, format, args...) }
