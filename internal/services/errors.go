package services

import (
	"errors"
	"fmt"

	"assochub/internal/repositories"
)

// ErrorKind classifies a service failure. Handlers map kinds onto HTTP statuses.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindInvalidState    ErrorKind = "invalid_state"
	KindValidation      ErrorKind = "validation"
	KindUpstream        ErrorKind = "upstream"
)

// Error is a failure whose Message is safe to show to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...interface{}) error {
	return newError(KindUnauthenticated, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func InvalidState(format string, args ...interface{}) error {
	return newError(KindInvalidState, format, args...)
}

func Validation(format string, args ...interface{}) error {
	return newError(KindValidation, format, args...)
}

func Upstream(format string, args ...interface{}) error {
	return newError(KindUpstream, format, args...)
}

// KindOf returns the kind of err, or "" for errors not raised by a service.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// notFound turns a repository miss into a not_found error naming the entity.
func notFound(err error, entity string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("%s not found", entity)
	}
	return err
}
