package workflow

import (
	"errors"
	"fmt"

	"github.com/modelmagic/modelmagic/dao/model"
)

// Kind classifies a workflow failure so handlers can map it to a response
// code. Business-rule kinds are not retryable; Conflict is.
type Kind uint8

const (
	KindInvalidTransition Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindValidation
	KindConflict
)

// Error is the typed, recoverable failure surfaced by the engine. It never
// panics through to the caller.
type Error struct {
	Kind Kind
	From model.ProjectStatus // set for transition failures
	To   model.ProjectStatus
	Msg  string
}

func (e *Error) Error() string {
	if e.Kind == KindInvalidTransition && e.From != "" {
		return fmt.Sprintf("invalid transition %q -> %q: %s", e.From, e.To, e.Msg)
	}
	return e.Msg
}

// KindOf returns the Kind of err, or 0 if err is not a workflow error.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return 0
}

func invalidTransition(from, to model.ProjectStatus, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, From: from, To: to, Msg: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// NotFound is returned by stores when the referenced entity does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict is returned when an optimistic write lost the race against a
// concurrent transition. Callers may re-read and retry.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}
