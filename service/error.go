// Package service implements the Answer King use cases on top of the domain
// aggregates and repositories.
package service

import (
	"errors"
	"fmt"
	"net/http"

	"answerking/domain"
)

// Kind classifies service failures so that boundaries can switch on it
// instead of on message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidRequest
	KindInvalidReference
	KindAlreadyRetired
	KindRetired
	KindHasDependents
	KindLifecycle
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidRequest:
		return "invalid request"
	case KindInvalidReference:
		return "invalid reference"
	case KindAlreadyRetired:
		return "already retired"
	case KindRetired:
		return "retired"
	case KindHasDependents:
		return "has dependents"
	case KindLifecycle:
		return "lifecycle"
	default:
		return "unknown"
	}
}

// Status is the HTTP-equivalent status code of the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest, KindInvalidReference:
		return http.StatusBadRequest
	case KindAlreadyRetired, KindRetired:
		return http.StatusGone
	case KindHasDependents, KindLifecycle:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by every service operation that fails for a reason the
// caller can act on. Storage failures are returned unwrapped.
type Error struct {
	Kind    Kind
	Message string
	// IDs lists the offending identifiers, when there are any.
	IDs []int64
	Err error
}

// Error implements the error interface for Error
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so the Err sentinels below
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest}
	ErrInvalidReference = &Error{Kind: KindInvalidReference}
	ErrAlreadyRetired   = &Error{Kind: KindAlreadyRetired}
	ErrRetired          = &Error{Kind: KindRetired}
	ErrHasDependents    = &Error{Kind: KindHasDependents}
	ErrLifecycle        = &Error{Kind: KindLifecycle}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func newError[T ~int64](kind Kind, message string, ids ...T) *Error {
	e := &Error{Kind: kind, Message: message}
	for _, id := range ids {
		e.IDs = append(e.IDs, int64(id))
	}
	return e
}

func notFound[T ~int64](aggregate string, id T) error {
	return newError(KindNotFound, fmt.Sprintf("%s %d not found", aggregate, int64(id)), id)
}

func invalidReference[T ~int64](message string, ids []T) error {
	return newError(KindInvalidReference, message+": "+joinIDs(ids), ids...)
}

// fromDomain classifies an error raised by an aggregate method. Anything
// that is not a domain error is returned as is.
func fromDomain(err error) error {
	if err == nil {
		return nil
	}
	var le *domain.LifecycleError
	switch {
	case errors.As(err, &le):
		e := newError(KindLifecycle, le.Reason, le.ID)
		e.Err = err
		return e
	case domain.IsArgumentError(err), domain.IsLineItemError(err):
		e := newError[int64](KindInvalidRequest, "request rejected")
		e.Err = err
		return e
	default:
		return err
	}
}
