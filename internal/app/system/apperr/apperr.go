// Package apperr classifies engine errors so the feature layer can map
// them to HTTP status codes without inspecting message text.
//
// The kinds mirror the failure modes of the approval engine:
//
//   - Validation:   malformed or missing input (empty recipient list,
//     unknown relationship type). Detected before any write.
//   - NotFound:     a referenced user/group/application/edge does not
//     exist, or the caller holds no relationship entitling access.
//   - Precondition: a flow-order or duplicate-decision violation.
//   - Storage:      a transaction or connectivity failure in MongoDB;
//     the in-flight transaction was aborted entirely.
//   - Internal:     a derived-state invariant does not hold (e.g. a gap
//     in flow indices).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPrecondition
	KindStorage
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error carries a kind, a caller-facing message, and an optional cause.
type Error struct {
	Kind Kind
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

// Validation returns a KindValidation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Precondition returns a KindPrecondition error with a formatted message.
func Precondition(format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps a store/driver error as KindStorage.
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// Internal returns a KindInternal error with a formatted message.
func Internal(format string, args ...any) error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err. Unclassified errors report
// KindStorage: anything reaching the feature layer unwrapped came from
// the driver or another collaborator.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code the API returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
