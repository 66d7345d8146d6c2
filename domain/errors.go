// Package domain holds the error kinds shared by every layer of the
// relationship engine and their mapping onto HTTP status codes.
package domain

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidReference
	KindConflict
	// KindPartialFailure marks a contract-critical step that succeeded only
	// partially. Earlier writes were not rolled back.
	KindPartialFailure
	KindUpload
	KindValidation
	KindUnauthorized
	KindForbidden
)

// Sentinel errors, use with errors.Is().
var (
	ErrInternal         = errors.New("internal error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("already exists")
	ErrPartialFailure   = errors.New("partial failure")
	ErrUpload           = errors.New("upload failed")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidReference:
		return ErrInvalidReference
	case KindConflict:
		return ErrConflict
	case KindPartialFailure:
		return ErrPartialFailure
	case KindUpload:
		return ErrUpload
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	default:
		return ErrInternal
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// StatusCode maps the kind onto an HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidReference:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpload:
		return http.StatusBadGateway
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by the engine.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "deleteInvestor"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels. A partial failure is also an
// internal error.
func (e *Error) Is(target error) bool {
	if target == e.Kind.sentinel() {
		return true
	}
	return e.Kind == KindPartialFailure && target == ErrInternal
}

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func newError(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(op, format string, args ...any) error {
	return newError(KindNotFound, op, nil, format, args...)
}

func InvalidReference(op, format string, args ...any) error {
	return newError(KindInvalidReference, op, nil, format, args...)
}

func Conflict(op, format string, args ...any) error {
	return newError(KindConflict, op, nil, format, args...)
}

func PartialFailure(op string, err error, format string, args ...any) error {
	return newError(KindPartialFailure, op, err, format, args...)
}

func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func Unauthorized(op, format string, args ...any) error {
	return newError(KindUnauthorized, op, nil, format, args...)
}

// Forbidden is an authenticated caller acting on something it does not own.
func Forbidden(op, format string, args ...any) error {
	return newError(KindForbidden, op, nil, format, args...)
}

// Internal wraps a storage or collaborator error.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

func Upload(op string, err error) error {
	return &Error{Kind: KindUpload, Op: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// StatusCode returns the HTTP status for any error.
func StatusCode(err error) int {
	return KindOf(err).StatusCode()
}

// ParseRef converts a caller supplied identifier into a ref.
func ParseRef(op, field, id string) (primitive.ObjectID, error) {
	ref, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, InvalidReference(op, "%s %q is not a valid id", field, id)
	}
	return ref, nil
}

// ParseRefs converts a list of identifiers, failing on the first malformed one.
func ParseRefs(op, field string, ids []string) ([]primitive.ObjectID, error) {
	refs := make([]primitive.ObjectID, 0, len(ids))
	for i, id := range ids {
		ref, err := ParseRef(op, fmt.Sprintf("%s[%d]", field, i), id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
