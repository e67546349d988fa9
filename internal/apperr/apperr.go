// Package apperr defines the error kinds shared by the store, the API layer and the client.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide between retrying, surfacing or skipping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidInput
	KindUnauthorized
	KindUnavailable
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// KindFromCode is the inverse of Kind.String. Unknown codes map to KindInternal.
func KindFromCode(code string) Kind {
	switch code {
	case "NOT_FOUND":
		return KindNotFound
	case "INVALID_INPUT":
		return KindInvalidInput
	case "UNAUTHORIZED":
		return KindUnauthorized
	case "UNAVAILABLE":
		return KindUnavailable
	default:
		return KindInternal
	}
}

// Error carries the kind plus enough context (entity kind, id, offending field)
// for a caller to act on it.
type Error struct {
	Kind    Kind
	Entity  string
	ID      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Extensions is picked up by the GraphQL executor and rendered under "extensions".
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Kind.String()}
	if e.Entity != "" {
		ext["entity"] = e.Entity
	}
	if e.ID != "" {
		ext["id"] = e.ID
	}
	if e.Field != "" {
		ext["field"] = e.Field
	}
	return ext
}

func defaultMessage(e *Error) string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
	case KindInvalidInput:
		if e.Field != "" {
			return fmt.Sprintf("invalid %s field %q", e.Entity, e.Field)
		}
		return fmt.Sprintf("invalid %s input", e.Entity)
	case KindUnauthorized:
		return "authentication required"
	case KindUnavailable:
		return fmt.Sprintf("%s store unavailable", e.Entity)
	default:
		return fmt.Sprintf("%s operation failed", e.Entity)
	}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func Invalid(entity, field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Entity: entity, Field: field, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Unavailable(entity string, err error) *Error {
	return &Error{Kind: KindUnavailable, Entity: entity, Err: err}
}

func Internal(entity string, err error) *Error {
	return &Error{Kind: KindInternal, Entity: entity, Err: err}
}

// As is errors.As for *Error.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsInvalid(err error) bool {
	return err != nil && KindOf(err) == KindInvalidInput
}

func IsUnavailable(err error) bool {
	return err != nil && KindOf(err) == KindUnavailable
}

func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}
