package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports bad user input. It blocks the next step only.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// LookupError is an external geocoding or directions failure, including an
// empty result.
type LookupError struct {
	Op  string
	Msg string
	Err error
}

func (e LookupError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Op != "" {
		return fmt.Sprintf("%s lookup failed", e.Op)
	}
	return "lookup failed"
}

func (e LookupError) Unwrap() error { return e.Err }

// CaptchaMismatchError means the typed challenge did not match. The caller
// always receives a new challenge alongside it.
type CaptchaMismatchError struct{}

func (CaptchaMismatchError) Error() string { return "captcha: does not match" }

// AuthorizationError covers both a missing identity and acting on someone
// else's resource.
type AuthorizationError struct {
	Msg             string
	Unauthenticated bool
}

func (e AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Unauthenticated {
		return "please login first"
	}
	return "forbidden"
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("failed to %s", e.Op)
	}
	return "storage error"
}

func (e PersistenceError) Unwrap() error { return e.Err }

// ErrUnauthenticated is returned when no identity is attached to the call.
var ErrUnauthenticated = AuthorizationError{Unauthenticated: true}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsLookup(err error) bool {
	var target LookupError
	return errors.As(err, &target)
}

func IsCaptchaMismatch(err error) bool {
	var target CaptchaMismatchError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

// IsUnauthenticated reports an AuthorizationError caused by a missing identity.
func IsUnauthenticated(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target) && target.Unauthenticated
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}
