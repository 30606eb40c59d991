package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// UnauthorizedError represents an operation attempted by a non-owner.
type UnauthorizedError struct {
	Resource string
}

func (e UnauthorizedError) Error() string {
	if e.Resource == "" {
		return "not authorized"
	}
	return fmt.Sprintf("not authorized for %s", e.Resource)
}

// Is enables errors.Is matching on UnauthorizedError.
func (e UnauthorizedError) Is(target error) bool {
	_, ok := target.(UnauthorizedError)
	if ok {
		return true
	}
	_, ok = target.(*UnauthorizedError)
	return ok
}

// ErrUnauthorized is the sentinel error for ownership violations.
var ErrUnauthorized = UnauthorizedError{}

// ValidationError represents rejected input.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}
