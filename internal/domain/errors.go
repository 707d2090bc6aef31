package domain

import (
	"errors"
	"fmt"
)

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

// ErrNoCopy is returned by an update against a store holding no prior copy.
var ErrNoCopy = errors.New("no existing copy in target store")

// ErrUnsupportedTransition is returned for visibility changes that are not implemented.
var ErrUnsupportedTransition = errors.New("unsupported publish transition")

// InvalidInputError reports a missing or unusable request field.
type InvalidInputError struct {
	Field string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Field)
}
