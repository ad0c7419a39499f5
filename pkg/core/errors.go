package core

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the message text is not part
// of the contract.
var (
	// ErrNotFound is returned when a single-result lookup has no match.
	ErrNotFound = errors.New("dom: not found")

	// ErrAmbiguous is returned when a lookup contracted to return at most one
	// entity matches several.
	ErrAmbiguous = errors.New("dom: ambiguous match")

	// ErrInvalidState is returned when a status transition is attempted from a
	// status other than its source status.
	ErrInvalidState = errors.New("dom: invalid state")

	// ErrInvalidArgument signals a caller contract violation (missing or empty input).
	ErrInvalidArgument = errors.New("dom: invalid argument")

	// ErrUnsupported is returned for filter shapes, attributes or request kinds
	// the receiver does not recognize.
	ErrUnsupported = errors.New("dom: unsupported operation")
)

// NotFoundError describes which prerequisite of a lookup was missing.
type NotFoundError struct {
	Entity EntityType
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguousError reports a single-result lookup that matched Count entities.
type AmbiguousError struct {
	Entity EntityType
	Key    string
	Count  int
}

func (e *AmbiguousError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("%s %q is ambiguous: %d matches", e.Entity, e.Key, e.Count)
	}
	return fmt.Sprintf("%s %q is ambiguous", e.Entity, e.Key)
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// InvalidStateError reports a transition whose source status does not match
// the current status of the instance.
type InvalidStateError struct {
	InstanceID   ID
	TransitionID string
	Expected     string
	Actual       string
}

func (e *InvalidStateError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "<none>"
	}
	return fmt.Sprintf("instance %s: transition %q requires status %q, has %q",
		e.InstanceID, e.TransitionID, e.Expected, actual)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func notFound(entity EntityType, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}
