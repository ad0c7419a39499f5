package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the opaque 128-bit identity shared by every entity type.
type ID = uuid.UUID

// EmptyID is the zero identity. It never names a stored entity.
var EmptyID = uuid.Nil

// NewID returns a fresh random identity.
func NewID() ID {
	return uuid.New()
}

// ParseID parses the canonical textual form of an identity.
func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EmptyID, fmt.Errorf("%w: invalid id %q: %v", ErrInvalidArgument, s, err)
	}
	return id, nil
}

// MustParseID is like ParseID but panics on malformed input.
// Intended for fixtures and tests.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}
