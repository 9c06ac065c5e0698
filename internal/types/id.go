package types

import "github.com/google/uuid"

// ID is an opaque entity identifier, wire-compatible with the source system's
// UUID primary keys.
type ID string

// NewID mints a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}
