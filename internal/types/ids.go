package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a single request through the pipeline. It rides along on
// answers and log lines so a response can be correlated with the server
// and pipeline records that produced it. The underlying string is a
// canonical UUID, which also makes the type marshal as a plain JSON
// string.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID validates s as a UUID and returns it in canonical form. Used
// to vet request IDs supplied by callers before trusting them.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid request id %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

// String returns the ID as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id == ""
}
