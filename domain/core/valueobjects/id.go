package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// ID identifies a stored document: a reference entity, recipe or pairing.
type ID string

// NewID creates a new random ID
func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID validates an externally supplied identifier.
func ParseID(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", false
	}
	return ID(s), true
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is the zero value
func (id ID) IsZero() bool {
	return id == ""
}

// IDSet is a membership set of ids.
type IDSet map[ID]struct{}

// Add inserts id into the set.
func (s IDSet) Add(id ID) {
	s[id] = struct{}{}
}

// Has reports whether id is a member.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}
