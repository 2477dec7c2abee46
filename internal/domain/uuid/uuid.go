// Package uuid provides the identifier type used for users and threads.
package uuid

import (
	"github.com/google/uuid"
)

// UUID is a string-backed identifier. The zero value means "absent".
type UUID string

// MustParseUUID parses s or panics.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewUUID generates a random identifier.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID validates s and returns it as a UUID.
func ParseUUID(s string) (UUID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return UUID(s), nil
}

// String returns the canonical textual form.
func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the identifier is unset.
func (u UUID) IsZero() bool {
	return u == ""
}

// Strings converts a slice of identifiers for use in store filters.
func Strings(ids []UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
