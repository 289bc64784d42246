package valueobjects

import (
	"fmt"

	"github.com/google/uuid"
)

// RepositoryId is the opaque 128-bit identity of a repository aggregate.
// Equality is by value; once constructed it never changes.
type RepositoryId struct {
	id uuid.UUID
}

// NewRepositoryId creates a fresh, random repository identity.
func NewRepositoryId() RepositoryId {
	return RepositoryId{id: uuid.New()}
}

// ParseRepositoryId parses a canonical UUID string into a RepositoryId.
func ParseRepositoryId(s string) (RepositoryId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RepositoryId{}, fmt.Errorf("%w: invalid repository id %q: %v", ErrValidation, s, err)
	}
	return RepositoryId{id: id}, nil
}

// String renders the canonical lowercase-hex-with-dashes form.
func (r RepositoryId) String() string {
	return r.id.String()
}

// IsZero reports whether this is the zero-value RepositoryId (never
// produced by NewRepositoryId, useful for detecting an unset field).
func (r RepositoryId) IsZero() bool {
	return r.id == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so RepositoryId can be used
// directly as a JSON string and as a map key.
func (r RepositoryId) MarshalText() ([]byte, error) {
	return []byte(r.id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RepositoryId) UnmarshalText(text []byte) error {
	id, err := uuid.Parse(string(text))
	if err != nil {
		return fmt.Errorf("%w: invalid repository id %q: %v", ErrValidation, string(text), err)
	}
	r.id = id
	return nil
}
