// Package uuid provides UUID v7 generation.
// UUID v7 is sortable by timestamp (better for database indexes than v4).
package uuid

import guuid "github.com/google/uuid"

// UUID is a RFC 9562 identifier.
type UUID = guuid.UUID

// NewV7 generates a new UUID v7.
// Falls back to a random v4 if the clock-based generator fails.
func NewV7() UUID {
	u, err := guuid.NewV7()
	if err != nil {
		return guuid.New()
	}
	return u
}

// Parse decodes s into a UUID. Accepts the canonical 36-char form.
func Parse(s string) (UUID, error) {
	return guuid.Parse(s)
}

// IsValid reports whether s is a well-formed UUID string.
func IsValid(s string) bool {
	_, err := guuid.Parse(s)
	return err == nil
}
