package utils

import "github.com/google/uuid"

// GenerateID returns a prefixed unique identifier, e.g. "listing-<uuid>".
// Identifiers are never reused.
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
