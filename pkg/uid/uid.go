// Package uid produces the correlation ids attached to every HTTP request.
package uid

import "github.com/google/uuid"

const canonicalLen = 36

// New returns a random UUID in canonical form.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether id is a UUID in canonical 8-4-4-4-12 form.
// Braced, URN and unhyphenated forms are rejected so that the id echoed in
// X-Request-ID always has one shape.
func IsValid(id string) bool {
	if len(id) != canonicalLen {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
