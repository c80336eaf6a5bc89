// Package uuidutil parses and generates the UUID identifiers used as row ids.
package uuidutil

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseString parses common UUID string formats and returns a normalized lower-case UUID.
func ParseString(raw string) (uuid.UUID, string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid UUID value")
	}
	return parsed, strings.ToLower(parsed.String()), nil
}

// Valid reports whether raw parses as a UUID.
func Valid(raw string) bool {
	_, _, err := ParseString(raw)
	return err == nil
}

// NewID returns a new random (version 4) id in canonical form.
func NewID() string {
	return uuid.NewString()
}
