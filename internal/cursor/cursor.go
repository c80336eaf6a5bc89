// Package cursor encodes and decodes Relay-style connection cursors.
// A cursor is the base64 encoding of a row id, optionally prefixed with
// "cursor:" before encoding. Clients must treat cursors as opaque.
package cursor

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Prefix marks the prefixed cursor form.
const Prefix = "cursor:"

// Encoder turns a row id into a cursor.
type Encoder func(id string) string

// Encode returns base64(id).
func Encode(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(id))
}

// EncodePrefixed returns base64("cursor:" + id).
func EncodePrefixed(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(Prefix + id))
}

// Decode returns the row id carried by a cursor in either form.
func Decode(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("invalid cursor: empty")
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(raw)
		if rawErr != nil {
			return "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	id := strings.TrimPrefix(string(data), Prefix)
	if id == "" {
		return "", fmt.Errorf("invalid cursor: missing id")
	}
	return id, nil
}
