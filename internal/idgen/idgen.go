// Package idgen generates the short, URL-safe identifiers attached to catalog
// events and HTTP requests.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// EventPrefix marks identifiers of audit events.
	EventPrefix = "ev-"

	// RequestPrefix marks identifiers assigned to incoming HTTP requests.
	RequestPrefix = "req-"
)

// alphabet is the character set of the random part.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters after the prefix.
const Length = 12

// EventID returns a new event identifier.
func EventID() (string, error) {
	return New(EventPrefix)
}

// RequestID returns a new request identifier. It never fails: if the random
// source is unavailable the bare prefix is returned.
func RequestID() string {
	id, err := New(RequestPrefix)
	if err != nil {
		return RequestPrefix
	}
	return id
}

// New returns prefix followed by Length random characters.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
