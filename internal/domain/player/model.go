// internal/domain/player/model.go

package player

import (
	"errors"
	"strings"
)

// Player is the canonical record for a tracked athlete. The JSON shape is the
// knowledge-base file format.
type Player struct {
	Name      string   `json:"name"`
	Team      string   `json:"team"`
	Position  string   `json:"position"`
	Nicknames []string `json:"nicknames"`
}

// Key returns the normalized canonical name used for uniqueness checks
func (p Player) Key() string {
	return Normalize(p.Name)
}

// Valid reports whether the record carries the fields required to store it
func (p Player) Valid() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Team) != "" &&
		strings.TrimSpace(p.Position) != ""
}

// Normalize lowercases and trims a name or alias.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Common errors
var (
	// ErrNotFound is returned when every resolution strategy failed
	ErrNotFound = errors.New("player not found")

	// ErrMalformedOracleResponse is returned when the oracle reply is not the expected JSON
	ErrMalformedOracleResponse = errors.New("malformed oracle response")

	// ErrDuplicatePlayer is returned when adding a canonical name that already exists
	ErrDuplicatePlayer = errors.New("player already exists")
)
