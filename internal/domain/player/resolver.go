// internal/domain/player/resolver.go

package player

import (
	"context"
)

// Resolver turns a free-text query into a canonical player
type Resolver interface {
	// Resolve returns the canonical player for query or ErrNotFound
	Resolve(ctx context.Context, query string) (Player, error)
}

// Oracle identifies a player from free text when local lookup fails
type Oracle interface {
	// Identify returns a candidate player for query, using known as context.
	// It returns ErrNotFound when the oracle cannot identify anyone and
	// ErrMalformedOracleResponse when the reply cannot be parsed.
	Identify(ctx context.Context, query string, known []Player) (Player, error)
}

// Confirmer decides whether an oracle candidate is accepted into the knowledge base
type Confirmer interface {
	Confirm(ctx context.Context, candidate Player) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, candidate Player) (bool, error)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, candidate Player) (bool, error) {
	return f(ctx, candidate)
}
