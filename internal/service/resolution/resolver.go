// internal/service/resolution/resolver.go

package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/metrics"
)

// Resolver implements the player.Resolver interface. It tries the alias map,
// then substring matching against canonical names, then the oracle.
type Resolver struct {
	kb        *KnowledgeBase
	oracle    player.Oracle
	confirmer player.Confirmer
	logger    *slog.Logger
}

// NewResolver creates a new resolver. A nil confirmer accepts every candidate
// and a nil oracle disables the oracle fallback.
func NewResolver(kb *KnowledgeBase, oracle player.Oracle, confirmer player.Confirmer, logger *slog.Logger) *Resolver {
	if confirmer == nil {
		confirmer = AcceptAll
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics.KnowledgeBasePlayers.Set(float64(kb.Len()))

	return &Resolver{
		kb:        kb,
		oracle:    oracle,
		confirmer: confirmer,
		logger:    logger,
	}
}

// Resolve returns the canonical player for query
func (r *Resolver) Resolve(ctx context.Context, query string) (player.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return player.Player{}, player.ErrNotFound
	}

	log := r.logger.With(slog.String("query", query))

	if p, ok := r.kb.Lookup(query); ok {
		metrics.ResolutionsTotal.WithLabelValues("alias", "hit").Inc()
		log.Debug("Resolved player from alias", slog.String("player", p.Name))
		return p, nil
	}

	if p, ok := r.kb.MatchSubstring(query); ok {
		metrics.ResolutionsTotal.WithLabelValues("substring", "hit").Inc()
		log.Debug("Resolved player from partial name", slog.String("player", p.Name))
		return p, nil
	}

	if r.oracle == nil {
		metrics.ResolutionsTotal.WithLabelValues("oracle", "disabled").Inc()
		return player.Player{}, player.ErrNotFound
	}

	candidate, err := r.oracle.Identify(ctx, query, r.kb.Snapshot())
	if err != nil {
		switch {
		case errors.Is(err, player.ErrMalformedOracleResponse):
			metrics.ResolutionsTotal.WithLabelValues("oracle", "malformed").Inc()
			log.Warn("Oracle returned a malformed response", slog.Any("error", err))
			return player.Player{}, fmt.Errorf("%w: %w", player.ErrNotFound, err)
		case errors.Is(err, player.ErrNotFound):
			metrics.ResolutionsTotal.WithLabelValues("oracle", "miss").Inc()
			log.Info("Oracle could not identify player")
			return player.Player{}, err
		default:
			metrics.ResolutionsTotal.WithLabelValues("oracle", "error").Inc()
			log.Error("Oracle request failed", slog.Any("error", err))
			return player.Player{}, fmt.Errorf("%w: oracle: %w", player.ErrNotFound, err)
		}
	}

	confirmed, err := r.confirmer.Confirm(ctx, candidate)
	if err != nil {
		return player.Player{}, fmt.Errorf("error confirming player: %w", err)
	}
	if !confirmed {
		metrics.ResolutionsTotal.WithLabelValues("oracle", "rejected").Inc()
		log.Info("Player not confirmed", slog.String("candidate", candidate.Name))
		return player.Player{}, player.ErrNotFound
	}

	stored, err := r.kb.Add(candidate)
	if errors.Is(err, player.ErrDuplicatePlayer) {
		// The existing record wins; only the new nicknames are attached to it
		log.Warn("Player already exists in knowledge base", slog.String("player", stored.Name))
		added, aliasErr := r.kb.AddAliases(stored.Name, candidate.Nicknames)
		if aliasErr != nil {
			return player.Player{}, aliasErr
		}
		if added > 0 {
			stored, _ = r.kb.Get(stored.Name)
		}
		metrics.ResolutionsTotal.WithLabelValues("oracle", "existing").Inc()
		return stored, nil
	}
	if err != nil {
		return player.Player{}, err
	}

	metrics.ResolutionsTotal.WithLabelValues("oracle", "hit").Inc()
	metrics.KnowledgeBasePlayers.Set(float64(r.kb.Len()))
	log.Info("Added player to knowledge base",
		slog.String("player", stored.Name),
		slog.String("team", stored.Team),
		slog.String("position", stored.Position),
	)

	return stored, nil
}
