// internal/domain/sentiment/analyzer.go

package sentiment

import (
	"context"
	"time"
)

// Analyzer runs the end-to-end sentiment analysis for a query
type Analyzer interface {
	// Analyze resolves the player, collects and scores posts and summarizes them
	Analyze(ctx context.Context, req AnalyzeRequest) (Result, error)
}

// SearchProvider fetches one raw page of search results
type SearchProvider interface {
	// Search returns the undecoded page body for q
	Search(ctx context.Context, q SearchQuery) ([]byte, error)
}

// Classifier labels a text with a sentiment class and a confidence in [0,1]
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// Store persists players, posts and their scores
type Store interface {
	// UpsertPlayer returns the id of the player with the given normalized name,
	// inserting it first when it does not exist yet
	UpsertPlayer(ctx context.Context, name, team, position string) (int64, error)

	// AddPostWithScore stores a post and its score atomically and returns the post id
	AddPostWithScore(ctx context.Context, text string, createdAt time.Time, playerID int64, polarity float64) (int64, error)

	// ListScores reads the combined score view for a player
	ListScores(ctx context.Context, playerID int64, limit int) ([]ScoreRow, error)

	// Close releases the underlying connections
	Close() error
}
