// internal/domain/sentiment/model.go

package sentiment

import (
	"errors"
	"time"

	"playerpulse/internal/domain/player"
)

// Bucket thresholds for polarity classification
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// Label is a single classifier output
type Label struct {
	Name       string
	Confidence float64
}

// Item is one usable post collected from a search page
type Item struct {
	Text      string
	CreatedAt time.Time
}

// SearchQuery is a single page request against a search provider
type SearchQuery struct {
	Query  string
	Mode   string
	Cursor string
}

// FetchRequest bounds one paginated collection run
type FetchRequest struct {
	Query      string
	Phrase     string
	Limit      int
	SearchMode string
}

// FetchStats describes how a collection run went
type FetchStats struct {
	Pages        int  `json:"pages"`
	Inspected    int  `json:"inspected"`
	Skipped      int  `json:"skipped"`
	Analyzed     int  `json:"analyzed"`
	StoppedEarly bool `json:"stopped_early"`
}

// Summary aggregates the polarities of one run
type Summary struct {
	Count    int     `json:"tweets_analyzed"`
	Mean     float64 `json:"average_polarity"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
}

// AnalyzeRequest is the input of the end-to-end analysis
type AnalyzeRequest struct {
	Query      string
	Phrase     string
	Limit      int
	SearchMode string
}

// Result is the output of a successful analysis
type Result struct {
	RunID    string
	Player   player.Player
	PlayerID int64
	Summary  Summary
	Stats    FetchStats
}

// AnalysisEvent is published once an analysis completes
type AnalysisEvent struct {
	RunID    string    `json:"run_id"`
	Player   string    `json:"player"`
	Query    string    `json:"query"`
	Phrase   string    `json:"phrase,omitempty"`
	Summary  Summary   `json:"summary"`
	Complete time.Time `json:"completed_at"`
}

// ScoreRow is one row of the combined debug view
type ScoreRow struct {
	PlayerID   int64
	PlayerName string
	PostID     int64
	Text       string
	CreatedAt  time.Time
	Polarity   float64
}

// Common errors
var (
	// ErrNoContent is returned when a run collected zero usable posts
	ErrNoContent = errors.New("no content found")

	// ErrTransport marks a failed page request
	ErrTransport = errors.New("search transport failure")

	// ErrPageParse marks a page body that could not be decoded
	ErrPageParse = errors.New("search page parse failure")
)
