// internal/server/handlers/sentiment.go

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

const welcomeMessage = "Welcome to the Twitter Sentiment Analysis API. Use the /analyze_sentiment endpoint to analyze player sentiment."

// maxRequestBody bounds the size of an analyze request body
const maxRequestBody = 1 << 20

// SentimentHandler handles sentiment analysis requests
type SentimentHandler struct {
	analyzer     sentiment.Analyzer
	defaultLimit int
	logger       *slog.Logger
}

// AnalyzeRequest is the body of POST /analyze_sentiment
type AnalyzeRequest struct {
	UserNameQuery string `json:"user_name_query"`
	PhraseFilter  string `json:"phrase_filter"`
	TweetsRun     *int   `json:"tweets_run"`
}

// AnalyzeResponse is the body of a successful analysis
type AnalyzeResponse struct {
	PlayerName      string  `json:"player_name"`
	TweetsAnalyzed  int     `json:"tweets_analyzed"`
	AveragePolarity float64 `json:"average_polarity"`
	Positive        int     `json:"positive"`
	Negative        int     `json:"negative"`
	Neutral         int     `json:"neutral"`
}

// NewSentimentHandler creates a new sentiment handler. defaultLimit is used
// when a request omits tweets_run.
func NewSentimentHandler(analyzer sentiment.Analyzer, defaultLimit int, logger *slog.Logger) *SentimentHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SentimentHandler{
		analyzer:     analyzer,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Welcome handles GET /
func (h *SentimentHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

// AnalyzeSentiment handles POST /analyze_sentiment
func (h *SentimentHandler) AnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.UserNameQuery)
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "user_name_query is required")
		return
	}

	log := h.logger.With(
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("query", query),
	)
	log.Info("Received request to analyze sentiment")

	// An explicit zero or negative tweets_run analyzes nothing
	limit := h.defaultLimit
	if req.TweetsRun != nil {
		limit = *req.TweetsRun
	}

	result, err := h.analyzer.Analyze(r.Context(), sentiment.AnalyzeRequest{
		Query:  query,
		Phrase: req.PhraseFilter,
		Limit:  limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, player.ErrNotFound):
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Could not find player: %s", req.UserNameQuery))
		case errors.Is(err, sentiment.ErrNoContent):
			respondWithError(w, http.StatusNotFound, "Sentiment analysis failed. No tweets found for specified player.")
		default:
			log.Error("Sentiment analysis failed", slog.Any("error", err))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, AnalyzeResponse{
		PlayerName:      result.Player.Name,
		TweetsAnalyzed:  result.Summary.Count,
		AveragePolarity: result.Summary.Mean,
		Positive:        result.Summary.Positive,
		Negative:        result.Summary.Negative,
		Neutral:         result.Summary.Neutral,
	})
}
