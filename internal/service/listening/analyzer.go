// internal/service/listening/analyzer.go

package listening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
	"playerpulse/internal/metrics"
)

// Publisher publishes analysis events. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// AnalyzerConfig contains configuration for the analyzer
type AnalyzerConfig struct {
	MaxLimit          int
	DefaultSearchMode string
	EventsTopic       string
}

// Analyzer implements the sentiment.Analyzer interface
type Analyzer struct {
	resolver  player.Resolver
	store     sentiment.Store
	pager     *Pager
	scorer    *Scorer
	publisher Publisher
	config    AnalyzerConfig
	logger    *slog.Logger
}

// NewAnalyzer creates a new analyzer. publisher may be nil, in which case no
// events are emitted.
func NewAnalyzer(
	resolver player.Resolver,
	store sentiment.Store,
	pager *Pager,
	scorer *Scorer,
	publisher Publisher,
	config AnalyzerConfig,
	logger *slog.Logger,
) *Analyzer {
	if config.DefaultSearchMode == "" {
		config.DefaultSearchMode = "Top"
	}
	if config.EventsTopic == "" {
		config.EventsTopic = "analysis"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		resolver:  resolver,
		store:     store,
		pager:     pager,
		scorer:    scorer,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Analyze resolves the player behind req.Query, scores up to req.Limit posts
// about them and returns the summary. The player is stored before any post,
// so it remains stored even when no content is found. A non-positive limit
// collects nothing and ends in ErrNoContent.
func (a *Analyzer) Analyze(ctx context.Context, req sentiment.AnalyzeRequest) (sentiment.Result, error) {
	start := time.Now()
	result, err := a.analyze(ctx, req)

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(outcome(err)).Inc()

	return result, err
}

func (a *Analyzer) analyze(ctx context.Context, req sentiment.AnalyzeRequest) (sentiment.Result, error) {
	req = a.normalize(req)
	log := a.logger.With(slog.String("query", req.Query))

	p, err := a.resolve(ctx, req.Query)
	if err != nil {
		log.Info("Could not resolve player", slog.Any("error", err))
		return sentiment.Result{}, err
	}

	playerID, err := a.store.UpsertPlayer(ctx, p.Name, p.Team, p.Position)
	if err != nil {
		return sentiment.Result{}, fmt.Errorf("error storing player: %w", err)
	}

	runID := uuid.New().String()
	log = log.With(slog.String("player", p.Name), slog.String("run_id", runID))
	log.Info("Starting sentiment analysis",
		slog.Int("limit", req.Limit),
		slog.String("phrase", req.Phrase),
		slog.String("search_mode", req.SearchMode),
	)

	var agg Aggregator
	stats, err := a.pager.Fetch(ctx, sentiment.FetchRequest{
		Query:      p.Name,
		Phrase:     req.Phrase,
		Limit:      req.Limit,
		SearchMode: req.SearchMode,
	}, func(item sentiment.Item) error {
		polarity, err := a.scorer.Score(ctx, item.Text)
		if err != nil {
			return err
		}

		if _, err := a.store.AddPostWithScore(ctx, item.Text, item.CreatedAt, playerID, polarity); err != nil {
			return fmt.Errorf("error storing post: %w", err)
		}

		agg.Add(polarity)
		metrics.PostsAnalyzedTotal.Inc()
		log.Debug("Scored post", slog.String("text", item.Text), slog.Float64("polarity", polarity))
		return nil
	})
	if err != nil {
		return sentiment.Result{}, err
	}

	summary, ok := agg.Summary()
	if !ok {
		log.Info("No posts found",
			slog.String("phrase", req.Phrase),
			slog.Int("pages", stats.Pages),
			slog.Bool("stopped_early", stats.StoppedEarly),
		)
		return sentiment.Result{}, sentiment.ErrNoContent
	}

	result := sentiment.Result{
		RunID:    runID,
		Player:   p,
		PlayerID: playerID,
		Summary:  summary,
		Stats:    stats,
	}

	log.Info("Sentiment analysis complete",
		slog.Int("analyzed", summary.Count),
		slog.Float64("average_polarity", summary.Mean),
		slog.Int("positive", summary.Positive),
		slog.Int("negative", summary.Negative),
		slog.Int("neutral", summary.Neutral),
	)

	a.publishCompleted(req, result)

	return result, nil
}

// resolve tries the query as typed, then title-cased, then upper-cased
func (a *Analyzer) resolve(ctx context.Context, query string) (player.Player, error) {
	lastErr := player.ErrNotFound

	for _, variant := range queryVariants(query) {
		p, err := a.resolver.Resolve(ctx, variant)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, player.ErrNotFound) {
			return player.Player{}, err
		}
		lastErr = err
	}

	return player.Player{}, lastErr
}

func (a *Analyzer) normalize(req sentiment.AnalyzeRequest) sentiment.AnalyzeRequest {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit < 0 {
		req.Limit = 0
	}
	if a.config.MaxLimit > 0 && req.Limit > a.config.MaxLimit {
		req.Limit = a.config.MaxLimit
	}
	if strings.TrimSpace(req.SearchMode) == "" {
		req.SearchMode = a.config.DefaultSearchMode
	}
	return req
}

// publishCompleted emits an analysis.completed event. Failures are logged
// and never fail the analysis.
func (a *Analyzer) publishCompleted(req sentiment.AnalyzeRequest, result sentiment.Result) {
	if a.publisher == nil {
		return
	}

	data, err := json.Marshal(sentiment.AnalysisEvent{
		RunID:    result.RunID,
		Player:   result.Player.Name,
		Query:    req.Query,
		Phrase:   req.Phrase,
		Summary:  result.Summary,
		Complete: time.Now().UTC(),
	})
	if err != nil {
		metrics.EventPublishErrors.Inc()
		a.logger.Error("Failed to encode analysis event", slog.Any("error", err))
		return
	}

	subject := fmt.Sprintf("%s.completed", a.config.EventsTopic)
	if err := a.publisher.Publish(subject, data); err != nil {
		metrics.EventPublishErrors.Inc()
		a.logger.Warn("Failed to publish analysis event",
			slog.String("subject", subject),
			slog.Any("error", err),
		)
	}
}

func queryVariants(query string) []string {
	variants := []string{
		query,
		cases.Title(language.English).String(query),
		strings.ToUpper(query),
	}

	out := variants[:0]
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, player.ErrNotFound):
		return "player_not_found"
	case errors.Is(err, sentiment.ErrNoContent):
		return "no_content"
	default:
		return "error"
	}
}
