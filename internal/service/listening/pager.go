// internal/service/listening/pager.go

package listening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"playerpulse/internal/domain/sentiment"
	"playerpulse/internal/metrics"
)

// PagerConfig contains configuration for the pager
type PagerConfig struct {
	// MaxPages bounds the number of pages per run; zero means unbounded
	MaxPages int
}

// Pager walks the pages of a search provider and yields usable items
type Pager struct {
	provider  sentiment.SearchProvider
	extractor Extractor
	config    PagerConfig
	logger    *slog.Logger
}

// NewPager creates a new pager
func NewPager(provider sentiment.SearchProvider, extractor Extractor, config PagerConfig, logger *slog.Logger) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{
		provider:  provider,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}
}

// Fetch requests pages until req.Limit items were yielded or the provider
// runs out of pages. Items that are not objects, carry no text or miss the
// phrase filter are skipped and do not count toward the limit.
//
// A failed request or an unparseable page ends the run early with the items
// collected so far; only errors from yield and context cancellation are
// returned.
func (p *Pager) Fetch(ctx context.Context, req sentiment.FetchRequest, yield func(sentiment.Item) error) (sentiment.FetchStats, error) {
	var stats sentiment.FetchStats

	phrase := strings.ToLower(req.Phrase)
	cursor := ""
	log := p.logger.With(slog.String("query", req.Query))

	for stats.Analyzed < req.Limit {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if p.config.MaxPages > 0 && stats.Pages >= p.config.MaxPages {
			log.Warn("Page limit reached", slog.Int("pages", stats.Pages))
			stats.StoppedEarly = true
			break
		}

		raw, err := p.provider.Search(ctx, sentiment.SearchQuery{
			Query:  req.Query,
			Mode:   req.SearchMode,
			Cursor: cursor,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			metrics.SearchPagesTotal.WithLabelValues("transport_error").Inc()
			log.Warn("Search request failed, keeping partial results",
				slog.String("cursor", cursor),
				slog.Int("analyzed", stats.Analyzed),
				slog.Any("error", err),
			)
			stats.StoppedEarly = true
			break
		}

		body, err := decodePage(raw)
		if err != nil {
			metrics.SearchPagesTotal.WithLabelValues("parse_error").Inc()
			log.Warn("Failed to parse search page, keeping partial results",
				slog.String("cursor", cursor),
				slog.Int("analyzed", stats.Analyzed),
				slog.Any("error", err),
			)
			stats.StoppedEarly = true
			break
		}

		stats.Pages++
		metrics.SearchPagesTotal.WithLabelValues("ok").Inc()

		items := p.extractor.Items(body)
		if len(items) == 0 {
			log.Debug("Search page has no items", slog.Int("page", stats.Pages))
			break
		}

		for _, item := range items {
			if stats.Analyzed >= req.Limit {
				break
			}
			stats.Inspected++

			if _, ok := item.(map[string]any); !ok {
				stats.Skipped++
				metrics.PostsSkippedTotal.WithLabelValues("malformed").Inc()
				continue
			}

			text := p.extractor.Text(item)
			if text == "" {
				stats.Skipped++
				metrics.PostsSkippedTotal.WithLabelValues("no_text").Inc()
				continue
			}

			if phrase != "" && !strings.Contains(strings.ToLower(text), phrase) {
				stats.Skipped++
				metrics.PostsSkippedTotal.WithLabelValues("phrase").Inc()
				continue
			}

			if err := yield(sentiment.Item{Text: text, CreatedAt: p.extractor.CreatedAt(item)}); err != nil {
				return stats, err
			}
			stats.Analyzed++
		}

		next, ok := p.extractor.Cursor(body)
		if !ok {
			break
		}
		cursor = next
	}

	return stats, nil
}

func decodePage(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrPageParse, err)
	}
	return body, nil
}
