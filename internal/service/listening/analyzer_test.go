package listening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

var testMahomes = player.Player{
	Name:      "Patrick Mahomes",
	Team:      "Kansas City Chiefs",
	Position:  "QB",
	Nicknames: []string{"Mahomes"},
}

type analyzerFixture struct {
	resolver  *mapResolver
	provider  *scriptedProvider
	store     *memoryStore
	publisher *recordingPublisher
	analyzer  *Analyzer
}

func newAnalyzerFixture(pages []pageResponse, classifier sentiment.Classifier, config AnalyzerConfig) *analyzerFixture {
	f := &analyzerFixture{
		resolver:  &mapResolver{players: map[string]player.Player{"Mahomes": testMahomes}},
		provider:  &scriptedProvider{pages: pages},
		store:     newMemoryStore(),
		publisher: &recordingPublisher{},
	}
	f.analyzer = NewAnalyzer(
		f.resolver,
		f.store,
		NewPager(f.provider, DefaultExtractor(), PagerConfig{}, nil),
		NewScorer(classifier),
		f.publisher,
		config,
		nil,
	)
	return f
}

func TestAnalyze(t *testing.T) {
	pages := []pageResponse{
		{body: `{"timeline":[{"text":"great game"},{"text":"bad pick"},{"text":"what a throw"},{"text":"unused"}],"next_cursor":"c1"}`},
	}
	f := newAnalyzerFixture(pages, keywordClassifier{}, AnalyzerConfig{})

	result, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, "Patrick Mahomes", result.Player.Name)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Summary.Count)
	assert.Equal(t, 2, result.Summary.Positive)
	assert.Equal(t, 1, result.Summary.Negative)
	assert.Equal(t, 0, result.Summary.Neutral)
	assert.InDelta(t, (0.9-0.8+0.9)/3, result.Summary.Mean, 1e-9)

	assert.Len(t, f.store.posts, 3, "Expected one stored post per analyzed item")
	for _, post := range f.store.posts {
		assert.Equal(t, result.PlayerID, post.playerID)
	}
	assert.Equal(t, "Patrick Mahomes", f.provider.queries[0].Query, "Expected search by canonical name")
	assert.Equal(t, "Top", f.provider.queries[0].Mode, "Expected default search mode")

	require.Len(t, f.publisher.subjects, 1)
	assert.Equal(t, "analysis.completed", f.publisher.subjects[0])

	var event sentiment.AnalysisEvent
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &event))
	assert.Equal(t, result.RunID, event.RunID)
	assert.Equal(t, "Patrick Mahomes", event.Player)
	assert.Equal(t, 3, event.Summary.Count)
}

func TestAnalyzeNoContent(t *testing.T) {
	f := newAnalyzerFixture([]pageResponse{{body: `{"tweets":[]}`}}, keywordClassifier{}, AnalyzerConfig{})

	_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 5})
	assert.ErrorIs(t, err, sentiment.ErrNoContent)
	assert.Len(t, f.store.players, 1, "Expected player to remain stored")
	assert.Empty(t, f.store.posts)
	assert.Empty(t, f.publisher.subjects, "Expected no event for an empty run")
}

func TestAnalyzeQueryVariants(t *testing.T) {
	t.Run("Title case retry", func(t *testing.T) {
		f := newAnalyzerFixture([]pageResponse{{body: `[{"text":"ok"}]`}}, keywordClassifier{}, AnalyzerConfig{})
		f.resolver.players = map[string]player.Player{"Patrick Mahomes": testMahomes}

		result, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "  patrick mahomes ", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, "Patrick Mahomes", result.Player.Name)
		assert.Equal(t, []string{"patrick mahomes", "Patrick Mahomes"}, f.resolver.queries)
	})

	t.Run("Upper case retry", func(t *testing.T) {
		f := newAnalyzerFixture([]pageResponse{{body: `[{"text":"ok"}]`}}, keywordClassifier{}, AnalyzerConfig{})
		f.resolver.players = map[string]player.Player{"CMC": {Name: "Christian McCaffrey", Team: "San Francisco 49ers", Position: "RB"}}

		result, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "cmc", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, "Christian McCaffrey", result.Player.Name)
		assert.Equal(t, []string{"cmc", "Cmc", "CMC"}, f.resolver.queries)
	})

	t.Run("All variants fail", func(t *testing.T) {
		f := newAnalyzerFixture(nil, keywordClassifier{}, AnalyzerConfig{})

		_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "nobody", Limit: 10})
		assert.ErrorIs(t, err, player.ErrNotFound)
		assert.Empty(t, f.store.upsertSeen, "Expected nothing stored for unknown players")
		assert.Empty(t, f.provider.queries)
	})

	t.Run("Non not-found error is not retried", func(t *testing.T) {
		f := newAnalyzerFixture(nil, keywordClassifier{}, AnalyzerConfig{})
		f.resolver.err = errors.New("disk full")

		_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "nobody", Limit: 10})
		require.Error(t, err)
		assert.Len(t, f.resolver.queries, 1)
	})
}

func TestAnalyzeLimits(t *testing.T) {
	body := `{"tweets":[{"text":"1"},{"text":"2"},{"text":"3"},{"text":"4"},{"text":"5"},{"text":"6"},{"text":"7"},{"text":"8"},{"text":"9"},{"text":"10"},{"text":"11"},{"text":"12"}]}`

	for _, limit := range []int{0, -3} {
		t.Run(fmt.Sprintf("Limit %d analyzes nothing", limit), func(t *testing.T) {
			f := newAnalyzerFixture([]pageResponse{{body: body}}, keywordClassifier{}, AnalyzerConfig{})

			_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: limit})
			assert.ErrorIs(t, err, sentiment.ErrNoContent)
			assert.Len(t, f.store.players, 1, "Expected player to be stored before collection")
			assert.Empty(t, f.provider.queries, "Expected no search request")
			assert.Empty(t, f.store.posts)
		})
	}

	t.Run("Capped limit", func(t *testing.T) {
		f := newAnalyzerFixture([]pageResponse{{body: body}}, keywordClassifier{}, AnalyzerConfig{MaxLimit: 4})

		result, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, 4, result.Summary.Count)
	})
}

func TestAnalyzeFailures(t *testing.T) {
	page := []pageResponse{{body: `[{"text":"one"},{"text":"two"}]`}}

	t.Run("Classifier failure is fatal", func(t *testing.T) {
		boom := errors.New("model crashed")
		f := newAnalyzerFixture(page, keywordClassifier{err: boom}, AnalyzerConfig{})

		_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 10})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.store.posts)
	})

	t.Run("Storage failure is fatal", func(t *testing.T) {
		boom := errors.New("constraint violated")
		f := newAnalyzerFixture(page, keywordClassifier{}, AnalyzerConfig{})
		f.store.postErr = boom

		_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 10})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentiment.ErrNoContent)
	})

	t.Run("Player storage failure", func(t *testing.T) {
		boom := errors.New("db down")
		f := newAnalyzerFixture(page, keywordClassifier{}, AnalyzerConfig{})
		f.store.upsertErr = boom

		_, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 10})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.provider.queries, "Expected no search before the player is stored")
	})

	t.Run("Publish failure does not fail the analysis", func(t *testing.T) {
		f := newAnalyzerFixture(page, keywordClassifier{}, AnalyzerConfig{EventsTopic: "nfl"})
		f.publisher.err = errors.New("nats down")

		result, err := f.analyzer.Analyze(context.Background(), sentiment.AnalyzeRequest{Query: "Mahomes", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Count)
	})
}
