package listening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

// pageResponse is one scripted reply of the fake provider
type pageResponse struct {
	body string
	err  error
}

// scriptedProvider replies with pages in order and records the queries
type scriptedProvider struct {
	mu      sync.Mutex
	pages   []pageResponse
	queries []sentiment.SearchQuery
}

func (s *scriptedProvider) Search(ctx context.Context, q sentiment.SearchQuery) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, q)
	if len(s.queries) > len(s.pages) {
		return []byte(`{"tweets":[]}`), nil
	}
	page := s.pages[len(s.queries)-1]
	if page.err != nil {
		return nil, page.err
	}
	return []byte(page.body), nil
}

// keywordClassifier labels texts containing "bad" as negative
type keywordClassifier struct {
	err error
}

func (k keywordClassifier) Classify(ctx context.Context, text string) (sentiment.Label, error) {
	if k.err != nil {
		return sentiment.Label{}, k.err
	}
	if strings.Contains(strings.ToLower(text), "bad") {
		return sentiment.Label{Name: "negative", Confidence: 0.8}, nil
	}
	return sentiment.Label{Name: "positive", Confidence: 0.9}, nil
}

type storedPost struct {
	id        int64
	text      string
	createdAt time.Time
	playerID  int64
	polarity  float64
}

// memoryStore is an in-memory sentiment.Store
type memoryStore struct {
	mu         sync.Mutex
	players    map[string]int64
	posts      []storedPost
	nextID     int64
	postErr    error
	upsertErr  error
	upsertSeen []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{players: make(map[string]int64)}
}

func (m *memoryStore) UpsertPlayer(ctx context.Context, name, team, position string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.upsertSeen = append(m.upsertSeen, name)
	key := player.Normalize(name)
	if id, ok := m.players[key]; ok {
		return id, nil
	}
	m.nextID++
	m.players[key] = m.nextID
	return m.nextID, nil
}

func (m *memoryStore) AddPostWithScore(ctx context.Context, text string, createdAt time.Time, playerID int64, polarity float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.postErr != nil {
		return 0, m.postErr
	}
	m.nextID++
	m.posts = append(m.posts, storedPost{m.nextID, text, createdAt, playerID, polarity})
	return m.nextID, nil
}

func (m *memoryStore) ListScores(ctx context.Context, playerID int64, limit int) ([]sentiment.ScoreRow, error) {
	return nil, errors.New("not implemented")
}

func (m *memoryStore) Close() error {
	return nil
}

// mapResolver resolves exact queries from a map
type mapResolver struct {
	players map[string]player.Player
	err     error
	queries []string
}

func (r *mapResolver) Resolve(ctx context.Context, query string) (player.Player, error) {
	r.queries = append(r.queries, query)
	if r.err != nil {
		return player.Player{}, r.err
	}
	if p, ok := r.players[query]; ok {
		return p, nil
	}
	return player.Player{}, fmt.Errorf("%w: %s", player.ErrNotFound, query)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Publish(subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}
