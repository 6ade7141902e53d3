// internal/adapter/storage/postgres_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

const pgUniqueViolation = "23505"

// PostgresStore implements sentiment.Store on PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// Migrate creates the tables, indexes and the sentiment view
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchemaSQL); err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// UpsertPlayer returns the id of the player with the same normalized name,
// inserting the player first when it does not exist. The first stored
// team and position are kept.
func (s *PostgresStore) UpsertPlayer(ctx context.Context, name, team, position string) (int64, error) {
	name = strings.TrimSpace(name)
	team = strings.TrimSpace(team)
	position = strings.TrimSpace(position)
	if name == "" {
		return 0, fmt.Errorf("player name is required")
	}

	id, err := s.playerID(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, player.ErrNotFound) {
		return 0, err
	}

	query := `
		INSERT INTO players (name, team, position)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err = s.db.QueryRow(ctx, query, name, team, position).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Lost a race with a concurrent insert of the same player
			return s.playerID(ctx, name)
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// AddPostWithScore stores a post and its score in one transaction
func (s *PostgresStore) AddPostWithScore(ctx context.Context, text string, createdAt time.Time, playerID int64, polarity float64) (int64, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var postID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO posts (text, created_at, player_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, text, createdAt, playerID).Scan(&postID)
	if err != nil {
		return 0, fmt.Errorf("error inserting post: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO scores (player_id, post_id, polarity)
		VALUES ($1, $2, $3)
	`, playerID, postID, polarity)
	if err != nil {
		return 0, fmt.Errorf("error inserting score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return postID, nil
}

// ListScores reads the sentiment view for a player, oldest post first
func (s *PostgresStore) ListScores(ctx context.Context, playerID int64, limit int) ([]sentiment.ScoreRow, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT player_id, COALESCE(player_name, ''), post_id, COALESCE(text, ''), created_at, polarity
		FROM sentiment_view
		WHERE player_id = $1
		ORDER BY post_id
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var result []sentiment.ScoreRow
	for rows.Next() {
		var row sentiment.ScoreRow
		var createdAt *time.Time
		if err := rows.Scan(&row.PlayerID, &row.PlayerName, &row.PostID, &row.Text, &createdAt, &row.Polarity); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if createdAt != nil {
			row.CreatedAt = createdAt.UTC()
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) playerID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`SELECT id FROM players WHERE lower(trim(name)) = $1`,
		player.Normalize(name),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, player.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}
