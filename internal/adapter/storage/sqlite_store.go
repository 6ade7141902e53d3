// internal/adapter/storage/sqlite_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

type playerRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	NameKey   string `gorm:"not null;uniqueIndex"`
	Team      string `gorm:"not null"`
	Position  string `gorm:"not null"`
	CreatedAt time.Time
}

func (playerRecord) TableName() string { return "players" }

type postRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	PlayerID  *int64    `gorm:"index"`
	Player    *playerRecord
}

func (postRecord) TableName() string { return "posts" }

type scoreRecord struct {
	PlayerID int64   `gorm:"primaryKey;autoIncrement:false"`
	PostID   int64   `gorm:"primaryKey;autoIncrement:false"`
	Polarity float64 `gorm:"not null"`
	Player   *playerRecord
	Post     *postRecord
}

func (scoreRecord) TableName() string { return "scores" }

type scoreViewRow struct {
	PlayerID   int64
	PlayerName string
	PostID     int64
	Text       string
	CreatedAt  time.Time
	Polarity   float64
}

// SQLiteStore implements sentiment.Store on a SQLite file through gorm
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database file at path with foreign keys enabled
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sqlite handle: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent requests
	sqlDB.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the tables and the sentiment view
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&playerRecord{}, &postRecord{}, &scoreRecord{}); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	if err := db.Exec(sqliteViewSQL).Error; err != nil {
		return fmt.Errorf("error creating sentiment view: %w", err)
	}
	return nil
}

// UpsertPlayer returns the id of the player with the same normalized name,
// inserting the player first when it does not exist
func (s *SQLiteStore) UpsertPlayer(ctx context.Context, name, team, position string) (int64, error) {
	name = strings.TrimSpace(name)
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

	rec := playerRecord{
		Name:     name,
		NameKey:  player.Normalize(name),
		Team:     strings.TrimSpace(team),
		Position: strings.TrimSpace(position),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.playerID(ctx, name)
		}
		return 0, fmt.Errorf("error inserting player: %w", err)
	}

	return rec.ID, nil
}

// AddPostWithScore stores a post and its score in one transaction
func (s *SQLiteStore) AddPostWithScore(ctx context.Context, text string, createdAt time.Time, playerID int64, polarity float64) (int64, error) {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	post := postRecord{
		Text:      text,
		CreatedAt: createdAt,
		PlayerID:  &playerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("error inserting post: %w", err)
		}
		score := scoreRecord{
			PlayerID: playerID,
			PostID:   post.ID,
			Polarity: polarity,
		}
		if err := tx.Create(&score).Error; err != nil {
			return fmt.Errorf("error inserting score: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return post.ID, nil
}

// ListScores reads the sentiment view for a player, oldest post first
func (s *SQLiteStore) ListScores(ctx context.Context, playerID int64, limit int) ([]sentiment.ScoreRow, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []scoreViewRow
	err := s.db.WithContext(ctx).
		Table("sentiment_view").
		Where("player_id = ?", playerID).
		Order("post_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	result := make([]sentiment.ScoreRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, sentiment.ScoreRow{
			PlayerID:   r.PlayerID,
			PlayerName: r.PlayerName,
			PostID:     r.PostID,
			Text:       r.Text,
			CreatedAt:  r.CreatedAt.UTC(),
			Polarity:   r.Polarity,
		})
	}
	return result, nil
}

// Close closes the underlying database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) playerID(ctx context.Context, name string) (int64, error) {
	var rec playerRecord
	err := s.db.WithContext(ctx).
		Where("name_key = ?", player.Normalize(name)).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, player.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return rec.ID, nil
}
