// internal/app/app.go

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"playerpulse/internal/adapter/classifier"
	"playerpulse/internal/adapter/kbfile"
	"playerpulse/internal/adapter/oracle"
	"playerpulse/internal/adapter/search"
	"playerpulse/internal/adapter/storage"
	"playerpulse/internal/config"
	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
	"playerpulse/internal/service/listening"
	"playerpulse/internal/service/resolution"
)

// App holds the wired pipeline and the resources that must be released on exit
type App struct {
	Analyzer *listening.Analyzer
	Store    sentiment.Store
	NATS     *nats.Conn

	closers []func() error
}

// store is a sentiment.Store that can create its own schema
type store interface {
	sentiment.Store
	Migrate(ctx context.Context) error
}

// New builds the full analysis pipeline from configuration. confirmer decides
// whether oracle candidates are accepted; nil accepts all of them.
func New(ctx context.Context, cfg config.Config, confirmer player.Confirmer, logger *slog.Logger) (*App, error) {
	a := &App{}

	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	if err := st.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	var publisher listening.Publisher
	if cfg.NATS.URL != "" {
		nc, err := initNATS(cfg.NATS, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.NATS = nc
		publisher = nc
		a.closers = append(a.closers, func() error {
			nc.Close()
			return nil
		})
	}

	kb, err := resolution.NewKnowledgeBase(kbfile.NewStore(cfg.Resolution.KnowledgeBaseFile))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	logger.Info("Loaded knowledge base",
		slog.String("file", cfg.Resolution.KnowledgeBaseFile),
		slog.Int("players", kb.Len()),
	)

	resolver := resolution.NewResolver(kb, newOracle(cfg.Oracle, logger), confirmer, logger)

	cls, err := classifier.New(classifier.Config{
		Model:    cfg.Classifier.Model,
		ModelDir: cfg.Classifier.ModelDir,
		OnnxFile: cfg.Classifier.OnnxFile,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load sentiment model: %w", err)
	}
	a.closers = append(a.closers, cls.Close)

	pager := listening.NewPager(
		newSearchProvider(cfg.Search),
		listening.DefaultExtractor(),
		listening.PagerConfig{MaxPages: cfg.Search.MaxPages},
		logger,
	)

	a.Analyzer = listening.NewAnalyzer(
		resolver,
		st,
		pager,
		listening.NewScorer(cls),
		publisher,
		listening.AnalyzerConfig{
			MaxLimit:          cfg.Analyze.MaxLimit,
			DefaultSearchMode: cfg.Analyze.DefaultSearchMode,
			EventsTopic:       cfg.NATS.EventsTopic,
		},
		logger,
	)

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func initStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.NewPostgresStore(db), nil
	default:
		st, err := storage.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return st, nil
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *slog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

func newSearchProvider(cfg config.SearchConfig) sentiment.SearchProvider {
	if cfg.Provider == "xapi" {
		return search.NewXClient(cfg.XBearerToken, cfg.XAPIHost, cfg.XMaxResults, cfg.Timeout)
	}
	return search.NewRapidAPIClient(cfg.RapidAPIKey, cfg.RapidAPIHost, cfg.Timeout)
}

// newOracle returns nil when identification of unknown players is disabled
func newOracle(cfg config.OracleConfig, logger *slog.Logger) player.Oracle {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set, unknown players cannot be identified")
			return nil
		}
		return oracle.NewAnthropicOracle(cfg.AnthropicAPIKey, cfg.Model, int64(cfg.MaxTokens), logger)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set, unknown players cannot be identified")
			return nil
		}
		return oracle.NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, logger)
	default:
		return nil
	}
}
