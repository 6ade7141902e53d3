// cmd/analyze/main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"playerpulse/internal/app"
	"playerpulse/internal/config"
	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
	"playerpulse/internal/logging"
	"playerpulse/internal/service/resolution"
)

func main() {
	query := flag.String("query", "", "player name or nickname to analyze")
	phrase := flag.String("phrase", "", "only score posts containing this phrase")
	limit := flag.Int("limit", 0, "number of posts to score (defaults to ANALYZE_DEFAULT_LIMIT)")
	mode := flag.String("mode", "", "search mode, Top or Latest (empty uses ANALYZE_DEFAULT_SEARCH_MODE)")
	yes := flag.Bool("yes", false, "accept identified players without asking")
	dump := flag.Bool("dump", false, "print the stored scores for the player")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "-query is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so the summary on stdout stays clean
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	if !flagPassed("limit") {
		*limit = cfg.Analyze.DefaultLimit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var confirmer player.Confirmer = resolution.NewPromptConfirmer(os.Stdin, os.Stdout)
	if *yes {
		confirmer = resolution.AcceptAll
	}

	pipeline, err := app.New(ctx, cfg, confirmer, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer pipeline.Close()

	req := sentiment.AnalyzeRequest{
		Query:      *query,
		Phrase:     *phrase,
		Limit:      *limit,
		SearchMode: *mode,
	}

	result, err := pipeline.Analyzer.Analyze(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, player.ErrNotFound):
			fmt.Printf("Could not find player: %s\n", *query)
		case errors.Is(err, sentiment.ErrNoContent):
			fmt.Println("Sentiment analysis failed. No tweets found for specified player.")
		default:
			logger.Error("Sentiment analysis failed", slog.Any("error", err))
		}
		pipeline.Close()
		os.Exit(1)
	}

	printSummary(os.Stdout, req, cfg.Analyze.DefaultSearchMode, result)

	if *dump {
		rows, err := pipeline.Store.ListScores(ctx, result.PlayerID, 0)
		if err != nil {
			logger.Error("Failed to read stored scores", slog.Any("error", err))
			pipeline.Close()
			os.Exit(1)
		}
		printScores(os.Stdout, rows)
	}
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func printSummary(w io.Writer, req sentiment.AnalyzeRequest, defaultMode string, result sentiment.Result) {
	mode := req.SearchMode
	if mode == "" {
		mode = defaultMode
	}

	fmt.Fprintf(w, "\nSentiment analysis for %s\n", result.Player.Name)
	fmt.Fprintf(w, "  Query: %s\n", req.Query)
	if req.Phrase != "" {
		fmt.Fprintf(w, "  Phrase: %s\n", req.Phrase)
	}
	fmt.Fprintf(w, "  Search mode: %s\n", mode)
	fmt.Fprintf(w, "  Tweets analyzed: %d\n", result.Summary.Count)
	fmt.Fprintf(w, "  Average polarity: %.3f\n", result.Summary.Mean)
	fmt.Fprintf(w, "  Positive: %d\n", result.Summary.Positive)
	fmt.Fprintf(w, "  Negative: %d\n", result.Summary.Negative)
	fmt.Fprintf(w, "  Neutral: %d\n", result.Summary.Neutral)
	if result.Stats.StoppedEarly {
		fmt.Fprintln(w, "  (search stopped before the limit was reached)")
	}
}

func printScores(w io.Writer, rows []sentiment.ScoreRow) {
	fmt.Fprintf(w, "\nStored scores (%d)\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(w, "  #%d  %s  %+.3f  %s\n",
			row.PostID,
			row.CreatedAt.Format("2006-01-02 15:04"),
			row.Polarity,
			row.Text,
		)
	}
}
