package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/domain/sentiment"
)

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out,
		sentiment.AnalyzeRequest{Query: "Mahomes", Phrase: "touchdown"},
		"Top",
		sentiment.Result{
			Player:  player.Player{Name: "Patrick Mahomes"},
			Summary: sentiment.Summary{Count: 3, Mean: 0.33333, Positive: 2, Negative: 1},
		},
	)

	text := out.String()
	assert.Contains(t, text, "Sentiment analysis for Patrick Mahomes")
	assert.Contains(t, text, "Phrase: touchdown")
	assert.Contains(t, text, "Search mode: Top", "Expected default mode when none was given")
	assert.Contains(t, text, "Average polarity: 0.333")
	assert.Contains(t, text, "Neutral: 0")
	assert.NotContains(t, text, "stopped before")
}

func TestPrintScores(t *testing.T) {
	var out bytes.Buffer
	printScores(&out, []sentiment.ScoreRow{
		{PostID: 7, Text: "great game", Polarity: 0.9, CreatedAt: time.Date(2024, 2, 11, 18, 30, 0, 0, time.UTC)},
		{PostID: 8, Text: "bad throw", Polarity: -0.8, CreatedAt: time.Date(2024, 2, 11, 19, 0, 0, 0, time.UTC)},
	})

	text := out.String()
	assert.Contains(t, text, "Stored scores (2)")
	assert.Contains(t, text, "#7  2024-02-11 18:30  +0.900  great game")
	assert.Contains(t, text, "#8  2024-02-11 19:00  -0.800  bad throw")
}
