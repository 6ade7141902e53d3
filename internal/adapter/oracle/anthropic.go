// internal/adapter/oracle/anthropic.go

package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/metrics"
)

// AnthropicOracle identifies players with the Anthropic Messages API
type AnthropicOracle struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// NewAnthropicOracle creates a new Anthropic-backed oracle
func NewAnthropicOracle(apiKey, model string, maxTokens int64, logger *slog.Logger, opts ...option.RequestOption) *AnthropicOracle {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &AnthropicOracle{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Identify asks the model which player query refers to
func (o *AnthropicOracle) Identify(ctx context.Context, query string, known []player.Player) (player.Player, error) {
	start := time.Now()
	message, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: o.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(query, known))),
		},
	})
	metrics.OracleDuration.WithLabelValues("anthropic").Observe(time.Since(start).Seconds())
	if err != nil {
		return player.Player{}, fmt.Errorf("error calling anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	o.logger.Debug("Oracle replied", slog.String("provider", "anthropic"), slog.String("query", query), slog.String("reply", text.String()))

	return ParseResponse(text.String(), query)
}
