// internal/adapter/oracle/openai.go

package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"playerpulse/internal/domain/player"
	"playerpulse/internal/metrics"
)

// OpenAIOracle identifies players with any OpenAI-compatible chat completions API
type OpenAIOracle struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIOracle creates a new oracle. An empty baseURL uses the OpenAI API.
func NewOpenAIOracle(apiKey, baseURL, model string, logger *slog.Logger, opts ...option.RequestOption) *OpenAIOracle {
	if logger == nil {
		logger = slog.Default()
	}

	base := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}

	return &OpenAIOracle{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
		logger: logger,
	}
}

// Identify asks the model which player query refers to
func (o *OpenAIOracle) Identify(ctx context.Context, query string, known []player.Player) (player.Player, error) {
	start := time.Now()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(query, known)),
		},
	})
	metrics.OracleDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		return player.Player{}, fmt.Errorf("error calling chat completions: %w", err)
	}

	if len(completion.Choices) == 0 {
		return player.Player{}, fmt.Errorf("%w: no choices returned", player.ErrMalformedOracleResponse)
	}

	text := completion.Choices[0].Message.Content
	o.logger.Debug("Oracle replied", slog.String("provider", "openai"), slog.String("query", query), slog.String("reply", text))

	return ParseResponse(text, query)
}
