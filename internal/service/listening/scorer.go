// internal/service/listening/scorer.go

package listening

import (
	"context"
	"fmt"
	"math"
	"strings"

	"playerpulse/internal/domain/sentiment"
)

// Scorer turns classifier output into a signed polarity
type Scorer struct {
	classifier sentiment.Classifier
}

// NewScorer creates a new scorer
func NewScorer(classifier sentiment.Classifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Score returns the polarity of text in [-1, 1]
func (s *Scorer) Score(ctx context.Context, text string) (float64, error) {
	label, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("error classifying text: %w", err)
	}
	return Polarity(label), nil
}

// Polarity signs the confidence of a label: negative labels score below zero,
// every other label (neutral included) scores above it.
func Polarity(label sentiment.Label) float64 {
	c := label.Confidence
	switch {
	case math.IsNaN(c) || c < 0:
		c = 0
	case c > 1:
		c = 1
	}

	if strings.EqualFold(strings.TrimSpace(label.Name), "negative") {
		return -c
	}
	return c
}
