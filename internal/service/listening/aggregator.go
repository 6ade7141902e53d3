// internal/service/listening/aggregator.go

package listening

import (
	"playerpulse/internal/domain/sentiment"
)

// Aggregator accumulates polarities into a Summary
type Aggregator struct {
	count    int
	sum      float64
	positive int
	negative int
}

// Add records one polarity
func (a *Aggregator) Add(polarity float64) {
	a.count++
	a.sum += polarity

	switch {
	case polarity > sentiment.PositiveThreshold:
		a.positive++
	case polarity < sentiment.NegativeThreshold:
		a.negative++
	}
}

// Summary returns the aggregate, or false when nothing was added
func (a *Aggregator) Summary() (sentiment.Summary, bool) {
	if a.count == 0 {
		return sentiment.Summary{}, false
	}
	return sentiment.Summary{
		Count:    a.count,
		Mean:     a.sum / float64(a.count),
		Positive: a.positive,
		Negative: a.negative,
		Neutral:  a.count - a.positive - a.negative,
	}, true
}

// Summarize aggregates a complete list of polarities
func Summarize(polarities []float64) (sentiment.Summary, bool) {
	var a Aggregator
	for _, p := range polarities {
		a.Add(p)
	}
	return a.Summary()
}
