package model

import (
	"sort"

	"github.com/tsawler/swiftocr/similarity"
)

// Scored pairs a result with the score it received from a search.
type Scored struct {
	Score  float64
	Result Result
}

// SearchOption configures Search and SearchAndScore.
type SearchOption func(*searchConfig)

type searchConfig struct {
	threshold float64
	lowercase bool
	scorer    similarity.Scorer
}

func defaultSearchConfig() searchConfig {
	return searchConfig{
		threshold: 0,
		lowercase: false,
		scorer:    similarity.Default(),
	}
}

// WithThreshold drops results scoring below threshold. A score equal to the
// threshold is kept.
func WithThreshold(threshold float64) SearchOption {
	return func(c *searchConfig) { c.threshold = threshold }
}

// WithLowercase case-folds the query and each text before scoring.
func WithLowercase() SearchOption {
	return func(c *searchConfig) { c.lowercase = true }
}

// WithScorer replaces the default scorer. A nil scorer keeps the default.
func WithScorer(scorer similarity.Scorer) SearchOption {
	return func(c *searchConfig) {
		if scorer != nil {
			c.scorer = scorer
		}
	}
}

// Search ranks the results against query and returns those scoring at least
// the threshold, best first. See SearchAndScore for the ordering.
func (rs *Results) Search(query string, opts ...SearchOption) *Results {
	matches := rs.rank(query, opts)
	records := make([]Record, len(matches))
	for i, m := range matches {
		records[i] = m.record
	}
	return fromTrusted(records)
}

// SearchAndScore is Search but also returns each result's score.
//
// Results are ordered by score descending; equal scores are ordered by
// bounding box X, then Y, then confidence, all ascending, which puts the
// leftmost and then topmost of equally good matches first. Results that tie
// on every key keep their original relative order.
func (rs *Results) SearchAndScore(query string, opts ...SearchOption) []Scored {
	matches := rs.rank(query, opts)
	scored := make([]Scored, len(matches))
	for i, m := range matches {
		scored[i] = Scored{Score: m.score, Result: m.record.Result()}
	}
	return scored
}

type match struct {
	score  float64
	record Record
}

func (rs *Results) rank(query string, opts []SearchOption) []match {
	cfg := defaultSearchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.lowercase {
		query = similarity.Fold(query)
	}

	var matches []match
	for _, rec := range rs.records {
		target := rec.Text
		if cfg.lowercase {
			target = similarity.Fold(target)
		}
		score := cfg.scorer.Score(query, target)
		// NaN scores fail this comparison and are dropped.
		if score >= cfg.threshold {
			matches = append(matches, match{score: score, record: rec})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.record.BoundingBox.X != b.record.BoundingBox.X {
			return a.record.BoundingBox.X < b.record.BoundingBox.X
		}
		if a.record.BoundingBox.Y != b.record.BoundingBox.Y {
			return a.record.BoundingBox.Y < b.record.BoundingBox.Y
		}
		return a.record.Confidence < b.record.Confidence
	})

	return matches
}
