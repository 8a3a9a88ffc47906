package similarity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// ErrUnknownScorer is returned by ByName for names that are not registered.
var ErrUnknownScorer = errors.New("unknown scorer")

// Scorer scores how closely target matches query.
type Scorer interface {
	Score(query, target string) float64
}

// ScorerFunc adapts an ordinary function to the Scorer interface.
type ScorerFunc func(query, target string) float64

// Score calls f(query, target).
func (f ScorerFunc) Score(query, target string) float64 {
	return f(query, target)
}

var (
	// SequenceMatcher scores with Ratio. It is the default scorer.
	SequenceMatcher Scorer = ScorerFunc(Ratio)

	// Levenshtein scores with LevenshteinRatio.
	Levenshtein Scorer = ScorerFunc(LevenshteinRatio)
)

var scorers = map[string]Scorer{
	"ratio":       SequenceMatcher,
	"levenshtein": Levenshtein,
}

// Default returns the scorer used when callers do not supply one.
func Default() Scorer {
	return SequenceMatcher
}

// ByName looks up a built-in scorer ("ratio" or "levenshtein").
func ByName(name string) (Scorer, error) {
	s, ok := scorers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
	return s, nil
}

// Names returns the registered scorer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fold returns the case-folded form of s, used for case-insensitive
// comparisons.
func Fold(s string) string {
	// A Caser keeps state between calls, so one is made per use.
	return cases.Fold().String(s)
}

// LevenshteinRatio returns 1 - d/n where d is the rune edit distance between
// a and b and n the rune length of the longer string. Two empty strings
// score 1.
func LevenshteinRatio(a, b string) float64 {
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(n)
}
