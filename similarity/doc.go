// Package similarity provides the string scoring functions used to rank OCR
// results against a query.
//
// A [Scorer] compares a query with a target string and returns a number where
// larger means more similar. Scorers must be deterministic; they do not need
// to be symmetric or bounded, although both built-in scorers return values in
// [0, 1]:
//
//   - [SequenceMatcher] (the default) scores with [Ratio], a
//     Ratcliff/Obershelp matching-blocks ratio: 2*M/T where M is the number of
//     matched runes and T the total number of runes in both strings.
//   - [Levenshtein] scores with [LevenshteinRatio], one minus the edit distance
//     divided by the length of the longer string.
//
// Any func(query, target string) float64 can be used through [ScorerFunc].
package similarity
