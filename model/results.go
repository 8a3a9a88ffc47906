package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tsawler/swiftocr/similarity"
)

// Results is an ordered, read-only collection of OCR results.
//
// Each result is backed by the raw record it was parsed from. Every filter
// builds its output from those records, so any derived collection can be
// rebuilt from raw records alone. No method modifies the receiver, which makes
// a *Results safe to share between goroutines.
type Results struct {
	records []Record
	items   []Result
}

// Span is a half-open [Lo, Hi) range accepted by Results.At.
type Span struct {
	Lo, Hi int
}

// NewResults creates a collection from raw records. The slice is copied.
func NewResults(records []Record) *Results {
	rs := &Results{
		records: make([]Record, len(records)),
		items:   make([]Result, len(records)),
	}
	copy(rs.records, records)
	for i, rec := range rs.records {
		rs.items[i] = rec.Result()
	}
	return rs
}

// ParseResults decodes a JSON array of records into a collection.
func ParseResults(data []byte) (*Results, error) {
	records, err := ParseRecords(data)
	if err != nil {
		return nil, err
	}
	return NewResults(records), nil
}

// fromTrusted wraps records that are already owned by the caller.
func fromTrusted(records []Record) *Results {
	rs := &Results{
		records: records,
		items:   make([]Result, len(records)),
	}
	for i, rec := range records {
		rs.items[i] = rec.Result()
	}
	return rs
}

// Len returns the number of results
func (rs *Results) Len() int {
	return len(rs.items)
}

// IsEmpty reports whether the collection has no results
func (rs *Results) IsEmpty() bool {
	return len(rs.items) == 0
}

// Exists reports whether the collection has at least one result
func (rs *Results) Exists() bool {
	return len(rs.items) > 0
}

// Get returns the result at index i. Negative indexes count back from the
// end, so Get(-1) is the last result.
func (rs *Results) Get(i int) (Result, error) {
	n := len(rs.items)
	j := i
	if j < 0 {
		j += n
	}
	if j < 0 || j >= n {
		return Result{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
	}
	return rs.items[j], nil
}

// Slice returns the results in [lo, hi) as a new collection. Negative bounds
// count back from the end and out-of-range bounds are clamped, so Slice never
// fails; lo >= hi yields an empty collection.
func (rs *Results) Slice(lo, hi int) *Results {
	n := len(rs.records)
	lo = clampIndex(lo, n)
	hi = clampIndex(hi, n)
	if lo >= hi {
		return fromTrusted(nil)
	}
	return NewResults(rs.records[lo:hi])
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

// At indexes the collection with a dynamic key: an int returns a Result (as
// Get does) and a Span returns a *Results (as Slice does). Any other key type
// yields an error wrapping ErrUnsupportedKey.
func (rs *Results) At(key any) (any, error) {
	switch k := key.(type) {
	case int:
		return rs.Get(k)
	case Span:
		return rs.Slice(k.Lo, k.Hi), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

// ContainsText reports whether any result's text contains s.
func (rs *Results) ContainsText(s string) bool {
	for _, item := range rs.items {
		if strings.Contains(item.Text, s) {
			return true
		}
	}
	return false
}

// First returns the first result or nil
func (rs *Results) First() *Result {
	if len(rs.items) == 0 {
		return nil
	}
	r := rs.items[0]
	return &r
}

// Last returns the last result or nil
func (rs *Results) Last() *Result {
	if len(rs.items) == 0 {
		return nil
	}
	r := rs.items[len(rs.items)-1]
	return &r
}

// Items returns a copy of the parsed results
func (rs *Results) Items() []Result {
	return append([]Result(nil), rs.items...)
}

// Records returns a copy of the raw records
func (rs *Results) Records() []Record {
	return append([]Record(nil), rs.records...)
}

// Texts returns the text of every result in order
func (rs *Results) Texts() []string {
	texts := make([]string, len(rs.items))
	for i, item := range rs.items {
		texts[i] = item.Text
	}
	return texts
}

// Text joins the text of every result with sep
func (rs *Results) Text(sep string) string {
	return strings.Join(rs.Texts(), sep)
}

// Filter returns the results whose raw record satisfies predicate.
func (rs *Results) Filter(predicate func(Record) bool) *Results {
	var filtered []Record
	for _, rec := range rs.records {
		if predicate(rec) {
			filtered = append(filtered, rec)
		}
	}
	return fromTrusted(filtered)
}

// MinimumConfidence returns the results with confidence >= threshold
func (rs *Results) MinimumConfidence(threshold float64) *Results {
	return rs.Filter(func(r Record) bool {
		return r.Confidence >= threshold
	})
}

// Within returns the results whose bounding box lies entirely inside the
// given rectangle.
func (rs *Results) Within(x, y, width, height int) *Results {
	region := NewBoundingBox(x, y, width, height)
	return rs.Filter(func(r Record) bool {
		return region.ContainsWithin(r.BoundingBox)
	})
}

// Containing returns the results whose text contains text. With lowercase
// set the comparison ignores case.
func (rs *Results) Containing(text string, lowercase bool) *Results {
	if lowercase {
		text = similarity.Fold(text)
	}
	return rs.Filter(func(r Record) bool {
		if lowercase {
			return strings.Contains(similarity.Fold(r.Text), text)
		}
		return strings.Contains(r.Text, text)
	})
}

// Exactly returns the results whose text equals text. With lowercase set the
// comparison ignores case.
func (rs *Results) Exactly(text string, lowercase bool) *Results {
	if lowercase {
		text = similarity.Fold(text)
	}
	return rs.Filter(func(r Record) bool {
		if lowercase {
			return similarity.Fold(r.Text) == text
		}
		return r.Text == text
	})
}

// MatchFlag modifies how Matching interprets its pattern.
type MatchFlag int

const (
	// IgnoreCase matches letters regardless of case (?i).
	IgnoreCase MatchFlag = 1 << iota
	// Multiline lets ^ and $ match at line boundaries (?m).
	Multiline
	// DotAll lets . match newlines (?s).
	DotAll
)

// prefix returns the inline flag group for f, or "" when no flag is set.
func (f MatchFlag) prefix() string {
	var sb strings.Builder
	if f&IgnoreCase != 0 {
		sb.WriteByte('i')
	}
	if f&Multiline != 0 {
		sb.WriteByte('m')
	}
	if f&DotAll != 0 {
		sb.WriteByte('s')
	}
	if sb.Len() == 0 {
		return ""
	}
	return "(?" + sb.String() + ")"
}

// Matching returns the results whose text matches the regular expression
// pattern at its start. The pattern uses RE2 syntax; an invalid pattern is
// reported as an error.
func (rs *Results) Matching(pattern string, flags MatchFlag) (*Results, error) {
	re, err := regexp.Compile(flags.prefix() + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}
	return rs.MatchingRegexp(re), nil
}

// MatchingRegexp returns the results whose text matches re at its start.
func (rs *Results) MatchingRegexp(re *regexp.Regexp) *Results {
	return rs.Filter(func(r Record) bool {
		// The leftmost match starts at 0 whenever any match does.
		loc := re.FindStringIndex(r.Text)
		return loc != nil && loc[0] == 0
	})
}

// Bounds returns the smallest box enclosing every result, or the zero box
// for an empty collection.
func (rs *Results) Bounds() BoundingBox {
	if len(rs.items) == 0 {
		return BoundingBox{}
	}
	bounds := rs.items[0].BoundingBox
	for _, item := range rs.items[1:] {
		bounds = bounds.Union(item.BoundingBox)
	}
	return bounds
}

// Stats contains aggregate figures about a collection
type Stats struct {
	Count             int
	MinConfidence     float64
	MaxConfidence     float64
	AverageConfidence float64
}

// Statistics returns aggregate statistics about the collection
func (rs *Results) Statistics() Stats {
	stats := Stats{Count: len(rs.items)}
	if len(rs.items) == 0 {
		return stats
	}

	stats.MinConfidence = rs.items[0].Confidence
	stats.MaxConfidence = rs.items[0].Confidence
	var sum float64
	for _, item := range rs.items {
		sum += item.Confidence
		stats.MinConfidence = min(stats.MinConfidence, item.Confidence)
		stats.MaxConfidence = max(stats.MaxConfidence, item.Confidence)
	}
	stats.AverageConfidence = sum / float64(len(rs.items))

	return stats
}

// String lists the texts in the collection.
func (rs *Results) String() string {
	quoted := make([]string, len(rs.items))
	for i, item := range rs.items {
		quoted[i] = fmt.Sprintf("%q", item.Text)
	}
	return "OCRResults([" + strings.Join(quoted, ", ") + "])"
}

// MarshalJSON encodes the collection as its array of raw records.
func (rs *Results) MarshalJSON() ([]byte, error) {
	if rs.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rs.records)
}
