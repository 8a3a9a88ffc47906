package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tsawler/swiftocr/similarity"
)

var (
	// ErrIndexOutOfRange is returned when an integer index falls outside a
	// collection.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnsupportedKey is returned by Results.At for keys that are neither
	// an int nor a Span.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrMalformedRecord is returned when raw input cannot be read as a
	// fragment record (missing field or wrong field type).
	ErrMalformedRecord = errors.New("malformed record")
)

// Record is the raw form of one recognized fragment as produced by the
// recognizer:
//
//	{"text": "...", "confidence": 0.9,
//	 "boundingBox": {"x": 0, "y": 0, "width": 10, "height": 10}}
type Record struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// Result returns the parsed fragment for the record.
func (r Record) Result() Result {
	return Result{
		Text:        r.Text,
		Confidence:  r.Confidence,
		BoundingBox: r.BoundingBox,
	}
}

// Result is one recognized text block: its text, the recognizer's confidence
// and where it was found.
//
// Confidence is expected in [0, 1] but is not checked; values outside that
// range indicate a problem with the recognizer output, not with the query.
type Result struct {
	Text        string
	Confidence  float64
	BoundingBox BoundingBox
}

// Record returns the raw record form of the result.
func (r Result) Record() Record {
	return Record{
		Text:        r.Text,
		Confidence:  r.Confidence,
		BoundingBox: r.BoundingBox,
	}
}

// Equals reports whether both results have the same text, confidence and
// bounding box.
func (r Result) Equals(other Result) bool {
	return r.Text == other.Text &&
		r.Confidence == other.Confidence &&
		r.BoundingBox == other.BoundingBox
}

// EqualsText reports whether the result's text is exactly s.
func (r Result) EqualsText(s string) bool {
	return r.Text == s
}

// Similarity scores the result's text against query with the default
// scorer. With lowercase set both strings are case-folded first.
func (r Result) Similarity(query string, lowercase bool) float64 {
	text := r.Text
	if lowercase {
		text = similarity.Fold(text)
		query = similarity.Fold(query)
	}
	return similarity.Ratio(text, query)
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("OCRResult(%q, %v, %s)", r.Text, r.Confidence, r.BoundingBox)
}

// rawRecord mirrors Record with pointer fields so absent keys can be told
// apart from zero values.
type rawRecord struct {
	Text        *string  `json:"text"`
	Confidence  *float64 `json:"confidence"`
	BoundingBox *struct {
		X      *int `json:"x"`
		Y      *int `json:"y"`
		Width  *int `json:"width"`
		Height *int `json:"height"`
	} `json:"boundingBox"`
}

// ParseRecords decodes a JSON array of records. Every field of every record
// must be present with the right type; otherwise the returned error wraps
// ErrMalformedRecord and names the offending record.
func ParseRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not a JSON array", ErrMalformedRecord)
	}

	records := make([]Record, 0, len(raw))
	for i, msg := range raw {
		rec, err := parseRecord(msg)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(msg json.RawMessage) (Record, error) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return Record{}, fmt.Errorf("%w: null record", ErrMalformedRecord)
	}

	var raw rawRecord
	if err := json.Unmarshal(msg, &raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	switch {
	case raw.Text == nil:
		return Record{}, missingField("text")
	case raw.Confidence == nil:
		return Record{}, missingField("confidence")
	case raw.BoundingBox == nil:
		return Record{}, missingField("boundingBox")
	case raw.BoundingBox.X == nil:
		return Record{}, missingField("boundingBox.x")
	case raw.BoundingBox.Y == nil:
		return Record{}, missingField("boundingBox.y")
	case raw.BoundingBox.Width == nil:
		return Record{}, missingField("boundingBox.width")
	case raw.BoundingBox.Height == nil:
		return Record{}, missingField("boundingBox.height")
	}

	return Record{
		Text:       *raw.Text,
		Confidence: *raw.Confidence,
		BoundingBox: BoundingBox{
			X:      *raw.BoundingBox.X,
			Y:      *raw.BoundingBox.Y,
			Width:  *raw.BoundingBox.Width,
			Height: *raw.BoundingBox.Height,
		},
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
}
