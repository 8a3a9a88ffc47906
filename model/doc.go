// Package model provides the data model and query engine for OCR output.
//
// A recognizer produces an ordered list of [Record] values, one per located
// text fragment. [NewResults] (or [ParseResults] for JSON) turns that list
// into a [Results] collection, which can then be narrowed with chained,
// non-mutating filters:
//
//	rs, err := model.ParseResults(data)
//	if err != nil {
//	    // handle error
//	}
//	totals := rs.MinimumConfidence(0.8).
//	    Within(0, 400, 600, 200).
//	    Containing("total", true)
//
// # Fragments
//
// Each [Result] carries the recognized text, the recognizer's confidence and
// a [BoundingBox] in image pixel coordinates (origin top-left, Y downward).
// Corner, center and diagonal accessors are derived from the box's X, Y,
// Width and Height.
//
// # Ranked search
//
// [Results.Search] and [Results.SearchAndScore] score every fragment against a
// query with a pluggable [similarity.Scorer], drop those below a threshold
// and order the rest by score (descending), then X, Y and confidence
// (ascending):
//
//	best := rs.Search("Invoice total", model.WithThreshold(0.7), model.WithLowercase()).First()
//
// # Errors
//
// Filters never fail on a valid collection, including an empty one. Indexing
// reports [ErrIndexOutOfRange] or [ErrUnsupportedKey], and decoding raw input
// reports [ErrMalformedRecord].
package model
