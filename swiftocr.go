// Package swiftocr provides a fluent API for running OCR and querying the
// recognized text.
//
// Basic usage:
//
//	results, err := swiftocr.New("").FromFile(ctx, "receipt.png")
//	if err != nil {
//	    // handle error
//	}
//	if total := results.Search("total", model.WithLowercase()).First(); total != nil {
//	    fmt.Println(total.Text, total.BoundingBox)
//	}
//
// With options:
//
//	results, err := swiftocr.New("/usr/local/bin/swiftocr").
//	    Languages("en-US", "de-DE").
//	    Correction().
//	    CustomWords("GmbH").
//	    FromFile(ctx, "invoice.jpg")
//
// Results saved as JSON, or produced by Tesseract as hOCR, can be loaded
// without running a recognizer with [Load], [LoadFile] and [FromHOCR].
//
// The query engine lives in the model package; line grouping and reading
// order in the layout package.
package swiftocr

import (
	"fmt"
	"io"
	"os"

	"github.com/tsawler/swiftocr/hocr"
	"github.com/tsawler/swiftocr/model"
)

// DefaultBinary is the executable New runs when no path is given. It is
// looked up on PATH.
const DefaultBinary = "swiftocr"

// New returns a Client that runs the swiftocr executable at binary, or
// DefaultBinary when binary is empty.
//
// Example:
//
//	results, err := swiftocr.New("").FromFile(ctx, "scan.png")
func New(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{
		binary:  binary,
		options: defaultOptions(),
		logger:  nopLogger(),
	}
}

// Load decodes a JSON array of records, as printed by swiftocr, into
// results.
func Load(r io.Reader) (*model.Results, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	return model.ParseResults(data)
}

// LoadFile decodes the JSON records stored in the file at path.
func LoadFile(path string) (*model.Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// FromHOCR reads hOCR markup at the given level into results.
//
// Example:
//
//	results, err := swiftocr.FromHOCR(f, hocr.LevelLine)
func FromHOCR(r io.Reader, level hocr.Level) (*model.Results, error) {
	records, err := hocr.Parse(r, level)
	if err != nil {
		return nil, err
	}
	return model.NewResults(records), nil
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	results := swiftocr.Must(swiftocr.LoadFile("scan.json"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
