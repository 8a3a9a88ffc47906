// Package ocr runs text recognizers and returns their output as raw
// [model.Record] values ready for [model.NewResults].
//
// Two recognizers are provided:
//
//   - [Runner] executes the swiftocr command-line tool, passing either a file
//     path or image bytes on stdin, and decodes the JSON it prints.
//   - [Tesseract] uses the Tesseract engine through gosseract. It is only
//     functional when built with the "ocr" build tag and Tesseract installed:
//
//     go build -tags ocr
//
// Both implement [Recognizer]. Recognition options are described by the
// [Options] struct and validated once per call.
//
// A recognizer that finds no text returns an empty, non-nil slice and a nil
// error. Any failure to run the recognizer or to read its output is returned
// as an error, never as an empty result.
package ocr
