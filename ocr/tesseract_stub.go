//go:build !ocr

package ocr

import (
	"context"

	"github.com/tsawler/swiftocr/model"
)

// Tesseract is a stub recognizer used when the "ocr" build tag is not set.
// Every operation returns ErrOCRNotEnabled.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled.
// To enable Tesseract, rebuild with: go build -tags ocr
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil recognizer.
func (t *Tesseract) Close() error {
	return nil
}

// Name returns "tesseract".
func (t *Tesseract) Name() string {
	return "tesseract"
}

// RecognizeFile returns ErrOCRNotEnabled.
func (t *Tesseract) RecognizeFile(context.Context, string, Options) ([]model.Record, error) {
	return nil, ErrOCRNotEnabled
}

// RecognizeImage returns ErrOCRNotEnabled.
func (t *Tesseract) RecognizeImage(context.Context, []byte, Options) ([]model.Record, error) {
	return nil, ErrOCRNotEnabled
}
