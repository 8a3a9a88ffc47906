//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/swiftocr/model"
)

// Tesseract recognizes text in-process with the Tesseract engine. Each
// recognized text line becomes one record.
//
// Tesseract must be installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a Tesseract recognizer. It should be closed when no
// longer needed to release engine resources.
func NewTesseract() (*Tesseract, error) {
	return &Tesseract{client: gosseract.NewClient()}, nil
}

// Close releases engine resources. It is safe to call on a nil recognizer.
func (t *Tesseract) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Name returns "tesseract".
func (t *Tesseract) Name() string {
	return "tesseract"
}

// RecognizeFile recognizes text in the image file at path.
func (t *Tesseract) RecognizeFile(ctx context.Context, path string, opts Options) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return t.RecognizeImage(ctx, data, opts)
}

// RecognizeImage recognizes text in encoded image data. Fast and Correction
// have no Tesseract equivalent and are ignored. Custom words are only
// honored through CustomWordsFile.
func (t *Tesseract) RecognizeImage(ctx context.Context, data []byte, opts Options) ([]model.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if langs := uniq(opts.Languages); len(langs) > 0 {
		if err := t.client.SetLanguage(langs...); err != nil {
			return nil, fmt.Errorf("setting languages %s: %w", strings.Join(langs, "+"), err)
		}
	}
	if opts.CustomWordsFile != "" {
		if err := t.client.SetVariable("user_words_file", opts.CustomWordsFile); err != nil {
			return nil, fmt.Errorf("setting custom words file: %w", err)
		}
	}

	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	records := make([]model.Record, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		records = append(records, model.Record{
			Text:       text,
			Confidence: b.Confidence / 100,
			BoundingBox: model.NewBoundingBox(
				b.Box.Min.X, b.Box.Min.Y, b.Box.Dx(), b.Box.Dy(),
			),
		})
	}
	return records, nil
}
