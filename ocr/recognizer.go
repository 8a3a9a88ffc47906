package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsawler/swiftocr/model"
)

var (
	// ErrToolFailed matches every *ToolError.
	ErrToolFailed = errors.New("recognizer failed")

	// ErrMalformedOutput is returned when the recognizer exits successfully
	// but its output cannot be decoded into records.
	ErrMalformedOutput = errors.New("malformed recognizer output")

	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrUnsupportedFormat is returned for image data that is neither passed
	// through to the recognizer nor decodable for transcoding.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrOCRNotEnabled is returned by the Tesseract recognizer when it was
	// not compiled in. Rebuild with -tags ocr to enable it.
	ErrOCRNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags ocr")
)

// Recognizer turns an image into raw OCR records, in the order the
// recognizer reports them.
type Recognizer interface {
	// Name identifies the recognizer in logs and errors.
	Name() string

	// RecognizeFile recognizes text in the image file at path.
	RecognizeFile(ctx context.Context, path string, opts Options) ([]model.Record, error)

	// RecognizeImage recognizes text in encoded image data.
	RecognizeImage(ctx context.Context, data []byte, opts Options) ([]model.Record, error)
}

// ToolError describes a recognizer process that could not be started or
// exited unsuccessfully.
type ToolError struct {
	// Tool is the executable that was run.
	Tool string
	// ExitCode is the process exit code, or -1 if it never ran to completion.
	ExitCode int
	// Stderr holds the trimmed standard error output.
	Stderr string
	// Err is the underlying error from os/exec.
	Err error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrToolFailed.
func (e *ToolError) Is(target error) bool {
	return target == ErrToolFailed
}
