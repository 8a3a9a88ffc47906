package swiftocr

import (
	"go.uber.org/zap"

	"github.com/tsawler/swiftocr/ocr"
)

// defaultOptions returns the default recognition options.
func defaultOptions() ocr.Options {
	return ocr.DefaultOptions()
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
