package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	// Decoders for Transcode.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/swiftocr/format"
)

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// Transcode decodes an image in any registered format (PNG, JPEG, GIF, BMP,
// TIFF or WebP) and re-encodes it as PNG.
func Transcode(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return EncodePNG(img)
}

// PrepareImage returns data in a form the recognizer accepts, along with the
// detected source format. PNG, JPEG, TIFF and HEIC pass through unchanged;
// GIF, BMP and WebP are transcoded to PNG. Unrecognized data is an error
// wrapping ErrUnsupportedFormat.
func PrepareImage(data []byte) ([]byte, format.Format, error) {
	f := format.DetectFromMagic(data)
	switch f {
	case format.PNG, format.JPEG, format.TIFF, format.HEIC:
		return data, f, nil
	case format.GIF, format.BMP, format.WebP:
		out, err := Transcode(bytes.NewReader(data))
		if err != nil {
			return nil, f, fmt.Errorf("transcoding %s: %w", f, err)
		}
		return out, f, nil
	default:
		return nil, f, fmt.Errorf("%w: unrecognized image data", ErrUnsupportedFormat)
	}
}
