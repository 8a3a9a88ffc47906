// Package format provides image format detection for OCR inputs.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents an image format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PNG indicates a Portable Network Graphics image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// TIFF indicates a TIFF image (either byte order).
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
	// WebP indicates a WebP image.
	WebP
	// HEIC indicates a HEIF/HEIC image.
	HEIC
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case WebP:
		return "WebP"
	case HEIC:
		return "HEIC"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	case WebP:
		return ".webp"
	case HEIC:
		return ".heic"
	default:
		return ""
	}
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case TIFF:
		return "image/tiff"
	case BMP:
		return "image/bmp"
	case WebP:
		return "image/webp"
	case HEIC:
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

// Decodable reports whether the format can be decoded in Go with the
// standard library and golang.org/x/image. HEIC cannot.
func (f Format) Decodable() bool {
	switch f {
	case PNG, JPEG, GIF, TIFF, BMP, WebP:
		return true
	default:
		return false
	}
}

// Detect determines image format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return PNG
	case ".jpg", ".jpeg", ".jpe":
		return JPEG
	case ".gif":
		return GIF
	case ".tif", ".tiff":
		return TIFF
	case ".bmp", ".dib":
		return BMP
	case ".webp":
		return WebP
	case ".heic", ".heif":
		return HEIC
	default:
		return Unknown
	}
}

var (
	magicPNG      = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG     = []byte{0xFF, 0xD8, 0xFF}
	magicGIF87    = []byte("GIF87a")
	magicGIF89    = []byte("GIF89a")
	magicTIFFLE   = []byte("II*\x00")
	magicTIFFBE   = []byte("MM\x00*")
	magicBMP      = []byte("BM")
	magicRIFF     = []byte("RIFF")
	magicWebP     = []byte("WEBP")
	magicFtyp     = []byte("ftyp")
	heicBrands    = []string{"heic", "heix", "hevc", "hevx", "mif1", "msf1"}
	magicReadSize = 16
)

// DetectFromMagic checks the leading bytes of data to determine the format.
// This is more reliable than extension-based detection.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return PNG
	case bytes.HasPrefix(data, magicJPEG):
		return JPEG
	case bytes.HasPrefix(data, magicGIF87), bytes.HasPrefix(data, magicGIF89):
		return GIF
	case bytes.HasPrefix(data, magicTIFFLE), bytes.HasPrefix(data, magicTIFFBE):
		return TIFF
	case len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWebP):
		return WebP
	case len(data) >= 12 && bytes.Equal(data[4:8], magicFtyp):
		brand := string(data[8:12])
		for _, b := range heicBrands {
			if brand == b {
				return HEIC
			}
		}
		return Unknown
	case bytes.HasPrefix(data, magicBMP):
		return BMP
	default:
		return Unknown
	}
}

// DetectFromReader reads the leading bytes of r to determine the format.
// It returns the bytes it consumed so the caller can stitch the stream back
// together with io.MultiReader.
func DetectFromReader(r io.Reader) (Format, []byte, error) {
	head := make([]byte, magicReadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, head[:n], err
	}
	head = head[:n]
	return DetectFromMagic(head), head, nil
}
