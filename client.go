package swiftocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/tsawler/swiftocr/format"
	"github.com/tsawler/swiftocr/model"
	"github.com/tsawler/swiftocr/ocr"
)

// Client provides a fluent interface for recognizing text in images.
// Each configuration method returns a new Client, so a configured Client is
// safe for concurrent use and can be shared as a template.
type Client struct {
	// Recognizer; when nil a swiftocr Runner for binary is used.
	binary     string
	recognizer ocr.Recognizer

	// Configuration
	options ocr.Options
	logger  *zap.Logger

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Client with a deep copy of options.
func (c *Client) clone() *Client {
	return &Client{
		binary:     c.binary,
		recognizer: c.recognizer,
		options:    c.options.Clone(),
		logger:     c.logger,
		err:        c.err,
	}
}

// Fast trades accuracy for speed.
func (c *Client) Fast() *Client {
	n := c.clone()
	n.options.Fast = true
	return n
}

// Languages adds recognition languages, in priority order.
//
// Example:
//
//	swiftocr.New("").Languages("en-US", "fr-FR").FromFile(ctx, "menu.png")
func (c *Client) Languages(langs ...string) *Client {
	n := c.clone()
	n.options = n.options.AddLanguages(langs...)
	return n
}

// Correction enables language correction of the recognized text.
func (c *Client) Correction() *Client {
	n := c.clone()
	n.options.Correction = true
	return n
}

// CustomWords adds words to the recognizer's vocabulary.
func (c *Client) CustomWords(words ...string) *Client {
	n := c.clone()
	n.options = n.options.AddCustomWords(words...)
	return n
}

// CustomWordsFile sets a file of additional words, one per line.
func (c *Client) CustomWordsFile(path string) *Client {
	n := c.clone()
	n.options.CustomWordsFile = path
	return n
}

// WithOptions replaces every recognition option.
func (c *Client) WithOptions(opts ocr.Options) *Client {
	n := c.clone()
	n.options = opts.Clone()
	return n
}

// WithConfigFile replaces every recognition option with those loaded from a
// YAML file (see ocr.LoadOptions). A load error is reported by the next
// terminal operation.
func (c *Client) WithConfigFile(path string) *Client {
	n := c.clone()
	if n.err != nil {
		return n
	}
	opts, err := ocr.LoadOptions(path)
	if err != nil {
		n.err = fmt.Errorf("loading config: %w", err)
		return n
	}
	n.options = opts
	return n
}

// WithRecognizer replaces the swiftocr process with another recognizer,
// such as ocr.Tesseract.
func (c *Client) WithRecognizer(r ocr.Recognizer) *Client {
	n := c.clone()
	n.recognizer = r
	return n
}

// WithLogger sets the logger for debug output. A nil logger disables
// logging.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	n := c.clone()
	if logger == nil {
		logger = nopLogger()
	}
	n.logger = logger
	return n
}

// Options returns a copy of the configured recognition options.
func (c *Client) Options() ocr.Options {
	return c.options.Clone()
}

// Err returns the configuration error, if any, that terminal operations
// will report.
func (c *Client) Err() error {
	return c.err
}

// ensureRecognizer returns the configured recognizer or a Runner for the
// client's binary.
func (c *Client) ensureRecognizer() (ocr.Recognizer, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.recognizer != nil {
		return c.recognizer, nil
	}
	return ocr.NewRunner(c.binary, ocr.WithLogger(c.logger)), nil
}

// FromFile recognizes text in the image file at path.
//
// Example:
//
//	results, err := swiftocr.New("").FromFile(ctx, "scan.png")
func (c *Client) FromFile(ctx context.Context, path string) (*model.Results, error) {
	rec, err := c.ensureRecognizer()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("no filename specified")
	}

	c.logger.Debug("recognizing file",
		zap.String("recognizer", rec.Name()),
		zap.String("path", path),
		zap.Stringer("format", format.Detect(path)))

	records, err := rec.RecognizeFile(ctx, path, c.options)
	if err != nil {
		return nil, fmt.Errorf("recognizing %s: %w", path, err)
	}
	return model.NewResults(records), nil
}

// FromBytes recognizes text in encoded image data. PNG, JPEG, TIFF and HEIC
// are passed to the recognizer as is; GIF, BMP and WebP are converted to PNG
// first. Other data is rejected with ocr.ErrUnsupportedFormat.
func (c *Client) FromBytes(ctx context.Context, data []byte) (*model.Results, error) {
	rec, err := c.ensureRecognizer()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data")
	}

	prepared, src, err := ocr.PrepareImage(data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("recognizing image",
		zap.String("recognizer", rec.Name()),
		zap.Stringer("format", src),
		zap.Int("bytes", len(data)),
		zap.Bool("transcoded", format.DetectFromMagic(prepared) != src))

	records, err := rec.RecognizeImage(ctx, prepared, c.options)
	if err != nil {
		return nil, fmt.Errorf("recognizing %s image: %w", src, err)
	}
	return model.NewResults(records), nil
}

// FromImage recognizes text in a decoded image.
func (c *Client) FromImage(ctx context.Context, img image.Image) (*model.Results, error) {
	if c.err != nil {
		return nil, c.err
	}
	data, err := ocr.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return c.FromBytes(ctx, data)
}

// FromReader recognizes text in an encoded image read from r. The format is
// checked before the rest of the stream is read.
func (c *Client) FromReader(ctx context.Context, r io.Reader) (*model.Results, error) {
	if c.err != nil {
		return nil, c.err
	}

	f, head, err := format.DetectFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if f == format.Unknown {
		return nil, fmt.Errorf("%w: unrecognized image data", ocr.ErrUnsupportedFormat)
	}

	data, err := io.ReadAll(io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return c.FromBytes(ctx, data)
}
