package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/swiftocr/model"
)

// noTextMarker is what swiftocr prints on stderr, with a non-zero exit
// status, when an image contains no text.
const noTextMarker = "No text found"

// stdinPath tells swiftocr to read the image from standard input.
const stdinPath = "-"

// Runner runs the swiftocr command-line tool.
type Runner struct {
	binary string
	logger *zap.Logger

	// command builds the process; replaced in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for debug output. A nil logger disables
// logging.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger == nil {
			logger = zap.NewNop()
		}
		r.logger = logger
	}
}

// NewRunner creates a Runner for the swiftocr executable at binary.
func NewRunner(binary string, opts ...RunnerOption) *Runner {
	r := &Runner{
		binary:  binary,
		logger:  zap.NewNop(),
		command: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns "swiftocr".
func (r *Runner) Name() string {
	return "swiftocr"
}

// Binary returns the path of the executable the runner starts.
func (r *Runner) Binary() string {
	return r.binary
}

// RecognizeFile runs swiftocr on the image file at path.
func (r *Runner) RecognizeFile(ctx context.Context, path string, opts Options) ([]model.Record, error) {
	if path == "" {
		return nil, fmt.Errorf("no image path specified")
	}
	return r.run(ctx, path, nil, opts)
}

// RecognizeImage runs swiftocr with data piped to its standard input.
func (r *Runner) RecognizeImage(ctx context.Context, data []byte, opts Options) ([]model.Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data")
	}
	return r.run(ctx, stdinPath, data, opts)
}

func (r *Runner) run(ctx context.Context, target string, stdin []byte, opts Options) ([]model.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r.binary == "" {
		return nil, fmt.Errorf("no swiftocr executable specified")
	}

	args := append([]string{target}, opts.Args()...)
	cmd := r.command(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	log := r.logger.With(
		zap.String("binary", r.binary),
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("running %s: %w", r.binary, ctxErr)
		}

		msg := strings.TrimSpace(stderr.String())
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			if strings.Contains(msg, noTextMarker) {
				log.Debug("no text recognized")
				return []model.Record{}, nil
			}
		}

		log.Debug("recognizer failed", zap.Int("exit_code", code), zap.String("stderr", msg), zap.Error(err))
		return nil, &ToolError{Tool: r.binary, ExitCode: code, Stderr: msg, Err: err}
	}

	records, err := model.ParseRecords(stdout.Bytes())
	if err != nil {
		log.Debug("undecodable recognizer output", zap.Int("bytes", stdout.Len()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	log.Debug("recognized text", zap.Int("records", len(records)))
	return records, nil
}
