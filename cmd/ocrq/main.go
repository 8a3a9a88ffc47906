// Command ocrq recognizes text in an image, or loads previously recognized
// results, then filters, searches and prints them.
//
// Usage:
//
//	ocrq [flags] <image|results.json|page.hocr|->
//
// Examples:
//
//	ocrq -lang en-US -min-conf 0.8 receipt.png
//	ocrq -search total -i -threshold 0.6 -scores receipt.json
//	tesseract page.png - hocr | ocrq -from hocr -hocr-level line -format lines -
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/swiftocr"
	"github.com/tsawler/swiftocr/format"
	"github.com/tsawler/swiftocr/hocr"
	"github.com/tsawler/swiftocr/layout"
	"github.com/tsawler/swiftocr/model"
	"github.com/tsawler/swiftocr/ocr"
	"github.com/tsawler/swiftocr/similarity"
)

type inputKind string

const (
	inputAuto  inputKind = "auto"
	inputImage inputKind = "image"
	inputJSON  inputKind = "json"
	inputHOCR  inputKind = "hocr"
)

// filters holds the filter flags. A nil field was not given on the command
// line.
type filters struct {
	minConfidence *float64
	within        *model.BoundingBox
	contains      *string
	exact         *string
	match         *string
	ignoreCase    bool
}

type search struct {
	query     string
	threshold float64
	scorer    similarity.Scorer
	scores    bool
}

type options struct {
	path       string
	from       inputKind
	hocrLevel  hocr.Level
	binary     string
	configFile string
	tesseract  bool
	recognize  ocr.Options
	timeout    time.Duration
	filters    filters
	search     search
	order      bool
	format     string
	verbose    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "ocrq: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ocrq: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("ocrq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ocrq [flags] <image|results.json|page.hocr|->\n")
		fs.PrintDefaults()
	}

	from := fs.String("from", string(inputAuto), "input kind: auto, image, json or hocr")
	level := fs.String("hocr-level", "word", "hOCR granularity: word or line")
	binary := fs.String("bin", swiftocr.DefaultBinary, "swiftocr executable")
	configFile := fs.String("config", "", "YAML file with recognition options")
	tesseract := fs.Bool("tesseract", false, "recognize with Tesseract instead of swiftocr (needs -tags ocr)")
	fast := fs.Bool("fast", false, "faster, less accurate recognition")
	correction := fs.Bool("correction", false, "enable language correction")
	langs := fs.String("lang", "", "comma-separated recognition languages")
	words := fs.String("words", "", "comma-separated custom words")
	wordsFile := fs.String("words-file", "", "file of custom words, one per line")
	timeout := fs.Duration("timeout", 0, "recognition timeout (0 for none)")

	minConf := fs.Float64("min-conf", 0, "drop results below this confidence")
	within := fs.String("within", "", "keep results inside x,y,width,height")
	contains := fs.String("contains", "", "keep results containing this text")
	exact := fs.String("exact", "", "keep results equal to this text")
	match := fs.String("match", "", "keep results whose text starts with a match of this regular expression")
	ignoreCase := fs.Bool("i", false, "case-insensitive -contains, -exact, -match and -search")

	query := fs.String("search", "", "rank results by similarity to this text")
	threshold := fs.Float64("threshold", 0, "minimum -search score")
	scorer := fs.String("scorer", "ratio", "similarity measure: "+strings.Join(similarity.Names(), ", "))
	scores := fs.Bool("scores", false, "print -search scores")

	order := fs.Bool("order", false, "sort results into reading order")
	outFormat := fs.String("format", "table", "output format: table, json, text or lines")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("missing input path")
	}

	opts.path = fs.Arg(0)
	opts.from = inputKind(*from)
	switch opts.from {
	case inputAuto, inputImage, inputJSON, inputHOCR:
	default:
		return options{}, fmt.Errorf("unknown input kind %q", *from)
	}

	var err error
	if opts.hocrLevel, err = hocr.ParseLevel(*level); err != nil {
		return options{}, err
	}

	opts.binary = *binary
	opts.configFile = *configFile
	opts.tesseract = *tesseract
	opts.timeout = *timeout
	opts.recognize = ocr.Options{
		Fast:            *fast,
		Languages:       splitList(*langs),
		Correction:      *correction,
		CustomWords:     splitList(*words),
		CustomWordsFile: *wordsFile,
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts.filters = filters{ignoreCase: *ignoreCase}
	if set["min-conf"] {
		opts.filters.minConfidence = minConf
	}
	if set["contains"] {
		opts.filters.contains = contains
	}
	if set["exact"] {
		opts.filters.exact = exact
	}
	if set["match"] {
		opts.filters.match = match
	}
	if *within != "" {
		box, err := parseBox(*within)
		if err != nil {
			return options{}, err
		}
		opts.filters.within = &box
	}

	opts.search = search{query: *query, threshold: *threshold, scores: *scores}
	if opts.search.scorer, err = similarity.ByName(*scorer); err != nil {
		return options{}, err
	}

	opts.order = *order
	switch *outFormat {
	case "table", "json", "text", "lines":
		opts.format = *outFormat
	default:
		return options{}, fmt.Errorf("unknown output format %q", *outFormat)
	}
	opts.verbose = *verbose

	return opts, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBox parses "x,y,width,height".
func parseBox(s string) (model.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.BoundingBox{}, fmt.Errorf("box %q: want x,y,width,height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.BoundingBox{}, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = n
	}
	return model.NewBoundingBox(v[0], v[1], v[2], v[3]), nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	results, err := load(ctx, opts, stdin, logger)
	if err != nil {
		return err
	}
	logger.Debug("loaded results", zap.Int("count", results.Len()))

	results, err = applyFilters(results, opts.filters)
	if err != nil {
		return err
	}
	if opts.order {
		results = layout.ReadingOrder(results)
	}

	if opts.search.query != "" {
		searchOpts := []model.SearchOption{
			model.WithThreshold(opts.search.threshold),
			model.WithScorer(opts.search.scorer),
		}
		if opts.filters.ignoreCase {
			searchOpts = append(searchOpts, model.WithLowercase())
		}
		if opts.search.scores {
			scored := results.SearchAndScore(opts.search.query, searchOpts...)
			logger.Debug("searched", zap.String("query", opts.search.query), zap.Int("matches", len(scored)))
			return writeScored(stdout, scored, opts.format)
		}
		results = results.Search(opts.search.query, searchOpts...)
		logger.Debug("searched", zap.String("query", opts.search.query), zap.Int("matches", results.Len()))
	}

	return writeResults(stdout, results, opts.format)
}

// sniffSize is how much of an input file is read to guess its kind.
const sniffSize = 512

// load produces results from the input named by opts.path.
func load(ctx context.Context, opts options, stdin io.Reader, logger *zap.Logger) (*model.Results, error) {
	if opts.path == "-" {
		return loadStdin(ctx, opts, stdin, logger)
	}

	kind := opts.from
	if kind == inputAuto {
		var err error
		if kind, err = sniffFile(opts.path); err != nil {
			return nil, err
		}
	}
	logger.Debug("loading input", zap.String("path", opts.path), zap.String("kind", string(kind)))

	switch kind {
	case inputJSON:
		return swiftocr.LoadFile(opts.path)
	case inputHOCR:
		f, err := os.Open(opts.path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		defer f.Close()
		return swiftocr.FromHOCR(f, opts.hocrLevel)
	}

	client, closer, err := newClient(opts, logger)
	if err != nil {
		return nil, err
	}
	defer closer()
	return client.FromFile(ctx, opts.path)
}

func loadStdin(ctx context.Context, opts options, stdin io.Reader, logger *zap.Logger) (*model.Results, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	kind := opts.from
	if kind == inputAuto {
		kind = detectInput(opts.path, data)
	}
	logger.Debug("loading input", zap.String("path", opts.path), zap.String("kind", string(kind)))

	switch kind {
	case inputJSON:
		return model.ParseResults(data)
	case inputHOCR:
		return swiftocr.FromHOCR(bytes.NewReader(data), opts.hocrLevel)
	}

	client, closer, err := newClient(opts, logger)
	if err != nil {
		return nil, err
	}
	defer closer()
	return client.FromBytes(ctx, data)
}

// sniffFile guesses the kind of the file at path from its extension, or
// else from its first sniffSize bytes.
func sniffFile(path string) (inputKind, error) {
	if kind := detectInput(path, nil); kind != inputImage {
		return kind, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return detectInput(path, head[:n]), nil
}

// newClient builds the OCR client described by opts. The returned function
// releases the recognizer.
func newClient(opts options, logger *zap.Logger) (*swiftocr.Client, func(), error) {
	client := swiftocr.New(opts.binary).WithLogger(logger)
	if opts.configFile != "" {
		client = client.WithConfigFile(opts.configFile)
		if err := client.Err(); err != nil {
			return nil, nil, err
		}
	}
	client = client.
		Languages(opts.recognize.Languages...).
		CustomWords(opts.recognize.CustomWords...)
	if opts.recognize.Fast {
		client = client.Fast()
	}
	if opts.recognize.Correction {
		client = client.Correction()
	}
	if opts.recognize.CustomWordsFile != "" {
		client = client.CustomWordsFile(opts.recognize.CustomWordsFile)
	}

	if !opts.tesseract {
		return client, func() {}, nil
	}
	tess, err := ocr.NewTesseract()
	if err != nil {
		return nil, nil, err
	}
	return client.WithRecognizer(tess), func() { _ = tess.Close() }, nil
}

// detectInput guesses the input kind from the file extension, then from the
// first non-space byte.
func detectInput(path string, data []byte) inputKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return inputJSON
	case ".hocr", ".html", ".htm", ".xhtml":
		return inputHOCR
	}

	if format.DetectFromMagic(data) != format.Unknown {
		return inputImage
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			return inputJSON
		case '<':
			return inputHOCR
		}
	}
	return inputImage
}

func applyFilters(rs *model.Results, f filters) (*model.Results, error) {
	if f.minConfidence != nil {
		rs = rs.MinimumConfidence(*f.minConfidence)
	}
	if f.within != nil {
		rs = rs.Within(f.within.X, f.within.Y, f.within.Width, f.within.Height)
	}
	if f.contains != nil {
		rs = rs.Containing(*f.contains, f.ignoreCase)
	}
	if f.exact != nil {
		rs = rs.Exactly(*f.exact, f.ignoreCase)
	}
	if f.match != nil {
		var flags model.MatchFlag
		if f.ignoreCase {
			flags |= model.IgnoreCase
		}
		var err error
		if rs, err = rs.Matching(*f.match, flags); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func writeResults(w io.Writer, rs *model.Results, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rs)
	case "text":
		if rs.IsEmpty() {
			return nil
		}
		_, err := fmt.Fprintln(w, rs.Text("\n"))
		return err
	case "lines":
		if rs.IsEmpty() {
			return nil
		}
		_, err := fmt.Fprintln(w, layout.ReadingText(rs))
		return err
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TEXT\tCONFIDENCE\tX\tY\tWIDTH\tHEIGHT")
		for _, r := range rs.Items() {
			b := r.BoundingBox
			fmt.Fprintf(tw, "%s\t%.3f\t%d\t%d\t%d\t%d\n", r.Text, r.Confidence, b.X, b.Y, b.Width, b.Height)
		}
		return tw.Flush()
	}
}

type scoredRecord struct {
	Score float64 `json:"score"`
	model.Record
}

func writeScored(w io.Writer, scored []model.Scored, format string) error {
	switch format {
	case "json":
		out := make([]scoredRecord, len(scored))
		for i, s := range scored {
			out[i] = scoredRecord{Score: s.Score, Record: s.Result.Record()}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text", "lines":
		for _, s := range scored {
			if _, err := fmt.Fprintf(w, "%.3f %s\n", s.Score, s.Result.Text); err != nil {
				return err
			}
		}
		return nil
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCORE\tTEXT\tCONFIDENCE\tX\tY\tWIDTH\tHEIGHT")
		for _, s := range scored {
			b := s.Result.BoundingBox
			fmt.Fprintf(tw, "%.3f\t%s\t%.3f\t%d\t%d\t%d\t%d\n", s.Score, s.Result.Text, s.Result.Confidence, b.X, b.Y, b.Width, b.Height)
		}
		return tw.Flush()
	}
}
