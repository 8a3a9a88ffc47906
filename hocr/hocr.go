// Package hocr reads hOCR, the HTML-based OCR output format written by
// Tesseract and other engines, into raw records.
//
// Each element of interest carries its geometry and confidence in the title
// attribute:
//
//	<span class="ocrx_word" title="bbox 36 92 96 116; x_wconf 96">Invoice</span>
//
// Bounding boxes are converted from hOCR's corner form (x0 y0 x1 y1) to
// origin plus size, and x_wconf (0-100) is scaled to 0-1.
package hocr

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/swiftocr/model"
)

// Level selects the granularity of the records Parse returns.
type Level int

const (
	// LevelWord emits one record per ocrx_word element.
	LevelWord Level = iota
	// LevelLine emits one record per text line. Its confidence is the mean
	// of its words' confidences.
	LevelLine
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWord:
		return "word"
	case LevelLine:
		return "line"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts "word" or "line" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "word":
		return LevelWord, nil
	case "line":
		return LevelLine, nil
	default:
		return 0, fmt.Errorf("unknown hOCR level %q", s)
	}
}

// lineClasses are the hOCR classes Tesseract uses for lines of text.
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

const wordClass = "ocrx_word"

// ParseFile parses the hOCR file at path.
func ParseFile(path string, level Level) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Parse(f, level)
}

// Parse reads hOCR from r and returns records in document order. Elements
// with no text are skipped. A missing or malformed bbox is an error wrapping
// model.ErrMalformedRecord.
func Parse(r io.Reader, level Level) ([]model.Record, error) {
	if level != LevelWord && level != LevelLine {
		return nil, fmt.Errorf("unknown hOCR level %v", level)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	p := &parser{level: level, records: make([]model.Record, 0)}
	if err := p.walk(doc); err != nil {
		return nil, err
	}
	return p.records, nil
}

type parser struct {
	level   Level
	records []model.Record
}

func (p *parser) walk(n *html.Node) error {
	if n.Type == html.ElementNode {
		switch {
		case p.level == LevelWord && hasClass(n, wordClass):
			return p.addWord(n)
		case p.level == LevelLine && hasAnyClass(n, lineClasses):
			return p.addLine(n)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) addWord(n *html.Node) error {
	text := getTextContent(n)
	if text == "" {
		return nil
	}

	props := parseTitle(attr(n, "title"))
	box, err := parseBBox(props["bbox"])
	if err != nil {
		return fmt.Errorf("word %q: %w", text, err)
	}
	conf, _, err := parseConfidence(props["x_wconf"])
	if err != nil {
		return fmt.Errorf("word %q: %w", text, err)
	}

	p.records = append(p.records, model.Record{Text: text, Confidence: conf, BoundingBox: box})
	return nil
}

func (p *parser) addLine(n *html.Node) error {
	var (
		words []string
		sum   float64
		count int
	)
	var collect func(*html.Node) error
	collect = func(c *html.Node) error {
		if c.Type == html.ElementNode && hasClass(c, wordClass) {
			text := getTextContent(c)
			if text == "" {
				return nil
			}
			words = append(words, text)
			conf, ok, err := parseConfidence(parseTitle(attr(c, "title"))["x_wconf"])
			if err != nil {
				return fmt.Errorf("word %q: %w", text, err)
			}
			if ok {
				sum += conf
				count++
			}
			return nil
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			if err := collect(cc); err != nil {
				return err
			}
		}
		return nil
	}
	if err := collect(n); err != nil {
		return err
	}

	text := strings.Join(words, " ")
	if len(words) == 0 {
		// Lines written without word markup.
		text = getTextContent(n)
	}
	if text == "" {
		return nil
	}

	props := parseTitle(attr(n, "title"))
	box, err := parseBBox(props["bbox"])
	if err != nil {
		return fmt.Errorf("line %q: %w", text, err)
	}

	var conf float64
	if count > 0 {
		conf = sum / float64(count)
	} else if c, ok, err := parseConfidence(props["x_wconf"]); err != nil {
		return fmt.Errorf("line %q: %w", text, err)
	} else if ok {
		conf = c
	}

	p.records = append(p.records, model.Record{Text: text, Confidence: conf, BoundingBox: box})
	return nil
}

// parseTitle splits an hOCR title attribute into its semicolon separated
// properties, keyed by property name.
func parseTitle(title string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(title, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, " ")
		props[name] = strings.TrimSpace(value)
	}
	return props
}

func parseBBox(value string) (model.BoundingBox, error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return model.BoundingBox{}, fmt.Errorf("%w: bbox %q needs 4 coordinates", model.ErrMalformedRecord, value)
	}

	var c [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return model.BoundingBox{}, fmt.Errorf("%w: bbox coordinate %q", model.ErrMalformedRecord, f)
		}
		c[i] = v
	}
	if c[2] < c[0] || c[3] < c[1] {
		return model.BoundingBox{}, fmt.Errorf("%w: bbox %q is inverted", model.ErrMalformedRecord, value)
	}

	return model.NewBoundingBox(c[0], c[1], c[2]-c[0], c[3]-c[1]), nil
}

// parseConfidence converts an x_wconf value to 0-1. ok is false when the
// property is absent.
func parseConfidence(value string) (conf float64, ok bool, err error) {
	if value == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: x_wconf %q", model.ErrMalformedRecord, value)
	}
	return v / 100, true, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, c := range classes {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

// getTextContent returns the text under n with runs of whitespace collapsed.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
