package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/swiftocr/model"
)

// Line is a single line of text made of one or more OCR fragments.
type Line struct {
	// Results holds the line's fragments sorted left to right.
	Results *model.Results

	// Bounds is the union of the fragments' bounding boxes.
	Bounds model.BoundingBox

	// Index is the line's position in its layout (0-based, top to bottom).
	Index int

	// SpacingBefore is the vertical gap from the previous line's bottom edge
	// (0 for the first line). Negative when the lines overlap.
	SpacingBefore int

	// SpacingAfter is the vertical gap to the next line (0 for the last line).
	SpacingAfter int
}

// LineLayout is the detected line structure of a set of results.
type LineLayout struct {
	// Lines are the detected text lines, sorted top to bottom.
	Lines []Line

	// AverageLineSpacing is the mean gap between consecutive lines.
	AverageLineSpacing float64

	// AverageLineHeight is the mean line height.
	AverageLineHeight float64

	// Config is the configuration used for detection.
	Config LineConfig
}

// LineConfig holds configuration for line detection.
type LineConfig struct {
	// HeightTolerance is the distance between vertical centres, as a
	// fraction of the median fragment height, within which two fragments
	// belong to the same line (default: 0.5).
	HeightTolerance float64

	// MinLineWidth drops lines narrower than this many pixels (default: 0).
	MinLineWidth int

	// ParagraphSpacing is the multiple of the average line spacing above
	// which GetText inserts a blank line (default: 1.5).
	ParagraphSpacing float64
}

// DefaultLineConfig returns sensible default configuration.
func DefaultLineConfig() LineConfig {
	return LineConfig{
		HeightTolerance:  0.5,
		MinLineWidth:     0,
		ParagraphSpacing: 1.5,
	}
}

// LineDetector groups OCR fragments into lines.
type LineDetector struct {
	config LineConfig
}

// NewLineDetector creates a new line detector with default configuration.
func NewLineDetector() *LineDetector {
	return &LineDetector{config: DefaultLineConfig()}
}

// NewLineDetectorWithConfig creates a line detector with custom configuration.
func NewLineDetectorWithConfig(config LineConfig) *LineDetector {
	return &LineDetector{config: config}
}

// GroupLines groups the fragments of rs into lines using config.
func GroupLines(rs *model.Results, config LineConfig) []Line {
	return NewLineDetectorWithConfig(config).Detect(rs).Lines
}

// Detect groups the fragments of rs into lines. Every fragment ends up in
// exactly one line unless MinLineWidth drops the line.
func (d *LineDetector) Detect(rs *model.Results) *LineLayout {
	layout := &LineLayout{Config: d.config}
	if rs == nil || rs.IsEmpty() {
		return layout
	}

	groups := d.groupIntoLines(rs.Records())
	layout.Lines = d.buildLines(groups)
	d.calculateSpacing(layout.Lines)
	layout.AverageLineSpacing, layout.AverageLineHeight = d.calculateStatistics(layout.Lines)
	return layout
}

// groupIntoLines clusters records by vertical centre and sorts each cluster
// by X. Ties keep the recognizer's order.
func (d *LineDetector) groupIntoLines(records []model.Record) [][]model.Record {
	tolerance := medianHeight(records) * d.config.HeightTolerance

	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return centerY(sorted[i]) < centerY(sorted[j])
	})

	var lines [][]model.Record
	var current []model.Record
	var sum float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].BoundingBox.X < current[j].BoundingBox.X
		})
		lines = append(lines, current)
	}

	for _, rec := range sorted {
		cy := centerY(rec)
		if len(current) > 0 && absFloat64(cy-sum/float64(len(current))) <= tolerance {
			current = append(current, rec)
			sum += cy
			continue
		}
		flush()
		current = []model.Record{rec}
		sum = cy
	}
	flush()

	return lines
}

// buildLines creates Line values from record groups.
func (d *LineDetector) buildLines(groups [][]model.Record) []Line {
	lines := make([]Line, 0, len(groups))

	for _, records := range groups {
		bounds := records[0].BoundingBox
		for _, r := range records[1:] {
			bounds = bounds.Union(r.BoundingBox)
		}

		// Skip lines that are too narrow
		if bounds.Width < d.config.MinLineWidth {
			continue
		}

		lines = append(lines, Line{
			Results: model.NewResults(records),
			Bounds:  bounds,
			Index:   len(lines),
		})
	}

	return lines
}

// calculateSpacing fills in the gaps between consecutive lines.
func (d *LineDetector) calculateSpacing(lines []Line) {
	for i := 1; i < len(lines); i++ {
		prev := lines[i-1].Bounds
		lines[i].SpacingBefore = lines[i].Bounds.Y - (prev.Y + prev.Height)
		lines[i-1].SpacingAfter = lines[i].SpacingBefore
	}
}

// calculateStatistics returns the average spacing and line height.
func (d *LineDetector) calculateStatistics(lines []Line) (avgSpacing, avgHeight float64) {
	if len(lines) == 0 {
		return 0, 0
	}

	totalHeight := 0
	for _, line := range lines {
		totalHeight += line.Bounds.Height
	}
	avgHeight = float64(totalHeight) / float64(len(lines))

	if len(lines) > 1 {
		totalSpacing := 0
		for _, line := range lines[1:] {
			totalSpacing += line.SpacingBefore
		}
		avgSpacing = float64(totalSpacing) / float64(len(lines)-1)
	}

	return avgSpacing, avgHeight
}

func centerY(r model.Record) float64 {
	return float64(r.BoundingBox.Y) + float64(r.BoundingBox.Height)/2
}

func medianHeight(records []model.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	heights := make([]int, len(records))
	for i, r := range records {
		heights[i] = r.BoundingBox.Height
	}
	sort.Ints(heights)

	mid := len(heights) / 2
	if len(heights)%2 == 1 {
		return float64(heights[mid])
	}
	return float64(heights[mid-1]+heights[mid]) / 2
}

func absFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// LineLayout methods

// LineCount returns the number of detected lines.
func (l *LineLayout) LineCount() int {
	if l == nil {
		return 0
	}
	return len(l.Lines)
}

// GetLine returns a specific line by index, or nil when out of range.
func (l *LineLayout) GetLine(index int) *Line {
	if l == nil || index < 0 || index >= len(l.Lines) {
		return nil
	}
	return &l.Lines[index]
}

// GetText returns all text in line order. Lines are separated by a newline,
// or by a blank line where the gap suggests a paragraph break.
func (l *LineLayout) GetText() string {
	if l == nil || len(l.Lines) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range l.Lines {
		sb.WriteString(line.Text())
		if i < len(l.Lines)-1 {
			if l.IsParagraphBreak(i) {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// Fragments returns every fragment in reading order.
func (l *LineLayout) Fragments() *model.Results {
	if l == nil {
		return model.NewResults(nil)
	}

	var records []model.Record
	for _, line := range l.Lines {
		records = append(records, line.Results.Records()...)
	}
	return model.NewResults(records)
}

// FindLinesInRegion returns lines whose bounds overlap box.
func (l *LineLayout) FindLinesInRegion(box model.BoundingBox) []Line {
	if l == nil {
		return nil
	}

	var result []Line
	for _, line := range l.Lines {
		b := line.Bounds
		if b.X+b.Width > box.X && b.X < box.X+box.Width &&
			b.Y+b.Height > box.Y && b.Y < box.Y+box.Height {
			result = append(result, line)
		}
	}
	return result
}

// IsParagraphBreak reports whether the gap after the given line is
// significantly larger than average.
func (l *LineLayout) IsParagraphBreak(lineIndex int) bool {
	if l == nil || lineIndex < 0 || lineIndex >= len(l.Lines)-1 {
		return false
	}
	gap := float64(l.Lines[lineIndex].SpacingAfter)
	if l.AverageLineSpacing <= 0 {
		// Overlapping or touching lines; fall back to the line height.
		return gap > l.AverageLineHeight
	}
	return gap > l.AverageLineSpacing*l.Config.ParagraphSpacing
}

// Line methods

// Text joins the line's fragment texts with single spaces.
func (line *Line) Text() string {
	if line == nil || line.Results == nil {
		return ""
	}
	return line.Results.Text(" ")
}

// WordCount returns an approximate word count for the line.
func (line *Line) WordCount() int {
	return len(strings.Fields(line.Text()))
}

// IsIndented returns true if the line starts more than tolerance pixels to
// the right of margin.
func (line *Line) IsIndented(margin, tolerance int) bool {
	if line == nil {
		return false
	}
	return line.Bounds.X > margin+tolerance
}

// ContainsPoint returns true if the point is within the line's bounds.
func (line *Line) ContainsPoint(x, y int) bool {
	if line == nil {
		return false
	}
	b := line.Bounds
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}
