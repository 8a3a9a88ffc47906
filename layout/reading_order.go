package layout

import "github.com/tsawler/swiftocr/model"

// ReadingOrder returns the fragments of rs re-sorted top to bottom by line
// and left to right within each line, using the default line configuration.
func ReadingOrder(rs *model.Results) *model.Results {
	return NewLineDetector().Detect(rs).Fragments()
}

// ReadingText returns the text of rs in reading order, one line per row and
// a blank row between paragraphs.
func ReadingText(rs *model.Results) string {
	return NewLineDetector().Detect(rs).GetText()
}
