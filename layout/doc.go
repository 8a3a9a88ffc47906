// Package layout recovers text lines and reading order from OCR results.
//
// OCR engines report fragments in their own order, which is not always the
// order a person would read them. The [LineDetector] groups fragments whose
// vertical centres are close into lines, sorts each line left to right and
// orders the lines top to bottom:
//
//	lines := layout.NewLineDetector().Detect(results)
//	fmt.Println(lines.GetText())
//
// For the common cases there are shortcuts:
//
//	ordered := layout.ReadingOrder(results)   // *model.Results, re-sorted
//	text := layout.ReadingText(results)       // lines joined by newlines
//
// Coordinates are image coordinates: the origin is the top-left corner and
// Y grows downwards.
package layout
