package hocr

import (
	"fmt"
	"strconv"
)

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities and the like
	Pages    []Page            // Pages in the document
}

// Page returns the page with the given 1-based number in document order.
func (h HOCR) Page(n int) (Page, error) {
	if n < 1 || n > len(h.Pages) {
		return Page{}, fmt.Errorf("page %d out of range, document has %d: %w", n, len(h.Pages), ErrPageOutOfRange)
	}
	return h.Pages[n-1], nil
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string
	PageNumber int         // ppageno, 0-based as written by Tesseract
	ImageName  string      // Source image filename
	BBox       BoundingBox // Page size in image pixels
	Areas      []Area      // Content areas (columns)
	Paragraphs []Paragraph // Paragraphs outside any area
	Lines      []Line      // Lines outside any paragraph or area
}

// Area is a content area (column or region)
// Corresponds to hOCR element with class: 'ocr_carea'
type Area struct {
	ID         string
	BBox       BoundingBox
	Paragraphs []Paragraph
	Lines      []Line // Lines outside any paragraph
	Words      []Word // Words outside any line
}

// Paragraph corresponds to hOCR element with class: 'ocr_par'
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BoundingBox
	Lines []Line
	Words []Word // Words outside any line
}

// Line corresponds to hOCR element with class: 'ocr_line'
type Line struct {
	ID       string
	BBox     BoundingBox
	Baseline string
	Words    []Word
}

// Word is a recognized word with its bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
}

// BoundingBox is the hOCR 'bbox' property: left, top, right, bottom in image
// pixels.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64

	// Fields holds the four numbers as written in the title attribute. Empty
	// for boxes that were not parsed.
	Fields [4]string
}

// NewBoundingBox creates a bounding box from coordinates
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// IsZero reports whether the box has no extent and no source text.
func (b BoundingBox) IsZero() bool {
	return b.X1 == 0 && b.Y1 == 0 && b.X2 == 0 && b.Y2 == 0 && b.Fields == [4]string{}
}

// Width returns the horizontal extent.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

func parseBoundingBox(values []string) (BoundingBox, error) {
	if len(values) != 4 {
		return BoundingBox{}, fmt.Errorf("bbox needs 4 values, got %d", len(values))
	}
	var box BoundingBox
	coords := [4]*float64{&box.X1, &box.Y1, &box.X2, &box.Y2}
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bbox value %q: %w", v, err)
		}
		*coords[i] = f
		box.Fields[i] = v
	}
	return box, nil
}
