package pdfcallout

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrNoPageObject is returned when the generated page object cannot be
	// found in the PDF.
	ErrNoPageObject = errors.New("page object not found")

	// ErrMalformedTrailer is returned when the trailer or startxref of the
	// PDF cannot be read.
	ErrMalformedTrailer = errors.New("malformed trailer")
)

var (
	annotPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/Type\s*/Annot\b[^>]*?/Subtype\s*/(\w+)`),
		regexp.MustCompile(`/Subtype\s*/(\w+)[^>]*?/Type\s*/Annot\b`),
	}

	pageObjectPattern = regexp.MustCompile(`(?m)^(\d+) 0 obj\s*<<\s*/Type\s*/Page\s*/Parent\s+\d+\s+0\s+R`)
	startxrefPattern  = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF\s*$`)
	sizePattern       = regexp.MustCompile(`/Size\s+(\d+)`)
	rootPattern       = regexp.MustCompile(`/Root\s+(\d+\s+\d+\s+R)`)
	infoPattern       = regexp.MustCompile(`/Info\s+(\d+\s+\d+\s+R)`)
	trailerKeyword    = regexp.MustCompile(`(?m)^trailer\s*<<`)
	objHeaderPattern  = regexp.MustCompile(`^ 0 obj\s*`)
	objEndPattern     = regexp.MustCompile(`>>\s*endobj`)
)

// AnnotationCheckResult contains the annotations found in a PDF
type AnnotationCheckResult struct {
	Count    int            // Annotation dictionaries found
	Subtypes map[string]int // Count per subtype (Link, Square, Highlight, ...)
}

// DetectAnnotations scans raw PDF data for annotation dictionaries. Objects
// inside compressed object streams are not seen.
func DetectAnnotations(pdfData []byte) (AnnotationCheckResult, error) {
	result := AnnotationCheckResult{Subtypes: make(map[string]int)}
	if len(pdfData) == 0 {
		return result, fmt.Errorf("empty PDF data")
	}

	seen := make(map[int]bool)
	for _, pattern := range annotPatterns {
		for _, m := range pattern.FindAllSubmatchIndex(pdfData, -1) {
			if seen[m[0]] {
				continue
			}
			seen[m[0]] = true
			result.Subtypes[string(pdfData[m[2]:m[3]])]++
			result.Count++
		}
	}
	return result, nil
}

// pdfTail is what an incremental update needs to know about the file it
// extends.
type pdfTail struct {
	startxref int64
	size      int
	root      string
	info      string
}

// readTail reads the last trailer and startxref of a PDF with a classic
// cross-reference table.
func readTail(pdfData []byte) (pdfTail, error) {
	var tail pdfTail

	m := startxrefPattern.FindSubmatch(pdfData)
	if m == nil {
		return tail, fmt.Errorf("no startxref before %%%%EOF: %w", ErrMalformedTrailer)
	}
	tail.startxref, _ = strconv.ParseInt(string(m[1]), 10, 64)

	locs := trailerKeyword.FindAllIndex(pdfData, -1)
	if len(locs) == 0 {
		return tail, fmt.Errorf("no trailer dictionary: %w", ErrMalformedTrailer)
	}
	trailer := pdfData[locs[len(locs)-1][0]:]

	size := sizePattern.FindSubmatch(trailer)
	root := rootPattern.FindSubmatch(trailer)
	if size == nil || root == nil {
		return tail, fmt.Errorf("trailer without /Size or /Root: %w", ErrMalformedTrailer)
	}
	tail.size, _ = strconv.Atoi(string(size[1]))
	tail.root = string(root[1])
	if info := infoPattern.FindSubmatch(trailer); info != nil {
		tail.info = string(info[1])
	}
	return tail, nil
}

// pageObject is an indirect page object located in raw PDF data.
type pageObject struct {
	num  int
	dict string // The object's dictionary, "<<" through ">>"
}

// findPageObject locates the last page object written by fpdf.
func findPageObject(pdfData []byte) (pageObject, error) {
	locs := pageObjectPattern.FindAllSubmatchIndex(pdfData, -1)
	if len(locs) == 0 {
		return pageObject{}, ErrNoPageObject
	}
	loc := locs[len(locs)-1]
	num, _ := strconv.Atoi(string(pdfData[loc[2]:loc[3]]))

	body := pdfData[loc[3]:]
	start := objHeaderPattern.FindIndex(body)
	end := objEndPattern.FindIndex(body)
	if start == nil || end == nil {
		return pageObject{}, fmt.Errorf("object %d is not terminated: %w", num, ErrNoPageObject)
	}
	return pageObject{num: num, dict: string(body[start[1] : end[0]+2])}, nil
}
