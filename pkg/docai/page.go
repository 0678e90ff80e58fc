package docai

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrcallout/pkg/hocr"
)

// PageHOCR converts one page of a Document AI response to an hOCR page.
//
// Blocks become content areas. Paragraphs, lines and tokens are assigned to
// their parent by text anchor containment, since Document AI lists them as
// flat per-page slices. Paragraphs outside every block and lines outside
// every paragraph are kept on the page itself.
func PageHOCR(doc *documentaipb.Document, pageNumber int) (hocr.Page, error) {
	pages := doc.GetPages()
	if pageNumber < 1 || pageNumber > len(pages) {
		return hocr.Page{}, fmt.Errorf("page %d out of range, document has %d: %w", pageNumber, len(pages), ErrPageOutOfRange)
	}
	return convertPage(pages[pageNumber-1], doc.GetText(), pageNumber), nil
}

func convertPage(page *documentaipb.Document_Page, fullText string, pageNumber int) hocr.Page {
	dim := page.GetDimension()
	out := hocr.Page{
		ID:         fmt.Sprintf("page_%d", pageNumber),
		PageNumber: pageNumber - 1,
	}
	if dim != nil {
		out.BBox = hocr.NewBoundingBox(0, 0, math.Round(float64(dim.GetWidth())), math.Round(float64(dim.GetHeight())))
	}

	assignedParas := make(map[int]bool)
	assignedLines := make(map[int]bool)

	for aidx, block := range page.GetBlocks() {
		area := hocr.Area{
			ID:   fmt.Sprintf("carea_%d_%d", pageNumber, aidx),
			BBox: boundingBox(block.GetLayout(), dim),
		}
		for pidx, para := range page.GetParagraphs() {
			if assignedParas[pidx] || !isElementInParent(para.GetLayout(), block.GetLayout()) {
				continue
			}
			assignedParas[pidx] = true
			area.Paragraphs = append(area.Paragraphs, convertParagraph(page, fullText, pidx, pageNumber, assignedLines))
		}
		out.Areas = append(out.Areas, area)
	}

	for pidx := range page.GetParagraphs() {
		if assignedParas[pidx] {
			continue
		}
		out.Paragraphs = append(out.Paragraphs, convertParagraph(page, fullText, pidx, pageNumber, assignedLines))
	}

	for lidx, line := range page.GetLines() {
		if assignedLines[lidx] {
			continue
		}
		out.Lines = append(out.Lines, convertLine(page, line, fullText, pageNumber, lidx))
	}
	return out
}

func convertParagraph(page *documentaipb.Document_Page, fullText string, pidx, pageNumber int, assignedLines map[int]bool) hocr.Paragraph {
	para := page.GetParagraphs()[pidx]
	out := hocr.Paragraph{
		ID:   fmt.Sprintf("par_%d_%d", pageNumber, pidx),
		BBox: boundingBox(para.GetLayout(), page.GetDimension()),
	}
	if langs := para.GetDetectedLanguages(); len(langs) > 0 {
		out.Lang = langs[0].GetLanguageCode()
	}
	for lidx, line := range page.GetLines() {
		if assignedLines[lidx] || !isElementInParent(line.GetLayout(), para.GetLayout()) {
			continue
		}
		assignedLines[lidx] = true
		out.Lines = append(out.Lines, convertLine(page, line, fullText, pageNumber, lidx))
	}
	return out
}

func convertLine(page *documentaipb.Document_Page, line *documentaipb.Document_Page_Line, fullText string, pageNumber, lidx int) hocr.Line {
	out := hocr.Line{
		ID:   fmt.Sprintf("line_%d_%d", pageNumber, lidx),
		BBox: boundingBox(line.GetLayout(), page.GetDimension()),
	}
	for tidx, token := range page.GetTokens() {
		if !isElementInParent(token.GetLayout(), line.GetLayout()) {
			continue
		}
		text := strings.Join(strings.Fields(textFromLayout(token.GetLayout(), fullText)), " ")
		if text == "" {
			continue
		}
		out.Words = append(out.Words, hocr.Word{
			ID:         fmt.Sprintf("word_%d_%d_%d", pageNumber, lidx, tidx),
			Text:       text,
			BBox:       boundingBox(token.GetLayout(), page.GetDimension()),
			Confidence: float64(token.GetLayout().GetConfidence() * 100),
		})
	}
	return out
}

// boundingBox scales the normalized bounding polygon of a layout to page
// pixels, rounded to whole pixels the way hOCR writes them.
func boundingBox(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) hocr.BoundingBox {
	vertices := layout.GetBoundingPoly().GetNormalizedVertices()
	if dim == nil || len(vertices) == 0 {
		return hocr.BoundingBox{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		x := float64(v.GetX()) * float64(dim.GetWidth())
		y := float64(v.GetY()) * float64(dim.GetHeight())
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return hocr.NewBoundingBox(math.Round(minX), math.Round(minY), math.Round(maxX), math.Round(maxY))
}

// isElementInParent reports whether the first text segment of an element
// lies inside the first text segment of its candidate parent.
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	elementSegs := element.GetTextAnchor().GetTextSegments()
	parentSegs := parent.GetTextAnchor().GetTextSegments()
	if len(elementSegs) == 0 || len(parentSegs) == 0 {
		return false
	}
	return elementSegs[0].GetStartIndex() >= parentSegs[0].GetStartIndex() &&
		elementSegs[0].GetEndIndex() <= parentSegs[0].GetEndIndex()
}

// textFromLayout extracts text from a layout's text anchor segments.
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	segments := layout.GetTextAnchor().GetTextSegments()
	if len(segments) == 0 {
		return ""
	}
	runes := []rune(fullText)
	var result strings.Builder
	for _, seg := range segments {
		start := int(seg.GetStartIndex())
		end := min(int(seg.GetEndIndex()), len(runes))
		start = max(0, min(start, end))
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}
