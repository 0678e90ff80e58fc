package hocr

import (
	"strings"

	"github.com/gardar/ocrcallout/pkg/stream"
)

// TokenStream serializes a page into an annotated token stream: a paragraph
// marker for every paragraph, a line marker carrying the line's bbox for
// every line and the words of the line after it.
//
// Paragraphs are visited area by area, then those directly on the page.
// Lines outside any paragraph get a paragraph marker of their own. Words
// outside any line are placed under a line marker built from the bbox of
// their paragraph or area.
//
// A line without a bbox gets no line marker: its words stay under the
// previous line, or under none at all, so that missing geometry is never
// turned into a box at the origin.
func TokenStream(page Page) stream.Stream {
	var b tokenBuilder
	for _, area := range page.Areas {
		for _, para := range area.Paragraphs {
			b.paragraph(para)
		}
		b.loose(area.Lines, area.Words, area.BBox)
	}
	for _, para := range page.Paragraphs {
		b.paragraph(para)
	}
	b.loose(page.Lines, nil, page.BBox)
	return b.atoms
}

type tokenBuilder struct {
	atoms stream.Stream
}

func (b *tokenBuilder) paragraph(para Paragraph) {
	b.atoms = append(b.atoms, stream.Paragraph{})
	for _, line := range para.Lines {
		b.line(line.BBox, line.Words)
	}
	if len(para.Words) > 0 {
		b.line(para.BBox, para.Words)
	}
}

// loose emits lines and words that have no paragraph parent.
func (b *tokenBuilder) loose(lines []Line, words []Word, box BoundingBox) {
	if len(lines) == 0 && len(words) == 0 {
		return
	}
	b.atoms = append(b.atoms, stream.Paragraph{})
	for _, line := range lines {
		b.line(line.BBox, line.Words)
	}
	if len(words) > 0 {
		b.line(box, words)
	}
}

func (b *tokenBuilder) line(box BoundingBox, words []Word) {
	if !box.IsZero() {
		b.atoms = append(b.atoms, lineMarker(box))
	}
	for _, w := range words {
		// Word atoms never hold whitespace; an empty word adds nothing.
		for _, text := range strings.Fields(w.Text) {
			b.atoms = append(b.atoms, stream.Word{Text: text})
		}
	}
}

// lineMarker converts a bbox to a line marker, keeping the numbers as they
// were written in the hOCR.
func lineMarker(box BoundingBox) stream.Line {
	line := stream.NewLine(box.X1, box.Y1, box.X2, box.Y2)
	if box.Fields != [4]string{} {
		line.Fields = box.Fields
	}
	return line
}
