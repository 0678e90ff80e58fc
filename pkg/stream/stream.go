// Package stream implements the annotated token stream exchanged between the
// hOCR extractor and the matching engine.
//
// A stream is a flat sequence of atoms: paragraph markers, line markers that
// carry the line's bounding box in page pixels (origin top-left), and words.
// Its serialized form joins the atoms with single spaces and renders markers
// as bracketed tags:
//
//	[[PARAGRAPH]] [[LINE 10 20 300 45]] Hello world [[LINE 10 45 280 70]] foo bar
//
// The serialized form is what the matcher and resolver operate on, so it must
// round-trip exactly.
package stream

import (
	"strconv"
	"strings"
)

const (
	// ParagraphTag is the serialized paragraph marker.
	ParagraphTag = "[[PARAGRAPH]]"

	linePrefix = "[[LINE "
	tagOpen    = "[["
	tagClose   = "]]"
)

// Atom is one element of a token stream: Paragraph, Line or Word.
type Atom interface {
	// String renders the atom in its serialized form.
	String() string
	atom()
}

// Paragraph marks the start of a new paragraph.
type Paragraph struct{}

func (Paragraph) String() string { return ParagraphTag }
func (Paragraph) atom()          {}

// Line marks the start of a new text line.
type Line struct {
	X0, Y0, X1, Y1 float64

	// Fields holds the four numbers as they appeared in the source so the
	// marker serializes byte-for-byte. Empty fields are formatted from the
	// float values.
	Fields [4]string
}

// NewLine builds a line marker from numeric coordinates.
func NewLine(x0, y0, x1, y1 float64) Line {
	return Line{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// String renders the marker as "[[LINE x0 y0 x1 y1]]".
func (l Line) String() string {
	vals := [4]float64{l.X0, l.Y0, l.X1, l.Y1}
	parts := make([]string, 4)
	for i := range parts {
		if l.Fields[i] != "" {
			parts[i] = l.Fields[i]
		} else {
			parts[i] = strconv.FormatFloat(vals[i], 'f', -1, 64)
		}
	}
	return linePrefix + strings.Join(parts, " ") + tagClose
}

func (Line) atom() {}

// Word is a single recognized word.
type Word struct {
	Text string
}

func (w Word) String() string { return w.Text }
func (Word) atom()            {}

// Stream is an ordered token stream.
type Stream []Atom

// String serializes the stream: atoms joined by single spaces.
func (s Stream) String() string {
	var builder strings.Builder
	for i, a := range s {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(a.String())
	}
	return builder.String()
}

// Words returns the text of every Word atom in order.
func (s Stream) Words() []string {
	var words []string
	for _, a := range s {
		if w, ok := a.(Word); ok {
			words = append(words, w.Text)
		}
	}
	return words
}

// Lines returns every Line marker in order.
func (s Stream) Lines() []Line {
	var lines []Line
	for _, a := range s {
		if l, ok := a.(Line); ok {
			lines = append(lines, l)
		}
	}
	return lines
}
