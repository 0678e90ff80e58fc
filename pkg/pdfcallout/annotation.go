package pdfcallout

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gardar/ocrcallout/pkg/locate"
)

// Kind selects the annotation subtype drawn for a callout.
type Kind int

const (
	KindRectangle Kind = iota // /Square outline
	KindHighlight             // /Highlight with quad points
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindHighlight:
		return "highlight"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) subtype() string {
	if k == KindHighlight {
		return "Highlight"
	}
	return "Square"
}

// ParseKind parses a kind name as used in flags and config files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rectangle", "rect", "square", "box":
		return KindRectangle, nil
	case "highlight", "hl":
		return KindHighlight, nil
	}
	return 0, fmt.Errorf("unknown annotation kind %q (want rectangle or highlight)", s)
}

// FlagPrint is the annotation flag that makes viewers print the annotation.
const FlagPrint = 4

// Style is the appearance of an annotation.
type Style struct {
	Kind  Kind
	Color colorful.Color
	Width float64 // Border width in points; ignored for highlights
	Flags int
}

// DefaultStyle returns the style used when none is configured: a red
// outline of width 1 for rectangles and yellow for highlights.
func DefaultStyle(kind Kind) Style {
	style := Style{Kind: kind, Width: 1, Flags: FlagPrint}
	if kind == KindHighlight {
		style.Color = colorful.Color{R: 1, G: 1, B: 0}
	} else {
		style.Color = colorful.Color{R: 1, G: 0, B: 0}
	}
	return style
}

var namedColors = map[string]string{
	"red":     "#ff0000",
	"green":   "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"black":   "#000000",
}

// ParseColor parses a color name (red, yellow, ...) or a hex triplet with or
// without the leading '#'.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Annotation is a PDF annotation in page space, origin bottom-left.
type Annotation struct {
	Style      Style
	Rect       [4]float64 // llx lly urx ury
	QuadPoints []float64  // Highlights only
	Contents   string
}

// Render converts a box in image space (origin top-left, y growing down) to
// an annotation on a page of the given height.
func Render(box locate.Box, pageHeight float64, style Style) Annotation {
	llx, lly := box.X0, pageHeight-box.Y1
	urx, ury := box.X1, pageHeight-box.Y0

	a := Annotation{
		Style: style,
		Rect:  [4]float64{llx, lly, urx, ury},
	}
	if style.Kind == KindHighlight {
		a.QuadPoints = []float64{llx, ury, urx, ury, llx, lly, urx, lly}
	}
	return a
}

// dict serializes the annotation dictionary. page is the object number of
// the page the annotation belongs to.
func (a Annotation) dict(page int) string {
	var b strings.Builder
	b.WriteString("<</Type /Annot /Subtype /")
	b.WriteString(a.Style.Kind.subtype())
	fmt.Fprintf(&b, " /Rect %s", numberArray(a.Rect[:]))
	fmt.Fprintf(&b, " /C %s", numberArray([]float64{a.Style.Color.R, a.Style.Color.G, a.Style.Color.B}))
	if a.Style.Kind == KindHighlight {
		fmt.Fprintf(&b, " /QuadPoints %s", numberArray(a.QuadPoints))
	} else {
		fmt.Fprintf(&b, " /Border [0 0 %s]", formatNumber(a.Style.Width))
	}
	fmt.Fprintf(&b, " /F %d /P %d 0 R", a.Style.Flags, page)
	if a.Contents != "" {
		b.WriteString(" /Contents ")
		b.WriteString(pdfString(a.Contents))
	}
	b.WriteString(">>")
	return b.String()
}

func numberArray(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatNumber(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
