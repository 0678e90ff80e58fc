package locate

import (
	"fmt"

	"github.com/gardar/ocrcallout/pkg/stream"
)

// Box is a page-pixel rectangle with a top-left origin.
//
// X1 is the widest right edge of every line the match touches, not the right
// edge of the last line.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// Width returns X1 - X0.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns Y1 - Y0.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Scale multiplies the horizontal coordinates by sx and the vertical ones by sy.
func (b Box) Scale(sx, sy float64) Box {
	return Box{X0: b.X0 * sx, Y0: b.Y0 * sy, X1: b.X1 * sx, Y1: b.Y1 * sy}
}

func (b Box) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.X0, b.Y0, b.X1, b.Y1)
}

// Region is the resolved location of a matched phrase in a token stream.
type Region struct {
	Box   Box
	Text  string  // Cleaned text of the winning window
	Score float64 // Character similarity of Text against the matched phrase
	Start int     // Rune offset of the window start in the raw stream
	End   int     // Rune offset one past the window end

	// Anchor is the closest line marker before the window. Nil when none
	// precedes it, in which case Box.X0 and Box.Y0 carry no information.
	Anchor *stream.Line

	// Spanned lists the line markers inside the window, in order.
	Spanned []stream.Line

	// Rejected holds malformed line tags that were skipped.
	Rejected []string
}

// Degraded reports whether the top-left corner could not be anchored to a
// line marker.
func (r Region) Degraded() bool { return r.Anchor == nil }

// HasGeometry reports whether any line marker contributed to the box.
func (r Region) HasGeometry() bool { return r.Anchor != nil || len(r.Spanned) > 0 }

// foldBox folds the anchor line and the spanned lines into the callout box.
// The anchor seeds every coordinate; each spanned line widens the right edge
// to its own and moves the bottom edge to its own.
func foldBox(anchor *stream.Line, spanned []stream.Line) Box {
	var box Box
	if anchor != nil {
		box = Box{X0: anchor.X0, Y0: anchor.Y0, X1: anchor.X1, Y1: anchor.Y1}
	}
	for _, l := range spanned {
		box.X1 = max(box.X1, l.X1)
		box.Y1 = l.Y1
	}
	return box
}
