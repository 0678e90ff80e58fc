package pdfcallout

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrcallout/pkg/locate"
)

// debugLayer draws the OCR lines behind each callout and the callout boxes
// themselves on an optional content group, in page coordinates (origin
// top-left, points).
type debugLayer struct {
	name     string
	callouts []Callout
}

func (d *debugLayer) draw(pdf *fpdf.Fpdf, pageNum int) {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", d.name, pageNum), true)
	pdf.BeginLayer(layer)

	pdf.SetLineWidth(0.5)
	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.SetDrawColor(0, 0, 255)
	for _, c := range d.callouts {
		for _, line := range c.Lines {
			drawBox(pdf, line)
		}
	}

	pdf.SetDashPattern(nil, 0)
	pdf.SetDrawColor(255, 0, 0)
	for _, c := range d.callouts {
		drawBox(pdf, c.Box)
	}

	pdf.EndLayer()
}

func drawBox(pdf *fpdf.Fpdf, box locate.Box) {
	pdf.Rect(box.X0, box.Y0, box.Width(), box.Height(), "D")
}
