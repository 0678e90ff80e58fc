package pdfcallout

import (
	"github.com/sirupsen/logrus"
)

// Config holds user options for drawing callouts on a PDF page
type Config struct {
	Style    Style // Annotation kind and appearance
	Page     int   // 1-based page of the source PDF to annotate
	Contents bool  // Store the matched text in the annotation's /Contents

	// ScaleToPage rescales boxes measured on a SourceWidth x SourceHeight
	// image (the hOCR page bbox) to the PDF page size. When false, one image
	// pixel is one PDF point.
	ScaleToPage  bool
	SourceWidth  float64
	SourceHeight float64

	Debug     bool               // Draw the OCR line boxes and callout boxes on a layer
	LayerName string             // Name of the debug layer
	DumpPDF   bool               // Dump PDF structure for debugging
	Logger    logrus.FieldLogger // nil = logrus standard logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Style:     DefaultStyle(KindRectangle),
		Page:      1,
		Contents:  true,
		LayerName: "Callout Debug",
	}
}
