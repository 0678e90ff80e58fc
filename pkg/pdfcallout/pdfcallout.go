// Package pdfcallout draws callouts, rectangle or highlight annotations
// around located phrases, on a PDF page.
//
// The target page is copied into a new single-page PDF (or built from a
// page image) and the annotations are attached to it with an incremental
// update. The page's annotation list is replaced, not appended to: it holds
// exactly the callouts of this run.
//
// Boxes come in image space (origin top-left, y growing down) and are
// flipped to PDF page space (origin bottom-left) when rendered.
//
// Main Functions:
//
// - ApplyCallout: annotates a page of an existing PDF
// - AssembleWithCallout: builds a PDF page from a page image and annotates it
// - OutputPath / WriteFile: place the result next to the input
package pdfcallout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrcallout/pkg/callout"
	"github.com/gardar/ocrcallout/pkg/locate"
)

// ErrOutputExists is returned by WriteFile when the output file exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// OutputSuffix is inserted before the extension of the input file name.
const OutputSuffix = "_with_callout"

// Callout is one box to annotate.
type Callout struct {
	Box   locate.Box   // Image-space box
	Text  string       // Matched text, stored in /Contents
	Lines []locate.Box // OCR lines the box was built from, drawn in debug mode
}

// FromFinding converts a located phrase to a callout.
func FromFinding(f callout.Finding) Callout {
	c := Callout{Box: f.Box(), Text: f.Match.Text}
	if a := f.Region.Anchor; a != nil {
		c.Lines = append(c.Lines, locate.Box{X0: a.X0, Y0: a.Y0, X1: a.X1, Y1: a.Y1})
	}
	for _, l := range f.Region.Spanned {
		c.Lines = append(c.Lines, locate.Box{X0: l.X0, Y0: l.Y0, X1: l.X1, Y1: l.Y1})
	}
	return c
}

// ApplyCallout copies page config.Page of an existing PDF into a new
// document and annotates it with the callouts.
func ApplyCallout(inputPDFData []byte, callouts []Callout, config Config) ([]byte, error) {
	logger := getLogger(config)

	if len(inputPDFData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if err := validate(callouts, config); err != nil {
		return nil, err
	}

	if config.DumpPDF {
		dumpPDFStructure(inputPDFData, 2000, logger)
	}

	size, err := ReadPageSize(inputPDFData, config.Page)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"page":   config.Page,
		"width":  size.Width,
		"height": size.Height,
	}).Debug("Read page size")

	if existing, err := DetectAnnotations(inputPDFData); err == nil && existing.Count > 0 {
		logger.WithFields(logrus.Fields{
			"count":    existing.Count,
			"subtypes": existing.Subtypes,
		}).Warn("Input PDF has annotations; they are not carried over")
	}

	callouts = fitToPage(callouts, size, config, logger)

	pageData, err := importPage(inputPDFData, config.Page, size, debugFor(callouts, config))
	if err != nil {
		return nil, fmt.Errorf("error importing page %d: %w", config.Page, err)
	}
	return annotate(pageData, callouts, size, config, logger)
}

// AssembleWithCallout builds a single-page PDF from a page image (JPEG, PNG,
// GIF, TIFF, BMP or WebP) and annotates it with the callouts.
func AssembleWithCallout(imageData []byte, callouts []Callout, config Config) ([]byte, error) {
	logger := getLogger(config)

	if len(imageData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}
	if err := validate(callouts, config); err != nil {
		return nil, err
	}

	size, err := imageSize(imageData)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"width":  size.Width,
		"height": size.Height,
	}).Debug("Read page image size")

	callouts = fitToPage(callouts, size, config, logger)

	pageData, err := createPDFFromImage(imageData, size, debugFor(callouts, config))
	if err != nil {
		return nil, fmt.Errorf("error creating PDF from image: %w", err)
	}
	return annotate(pageData, callouts, size, config, logger)
}

func validate(callouts []Callout, config Config) error {
	if len(callouts) == 0 {
		return fmt.Errorf("no callouts to draw")
	}
	if config.Page < 1 {
		return fmt.Errorf("page must be at least 1, got %d", config.Page)
	}
	return nil
}

// fitToPage scales the callouts to the page when configured to.
func fitToPage(callouts []Callout, size PageSize, config Config, logger logrus.FieldLogger) []Callout {
	if !config.ScaleToPage {
		return callouts
	}
	if config.SourceWidth <= 0 || config.SourceHeight <= 0 {
		logger.Warn("Scaling requested without a source page size; boxes are used as page points")
		return callouts
	}

	scale := func(b locate.Box) locate.Box {
		return scaleBox(b, config.SourceWidth, config.SourceHeight, size.Width, size.Height)
	}
	fitted := make([]Callout, len(callouts))
	for i, c := range callouts {
		fitted[i] = Callout{Box: scale(c.Box), Text: c.Text}
		for _, l := range c.Lines {
			fitted[i].Lines = append(fitted[i].Lines, scale(l))
		}
	}
	return fitted
}

func debugFor(callouts []Callout, config Config) *debugLayer {
	if !config.Debug {
		return nil
	}
	return &debugLayer{name: config.LayerName, callouts: callouts}
}

func annotate(pageData []byte, callouts []Callout, size PageSize, config Config, logger logrus.FieldLogger) ([]byte, error) {
	annots := make([]Annotation, len(callouts))
	for i, c := range callouts {
		annots[i] = Render(c.Box, size.Height, config.Style)
		if config.Contents {
			annots[i].Contents = c.Text
		}
		logger.WithFields(logrus.Fields{
			"kind": config.Style.Kind.String(),
			"rect": annots[i].Rect,
		}).Debug("Rendered annotation")
	}

	out, err := appendAnnotations(pageData, annots)
	if err != nil {
		return nil, fmt.Errorf("error attaching annotations: %w", err)
	}
	return out, nil
}

// OutputPath returns the path of the annotated copy of input:
// "scan.pdf" becomes "scan_with_callout.pdf" in the same directory.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + OutputSuffix + ext
}

// WriteFile writes data to path through a temporary file in the same
// directory, so that path either holds the complete output or is left
// untouched.
func WriteFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrOutputExists)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
