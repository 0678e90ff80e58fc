package ocr

import (
	"errors"
	"fmt"

	"github.com/gardar/ocrcallout/pkg/hocr"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "eng"

// RecognizePage runs OCR on a page image and parses the resulting hOCR.
// It returns the raw hOCR alongside the parsed page.
func RecognizePage(imageData []byte, lang string) ([]byte, hocr.Page, error) {
	client, err := New()
	if err != nil {
		return nil, hocr.Page{}, err
	}
	defer client.Close()

	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, hocr.Page{}, fmt.Errorf("failed to set language %q: %w", lang, err)
	}

	raw, err := client.RecognizeHOCR(imageData)
	if err != nil {
		return nil, hocr.Page{}, err
	}
	doc, err := hocr.ParseHOCR(raw)
	if err != nil {
		return raw, hocr.Page{}, fmt.Errorf("failed to parse Tesseract output: %w", err)
	}
	page, err := doc.Page(1)
	if err != nil {
		return raw, hocr.Page{}, err
	}
	return raw, page, nil
}
