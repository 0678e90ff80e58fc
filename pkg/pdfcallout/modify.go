package pdfcallout

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// importPage copies one page of an existing PDF into a new single-page
// document of the same size. The copy keeps the page content but none of
// its annotations.
func importPage(inputPDFData []byte, pageNum int, size PageSize, debug *debugLayer) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})

	if err := useImportedPage(pdf, inputPDFData, pageNum, size); err != nil {
		return nil, err
	}
	if debug != nil {
		debug.draw(pdf, 1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// useImportedPage draws page pageNum of the source PDF over the current page.
// The importer panics on input it cannot parse; the panic is returned as an
// error.
func useImportedPage(pdf *fpdf.Fpdf, inputPDFData []byte, pageNum int, size PageSize) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to import page %d: %v", pageNum, r)
		}
	}()

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDFData))

	tpl := importer.ImportPageFromStream(pdf, &rs, pageNum, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, size.Width, size.Height)

	if pdf.Err() {
		return fmt.Errorf("failed to import page %d: %w", pageNum, pdf.Error())
	}
	return nil
}
