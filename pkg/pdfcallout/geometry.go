package pdfcallout

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrPageOutOfRange is returned when the configured page is not in the PDF.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrNoMediaBox is returned for a page without a usable /MediaBox.
	ErrNoMediaBox = errors.New("page has no valid /MediaBox")
)

// PageSize is the extent of a page's media box in points.
type PageSize struct {
	Width, Height float64
}

func openPDF(pdfData []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return r, nil
}

// ReadPageSize returns the media box size of the given 1-based page. The box
// may be inherited from the page tree.
func ReadPageSize(pdfData []byte, page int) (PageSize, error) {
	r, err := openPDF(pdfData)
	if err != nil {
		return PageSize{}, err
	}
	if n := r.NumPage(); page < 1 || page > n {
		return PageSize{}, fmt.Errorf("page %d of %d: %w", page, n, ErrPageOutOfRange)
	}

	p := r.Page(page)
	if p.V.IsNull() {
		return PageSize{}, fmt.Errorf("page %d not found in page tree: %w", page, ErrPageOutOfRange)
	}

	box := inherited(p.V, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return PageSize{}, fmt.Errorf("page %d: %w", page, ErrNoMediaBox)
	}
	size := PageSize{
		Width:  box.Index(2).Float64() - box.Index(0).Float64(),
		Height: box.Index(3).Float64() - box.Index(1).Float64(),
	}
	if size.Width <= 0 || size.Height <= 0 {
		return PageSize{}, fmt.Errorf("page %d media box %v: %w", page, box, ErrNoMediaBox)
	}
	return size, nil
}

// inherited looks up key on the page and then on its ancestors.
func inherited(v pdf.Value, key string) pdf.Value {
	for ; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}
