package pdfcallout

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageSize returns the page size of an image shown at one point per pixel,
// so that hOCR coordinates of the image are page coordinates.
func imageSize(imageData []byte) (PageSize, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return PageSize{}, fmt.Errorf("failed to decode image config: %w", err)
	}
	return PageSize{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// createPDFFromImage builds a single-page PDF of the given size showing the
// image.
func createPDFFromImage(imageData []byte, size PageSize, debug *debugLayer) ([]byte, error) {
	imageData, imageType, err := fpdfImage(imageData)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})

	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
	pdf.RegisterImageOptionsReader("page", opts, bytes.NewReader(imageData))
	pdf.ImageOptions("page", 0, 0, size.Width, size.Height, false, opts, 0, "")

	if debug != nil {
		debug.draw(pdf, 1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// fpdfImage returns the image in a format fpdf can embed. JPEG, PNG and GIF
// pass through; TIFF, BMP and WebP scans are re-encoded as PNG.
func fpdfImage(data []byte) ([]byte, string, error) {
	imageType, err := detectImageType(data)
	if err != nil {
		return nil, "", err
	}
	switch imageType {
	case "JPEG", "PNG", "GIF":
		return data, imageType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", imageType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to convert %s image to PNG: %w", imageType, err)
	}
	return buf.Bytes(), "PNG", nil
}

// detectImageType tries to figure out whether the data is PNG, JPEG, etc.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}
