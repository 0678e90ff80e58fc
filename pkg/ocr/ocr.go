//go:build ocr

// Package ocr runs Tesseract on a page image and returns its hOCR output.
//
// This package wraps the Tesseract OCR engine via gosseract and is only
// built with the "ocr" build tag. It requires Tesseract to be installed on
// the system. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for hOCR recognition.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeHOCR performs OCR on image data (PNG, TIFF, JPEG, etc.) and
// returns the hOCR document.
func (c *Client) RecognizeHOCR(imageData []byte) ([]byte, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	out, err := c.client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return []byte(out), nil
}
