// Package docai uses Google Document AI as a text source for callouts.
//
// A document is sent to a Document AI OCR processor and the layout of one
// page of the response (blocks, paragraphs, lines and tokens) is converted to
// an hOCR page, which serializes to the same token stream a Tesseract hOCR
// file produces. Boxes are scaled from Document AI's normalized vertices to
// the page dimension reported by the processor.
//
// Authentication uses the credentials file named in Config or, when empty,
// the GOOGLE_APPLICATION_CREDENTIALS environment variable.
package docai

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrcallout/pkg/hocr"
	"github.com/gardar/ocrcallout/pkg/stream"
)

var (
	// ErrIncompleteConfig is returned when a processor cannot be addressed.
	ErrIncompleteConfig = errors.New("document ai config requires project_id, location and processor_id")
	// ErrPageOutOfRange is returned when the requested page is not in the response.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Config addresses a Document AI processor.
type Config struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Validate reports whether the processor name can be built.
func (c Config) Validate() error {
	if c.ProjectID == "" || c.Location == "" || c.ProcessorID == "" {
		return ErrIncompleteConfig
	}
	return nil
}

// ProcessorName is the resource name of the configured processor.
func (c Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// Endpoint is the regional API endpoint for the configured location.
func (c Config) Endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}

// PageStream processes a document and returns the token stream of the given
// 1-based page together with the page geometry and the raw response.
func PageStream(ctx context.Context, data []byte, mimeType string, pageNumber int, cfg Config, logger logrus.FieldLogger) (stream.Stream, hocr.Page, *documentaipb.Document, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	doc, err := ProcessDocument(ctx, data, mimeType, cfg)
	if err != nil {
		return nil, hocr.Page{}, nil, err
	}
	logger.WithFields(logrus.Fields{
		"processor": cfg.ProcessorName(),
		"pages":     len(doc.GetPages()),
	}).Info("Document AI processing finished")

	page, err := PageHOCR(doc, pageNumber)
	if err != nil {
		return nil, hocr.Page{}, doc, err
	}
	return hocr.TokenStream(page), page, doc, nil
}
