package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrcallout/pkg/docai"
	"github.com/gardar/ocrcallout/pkg/hocr"
	"github.com/gardar/ocrcallout/pkg/ocr"
	"github.com/gardar/ocrcallout/pkg/stream"
)

// loadPage produces the token stream of the configured page and the page
// geometry it was measured on.
func loadPage(ctx context.Context, cfg *Config, logger logrus.FieldLogger) (stream.Stream, hocr.Page, error) {
	switch cfg.Source {
	case sourceOCR:
		return pageFromOCR(cfg, logger)
	case sourceDocAI:
		return pageFromDocAI(ctx, cfg, logger)
	case sourceTokens:
		s, err := pageFromTokens(cfg, logger)
		return s, hocr.Page{}, err
	default:
		return pageFromHOCR(cfg, logger)
	}
}

func pageFromHOCR(cfg *Config, logger logrus.FieldLogger) (stream.Stream, hocr.Page, error) {
	data, err := os.ReadFile(cfg.HOCR)
	if err != nil {
		return nil, hocr.Page{}, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	doc, err := hocr.ParseHOCR(data)
	if err != nil {
		return nil, hocr.Page{}, fmt.Errorf("failed to parse hOCR: %w", err)
	}
	page, err := doc.Page(cfg.Page)
	if err != nil {
		return nil, hocr.Page{}, err
	}
	logger.WithFields(logrus.Fields{
		"file":  cfg.HOCR,
		"pages": len(doc.Pages),
		"page":  cfg.Page,
	}).Info("Loaded hOCR")
	return hocr.TokenStream(page), page, nil
}

// pageFromTokens reads a token stream saved by an earlier run. The stream is
// parsed strictly: a malformed marker or a word before the first line
// marker rejects the file.
func pageFromTokens(cfg *Config, logger logrus.FieldLogger) (stream.Stream, error) {
	data, err := os.ReadFile(cfg.Tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to read token stream: %w", err)
	}
	s, err := stream.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Tokens, err)
	}
	if err := stream.Validate(s); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Tokens, err)
	}
	logger.WithFields(logrus.Fields{
		"file":  cfg.Tokens,
		"lines": len(s.Lines()),
		"words": len(s.Words()),
	}).Info("Loaded token stream")
	return s, nil
}

func pageFromOCR(cfg *Config, logger logrus.FieldLogger) (stream.Stream, hocr.Page, error) {
	data, err := os.ReadFile(cfg.Image)
	if err != nil {
		return nil, hocr.Page{}, fmt.Errorf("failed to read image: %w", err)
	}
	raw, page, err := ocr.RecognizePage(data, cfg.Language)
	if err != nil {
		return nil, hocr.Page{}, fmt.Errorf("OCR failed: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"image": cfg.Image,
		"lang":  cfg.Language,
		"bytes": len(raw),
	}).Info("Recognized page with Tesseract")
	if cfg.HOCR != "" {
		if err := os.WriteFile(cfg.HOCR, raw, 0644); err != nil {
			return nil, hocr.Page{}, fmt.Errorf("failed to write hOCR output: %w", err)
		}
		fmt.Println("hOCR saved to:", cfg.HOCR)
	}
	return hocr.TokenStream(page), page, nil
}

func pageFromDocAI(ctx context.Context, cfg *Config, logger logrus.FieldLogger) (stream.Stream, hocr.Page, error) {
	input := cfg.target()
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, hocr.Page{}, fmt.Errorf("failed to read %s: %w", input, err)
	}
	s, page, raw, err := docai.PageStream(ctx, data, mimeType(input), cfg.Page, cfg.DocAI, logger)
	if raw != nil && cfg.DocAIJSON != "" {
		js, jerr := docai.ToJSON(raw)
		if jerr != nil {
			return nil, hocr.Page{}, fmt.Errorf("failed to convert API response to JSON: %w", jerr)
		}
		if werr := os.WriteFile(cfg.DocAIJSON, js, 0644); werr != nil {
			return nil, hocr.Page{}, fmt.Errorf("failed to write API response JSON: %w", werr)
		}
		fmt.Println("API response JSON saved to:", cfg.DocAIJSON)
	}
	if err != nil {
		return nil, hocr.Page{}, err
	}
	return s, page, nil
}

// mimeType guesses the Document AI input type from the file extension.
func mimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tif" || ext == ".tiff" {
		return "image/tiff"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return docai.MimeTypePDF
}
