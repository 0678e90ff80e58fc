// hocrcallout draws a callout around a phrase on a scanned page.
//
// The tool reads the OCR text of a page, finds the run of words that best
// matches the phrase, works out the page region those words occupy from the
// OCR line boxes and writes a copy of the page with a rectangle (or
// highlight) annotation around it.
//
// Usage:
//
//	hocrcallout -hocr page.hocr -pdf page.pdf -phrase "net amount" [options]
//
// Text sources (-source):
//
//	hocr   Read the hOCR file given by -hocr (default)
//	ocr    Run Tesseract on -image; requires a build with -tags ocr
//	docai  Send -pdf (or -image) to a Google Document AI OCR processor
//	tokens Read the token stream saved to -tokens by an earlier run
//
// Target (one required):
//
//	-pdf string    PDF whose page -page is annotated
//	-image string  Page image to build the PDF from
//
// The output is written next to the target as <name>_with_callout<ext>
// unless -output is given. When no -phrase is given the phrase is asked for
// interactively.
//
// Configuration:
//
// All flags can also be set in a YAML file passed with -config; flags that
// are set on the command line win. A .env file in the working directory is
// loaded first, so GOOGLE_APPLICATION_CREDENTIALS and TESSDATA_PREFIX can
// live there.
//
//	source: docai
//	pdf: invoice.pdf
//	phrases: ["Total due"]
//	kind: highlight
//	docai:
//	  project_id: "your-gcp-project-id"
//	  location: "eu"
//	  processor_id: "your-processor-id"
//
// Examples:
//
//	hocrcallout -hocr scan.hocr -pdf scan.pdf -phrase "lazy dog"
//	hocrcallout -hocr scan.hocr -image scan.png -phrase "lazy dog" -kind highlight -color orange
//	hocrcallout -config invoice.yml -debug-pdf -overwrite
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrcallout/pkg/callout"
	"github.com/gardar/ocrcallout/pkg/pdfcallout"
)

// errDegraded is returned when a callout has no anchor line and degraded
// output was not allowed.
var errDegraded = errors.New("callout geometry is incomplete; rerun with -allow-degraded to write it anyway")

// errNoGeometry is returned when no line marker contributed to a callout.
var errNoGeometry = errors.New("no line geometry found for the callout")

func main() {
	_ = godotenv.Load()

	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger := logrus.StandardLogger()
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	out, err := run(context.Background(), cfg, logger, promptPhrase)
	if err != nil {
		logger.WithError(err).Fatal("Callout failed")
	}
	fmt.Println("Callout saved to:", out)
}

// run executes the pipeline and returns the path of the written PDF. ask is
// used when no phrase is configured.
func run(ctx context.Context, cfg *Config, logger logrus.FieldLogger, ask func(preview string) (string, error)) (string, error) {
	tokens, page, err := loadPage(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	text := tokens.String()

	if cfg.Tokens != "" && cfg.Source != sourceTokens {
		if err := os.WriteFile(cfg.Tokens, []byte(text), 0644); err != nil {
			return "", fmt.Errorf("failed to write token stream: %w", err)
		}
		logger.WithField("file", cfg.Tokens).Debug("Token stream saved")
	}

	phrases := cfg.Phrases
	if len(phrases) == 0 {
		phrase, err := ask(previewWords(tokens.Words(), 12))
		if err != nil {
			return "", err
		}
		phrases = []string{phrase}
	}

	findings, err := find(text, phrases, cfg.Threshold, logger)
	if err != nil {
		return "", err
	}

	callouts := make([]pdfcallout.Callout, 0, len(findings))
	for _, f := range findings {
		if f.Region.Degraded() && !cfg.AllowDegraded {
			return "", fmt.Errorf("%q: %w", f.Match.Query, errDegraded)
		}
		if !f.Region.HasGeometry() {
			return "", fmt.Errorf("%q: %w", f.Match.Query, errNoGeometry)
		}
		callouts = append(callouts, pdfcallout.FromFinding(f))
	}

	pdfConfig, err := cfg.pdfConfig(page.BBox.Width(), page.BBox.Height(), logger)
	if err != nil {
		return "", err
	}

	target := cfg.target()
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}

	var result []byte
	if cfg.PDF != "" {
		result, err = pdfcallout.ApplyCallout(data, callouts, pdfConfig)
	} else {
		result, err = pdfcallout.AssembleWithCallout(data, callouts, pdfConfig)
	}
	if err != nil {
		return "", err
	}

	out := cfg.outputPath()
	if err := pdfcallout.WriteFile(out, result, cfg.Overwrite); err != nil {
		return "", err
	}
	return out, nil
}

// find locates a single phrase strictly, or every phrase clearing the
// threshold when several are given.
func find(text string, phrases []string, threshold float64, logger logrus.FieldLogger) ([]callout.Finding, error) {
	if len(phrases) == 1 {
		f, err := callout.Find(text, phrases[0], logger)
		if err != nil {
			return nil, err
		}
		return []callout.Finding{f}, nil
	}
	findings, err := callout.FindAll(text, phrases, threshold, logger)
	if err != nil {
		return nil, err
	}
	if len(findings) == 0 {
		return nil, fmt.Errorf("no phrase scored at least %.2f", threshold)
	}
	return findings, nil
}

// pdfConfig builds the annotation config. srcW and srcH are the OCR page
// size used when scaling to the PDF page.
func (c *Config) pdfConfig(srcW, srcH float64, logger logrus.FieldLogger) (pdfcallout.Config, error) {
	config := pdfcallout.DefaultConfig()

	kind, err := pdfcallout.ParseKind(c.Kind)
	if err != nil {
		return config, err
	}
	config.Style = pdfcallout.DefaultStyle(kind)
	if c.Color != "" {
		color, err := pdfcallout.ParseColor(c.Color)
		if err != nil {
			return config, err
		}
		config.Style.Color = color
	}
	if c.BorderWidth > 0 {
		config.Style.Width = c.BorderWidth
	}

	config.Page = c.Page
	if c.PDF == "" {
		config.Page = 1
	}
	config.Contents = c.Contents
	config.ScaleToPage = c.ScaleToPage
	config.SourceWidth = srcW
	config.SourceHeight = srcH
	config.Debug = c.DebugPDF
	config.DumpPDF = c.DumpPDF
	config.Logger = logger
	return config, nil
}
