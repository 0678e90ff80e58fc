package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/gardar/ocrcallout/pkg/pdfcallout"
	"github.com/gardar/ocrcallout/pkg/stream"
)

const pageHOCR = `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
 <head><title>scan</title></head>
 <body>
  <div class='ocr_page' id='page_1' title='bbox 0 0 600 800'>
   <p class='ocr_par' id='par_1_1' title='bbox 10 20 250 60'>
    <span class='ocr_line' id='line_1_1' title='bbox 10 20 200 40'>
     <span class='ocrx_word' title='bbox 10 20 50 40'>The</span>
     <span class='ocrx_word' title='bbox 60 20 120 40'>quick</span>
     <span class='ocrx_word' title='bbox 130 20 200 40'>brown</span>
    </span>
    <span class='ocr_line' id='line_1_2' title='bbox 10 40 250 60'>
     <span class='ocrx_word' title='bbox 10 40 50 60'>fox</span>
     <span class='ocrx_word' title='bbox 60 40 140 60'>jumps</span>
     <span class='ocrx_word' title='bbox 150 40 250 60'>over</span>
    </span>
   </p>
  </div>
 </body>
</html>`

const pageTokens = "[[PARAGRAPH]] [[LINE 10 20 200 40]] The quick brown [[LINE 10 40 250 60]] fox jumps over"

// fixture writes the hOCR page and a matching 600x800 target into a
// temporary directory and returns a config pointing at them.
func fixture(t *testing.T, asImage bool) *Config {
	t.Helper()
	dir := t.TempDir()

	cfg := defaultConfig()
	cfg.HOCR = filepath.Join(dir, "scan.hocr")
	cfg.Tokens = filepath.Join(dir, "embedded_text.txt")
	if err := os.WriteFile(cfg.HOCR, []byte(pageHOCR), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if asImage {
		cfg.Image = filepath.Join(dir, "scan.png")
		if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 600, 800))); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(cfg.Image, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	doc := fpdf.New("P", "pt", "", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPageFormat("P", fpdf.SizeType{Wd: 600, Ht: 800})
	doc.Text(10, 35, "The quick brown")
	if err := doc.Output(&buf); err != nil {
		t.Fatal(err)
	}
	cfg.PDF = filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(cfg.PDF, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func noPrompt(t *testing.T) func(string) (string, error) {
	return func(string) (string, error) {
		t.Fatal("prompt should not be shown")
		return "", nil
	}
}

func annotations(t *testing.T, path string) pdfcallout.AnnotationCheckResult {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	res, err := pdfcallout.DetectAnnotations(data)
	if err != nil {
		t.Fatalf("DetectAnnotations: %v", err)
	}
	return res
}

func TestRun(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := fixture(t, false)
	cfg.Phrases = []string{"jumps over"}

	out, err := run(context.Background(), cfg, logger, noPrompt(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if want := filepath.Join(filepath.Dir(cfg.PDF), "scan_with_callout.pdf"); out != want {
		t.Errorf("output = %s, want %s", out, want)
	}
	res := annotations(t, out)
	if res.Count != 1 || res.Subtypes["Square"] != 1 {
		t.Errorf("annotations = %+v, want one Square", res)
	}

	tokens, err := os.ReadFile(cfg.Tokens)
	if err != nil {
		t.Fatalf("token dump: %v", err)
	}
	if string(tokens) != pageTokens {
		t.Errorf("token dump =\n%q\nwant\n%q", tokens, pageTokens)
	}

	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel {
			t.Errorf("unexpected log entry: %s", e.Message)
		}
	}
}

func TestRunHighlightOnImage(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := fixture(t, true)
	cfg.Phrases = []string{"quick brown", "jumps over"}
	cfg.Kind = "highlight"
	cfg.Color = "orange"

	out, err := run(context.Background(), cfg, logger, noPrompt(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if filepath.Ext(out) != ".pdf" {
		t.Errorf("output %s is not a PDF", out)
	}
	if res := annotations(t, out); res.Subtypes["Highlight"] != 2 {
		t.Errorf("annotations = %+v, want two Highlight", res)
	}
}

func TestRunPrompt(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := fixture(t, false)

	var shown string
	ask := func(preview string) (string, error) {
		shown = preview
		return "quick brown", nil
	}
	if _, err := run(context.Background(), cfg, logger, ask); err != nil {
		t.Fatalf("run: %v", err)
	}
	if shown != "The quick brown fox jumps over" {
		t.Errorf("preview = %q", shown)
	}

	cancel := func(string) (string, error) { return "", errPromptCancelled }
	cfg.Overwrite = true
	if _, err := run(context.Background(), cfg, logger, cancel); !errors.Is(err, errPromptCancelled) {
		t.Errorf("err = %v, want errPromptCancelled", err)
	}
}

func TestRunRefusesToOverwrite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := fixture(t, false)
	cfg.Phrases = []string{"fox"}

	if _, err := run(context.Background(), cfg, logger, noPrompt(t)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := run(context.Background(), cfg, logger, noPrompt(t)); !errors.Is(err, pdfcallout.ErrOutputExists) {
		t.Fatalf("second run err = %v, want ErrOutputExists", err)
	}
	cfg.Overwrite = true
	if _, err := run(context.Background(), cfg, logger, noPrompt(t)); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("no phrase clears threshold", func(t *testing.T) {
		cfg := fixture(t, false)
		cfg.Phrases = []string{"zebra crossing", "purple monkey"}
		cfg.Threshold = 0.9
		if _, err := run(context.Background(), cfg, logger, noPrompt(t)); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("page out of range", func(t *testing.T) {
		cfg := fixture(t, false)
		cfg.Phrases = []string{"fox"}
		cfg.Page = 2
		if _, err := run(context.Background(), cfg, logger, noPrompt(t)); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("bad color", func(t *testing.T) {
		cfg := fixture(t, false)
		cfg.Phrases = []string{"fox"}
		cfg.Color = "not-a-color"
		if _, err := run(context.Background(), cfg, logger, noPrompt(t)); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestRunLineWithoutBBox(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := fixture(t, false)
	page := strings.Replace(pageHOCR, "title='bbox 10 20 200 40'", "title='baseline 0 0'", 1)
	if err := os.WriteFile(cfg.HOCR, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Phrases = []string{"quick brown"}

	if _, err := run(context.Background(), cfg, logger, noPrompt(t)); !errors.Is(err, errDegraded) {
		t.Fatalf("err = %v, want errDegraded", err)
	}
	tokens, err := os.ReadFile(cfg.Tokens)
	if err != nil {
		t.Fatalf("token dump: %v", err)
	}
	if want := "[[PARAGRAPH]] The quick brown [[LINE 10 40 250 60]] fox jumps over"; string(tokens) != want {
		t.Errorf("token dump = %q, want %q", tokens, want)
	}

	cfg.AllowDegraded = true
	if _, err := run(context.Background(), cfg, logger, noPrompt(t)); !errors.Is(err, errNoGeometry) {
		t.Fatalf("degraded run err = %v, want errNoGeometry", err)
	}
	if _, err := os.Stat(cfg.outputPath()); !os.IsNotExist(err) {
		t.Errorf("output written without geometry: %v", err)
	}
}

func TestRunTokensSource(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := fixture(t, false)
	cfg.Source = sourceTokens
	cfg.HOCR = ""
	cfg.Phrases = []string{"jumps over"}
	if err := os.WriteFile(cfg.Tokens, []byte(pageTokens+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(context.Background(), cfg, logger, noPrompt(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res := annotations(t, out); res.Count != 1 {
		t.Errorf("annotations = %+v, want one", res)
	}
	tokens, err := os.ReadFile(cfg.Tokens)
	if err != nil {
		t.Fatal(err)
	}
	if string(tokens) != pageTokens+"\n" {
		t.Errorf("token file rewritten: %q", tokens)
	}
}

func TestRunTokensSourceRejectsBadStream(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tests := []struct {
		name   string
		tokens string
		want   error
	}{
		{"short line marker", "[[PARAGRAPH]] [[LINE 1 2 3]] fox jumps", stream.ErrMalformedMarker},
		{"unknown marker", "[[LINE 10 40 250 60]] fox [[WORD]] jumps", stream.ErrMalformedMarker},
		{"word before first line", "[[PARAGRAPH]] fox [[LINE 10 40 250 60]] jumps over", stream.ErrOrphanWord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fixture(t, false)
			cfg.Source = sourceTokens
			cfg.Phrases = []string{"jumps"}
			if err := os.WriteFile(cfg.Tokens, []byte(tt.tokens), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := run(context.Background(), cfg, logger, noPrompt(t)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
