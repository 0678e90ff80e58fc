package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "callout.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source != sourceHOCR || cfg.Page != 1 || !cfg.Contents || cfg.Tokens != "embedded_text.txt" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
source: docai
pdf: invoice.pdf
page: 0
phrases: ["Total due", "VAT"]
kind: highlight
contents: false
docai:
  project_id: proj
  location: eu
  processor_id: abc
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source != sourceDocAI || cfg.PDF != "invoice.pdf" || cfg.Kind != "highlight" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Page != 1 {
		t.Errorf("Page = %d, want default 1", cfg.Page)
	}
	if cfg.Contents {
		t.Error("Contents = true, want false from file")
	}
	if len(cfg.Phrases) != 2 || cfg.DocAI.ProcessorID != "abc" {
		t.Errorf("phrases %v, docai %+v", cfg.Phrases, cfg.DocAI)
	}
	if cfg.Tokens != "embedded_text.txt" {
		t.Errorf("Tokens = %q, want the default kept", cfg.Tokens)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	if _, err := loadConfig(writeConfig(t, "page: [")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "hocr: file.hocr\npdf: file.pdf\nkind: highlight\npage: 3\n")

	cfg, err := parseArgs([]string{
		"-config", path,
		"-kind", "rectangle",
		"-phrase", "one", "-phrase", "two",
		"-allow-degraded",
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Kind != "rectangle" {
		t.Errorf("Kind = %q, want flag value", cfg.Kind)
	}
	if cfg.Page != 3 || cfg.HOCR != "file.hocr" {
		t.Errorf("file values lost: page %d, hocr %q", cfg.Page, cfg.HOCR)
	}
	if strings.Join(cfg.Phrases, "|") != "one|two" {
		t.Errorf("Phrases = %v", cfg.Phrases)
	}
	if !cfg.AllowDegraded {
		t.Error("AllowDegraded not set")
	}
}

func TestParseArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no hocr", []string{"-pdf", "a.pdf"}, "-hocr"},
		{"no target", []string{"-hocr", "a.hocr"}, "-pdf or -image"},
		{"ocr without image", []string{"-source", "ocr", "-pdf", "a.pdf"}, "-image"},
		{"docai without processor", []string{"-source", "docai", "-pdf", "a.pdf"}, "project_id"},
		{"tokens without file", []string{"-source", "tokens", "-tokens", "", "-pdf", "a.pdf"}, "-tokens"},
		{"unknown source", []string{"-source", "magic", "-pdf", "a.pdf"}, "unknown source"},
		{"bad page", []string{"-hocr", "a.hocr", "-pdf", "a.pdf", "-page", "0"}, "invalid page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{PDF: "dir/scan.pdf"}, "dir/scan_with_callout.pdf"},
		{Config{Image: "dir/scan.tiff"}, "dir/scan_with_callout.pdf"},
		{Config{PDF: "scan.pdf", Output: "out.pdf"}, "out.pdf"},
	}
	for _, tt := range tests {
		if got := tt.cfg.outputPath(); got != tt.want {
			t.Errorf("outputPath(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestMimeType(t *testing.T) {
	for path, want := range map[string]string{
		"a.pdf":  "application/pdf",
		"a.png":  "image/png",
		"a.TIFF": "image/tiff",
		"a":      "application/pdf",
	} {
		if got := mimeType(path); got != want {
			t.Errorf("mimeType(%q) = %q, want %q", path, got, want)
		}
	}
}
