package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrcallout/pkg/docai"
	"github.com/gardar/ocrcallout/pkg/ocr"
	"github.com/gardar/ocrcallout/pkg/pdfcallout"
	"github.com/gardar/ocrcallout/pkg/textmatch"
)

// Text sources.
const (
	sourceHOCR  = "hocr"
	sourceOCR   = "ocr"
	sourceDocAI = "docai"

	// sourceTokens reads the token stream dumped by an earlier run.
	sourceTokens = "tokens"
)

// Config is the YAML configuration file. Every field can be overridden by
// the flag of the same name.
type Config struct {
	Source string `yaml:"source"` // hocr, ocr, docai or tokens
	HOCR   string `yaml:"hocr"`
	PDF    string `yaml:"pdf"`
	Image  string `yaml:"image"`
	Page   int    `yaml:"page"`
	Output string `yaml:"output"`

	Phrases   []string `yaml:"phrases"`
	Threshold float64  `yaml:"threshold"`

	Kind        string  `yaml:"kind"`
	Color       string  `yaml:"color"`
	BorderWidth float64 `yaml:"border_width"`
	Contents    bool    `yaml:"contents"`

	Tokens        string `yaml:"tokens"`
	ScaleToPage   bool   `yaml:"scale_to_page"`
	AllowDegraded bool   `yaml:"allow_degraded"`
	Overwrite     bool   `yaml:"overwrite"`
	Language      string `yaml:"language"`

	DocAI     docai.Config `yaml:"docai"`
	DocAIJSON string       `yaml:"docai_json"`

	Debug    bool `yaml:"debug"`
	DebugPDF bool `yaml:"debug_pdf"`
	DumpPDF  bool `yaml:"dump_pdf"`
}

func defaultConfig() *Config {
	return &Config{
		Source:    sourceHOCR,
		Page:      1,
		Threshold: textmatch.DefaultThreshold,
		Kind:      "rectangle",
		Contents:  true,
		Tokens:    "embedded_text.txt",
		Language:  ocr.DefaultLanguage,
	}
}

// loadConfig reads a config file. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = sourceHOCR
	}
	if cfg.Page == 0 {
		cfg.Page = 1
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = textmatch.DefaultThreshold
	}
	if cfg.Language == "" {
		cfg.Language = ocr.DefaultLanguage
	}
}

// phraseList collects repeated -phrase flags.
type phraseList []string

func (p *phraseList) String() string { return strings.Join(*p, ", ") }

func (p *phraseList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// parseArgs parses the command line, loads the file named by -config and
// applies the flags that were set on top of it.
func parseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("hocrcallout", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to a YAML config file")
	source := fs.String("source", sourceHOCR, "Text source: hocr, ocr (Tesseract on -image), docai (Document AI) or tokens (the -tokens file of an earlier run)")
	hocrPath := fs.String("hocr", "", "Path to the hOCR file")
	pdfPath := fs.String("pdf", "", "Path to the PDF to annotate")
	imagePath := fs.String("image", "", "Path to a page image to build the PDF from")
	page := fs.Int("page", 1, "Page to annotate (1-based), in both the hOCR and the PDF")
	output := fs.String("output", "", "Output path (default <input>_with_callout<ext>)")
	var phrases phraseList
	fs.Var(&phrases, "phrase", "Phrase to call out; repeat for several phrases")
	threshold := fs.Float64("threshold", textmatch.DefaultThreshold, "Minimum match score when several phrases are given")
	kind := fs.String("kind", "rectangle", "Annotation kind: rectangle or highlight")
	color := fs.String("color", "", "Annotation color, a name or hex triplet (default red, yellow for highlights)")
	borderWidth := fs.Float64("border-width", 1, "Rectangle border width in points")
	contents := fs.Bool("contents", true, "Store the matched text in the annotation")
	tokens := fs.String("tokens", "embedded_text.txt", "Path to dump the token stream to, or to read it from with -source tokens; empty disables the dump")
	scale := fs.Bool("scale", false, "Scale hOCR pixel coordinates to the PDF page size")
	allowDegraded := fs.Bool("allow-degraded", false, "Write a callout even when its line geometry is missing")
	overwrite := fs.Bool("overwrite", false, "Overwrite the output file if it already exists")
	lang := fs.String("lang", ocr.DefaultLanguage, "Tesseract language for -source ocr")
	docaiJSON := fs.String("docai-json", "", "Path to save the raw Document AI response as JSON")
	debug := fs.Bool("debug", false, "Enable debug logging")
	debugPDF := fs.Bool("debug-pdf", false, "Draw OCR line boxes on a layer of the output PDF")
	dumpPDF := fs.Bool("dump-pdf", false, "Dump the input PDF structure for debugging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "hocr":
			cfg.HOCR = *hocrPath
		case "pdf":
			cfg.PDF = *pdfPath
		case "image":
			cfg.Image = *imagePath
		case "page":
			cfg.Page = *page
		case "output":
			cfg.Output = *output
		case "phrase":
			cfg.Phrases = phrases
		case "threshold":
			cfg.Threshold = *threshold
		case "kind":
			cfg.Kind = *kind
		case "color":
			cfg.Color = *color
		case "border-width":
			cfg.BorderWidth = *borderWidth
		case "contents":
			cfg.Contents = *contents
		case "tokens":
			cfg.Tokens = *tokens
		case "scale":
			cfg.ScaleToPage = *scale
		case "allow-degraded":
			cfg.AllowDegraded = *allowDegraded
		case "overwrite":
			cfg.Overwrite = *overwrite
		case "lang":
			cfg.Language = *lang
		case "docai-json":
			cfg.DocAIJSON = *docaiJSON
		case "debug":
			cfg.Debug = *debug
		case "debug-pdf":
			cfg.DebugPDF = *debugPDF
		case "dump-pdf":
			cfg.DumpPDF = *dumpPDF
		}
	})

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source {
	case sourceHOCR:
		if c.HOCR == "" {
			return errors.New("-hocr is required for the hocr source")
		}
	case sourceOCR:
		if c.Image == "" {
			return errors.New("-image is required for the ocr source")
		}
	case sourceDocAI:
		if c.PDF == "" && c.Image == "" {
			return errors.New("-pdf or -image is required for the docai source")
		}
		if err := c.DocAI.Validate(); err != nil {
			return err
		}
	case sourceTokens:
		if c.Tokens == "" {
			return errors.New("-tokens is required for the tokens source")
		}
	default:
		return fmt.Errorf("unknown source %q (want hocr, ocr, docai or tokens)", c.Source)
	}
	if c.PDF == "" && c.Image == "" {
		return errors.New("-pdf or -image must be provided")
	}
	if c.Page < 1 {
		return fmt.Errorf("invalid page %d", c.Page)
	}
	return nil
}

// target is the file the callout is drawn on: the PDF when given, otherwise
// the page image.
func (c *Config) target() string {
	if c.PDF != "" {
		return c.PDF
	}
	return c.Image
}

// outputPath is where the annotated PDF is written. Callouts on an image
// always produce a PDF.
func (c *Config) outputPath() string {
	if c.Output != "" {
		return c.Output
	}
	out := pdfcallout.OutputPath(c.target())
	if c.PDF == "" {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".pdf"
	}
	return out
}
