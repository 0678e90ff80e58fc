package pdfcallout

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrcallout/pkg/locate"
)

// scaleBox rescales a box measured on a srcW x srcH image (the hOCR page
// bbox) onto a page of pageW x pageH points.
func scaleBox(box locate.Box, srcW, srcH, pageW, pageH float64) locate.Box {
	return box.Scale(pageW/srcW, pageH/srcH)
}

// formatNumber writes a PDF real with at most four decimals.
func formatNumber(v float64) string {
	v = math.Round(v*10000) / 10000
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pdfString encodes s as a PDF text string: a literal string when it fits
// Latin-1, UTF-16BE with a byte order mark in hex otherwise.
func pdfString(s string) string {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err == nil {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)
		return "(" + r.Replace(latin1) + ")"
	}

	var b strings.Builder
	b.WriteString("<FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&b, "%04X", u)
	}
	b.WriteString(">")
	return b.String()
}

// getLogger returns the configured logger, defaulting to the logrus
// standard logger if nil.
func getLogger(config Config) logrus.FieldLogger {
	if config.Logger == nil {
		return logrus.StandardLogger()
	}
	return config.Logger
}

// dumpPDFStructure is a debug utility that logs the first N bytes of the PDF
// plus the context of any annotation references.
func dumpPDFStructure(pdfData []byte, byteCount int, logger logrus.FieldLogger) {
	byteCount = min(byteCount, len(pdfData))

	logger.Infof("===== PDF STRUCTURE DUMP (FIRST %d BYTES) =====\n%s\n===== END PDF STRUCTURE DUMP =====",
		byteCount, pdfData[:byteCount])

	if i := bytes.Index(pdfData, []byte("/Annots")); i >= 0 {
		start := max(i-20, 0)
		end := min(i+100, len(pdfData))
		logger.Infof("===== ANNOTS CONTEXT =====\n%s\n===== END ANNOTS CONTEXT =====", pdfData[start:end])
	}
}
