package stream

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedMarker is returned for a bracketed tag that is not a valid
	// paragraph or line marker.
	ErrMalformedMarker = errors.New("malformed marker")

	// ErrOrphanWord is returned when a word appears before any line marker.
	ErrOrphanWord = errors.New("word without a preceding line marker")
)

// markerPattern matches a marker tag together with the single space that
// separates it from the next atom.
var markerPattern = regexp.MustCompile(`\[\[.*?\]\] `)

// linePattern matches a complete line marker tag.
var linePattern = regexp.MustCompile(`\[\[LINE .*?\]\]`)

// MarkerError describes a marker that could not be decoded.
type MarkerError struct {
	Tag    string // The offending tag, brackets included
	Offset int    // Byte offset of the tag in the parsed text
	Reason string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("malformed marker %q at offset %d: %s", e.Tag, e.Offset, e.Reason)
}

func (e *MarkerError) Unwrap() error { return ErrMalformedMarker }

// Clean removes every marker tag and its trailing space, leaving the plain
// word text.
func Clean(text string) string {
	return markerPattern.ReplaceAllString(text, "")
}

// CleanWords returns the whitespace-separated words of text with markers
// removed.
func CleanWords(text string) []string {
	return strings.Fields(Clean(text))
}

// LineTagIndex returns the byte ranges of all complete line marker tags in
// text, in order.
func LineTagIndex(text string) [][]int {
	return linePattern.FindAllStringIndex(text, -1)
}

// ParseLine decodes a single "[[LINE x0 y0 x1 y1]]" tag. The tag must carry
// exactly four numeric fields.
func ParseLine(tag string) (Line, error) {
	if !strings.HasPrefix(tag, linePrefix) || !strings.HasSuffix(tag, tagClose) {
		return Line{}, &MarkerError{Tag: tag, Reason: "not a line marker"}
	}
	fields := strings.Fields(tag[len(linePrefix) : len(tag)-len(tagClose)])
	if len(fields) != 4 {
		return Line{}, &MarkerError{Tag: tag, Reason: fmt.Sprintf("expected 4 coordinates, got %d", len(fields))}
	}

	var line Line
	vals := [4]*float64{&line.X0, &line.Y0, &line.X1, &line.Y1}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Line{}, &MarkerError{Tag: tag, Reason: fmt.Sprintf("coordinate %d (%q) is not a number", i+1, f)}
		}
		*vals[i] = v
		line.Fields[i] = f
	}
	return line, nil
}

// Parse decodes a serialized token stream. Unknown or malformed tags yield
// a *MarkerError.
func Parse(text string) (Stream, error) {
	var s Stream
	pos := 0
	for pos < len(text) {
		switch {
		case isSpace(text[pos]):
			pos++

		case strings.HasPrefix(text[pos:], tagOpen):
			end := strings.Index(text[pos:], tagClose)
			if end < 0 {
				return nil, &MarkerError{Tag: text[pos:], Offset: pos, Reason: "unterminated tag"}
			}
			tag := text[pos : pos+end+len(tagClose)]
			atom, err := parseTag(tag)
			if err != nil {
				var me *MarkerError
				if errors.As(err, &me) {
					me.Offset = pos
				}
				return nil, err
			}
			s = append(s, atom)
			pos += len(tag)

		default:
			end := pos
			for end < len(text) && !isSpace(text[end]) {
				end++
			}
			s = append(s, Word{Text: text[pos:end]})
			pos = end
		}
	}
	return s, nil
}

// Validate checks that every word is preceded by a line marker.
func Validate(s Stream) error {
	seenLine := false
	for i, a := range s {
		switch v := a.(type) {
		case Line:
			seenLine = true
		case Word:
			if !seenLine {
				return fmt.Errorf("atom %d (%q): %w", i, v.Text, ErrOrphanWord)
			}
		}
	}
	return nil
}

func parseTag(tag string) (Atom, error) {
	if tag == ParagraphTag {
		return Paragraph{}, nil
	}
	if strings.HasPrefix(tag, linePrefix) {
		return ParseLine(tag)
	}
	return nil, &MarkerError{Tag: tag, Reason: "unknown marker"}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
