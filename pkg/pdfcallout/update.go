package pdfcallout

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

var refPattern = regexp.MustCompile(`^\d+\s+\d+\s+R\b`)

// appendAnnotations attaches annots to the page of a single-page PDF written
// by fpdf. The file is extended with an incremental update holding the new
// annotation objects, a rewritten page object whose /Annots lists exactly
// those annotations, a cross-reference section and a trailer pointing back
// to the previous one.
func appendAnnotations(pdfData []byte, annots []Annotation) ([]byte, error) {
	tail, err := readTail(pdfData)
	if err != nil {
		return nil, err
	}
	page, err := findPageObject(pdfData)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(pdfData) + 512*len(annots) + 512)
	buf.Write(pdfData)
	if !bytes.HasSuffix(pdfData, []byte("\n")) {
		buf.WriteByte('\n')
	}

	offsets := make([]int, len(annots))
	refs := make([]string, len(annots))
	for i, a := range annots {
		num := tail.size + i
		offsets[i] = buf.Len()
		refs[i] = fmt.Sprintf("%d 0 R", num)
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, a.dict(page.num))
	}

	pageOffset := buf.Len()
	dict := strings.TrimSuffix(removeKey(page.dict, "/Annots"), ">>")
	fmt.Fprintf(&buf, "%d 0 obj\n%s\n/Annots [%s]>>\nendobj\n", page.num, dict, strings.Join(refs, " "))

	xref := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "%d 1\n%010d 00000 n \n", page.num, pageOffset)
	if len(annots) > 0 {
		fmt.Fprintf(&buf, "%d %d\n", tail.size, len(annots))
		for _, off := range offsets {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		}
	}

	buf.WriteString("trailer\n<<\n")
	fmt.Fprintf(&buf, "/Size %d\n/Root %s\n", tail.size+len(annots), tail.root)
	if tail.info != "" {
		fmt.Fprintf(&buf, "/Info %s\n", tail.info)
	}
	fmt.Fprintf(&buf, "/Prev %d\n>>\nstartxref\n%d\n%%%%EOF\n", tail.startxref, xref)
	return buf.Bytes(), nil
}

// removeKey deletes key and its value from a serialized dictionary. The value
// may be an array, a dictionary, an indirect reference or a single token.
func removeKey(dict, key string) string {
	for {
		i := indexKey(dict, key)
		if i < 0 {
			return dict
		}
		end := skipValue(dict, i+len(key))
		dict = dict[:i] + dict[end:]
	}
}

// indexKey finds key as a whole name, not as the prefix of a longer one.
func indexKey(dict, key string) int {
	from := 0
	for {
		i := strings.Index(dict[from:], key)
		if i < 0 {
			return -1
		}
		i += from
		next := i + len(key)
		if next >= len(dict) || !isNameChar(dict[next]) {
			return i
		}
		from = next
	}
}

// skipValue returns the offset just past the value that starts at or after i.
func skipValue(s string, i int) int {
	for i < len(s) && isWhitespace(s[i]) {
		i++
	}
	if i >= len(s) {
		return i
	}

	switch {
	case s[i] == '[' || strings.HasPrefix(s[i:], "<<"):
		depth := 0
		for j := i; j < len(s); j++ {
			switch {
			case s[j] == '(':
				j = skipLiteral(s, j)
			case s[j] == '[':
				depth++
			case s[j] == ']':
				depth--
			case strings.HasPrefix(s[j:], "<<"):
				depth++
				j++
			case strings.HasPrefix(s[j:], ">>"):
				depth--
				j++
			}
			if depth == 0 {
				return j + 1
			}
		}
		return len(s)
	case s[i] == '(':
		return skipLiteral(s, i) + 1
	}

	if loc := refPattern.FindStringIndex(s[i:]); loc != nil {
		return i + loc[1]
	}
	return skipToken(s, i)
}

func skipToken(s string, i int) int {
	for i < len(s) && isWhitespace(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '/' {
		i++
	}
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return i
}

// skipLiteral returns the offset of the parenthesis closing the literal
// string that opens at i.
func skipLiteral(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(s) - 1
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isNameChar(c byte) bool {
	return !isWhitespace(c) && !strings.ContainsRune("()<>[]{}/%", rune(c))
}
