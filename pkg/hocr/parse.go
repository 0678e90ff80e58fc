package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	// ErrNoPages is returned for a document without ocr_page elements.
	ErrNoPages = errors.New("no ocr_page elements found in hOCR data")

	// ErrPageOutOfRange is returned when a page number is not in the document.
	ErrPageOutOfRange = errors.New("page out of range")
)

const (
	classPage      = "ocr_page"
	classArea      = "ocr_carea"
	classParagraph = "ocr_par"
	classWord      = "ocrx_word"
)

// lineClasses are the classes Tesseract uses for a text line. Headers,
// captions and floating text are lines with a different role.
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// ParseHOCR converts raw hOCR data into a structured HOCR object.
func ParseHOCR(data []byte) (HOCR, error) {
	result := HOCR{Metadata: make(map[string]string)}

	decoded, err := decode(data)
	if err != nil {
		return result, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR html: %w", err)
	}

	extractDocumentMeta(&result, doc)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, classPage) {
			result.Pages = append(result.Pages, processPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(result.Pages) == 0 {
		return result, ErrNoPages
	}
	return result, nil
}

// decode converts data to UTF-8 according to the charset declared in the
// document head. Unknown charsets are read as ISO-8859-1.
func decode(data []byte) ([]byte, error) {
	name := declaredCharset(data)
	if name == "" || name == "utf-8" || name == "utf8" {
		return data, nil
	}

	var enc encoding.Encoding = charmap.ISO8859_1
	if e, err := htmlindex.Get(name); err == nil {
		enc = e
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return decoded, nil
}

func declaredCharset(data []byte) string {
	const key = "charset="
	i := bytes.Index(data, []byte(key))
	if i < 0 {
		return ""
	}
	snippet := data[i+len(key) : min(len(data), i+len(key)+40)]
	parts := strings.FieldsFunc(string(snippet), func(r rune) bool {
		return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '/'
	})
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(parts[0])
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string.
// Returns nil if the title has no bbox of four numbers.
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	values, ok := ParseTitle(title)["bbox"]
	if !ok {
		return nil
	}
	box, err := parseBoundingBox(values)
	if err != nil {
		return nil
	}
	return &box
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(result *HOCR, doc *html.Node) {
	var head *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := getAttrVal(n, "lang"); lang != "" {
					result.Language = lang
				} else if lang := getAttrVal(n, "xml:lang"); lang != "" {
					result.Language = lang
				}
			case "head":
				head = n
				return
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if head == nil {
		return
	}

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			result.Title = extractTextContent(c)
		case "meta":
			name, content := getAttrVal(c, "name"), getAttrVal(c, "content")
			if name == "" || content == "" {
				continue
			}
			switch name {
			case "ocr-system", "ocr-capabilities", "ocr-number-of-pages", "ocr-langs":
				result.Metadata[name] = content
			case "dc.language":
				result.Language = content
			}
		}
	}
}

// collect returns the outermost descendants of n carrying one of the
// classes, in document order. The search does not descend into a match.
func collect(n *html.Node, classes ...string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, class := range classes {
				if hasClass(node, class) {
					found = append(found, node)
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// processPage extracts page information and its children (areas, paragraphs, lines)
func processPage(n *html.Node) Page {
	page := Page{ID: getAttrVal(n, "id")}

	props := ParseTitle(getAttrVal(n, "title"))
	if box, err := parseBoundingBox(props["bbox"]); err == nil {
		page.BBox = box
	}
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Trim(strings.Join(image, " "), `"`)
	}
	if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
		page.PageNumber, _ = strconv.Atoi(ppageno[0])
	}

	for _, child := range collect(n, append([]string{classArea, classParagraph}, lineClasses...)...) {
		switch {
		case hasClass(child, classArea):
			page.Areas = append(page.Areas, processArea(child))
		case hasClass(child, classParagraph):
			page.Paragraphs = append(page.Paragraphs, processParagraph(child))
		default:
			page.Lines = append(page.Lines, processLine(child))
		}
	}
	return page
}

// processArea extracts area information and its children (paragraphs, lines, words)
func processArea(n *html.Node) Area {
	area := Area{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		area.BBox = *bbox
	}

	for _, child := range collect(n, append([]string{classParagraph, classWord}, lineClasses...)...) {
		switch {
		case hasClass(child, classParagraph):
			area.Paragraphs = append(area.Paragraphs, processParagraph(child))
		case hasClass(child, classWord):
			area.Words = append(area.Words, processWord(child))
		default:
			area.Lines = append(area.Lines, processLine(child))
		}
	}
	return area
}

// processParagraph extracts paragraph information and its children (lines, words)
func processParagraph(n *html.Node) Paragraph {
	paragraph := Paragraph{
		ID:   getAttrVal(n, "id"),
		Lang: getAttrVal(n, "lang"),
	}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		paragraph.BBox = *bbox
	}

	for _, child := range collect(n, append([]string{classWord}, lineClasses...)...) {
		if hasClass(child, classWord) {
			paragraph.Words = append(paragraph.Words, processWord(child))
			continue
		}
		paragraph.Lines = append(paragraph.Lines, processLine(child))
	}
	return paragraph
}

// processLine extracts line information and its words
func processLine(n *html.Node) Line {
	line := Line{ID: getAttrVal(n, "id")}

	props := ParseTitle(getAttrVal(n, "title"))
	if box, err := parseBoundingBox(props["bbox"]); err == nil {
		line.BBox = box
	}
	if baseline, ok := props["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}

	for _, w := range collect(n, classWord) {
		line.Words = append(line.Words, processWord(w))
	}
	return line
}

// processWord extracts the text and properties of a word element
func processWord(n *html.Node) Word {
	word := Word{
		ID:   getAttrVal(n, "id"),
		Text: extractTextContent(n),
	}

	props := ParseTitle(getAttrVal(n, "title"))
	if box, err := parseBoundingBox(props["bbox"]); err == nil {
		word.BBox = box
	}
	if conf, ok := props["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	return word
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractTextContent(c))
	}
	return strings.TrimSpace(text.String())
}

// hasClass reports whether the class attribute of n lists class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
