// Package hocr parses hOCR, the HTML-based format OCR engines such as
// Tesseract use to report recognized text with its page geometry, and turns
// a parsed page into an annotated token stream.
//
// The object model follows the hOCR hierarchy:
// Document → Pages → Areas → Paragraphs → Lines → Words.
//
// Main Functions:
//
// - ParseHOCR: parses hOCR HTML into the object model
// - TokenStream: serializes one page into paragraph and line markers
// interleaved with the recognized words
package hocr
