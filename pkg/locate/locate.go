// Package locate recovers the page geometry of a matched phrase from the line
// markers of a token stream.
//
// The matched phrase is plain text, so its position in the marker-inclusive
// stream is searched again character by character. The scan runs from the
// end of the stream toward the start; when two windows score the same, the
// one nearer the end is kept. Once found, the closest line marker before the
// window anchors the top-left corner and the markers inside the window
// extend the right and bottom edges.
package locate

import (
	"errors"
	"fmt"

	"github.com/gardar/ocrcallout/pkg/stream"
	"github.com/gardar/ocrcallout/pkg/textmatch"
)

// AcceptScore ends the scan early once a window scores above it.
const AcceptScore = 0.85

var (
	// ErrNotLocated is returned when no window of the stream shares a single
	// character position with the matched text.
	ErrNotLocated = errors.New("matched text not located in stream")

	// ErrEmptyMatch is returned for an empty matched text.
	ErrEmptyMatch = errors.New("matched text is empty")
)

// Resolve finds the window of text that best reproduces matched and returns
// its region. text is the serialized token stream.
func Resolve(text, matched string) (Region, error) {
	raw := []rune(text)
	target := []rune(matched)
	if len(target) == 0 {
		return Region{}, ErrEmptyMatch
	}
	if len(raw) < len(target) {
		return Region{}, fmt.Errorf("stream has %d characters, match has %d: %w", len(raw), len(target), ErrNotLocated)
	}

	start, end, cleaned, score := scan(raw, target)
	if start < 0 {
		return Region{}, fmt.Errorf("%q: %w", matched, ErrNotLocated)
	}

	region := Region{
		Text:  string(cleaned),
		Score: score,
		Start: start,
		End:   end,
	}

	before := lineMarkers(string(raw[:start]), &region.Rejected)
	if n := len(before); n > 0 {
		anchor := before[n-1]
		region.Anchor = &anchor
	}
	region.Spanned = lineMarkers(string(raw[start:end]), &region.Rejected)
	region.Box = foldBox(region.Anchor, region.Spanned)
	return region, nil
}

// scan slides a window of len(target) runes from the end of raw to its start
// and returns the best window. start is -1 when nothing scored above zero.
func scan(raw, target []rune) (start, end int, cleaned []rune, score float64) {
	size := len(target)
	start, end = -1, -1

	for e := len(raw); e >= size; e-- {
		s, window := grow(raw, e-size, e, size)
		sim := textmatch.Similarity(window, target)
		if sim > score {
			start, end, cleaned, score = s, e, window, sim
		}
		if score > AcceptScore {
			break
		}
	}
	return start, end, cleaned, score
}

// grow moves start left until the cleaned window raw[start:end] holds at
// least size runes, making up for marker text removed by cleaning. It stops
// at the start of raw.
func grow(raw []rune, start, end, size int) (int, []rune) {
	window := cleanRunes(raw[start:end])
	for len(window) < size && start > 0 {
		start = max(start-(size-len(window)), 0)
		window = cleanRunes(raw[start:end])
	}
	return start, window
}

func cleanRunes(r []rune) []rune {
	return []rune(stream.Clean(string(r)))
}

// lineMarkers decodes every complete line tag in text. Tags that fail to
// decode are appended to rejected and skipped.
func lineMarkers(text string, rejected *[]string) []stream.Line {
	var lines []stream.Line
	for _, loc := range stream.LineTagIndex(text) {
		tag := text[loc[0]:loc[1]]
		line, err := stream.ParseLine(tag)
		if err != nil {
			*rejected = append(*rejected, tag)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
