// Package textmatch finds the run of OCR words that best matches a phrase.
//
// Matching is positional: a window of words the same length as the query is
// slid over the stream and scored by the fraction of positions whose words
// are exactly equal. The metric forgives substituted words (OCR misreads)
// but not inserted or dropped ones, since a single shift misaligns every
// following position.
package textmatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gardar/ocrcallout/pkg/stream"
)

var (
	// ErrNoMatch is returned when no window of the stream scores above zero,
	// including when the stream holds fewer words than the query.
	ErrNoMatch = errors.New("no match found")

	// ErrEmptyQuery is returned for a query without any words.
	ErrEmptyQuery = errors.New("query has no words")
)

// DefaultThreshold is the minimum MatchAll score used when none is
// configured.
const DefaultThreshold = 0.5

// Result is the best matching word run.
type Result struct {
	Query string  // Query as given
	Text  string  // Matched words joined by single spaces
	Score float64 // Positional similarity in [0, 1]
	Index int     // Index of the first matched word in the cleaned word sequence
}

// Similarity returns the fraction of aligned positions where a and b hold
// equal elements, over the longer of the two lengths. Two empty sequences
// score 0.
func Similarity[T comparable](a, b []T) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

// Match finds the window of words in the serialized token stream text that
// is most similar to query. Markers are ignored. On equal scores the
// earliest window wins.
func Match(text, query string) (Result, error) {
	queryWords := strings.Fields(query)
	if len(queryWords) == 0 {
		return Result{}, ErrEmptyQuery
	}
	return matchWords(stream.CleanWords(text), queryWords, query)
}

func matchWords(words, queryWords []string, query string) (Result, error) {
	size := len(queryWords)
	if len(words) < size {
		return Result{}, fmt.Errorf("query has %d words, stream has %d: %w", size, len(words), ErrNoMatch)
	}

	best := Result{Query: query, Index: -1}
	for i := 0; i+size <= len(words); i++ {
		score := Similarity(words[i:i+size], queryWords)
		if score > best.Score {
			best.Score = score
			best.Index = i
		}
	}
	if best.Index < 0 {
		return Result{}, fmt.Errorf("no window shares a word position with %q: %w", query, ErrNoMatch)
	}
	best.Text = strings.Join(words[best.Index:best.Index+size], " ")
	return best, nil
}

// MatchAll matches every query against text and returns the results scoring
// at least threshold, ordered by descending score. Queries that fail to
// match are skipped; an empty query is an error.
func MatchAll(text string, queries []string, threshold float64) ([]Result, error) {
	words := stream.CleanWords(text)

	var results []Result
	for _, q := range queries {
		queryWords := strings.Fields(q)
		if len(queryWords) == 0 {
			return nil, fmt.Errorf("query %q: %w", q, ErrEmptyQuery)
		}
		res, err := matchWords(words, queryWords, q)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.Score >= threshold {
			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
