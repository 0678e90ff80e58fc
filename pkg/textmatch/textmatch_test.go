package textmatch

import (
	"errors"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"hello", "world"}, []string{"hello", "world"}, 1},
		{"one substitution", []string{"hello", "world"}, []string{"hello", "universe"}, 0.5},
		{"case sensitive", []string{"Hello"}, []string{"hello"}, 0},
		{"order sensitive", []string{"a", "b"}, []string{"b", "a"}, 0},
		{"uneven lengths", []string{"a", "b", "c", "d"}, []string{"a", "b"}, 0.5},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity = %v, want %v", got, tt.want)
			}
		})
	}

	if got := Similarity([]rune("kitten"), []rune("sitten")); got != 5.0/6.0 {
		t.Errorf("rune Similarity = %v, want %v", got, 5.0/6.0)
	}
}

func TestMatchExact(t *testing.T) {
	text := "[[PARAGRAPH]] [[LINE 100 200 300 400]] hello world test [[LINE 500 600 700 800]] another line"
	res, err := Match(text, "hello world")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Text != "hello world" || res.Score != 1 {
		t.Errorf("got %q (%v), want %q (1)", res.Text, res.Score, "hello world")
	}
	if res.Index != 0 {
		t.Errorf("Index = %d, want 0", res.Index)
	}
}

func TestMatchAcrossLineMarkers(t *testing.T) {
	text := "[[LINE 0 0 50 20]] Hello world [[LINE 0 20 60 40]] foo bar"
	res, err := Match(text, "world foo")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Text != "world foo" || res.Score != 1 {
		t.Errorf("got %q (%v)", res.Text, res.Score)
	}
}

func TestMatchFirstOccurrenceWins(t *testing.T) {
	text := "[[LINE 0 0 10 10]] the cat sat [[LINE 0 10 10 20]] on the cat mat"
	res, err := Match(text, "the cat")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Index != 0 {
		t.Errorf("Index = %d, want first occurrence at 0", res.Index)
	}
}

func TestMatchToleratesSubstitution(t *testing.T) {
	text := "[[LINE 0 0 10 10]] Tbe quick brown fox jumps"
	res, err := Match(text, "The quick brown fox")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Text != "Tbe quick brown fox" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Score != 0.75 {
		t.Errorf("Score = %v, want 0.75", res.Score)
	}
}

func TestMatchNoMatch(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
	}{
		{"query longer than stream", "[[LINE 0 0 1 1]] one two", "one two three"},
		{"empty stream", "", "word"},
		{"markers only", "[[PARAGRAPH]] [[LINE 0 0 1 1]] ", "word"},
		{"nothing in common", "[[LINE 0 0 1 1]] alpha beta", "gamma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.text, tt.query)
			if !errors.Is(err, ErrNoMatch) {
				t.Errorf("err = %v, want ErrNoMatch", err)
			}
		})
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := Match("[[LINE 0 0 1 1]] a", q); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Match(%q) err = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestMatchAll(t *testing.T) {
	text := "[[LINE 0 0 10 10]] alpha beta gamma [[LINE 0 10 10 20]] delta epsilon"
	results, err := MatchAll(text, []string{"delta epsilon", "alpha beat", "zeta", "gamma"}, 0.5)
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}
	if results[0].Score != 1 || results[len(results)-1].Score != 0.5 {
		t.Errorf("results not ordered by score: %+v", results)
	}
	if results[2].Text != "alpha beta" {
		t.Errorf("weakest result = %q, want %q", results[2].Text, "alpha beta")
	}

	if _, err := MatchAll(text, []string{"alpha", " "}, 0); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}
