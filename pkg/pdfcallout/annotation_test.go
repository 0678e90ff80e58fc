package pdfcallout

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gardar/ocrcallout/pkg/locate"
)

func TestRenderFlipsYAxis(t *testing.T) {
	box := locate.Box{X0: 10, Y0: 20, X1: 110, Y1: 70}

	a := Render(box, 800, DefaultStyle(KindRectangle))
	if want := [4]float64{10, 730, 110, 780}; a.Rect != want {
		t.Errorf("Rect = %v, want %v", a.Rect, want)
	}
	if a.QuadPoints != nil {
		t.Errorf("rectangle has QuadPoints %v", a.QuadPoints)
	}

	h := Render(box, 800, DefaultStyle(KindHighlight))
	want := []float64{10, 780, 110, 780, 10, 730, 110, 730}
	if len(h.QuadPoints) != len(want) {
		t.Fatalf("QuadPoints = %v, want %v", h.QuadPoints, want)
	}
	for i := range want {
		if h.QuadPoints[i] != want[i] {
			t.Errorf("QuadPoints = %v, want %v", h.QuadPoints, want)
			break
		}
	}
}

func TestAnnotationDict(t *testing.T) {
	box := locate.Box{X0: 0, Y0: 0, X1: 50, Y1: 20}

	rect := Render(box, 100, DefaultStyle(KindRectangle))
	rect.Contents = "Hello (world)"
	got := rect.dict(3)
	for _, want := range []string{
		"/Type /Annot", "/Subtype /Square", "/Rect [0 80 50 100]", "/C [1 0 0]",
		"/Border [0 0 1]", "/F 4", "/P 3 0 R", `/Contents (Hello \(world\))`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dict %s lacks %q", got, want)
		}
	}

	hl := Render(box, 100, DefaultStyle(KindHighlight)).dict(3)
	for _, want := range []string{"/Subtype /Highlight", "/C [1 1 0]", "/QuadPoints [0 100 50 100 0 80 50 80]"} {
		if !strings.Contains(hl, want) {
			t.Errorf("dict %s lacks %q", hl, want)
		}
	}
	if strings.Contains(hl, "/Contents") {
		t.Errorf("dict %s has /Contents without text", hl)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    colorful.Color
		wantErr bool
	}{
		{in: "red", want: colorful.Color{R: 1}},
		{in: " Yellow ", want: colorful.Color{R: 1, G: 1}},
		{in: "#00ff00", want: colorful.Color{G: 1}},
		{in: "0000ff", want: colorful.Color{B: 1}},
		{in: "#fff", want: colorful.Color{R: 1, G: 1, B: 1}},
		{in: "chartreuse-ish", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseColor(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.in, err)
			}
			if !got.AlmostEqualRgb(tt.want) {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":          KindRectangle,
		"rectangle": KindRectangle,
		"Square":    KindRectangle,
		"highlight": KindHighlight,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("circle"); err == nil {
		t.Error("ParseKind(circle) succeeded")
	}
}

func TestPDFString(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "(plain)"},
		{`a(b)c\`, `(a\(b\)c\\)`},
		{"two\nlines", `(two\nlines)`},
		{"Ωmega", "<FEFF03A9006D006500670061>"},
	}
	for _, tt := range tests {
		if got := pdfString(tt.in); got != tt.want {
			t.Errorf("pdfString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[float64]string{
		600:      "600",
		1.23456:  "1.2346",
		-0.00001: "0",
		0.5:      "0.5",
	} {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %s, want %s", in, got, want)
		}
	}
}
