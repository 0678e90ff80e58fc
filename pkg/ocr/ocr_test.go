//go:build ocr

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a simple white PNG with a black block.
func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 50; x++ {
		for y := 10; y < 30; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestRecognizeHOCR(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	out, err := client.RecognizeHOCR(createTestPNG(100, 50))
	if err != nil {
		t.Fatalf("RecognizeHOCR failed: %v", err)
	}
	if !bytes.Contains(out, []byte("ocr_page")) {
		t.Errorf("output is not hOCR:\n%s", out)
	}
}

func TestRecognizePage(t *testing.T) {
	_, page, err := RecognizePage(createTestPNG(200, 80), "")
	if err != nil {
		t.Fatalf("RecognizePage failed: %v", err)
	}
	if page.BBox.Width() != 200 || page.BBox.Height() != 80 {
		t.Errorf("page bbox = %+v, want the image size", page.BBox)
	}
}
