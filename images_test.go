package stanza

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x % 256), A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return &buf
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	src := encodeTestPNG(t, 400, 300)
	name, data, err := processImage(src, "My Photo.png")
	if err != nil {
		t.Fatalf("failed to process image: %v", err)
	}
	if name != "my-photo.jpg" {
		t.Errorf("name = %q", name)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not jpeg: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("dimensions = %dx%d, want 400x300", b.Dx(), b.Dy())
	}
}

func TestProcessImageResizesWideImages(t *testing.T) {
	src := encodeTestPNG(t, 1600, 1200)
	_, data, err := processImage(src, "big.png")
	if err != nil {
		t.Fatalf("failed to process image: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not jpeg: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 800 {
		t.Errorf("width = %d, want 800", b.Dx())
	}
	if b.Dy() != 600 {
		t.Errorf("height = %d, want 600 (aspect preserved)", b.Dy())
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "x.png"); err == nil {
		t.Error("garbage input should fail to decode")
	}
}

func TestEnsureUniqueFilename(t *testing.T) {
	root := setupTestSite(t)
	e := setupTestEngine(t, root, WithNoCache())

	if got := e.ensureUniqueFilename("photo.jpg"); got != "photo.jpg" {
		t.Errorf("fresh name = %q", got)
	}

	if err := os.MkdirAll(e.uploadsDir(), 0o755); err != nil {
		t.Fatalf("failed to create uploads dir: %v", err)
	}
	for _, name := range []string{"photo.jpg", "photo-2.jpg"} {
		if err := os.WriteFile(filepath.Join(e.uploadsDir(), name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if got := e.ensureUniqueFilename("photo.jpg"); got != "photo-3.jpg" {
		t.Errorf("collided name = %q", got)
	}
}
