package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	fb.Resize(80, 48)
	if fb.Width != 80 || fb.Height != 48 || len(fb.Pixels) != 80*48 {
		t.Fatalf("Resize: got %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}

	fb.Resize(-1, 3)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("negative width should clamp to zero, got %d", fb.Width)
	}
}

func TestFramebufferPixelBounds(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	fb.SetPixel(-1, 0, ColorWhite)
	fb.SetPixel(3, 3, ColorWhite)
	fb.SetPixel(1, 1, ColorWhite)

	if got := fb.GetPixel(1, 1); got != ColorWhite {
		t.Errorf("GetPixel(1,1) = %v", got)
	}
	if got := fb.GetPixel(5, 5); got.A != 0 {
		t.Errorf("out of bounds should be transparent, got %v", got)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(0xf8f0e3); got != RGB(0xf8, 0xf0, 0xe3) {
		t.Errorf("Hex = %v", got)
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(8, 6)
	fb.Clear(Hex(0xf9c9b6))
	path := filepath.Join(t.TempDir(), "frame.png")

	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("bounds = %v", b)
	}
	r, g, b, _ := img.At(3, 3).RGBA()
	if uint8(r>>8) != 0xf9 || uint8(g>>8) != 0xc9 || uint8(b>>8) != 0xb6 {
		t.Errorf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestTextureSampleWraps(t *testing.T) {
	tex := NewTexture(2, 2)
	tex.Pixels = []Color{ColorBlack, ColorWhite, ColorGreen, ColorBlack}

	// V=0 is the bottom row of the image.
	if got := tex.Sample(0.25, 0.25); got != ColorGreen {
		t.Errorf("Sample(0.25, 0.25) = %v, want bottom-left", got)
	}
	if got := tex.Sample(1.75, 1.75); got != ColorWhite {
		t.Errorf("Sample(1.75, 1.75) = %v, want wrapped top-right", got)
	}
}
