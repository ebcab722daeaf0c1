package scanout

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/flavioheleno/ledmatrix/rgb24"
)

func TestNewTerminal(t *testing.T) {
	if _, err := NewTerminal(&bytes.Buffer{}, 0, 4); err == nil {
		t.Error("NewTerminal() with zero width should fail")
	}
	term, err := NewTerminal(&bytes.Buffer{}, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if term.String() != "scanout.Terminal{4x3}" {
		t.Errorf("String() = %q", term.String())
	}
	if term.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("Bounds() = %v", term.Bounds())
	}
	if term.ColorModel() != rgb24.Model {
		t.Error("ColorModel() is not rgb24.Model")
	}
}

func TestTerminalDraw(t *testing.T) {
	var out bytes.Buffer
	term, err := NewTerminal(&out, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	img := rgb24.NewImage(image.Rect(0, 0, 2, 2))
	img.SetRGB24(0, 0, rgb24.RGB24{R: 255})
	img.SetRGB24(0, 1, rgb24.RGB24{B: 7})
	if err := term.Draw(img.Rect, img, image.Point{}); err != nil {
		t.Fatalf("Draw() = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "\x1b[H") {
		t.Errorf("output does not home the cursor: %q", got)
	}
	if !strings.Contains(got, "\x1b[38;2;255;0;0m\x1b[48;2;0;0;7m▀") {
		t.Errorf("output missing first cell: %q", got)
	}
	if n := strings.Count(got, "▀"); n != 2 {
		t.Errorf("%d cells, want 2", n)
	}

	// The same frame is not written twice.
	out.Reset()
	if err := term.Draw(img.Rect, img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("unchanged frame wrote %d bytes", out.Len())
	}

	if err := term.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := term.Draw(img.Rect, img, image.Point{}); err == nil {
		t.Error("Draw() after Halt should fail")
	}
}
