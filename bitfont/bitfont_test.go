package bitfont

import (
	"image"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestFont5x7Metrics(t *testing.T) {
	if Font5x7.Width() != 6 || Font5x7.Height() != 7 {
		t.Errorf("Font5x7 = %dx%d, want 6x7", Font5x7.Width(), Font5x7.Height())
	}
	for c := 0x20; c <= 0x7E; c++ {
		if _, ok := Font5x7.Glyph(byte(c)); !ok {
			t.Errorf("Glyph(%q) missing", rune(c))
		}
	}
	for _, c := range []byte{0x00, '\n', 0x7F, 0xFF} {
		if g, ok := Font5x7.Glyph(c); ok || g != -1 {
			t.Errorf("Glyph(%#x) = %d, %v, want -1, false", c, g, ok)
		}
	}
}

func TestFont5x7RowBits(t *testing.T) {
	tests := []struct {
		name string
		c    byte
		row  int
		want uint32
	}{
		{"H top row", 'H', 0, 0x88000000},
		{"H crossbar", 'H', 3, 0xF8000000},
		{"I top row", 'I', 0, 0x70000000},
		{"I stem", 'I', 1, 0x20000000},
		{"space", ' ', 3, 0},
		{"row past height", 'H', 7, 0},
		{"negative row", 'H', -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := Font5x7.Glyph(tt.c)
			if !ok {
				t.Fatalf("Glyph(%q) missing", tt.c)
			}
			if got := Font5x7.RowBits(g, tt.row); got != tt.want {
				t.Errorf("RowBits(%q, %d) = %#08x, want %#08x", tt.c, tt.row, got, tt.want)
			}
		})
	}
}

func TestFont5x7SpacingColumnClear(t *testing.T) {
	for c := 0x20; c <= 0x7E; c++ {
		g, _ := Font5x7.Glyph(byte(c))
		for y := 0; y < Font5x7.Height(); y++ {
			if bits := Font5x7.RowBits(g, y); bits&^0xF8000000 != 0 {
				t.Fatalf("glyph %q row %d = %#08x draws outside the 5 pixel cell", rune(c), y, bits)
			}
		}
	}
}

func TestFromFace(t *testing.T) {
	f := Font7x13
	if f.Width() != basicfont.Face7x13.Advance {
		t.Errorf("Width() = %d, want %d", f.Width(), basicfont.Face7x13.Advance)
	}
	if f.Height() != 13 {
		t.Errorf("Height() = %d, want 13", f.Height())
	}

	g, ok := f.Glyph('A')
	if !ok {
		t.Fatal("Glyph('A') missing")
	}
	var lit bool
	for y := 0; y < f.Height(); y++ {
		bits := f.RowBits(g, y)
		if bits != 0 {
			lit = true
		}
		if bits&^0xFC000000 != 0 {
			t.Errorf("row %d = %#08x exceeds face width", y, bits)
		}
	}
	if !lit {
		t.Error("glyph 'A' has no pixels")
	}

	sp, _ := f.Glyph(' ')
	for y := 0; y < f.Height(); y++ {
		if f.RowBits(sp, y) != 0 {
			t.Errorf("space row %d not blank", y)
		}
	}
}

func TestFromFaceSynthetic(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 2, 4))
	mask.Pix = []byte{
		0xFF, 0x00, // 'a' row 0
		0x00, 0xFF, // 'a' row 1
		0xFF, 0xFF, // 'b' row 0
		0x00, 0x00, // 'b' row 1
	}
	face := &basicfont.Face{
		Advance: 3, Width: 2, Ascent: 2, Descent: 0,
		Mask:   mask,
		Ranges: []basicfont.Range{{Low: 'a', High: 'c', Offset: 0}},
	}
	f, err := FromFace("tiny", face)
	if err != nil {
		t.Fatalf("FromFace() = %v", err)
	}

	a, _ := f.Glyph('a')
	b, _ := f.Glyph('b')
	want := map[[2]int]uint32{
		{a, 0}: 0x80000000,
		{a, 1}: 0x40000000,
		{b, 0}: 0xC0000000,
		{b, 1}: 0,
	}
	for k, w := range want {
		if got := f.RowBits(k[0], k[1]); got != w {
			t.Errorf("RowBits(%d, %d) = %#08x, want %#08x", k[0], k[1], got, w)
		}
	}
	if _, ok := f.Glyph('c'); ok {
		t.Error("Glyph('c') should be missing")
	}
}

func TestFromFaceErrors(t *testing.T) {
	tests := []struct {
		name string
		face *basicfont.Face
	}{
		{"nil face", nil},
		{"no mask", &basicfont.Face{Advance: 5, Ascent: 5}},
		{"too wide", &basicfont.Face{Advance: 40, Ascent: 5, Mask: image.NewAlpha(image.Rect(0, 0, 1, 1))}},
		{"no height", &basicfont.Face{Advance: 5, Mask: image.NewAlpha(image.Rect(0, 0, 1, 1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromFace("bad", tt.face); err == nil {
				t.Error("FromFace() should fail")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"5x7", "7x13", " 5X7 "} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) = %v", name, err)
		}
	}
	if _, err := Lookup("apple8x13"); err == nil {
		t.Error("Lookup of unknown font should fail")
	}
	if names := Names(); len(names) < 2 || names[0] != "5x7" {
		t.Errorf("Names() = %v", names)
	}
}
