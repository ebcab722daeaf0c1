// Package bitfont provides fixed-width bitmap fonts for LED matrix text.
//
// A glyph row is returned as a left-aligned uint32: bit 31 is the leftmost
// column of the glyph. This matches the word layout of the matrix foreground
// bitmap so a row can be shifted straight into place.
package bitfont

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"golang.org/x/image/font/basicfont"
)

// MaxWidth is the widest glyph cell a Font can describe.
const MaxWidth = 32

// Font maps bytes to glyph bitmaps. All glyphs share the same advance width
// and height.
type Font interface {
	// Name returns the registry name of the font.
	Name() string
	// Width returns the advance width of every glyph, in pixels.
	Width() int
	// Height returns the glyph height, in pixels.
	Height() int
	// Glyph returns the glyph location of c, or false when the font has no
	// glyph for c.
	Glyph(c byte) (int, bool)
	// RowBits returns row y of the glyph at location g, left-aligned.
	RowBits(g, y int) uint32
}

// Bitmap is a Font backed by a packed row table.
type Bitmap struct {
	name   string
	width  int
	height int
	index  [256]int16 // glyph location per byte, -1 when absent
	rows   []uint32   // height rows per glyph
}

// Name implements Font.
func (f *Bitmap) Name() string { return f.name }

// Width implements Font.
func (f *Bitmap) Width() int { return f.width }

// Height implements Font.
func (f *Bitmap) Height() int { return f.height }

// Glyph implements Font.
func (f *Bitmap) Glyph(c byte) (int, bool) {
	g := f.index[c]
	if g < 0 {
		return -1, false
	}
	return int(g), true
}

// RowBits implements Font.
func (f *Bitmap) RowBits(g, y int) uint32 {
	if g < 0 || y < 0 || y >= f.height {
		return 0
	}
	i := g*f.height + y
	if i >= len(f.rows) {
		return 0
	}
	return f.rows[i]
}

// String returns a short description of the font.
func (f *Bitmap) String() string {
	return fmt.Sprintf("bitfont.Bitmap{%s %dx%d}", f.name, f.width, f.height)
}

func newBitmap(name string, width, height int) *Bitmap {
	f := &Bitmap{name: name, width: width, height: height}
	for i := range f.index {
		f.index[i] = -1
	}
	return f
}

// add appends a glyph for c and returns its row slice for filling.
func (f *Bitmap) add(c byte) []uint32 {
	g := len(f.rows) / f.height
	f.index[c] = int16(g)
	f.rows = append(f.rows, make([]uint32, f.height)...)
	return f.rows[g*f.height : (g+1)*f.height]
}

// FromFace converts a basicfont face into a Bitmap. Only runes below 256 are
// kept. The glyph cell is the face advance wide and Ascent+Descent tall.
func FromFace(name string, face *basicfont.Face) (*Bitmap, error) {
	if face == nil || face.Mask == nil {
		return nil, errors.New("bitfont: face has no mask")
	}
	if face.Advance <= 0 || face.Advance > MaxWidth {
		return nil, fmt.Errorf("bitfont: face advance %d out of range 1-%d", face.Advance, MaxWidth)
	}
	height := face.Ascent + face.Descent
	if height <= 0 {
		return nil, errors.New("bitfont: face has no height")
	}

	f := newBitmap(name, face.Advance, height)
	mb := face.Mask.Bounds()
	for _, rng := range face.Ranges {
		for r := rng.Low; r < rng.High && r < 256; r++ {
			top := (int(r-rng.Low) + rng.Offset) * height
			rows := f.add(byte(r))
			for y := 0; y < height; y++ {
				var bits uint32
				for x := 0; x < face.Width && x+face.Left < face.Advance; x++ {
					p := image.Pt(mb.Min.X+x, mb.Min.Y+top+y)
					if !p.In(mb) {
						continue
					}
					if _, _, _, a := face.Mask.At(p.X, p.Y).RGBA(); a >= 0x8000 {
						bits |= 0x80000000 >> uint(x+face.Left)
					}
				}
				rows[y] = bits
			}
		}
	}
	return f, nil
}

// fromColumns builds a font from a column-major table: each glyph is width
// bytes, bit 0 of each byte is the top row.
func fromColumns(name string, advance, height int, first byte, cols int, table []byte) *Bitmap {
	f := newBitmap(name, advance, height)
	for i := 0; (i+1)*cols <= len(table); i++ {
		glyph := table[i*cols : (i+1)*cols]
		rows := f.add(first + byte(i))
		for y := 0; y < height; y++ {
			var bits uint32
			for x, col := range glyph {
				if col&(1<<uint(y)) != 0 {
					bits |= 0x80000000 >> uint(x)
				}
			}
			rows[y] = bits
		}
	}
	return f
}

var registry = map[string]Font{}

// Register makes f available to Lookup under its name.
func Register(f Font) {
	registry[strings.ToLower(f.Name())] = f
}

// Lookup returns the registered font with the given name.
func Lookup(name string) (Font, error) {
	if f, ok := registry[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("bitfont: unknown font %q (have %s)", name, strings.Join(Names(), ", "))
}

// Names returns the registered font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Built-in fonts.
var (
	// Font5x7 is a 5x7 ASCII font with one column of spacing.
	Font5x7 = fromColumns("5x7", 6, 7, 0x20, 5, font5x7Columns)
	// Font7x13 is derived from the X11 misc-fixed 7x13 face.
	Font7x13 = mustFromFace("7x13", basicfont.Face7x13)
)

func mustFromFace(name string, face *basicfont.Face) *Bitmap {
	f, err := FromFace(name, face)
	if err != nil {
		panic(err)
	}
	return f
}

func init() {
	Register(Font5x7)
	Register(Font7x13)
}
