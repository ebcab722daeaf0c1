package ledmatrix

import (
	"errors"

	"github.com/flavioheleno/ledmatrix/bitfont"
)

// Static foreground drawing. These calls only touch the draw plane; nothing
// reaches the display until CommitDrawing.

// ClearDrawBuffer clears the draw plane.
func (c *Compositor) ClearDrawBuffer() {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	c.draw.clear()
}

// SetDrawFont selects the font used by DrawChar and DrawString.
func (c *Compositor) SetDrawFont(f bitfont.Font) error {
	if f == nil {
		return errors.New("ledmatrix: nil font")
	}
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	c.drawFont = f
	return nil
}

// DrawPixel sets (opaque) or clears the pixel at local coordinates (x, y).
// Pixels outside the local screen are ignored.
func (c *Compositor) DrawPixel(x, y int, opaque bool) {
	g := c.Geometry()
	if x < 0 || y < 0 || x >= g.LocalWidth() || y >= g.LocalHeight() {
		return
	}
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	c.draw.set(x, y, opaque)
}

// DrawChar draws the glyph for ch with its top left corner at (x, y).
// Characters missing from the draw font leave the plane unchanged.
func (c *Compositor) DrawChar(x, y int, ch byte, opaque bool) {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	c.drawChar(x, y, ch, opaque)
}

func (c *Compositor) drawChar(x, y int, ch byte, opaque bool) {
	f := c.drawFont
	gl, ok := f.Glyph(ch)
	if !ok {
		return
	}
	g := c.Geometry()
	lw, lh := g.LocalWidth(), g.LocalHeight()
	for row := 0; row < f.Height(); row++ {
		if y+row < 0 || y+row >= lh {
			continue
		}
		c.draw.blit(y+row, x, f.RowBits(gl, row), 0, lw-1, opaque)
	}
}

// DrawString draws s one glyph cell after another starting at (x, y). It
// stops at a NUL or newline byte.
func (c *Compositor) DrawString(x, y int, s string, opaque bool) {
	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	w := c.drawFont.Width()
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] == '\n' {
			return
		}
		c.drawChar(x+i*w, y, s[i], opaque)
	}
}

// DrawMonoBitmap draws a 1-bit bitmap of width x height pixels. Rows are
// padded to whole bytes and the most significant bit is the leftmost pixel.
// Only set bits are drawn.
func (c *Compositor) DrawMonoBitmap(x, y, width, height int, bitmap []byte, opaque bool) {
	stride := (width + 7) / 8
	g := c.Geometry()
	lw, lh := g.LocalWidth(), g.LocalHeight()

	c.drawMu.Lock()
	defer c.drawMu.Unlock()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*stride + col/8
			if i >= len(bitmap) || bitmap[i]&(0x80>>uint(col%8)) == 0 {
				continue
			}
			px, py := x+col, y+row
			if px < 0 || py < 0 || px >= lw || py >= lh {
				continue
			}
			c.draw.set(px, py, opaque)
		}
	}
}
