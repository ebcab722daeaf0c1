package rgb24

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// RGB24 is an opaque color with 8 bits per channel.
type RGB24 struct {
	R, G, B uint8
}

// RGBA implements color.Color.
// Each 8-bit channel is scaled to 16 bits (0xFF -> 0xFFFF).
func (c RGB24) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, 0xFFFF
}

// String returns the color as "#rrggbb".
func (c RGB24) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Common colors.
var (
	Black = RGB24{}
	White = RGB24{R: 0xFF, G: 0xFF, B: 0xFF}
)

func toRGB24(c color.Color) color.Color {
	if v, ok := c.(RGB24); ok {
		return v
	}
	// Alpha is dropped; the color is taken as composited over black.
	r, g, b, _ := c.RGBA()
	return RGB24{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Model converts colors to RGB24.
var Model = color.ModelFunc(toRGB24)

// Parse reads a color written as "#rrggbb", "rrggbb" or "#rgb".
func Parse(s string) (RGB24, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB24{}, fmt.Errorf("rgb24: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB24{}, fmt.Errorf("rgb24: invalid color %q: %w", s, err)
	}
	return RGB24{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Image is an RGB image with three bytes per pixel.
type Image struct {
	Pix    []byte          // Pixel data, R G B per pixel
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates an Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 3*w*h),
		Stride: 3 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	return p.RGB24At(x, y)
}

// RGB24At returns the RGB24 color of the pixel at (x, y).
func (p *Image) RGB24At(x, y int) RGB24 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB24{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return RGB24{R: s[0], G: s[1], B: s[2]}
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB24(x, y, Model.Convert(c).(RGB24))
}

// SetRGB24 sets the RGB24 color of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *Image) SetRGB24(x, y int, c RGB24) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c.R, c.G, c.B
}

// Fill paints every pixel with c.
func (p *Image) Fill(c RGB24) {
	for i := 0; i+2 < len(p.Pix); i += 3 {
		p.Pix[i], p.Pix[i+1], p.Pix[i+2] = c.R, c.G, c.B
	}
}

// Row returns the packed bytes of row y, or nil when y is outside the image.
// The slice aliases Pix.
func (p *Image) Row(y int) []byte {
	if y < p.Rect.Min.Y || y >= p.Rect.Max.Y {
		return nil
	}
	start := (y - p.Rect.Min.Y) * p.Stride
	return p.Pix[start : start+3*p.Rect.Dx()]
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}
