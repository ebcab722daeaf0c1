// Package panel drives an RGB LED matrix through an SPI-attached matrix
// co-processor.
//
// The co-processor owns the row scanning and PWM of the matrix. The host
// talks to it with a small command set: a latch pin selects between command
// bytes (low) and pixel data (high), like the D/C line of an OLED controller.
// Pixel data is sent as packed 24-bit RGB rows inside a column/row window, so
// only the changed part of a frame is transferred.
package panel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/ledmatrix/rgb24"
)

// Co-processor commands.
const (
	cmdUnlock     = 0xFD
	cmdColumn     = 0x15
	cmdRow        = 0x75
	cmdWriteRAM   = 0x5C
	cmdMatrixSize = 0xCA
	cmdBrightness = 0xC1
	cmdNormal     = 0xA6
	cmdInverse    = 0xA7
	cmdDisplayOff = 0xAE
	cmdDisplayOn  = 0xAF
)

// ErrHalted is returned by every operation after Halt.
var ErrHalted = errors.New("panel: halted")

// resetDelay is how long RST is held in each state during a hardware reset.
var resetDelay = 200 * time.Millisecond

// Opts is the configuration for the panel.
type Opts struct {
	// Matrix dimensions in pixels
	W int // Width (default: 32, must be ≤256)
	H int // Height (default: 16, must be ≤256)

	Brightness byte             // Initial global brightness (default: 0xFF)
	Hz         physic.Frequency // SPI clock (default: 10MHz)

	// Optional hardware reset pin
	RST gpio.PinIO // Reset pin (optional, nil if not used)
}

// Dev is the device handle for the panel. It is safe for concurrent use: a
// command never lands between the latch change and the data of a frame.
type Dev struct {
	mu sync.Mutex

	c     conn.Conn   // SPI connection
	latch gpio.PinOut // Command/data select
	rst   gpio.PinIO  // Reset pin (optional)
	maxTx int         // Largest single transfer, 0 if unlimited

	rect image.Rectangle

	next *rgb24.Image // Frame being built
	last []byte       // Frame the panel currently shows

	halted bool
}

// NewSPI creates a new panel connected via SPI.
//
// The SPI port is configured for Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// The latch GPIO pin must be provided and configured as an output.
//
// opts can be nil to use defaults (32x16 matrix).
func NewSPI(p spi.Port, latch gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	o := *opts
	if o.W == 0 && o.H == 0 {
		o.W, o.H = 32, 16
	}
	if o.W <= 0 || o.W > 256 {
		return nil, errors.New("panel: width must be between 1 and 256")
	}
	if o.H <= 0 || o.H > 256 {
		return nil, errors.New("panel: height must be between 1 and 256")
	}
	if latch == nil {
		return nil, errors.New("panel: latch pin is required")
	}
	if o.Hz == 0 {
		o.Hz = 10 * physic.MegaHertz
	}
	if o.Brightness == 0 {
		o.Brightness = 0xFF
	}

	c, err := p.Connect(o.Hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}

	d := newDev(c, latch, &o)
	if err := d.init(&o); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, latch gpio.PinOut, o *Opts) *Dev {
	r := image.Rect(0, 0, o.W, o.H)
	d := &Dev{
		c:     c,
		latch: latch,
		rst:   o.RST,
		rect:  r,
		next:  rgb24.NewImage(r),
		last:  make([]byte, o.W*o.H*3),
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}
	return d
}

// init resets the co-processor and sends the start-up sequence.
func (d *Dev) init(o *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("panel: failed to pull RST low: %w", err)
		}
		time.Sleep(resetDelay)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("panel: failed to pull RST high: %w", err)
		}
		time.Sleep(resetDelay)
	}

	cmds := []byte{
		cmdUnlock, 0x12,
		cmdDisplayOff,
		cmdMatrixSize, byte(o.W - 1), byte(o.H - 1),
		cmdBrightness, o.Brightness,
		cmdNormal,
	}
	if err := d.sendCommands(cmds); err != nil {
		return err
	}
	if err := d.writeRect(d.rect, d.last); err != nil {
		return err
	}
	return d.sendCommands([]byte{cmdDisplayOn})
}

func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.latch.Out(gpio.Low); err != nil {
		return fmt.Errorf("panel: latch: %w", err)
	}
	if err := d.c.Tx(cmds, nil); err != nil {
		return fmt.Errorf("panel: command: %w", err)
	}
	return nil
}

func (d *Dev) sendData(data []byte) error {
	if err := d.latch.Out(gpio.High); err != nil {
		return fmt.Errorf("panel: latch: %w", err)
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("panel: data: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// writeRect sets the column/row window to r and streams pixels into it.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	cmds := []byte{
		cmdColumn, byte(r.Min.X), byte(r.Max.X - 1),
		cmdRow, byte(r.Min.Y), byte(r.Max.Y - 1),
		cmdWriteRAM,
	}
	if err := d.sendCommands(cmds); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb24.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes a raw frame of packed RGB bytes, row by row.
// The data must be exactly W * H * 3 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, ErrHalted
	}
	if len(pixels) != len(d.last) {
		return 0, errors.New("panel: invalid buffer size")
	}
	if err := d.writeRect(d.rect, pixels); err != nil {
		return 0, err
	}
	copy(d.next.Pix, pixels)
	copy(d.last, pixels)
	return len(pixels), nil
}

// Draw draws src onto the display. Only the bounding box of the pixels that
// differ from the previous frame is sent.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if img, ok := src.(*rgb24.Image); ok && dst == d.rect && sp == img.Rect.Min && img.Rect.Size() == d.rect.Size() {
		copy(d.next.Pix, img.Pix)
	} else {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}

	r := d.calculateDiff()
	if r.Empty() {
		return nil
	}
	if err := d.writeRect(r, d.extractRegion(r)); err != nil {
		return err
	}
	copy(d.last, d.next.Pix)
	return nil
}

// calculateDiff returns the smallest rectangle holding every pixel that
// differs between the shown and the next frame. It is empty when nothing
// changed.
func (d *Dev) calculateDiff() image.Rectangle {
	stride := d.next.Stride
	var r image.Rectangle
	for y := 0; y < d.rect.Dy(); y++ {
		a := d.last[y*stride : (y+1)*stride]
		b := d.next.Pix[y*stride : (y+1)*stride]
		if bytes.Equal(a, b) {
			continue
		}
		lo := 0
		for a[lo] == b[lo] {
			lo++
		}
		hi := len(a) - 1
		for a[hi] == b[hi] {
			hi--
		}
		row := image.Rect(lo/3, y, hi/3+1, y+1)
		r = r.Union(row)
	}
	return r
}

// extractRegion copies the pixels of r out of the next frame.
func (d *Dev) extractRegion(r image.Rectangle) []byte {
	n := r.Dx() * 3
	out := make([]byte, 0, n*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := d.next.PixOffset(r.Min.X, y)
		out = append(out, d.next.Pix[i:i+n]...)
	}
	return out
}

// SetBrightness sets the global brightness (0-255).
func (d *Dev) SetBrightness(level byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.sendCommands([]byte{cmdBrightness, level})
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	mode := byte(cmdNormal)
	if invert {
		mode = cmdInverse
	}
	return d.sendCommands([]byte{mode})
}

// Halt blanks the matrix. The device must be recreated to be used again.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	return d.sendCommands([]byte{cmdDisplayOff})
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("panel.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

var _ display.Drawer = (*Dev)(nil)
