package scanout

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/flavioheleno/ledmatrix/rgb24"
)

// Terminal is a display.Drawer that previews the panel in a terminal with
// 24-bit ANSI colors. Each character cell shows two pixels stacked with the
// upper half block glyph.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	rect   image.Rectangle
	next   *rgb24.Image
	last   []byte
	out    bytes.Buffer
	halted bool
}

// NewTerminal creates a Terminal of the given size writing to w.
func NewTerminal(w io.Writer, width, height int) (*Terminal, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scanout: invalid terminal size %dx%d", width, height)
	}
	r := image.Rect(0, 0, width, height)
	return &Terminal{w: w, rect: r, next: rgb24.NewImage(r)}, nil
}

// CheckTerminal returns an error when f is not a terminal large enough to
// show a width x height panel.
func CheckTerminal(f *os.File, width, height int) error {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("scanout: %s is not a terminal", f.Name())
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("scanout: terminal size: %w", err)
	}
	if cols < width || rows < (height+1)/2 {
		return fmt.Errorf("scanout: terminal %dx%d too small for %dx%d panel", cols, rows, width, height)
	}
	return nil
}

// String returns a string representation of the device.
func (t *Terminal) String() string {
	return fmt.Sprintf("scanout.Terminal{%dx%d}", t.rect.Dx(), t.rect.Dy())
}

// ColorModel returns the color model of the display.
func (t *Terminal) ColorModel() color.Model {
	return rgb24.Model
}

// Bounds returns the image bounds of the display.
func (t *Terminal) Bounds() image.Rectangle {
	return t.rect
}

// Draw renders src into the preview. Nothing is written when the frame is
// unchanged.
func (t *Terminal) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halted {
		return errors.New("scanout: terminal halted")
	}

	dst = dst.Intersect(t.rect)
	if dst.Empty() {
		return nil
	}
	draw.Draw(t.next, dst, src, sp, draw.Src)
	if bytes.Equal(t.last, t.next.Pix) {
		return nil
	}

	t.out.Reset()
	t.out.WriteString("\x1b[H")
	for y := 0; y < t.rect.Dy(); y += 2 {
		for x := 0; x < t.rect.Dx(); x++ {
			up := t.next.RGB24At(x, y)
			lo := t.next.RGB24At(x, y+1)
			fmt.Fprintf(&t.out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", up.R, up.G, up.B, lo.R, lo.G, lo.B)
		}
		t.out.WriteString("\x1b[0m\r\n")
	}
	if _, err := t.w.Write(t.out.Bytes()); err != nil {
		return fmt.Errorf("scanout: terminal write: %w", err)
	}
	t.last = append(t.last[:0], t.next.Pix...)
	return nil
}

// Halt resets the terminal colors and stops further drawing.
func (t *Terminal) Halt() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halted {
		return nil
	}
	t.halted = true
	_, err := io.WriteString(t.w, "\x1b[0m\r\n")
	return err
}
