package ledmatrix

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/flavioheleno/ledmatrix/bitfont"
	"github.com/flavioheleno/ledmatrix/rgb24"
)

// MaxScrollers is the largest scroller pool a Compositor supports.
const MaxScrollers = 255

// Opts is the configuration for a Compositor.
type Opts struct {
	// Hardware panel dimensions in pixels (default: 32x16)
	W int
	H int

	Rotation    Rotation // Local screen orientation (default: Rotation0)
	RefreshRate int      // Frames per second driving TickFrame (default: 120)
	Scrollers   int      // Number of scroller slots (default: 2)
}

// DefaultOpts returns the options used when New is given nil.
func DefaultOpts() Opts {
	return Opts{W: 32, H: 16, RefreshRate: 120, Scrollers: 2}
}

// Compositor owns the double-buffered foreground layer of one display and
// the scrollers drawing into it.
//
// Drawing calls and scroller configuration may come from any goroutine.
// ServiceCommit, TickFrame, RedrawAll and QueryPixel belong to the single
// goroutine scanning the display out.
type Compositor struct {
	w, h        int
	rotation    atomic.Int32
	refreshRate int
	scrollers   []*Scroller

	// Scan-out side.
	refresh   *plane
	committed *plane
	hasFG     atomic.Bool

	// Application side.
	drawMu   sync.Mutex
	draw     *plane
	drawFont bitfont.Font
	commitMu sync.Mutex
	pending  atomic.Pointer[commit]
}

// New creates a Compositor.
//
// opts can be nil to use DefaultOpts.
func New(opts *Opts) (*Compositor, error) {
	o := DefaultOpts()
	if opts != nil {
		o = *opts
	}
	if o.RefreshRate == 0 {
		o.RefreshRate = 120
	}
	if o.Scrollers == 0 {
		o.Scrollers = 2
	}

	if o.W <= 0 || o.H <= 0 {
		return nil, fmt.Errorf("ledmatrix: invalid size %dx%d", o.W, o.H)
	}
	if !o.Rotation.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrRotation, int(o.Rotation))
	}
	if o.RefreshRate < 0 {
		return nil, errors.New("ledmatrix: refresh rate must be positive")
	}
	if o.Scrollers < 0 || o.Scrollers > MaxScrollers {
		return nil, fmt.Errorf("ledmatrix: scroller count must be between 1 and %d", MaxScrollers)
	}

	// Planes fit the panel in every rotation.
	side := max(o.W, o.H)
	c := &Compositor{
		w:           o.W,
		h:           o.H,
		refreshRate: o.RefreshRate,
		refresh:     newPlane(side, side),
		committed:   newPlane(side, side),
		draw:        newPlane(side, side),
		drawFont:    bitfont.Font5x7,
	}
	c.rotation.Store(int32(o.Rotation))

	g := c.Geometry()
	local := image.Rect(0, 0, g.LocalWidth(), g.LocalHeight())
	c.scrollers = make([]*Scroller, o.Scrollers)
	for i := range c.scrollers {
		c.scrollers[i] = newScroller(i, o.RefreshRate, local)
	}
	return c, nil
}

func (c *Compositor) String() string {
	return fmt.Sprintf("ledmatrix.Compositor{%dx%d}", c.w, c.h)
}

// Geometry returns the panel size and current rotation.
func (c *Compositor) Geometry() Geometry {
	return Geometry{Width: c.w, Height: c.h, Rotation: Rotation(c.rotation.Load())}
}

// Bounds returns the hardware pixel rectangle.
func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.w, c.h)
}

// RefreshRate returns the frame rate scroller speeds are derived from.
func (c *Compositor) RefreshRate() int {
	return c.refreshRate
}

// SetRotation changes the mapping used by QueryPixel.
func (c *Compositor) SetRotation(r Rotation) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", ErrRotation, int(r))
	}
	c.rotation.Store(int32(r))
	return nil
}

// Len returns the number of scroller slots.
func (c *Compositor) Len() int {
	return len(c.scrollers)
}

// Scroller returns scroller i, or nil when i is out of range.
func (c *Compositor) Scroller(i int) *Scroller {
	if i < 0 || i >= len(c.scrollers) {
		return nil
	}
	return c.scrollers[i]
}

// HasForeground reports whether the last redraw left any opaque pixel.
func (c *Compositor) HasForeground() bool {
	return c.hasFG.Load()
}

// RedrawAll rebuilds the refresh plane from the committed drawing and every
// running scroller. Scrollers are drawn from the highest index down so lower
// indices own the color of shared rows. It reports whether any pixel is
// opaque.
func (c *Compositor) RedrawAll() bool {
	c.refresh.clear()
	c.refresh.copyFrom(c.committed)
	drawn := !c.committed.empty()

	g := c.Geometry()
	lw, lh := g.LocalWidth(), g.LocalHeight()
	for i := len(c.scrollers) - 1; i >= 0; i-- {
		if c.scrollers[i].rasterize(i, c.refresh, lw, lh) {
			drawn = true
		}
	}
	c.hasFG.Store(drawn)
	return drawn
}

// TickFrame advances every scroller by one frame and redraws the refresh
// plane when any of them moved. It reports whether a redraw happened.
func (c *Compositor) TickFrame() bool {
	redraw := false
	for i := len(c.scrollers) - 1; i >= 0; i-- {
		if c.scrollers[i].advance() {
			redraw = true
		}
	}
	if redraw {
		c.RedrawAll()
	}
	return redraw
}

// QueryPixel returns the foreground color at hardware coordinates (hwX, hwY)
// and whether the pixel is opaque.
func (c *Compositor) QueryPixel(hwX, hwY int) (rgb24.RGB24, bool) {
	x, y, ok := c.Geometry().toLocal(hwX, hwY)
	if !ok || !c.refresh.bit(x, y) {
		return rgb24.RGB24{}, false
	}
	i := int(c.refresh.colors[y])
	if i >= len(c.scrollers) {
		i = 0
	}
	return c.scrollers[i].Color(), true
}
