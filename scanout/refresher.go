// Package scanout drives a foreground Compositor once per display frame and
// pushes the composed image to a periph.io display.Drawer.
package scanout

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/display"
	"pkt.systems/pslog"

	"github.com/flavioheleno/ledmatrix/rgb24"
)

// Foreground is the scan-out side of a foreground layer.
type Foreground interface {
	Bounds() image.Rectangle
	ServiceCommit() bool
	TickFrame() bool
	QueryPixel(x, y int) (rgb24.RGB24, bool)
}

// Opts is the configuration for a Refresher.
type Opts struct {
	RefreshRate int          // Frames per second (default: 120)
	Background  image.Image  // Initial background (default: black)
	Logger      pslog.Logger // Logger (default: from environment)
}

// Refresher composes the foreground over a background image every frame.
type Refresher struct {
	fg   Foreground
	dst  display.Drawer
	rate int
	log  pslog.Logger

	mu    sync.Mutex
	bg    *rgb24.Image
	dirty bool // background changed or last draw failed

	frame  *rgb24.Image
	frames atomic.Uint64
	pushed atomic.Uint64
}

// New creates a Refresher drawing fg onto dst. dst must be at least as large
// as the foreground.
//
// opts can be nil to use defaults.
func New(fg Foreground, dst display.Drawer, opts *Opts) (*Refresher, error) {
	if fg == nil || dst == nil {
		return nil, errors.New("scanout: foreground and drawer are required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	rect := fg.Bounds()
	if !rect.In(dst.Bounds()) {
		return nil, fmt.Errorf("scanout: foreground %v does not fit drawer %v", rect, dst.Bounds())
	}

	r := &Refresher{
		fg:    fg,
		dst:   dst,
		rate:  opts.RefreshRate,
		log:   opts.Logger,
		bg:    rgb24.NewImage(rect),
		frame: rgb24.NewImage(rect),
		dirty: true,
	}
	if r.rate <= 0 {
		r.rate = 120
	}
	if r.log == nil {
		r.log = pslog.LoggerFromEnv()
	}
	if opts.Background != nil {
		r.SetBackground(opts.Background)
	}
	return r, nil
}

func (r *Refresher) String() string {
	return fmt.Sprintf("scanout.Refresher{%s@%dHz}", r.dst, r.rate)
}

// SetBackground replaces the background with img, aligned to the top left of
// the panel. It may be called from any goroutine.
func (r *Refresher) SetBackground(img image.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg.Fill(rgb24.Black)
	draw.Draw(r.bg, r.bg.Rect, img, img.Bounds().Min, draw.Src)
	r.dirty = true
}

// Frame runs one refresh cycle. The composed frame is drawn only when the
// foreground or background changed, or the previous draw failed.
func (r *Refresher) Frame() error {
	changed := r.fg.ServiceCommit()
	if r.fg.TickFrame() {
		changed = true
	}
	r.frames.Add(1)

	r.mu.Lock()
	if r.dirty {
		changed = true
		r.dirty = false
	}
	if !changed {
		r.mu.Unlock()
		return nil
	}
	r.compose()
	r.mu.Unlock()

	if err := r.dst.Draw(r.frame.Rect, r.frame, r.frame.Rect.Min); err != nil {
		r.mu.Lock()
		r.dirty = true
		r.mu.Unlock()
		return fmt.Errorf("scanout: draw: %w", err)
	}
	r.pushed.Add(1)
	return nil
}

func (r *Refresher) compose() {
	b := r.frame.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := r.fg.QueryPixel(x, y)
			if !ok {
				c = r.bg.RGB24At(x, y)
			}
			r.frame.SetRGB24(x, y, c)
		}
	}
}

// Run calls Frame at the refresh rate until ctx is done. Draw errors are
// logged and do not stop the loop.
func (r *Refresher) Run(ctx context.Context) error {
	r.log.Info("scan-out started", "drawer", r.dst.String(), "hz", r.rate)
	t := time.NewTicker(time.Second / time.Duration(r.rate))
	defer t.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			r.log.Info("scan-out stopped", "frames", r.frames.Load(), "pushed", r.pushed.Load())
			return ctx.Err()
		case <-t.C:
			if err := r.Frame(); err != nil {
				failures++
				// Log the first failure and then one per second.
				if failures == 1 || failures%r.rate == 0 {
					r.log.Warn("frame failed", "err", err, "failures", failures)
				}
				continue
			}
			if failures > 0 {
				r.log.Info("frame recovered", "failures", failures)
				failures = 0
			}
		}
	}
}

// Stats returns the number of frames run and frames pushed to the drawer.
func (r *Refresher) Stats() (frames, pushed uint64) {
	return r.frames.Load(), r.pushed.Load()
}

// Snapshot returns a copy of the last composed frame.
func (r *Refresher) Snapshot() *rgb24.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	img := rgb24.NewImage(r.frame.Rect)
	copy(img.Pix, r.frame.Pix)
	return img
}
