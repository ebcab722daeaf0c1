package ledmatrix

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/flavioheleno/ledmatrix/bitfont"
	"github.com/flavioheleno/ledmatrix/rgb24"
	"github.com/flavioheleno/ledmatrix/ringbuf"
)

// Forever is the loop count of a scroller that never stops on its own.
const Forever = -1

// Scroller defaults.
const (
	DefaultDivider    = 4
	DefaultTopOffset  = 1
	DefaultLeftOffset = 1
	DefaultDelimiter  = '\n'
)

// Scroller animates one line of text across a rectangle of the foreground.
//
// The text is either a fixed string installed by StartText or a stream fed
// through AppendStreaming into a caller supplied ring buffer. Scrollers are
// owned by a Compositor and are safe for concurrent use.
type Scroller struct {
	mu sync.Mutex

	index       int
	refreshRate int

	mode     ScrollMode
	pos      int
	min, max int
	frame    int
	divider  int
	top      int
	left     int
	counter  int // 0 stopped, >0 loops left, Forever
	bounds   image.Rectangle
	color    rgb24.RGB24
	font     bitfont.Font
	callback EventFunc
	dirty    bool

	text      *ringbuf.Buffer
	textLen   int // bytes of text covered by the current bounds
	streaming bool
	delim     byte
}

func newScroller(index, refreshRate int, local image.Rectangle) *Scroller {
	return &Scroller{
		index:       index,
		refreshRate: refreshRate,
		mode:        BounceForward,
		divider:     DefaultDivider,
		top:         DefaultTopOffset,
		left:        DefaultLeftOffset,
		bounds:      local,
		color:       rgb24.White,
		font:        bitfont.Font5x7,
		text:        ringbuf.New(0),
		delim:       DefaultDelimiter,
	}
}

// Index returns the scroller's slot in its compositor.
func (s *Scroller) Index() int {
	return s.index
}

func (s *Scroller) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("ledmatrix.Scroller{%d %s}", s.index, s.mode)
}

// StartText stops the current animation and starts scrolling text for loops
// passes. Use Forever to scroll until Stop is called. In streaming mode the
// text is appended to the feed instead.
func (s *Scroller) StartText(text string, loops int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming {
		s.appendLocked(text)
		return
	}

	s.stopLocked()
	if s.text.Cap() < len(text) {
		s.text = ringbuf.New(len(text))
	}
	s.text.Reset()
	s.text.WriteString(text)
	s.textLen = len(text)
	s.setup(true)
	s.counter = loops
	s.dirty = true
}

// AppendStreaming adds text to the feed of a streaming scroller and returns
// the room left in its ring buffer. It returns 0 when the scroller is not in
// streaming mode.
func (s *Scroller) AppendStreaming(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(text)
}

func (s *Scroller) appendLocked(text string) int {
	if !s.streaming {
		return 0
	}
	start := s.textLen == 0
	s.text.WriteString(text)
	s.setup(start)
	s.dirty = true
	return s.text.Remaining()
}

// Stop ends the animation. The text is removed on the next frame and a
// streaming feed is emptied.
func (s *Scroller) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scroller) stopLocked() {
	s.counter = 0
	s.pos = s.min
	s.dirty = true
	if s.streaming {
		s.text.Reset()
		s.textLen = 0
	}
}

// SetRingBuffer switches the scroller into streaming mode backed by buf.
// A nil or empty buf switches back to fixed text. The animation is stopped
// either way. The scroller uses buf until the next SetRingBuffer call.
func (s *Scroller) SetRingBuffer(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if len(buf) == 0 {
		s.text = ringbuf.New(0)
		s.streaming = false
		return
	}
	s.text = ringbuf.NewWithStorage(buf)
	s.textLen = 0
	s.streaming = true
}

// RingStatus reports the ring buffer occupancy. ok is false when the scroller
// is not in streaming mode.
func (s *Scroller) RingStatus() (used, room int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.Len(), s.text.Remaining(), s.streaming
}

// Overflow returns the number of streamed bytes lost to ring buffer eviction.
func (s *Scroller) Overflow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.streaming {
		return 0
	}
	return s.text.Overflow()
}

// SetMode changes the scroll mode. Bounds are recomputed for running text.
func (s *Scroller) SetMode(m ScrollMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.recompute()
}

// SetSpeed sets the scroll speed in pixels per second. Speeds above the
// refresh rate move one pixel per frame.
func (s *Scroller) SetSpeed(pixelsPerSecond int) error {
	if pixelsPerSecond <= 0 {
		return fmt.Errorf("ledmatrix: scroll speed must be positive, got %d", pixelsPerSecond)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.divider = max(s.refreshRate/pixelsPerSecond, 1)
	return nil
}

// SetFont selects the font used to draw the text.
func (s *Scroller) SetFont(f bitfont.Font) error {
	if f == nil {
		return errors.New("ledmatrix: nil font")
	}
	if f.Width() <= 0 || f.Width() > bitfont.MaxWidth {
		return fmt.Errorf("ledmatrix: font %s width %d out of range", f.Name(), f.Width())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.font = f
	s.recompute()
	return nil
}

// SetColor sets the text color.
func (s *Scroller) SetColor(c rgb24.RGB24) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = c
	s.dirty = true
}

// SetTopOffset sets the row of the top of the text.
func (s *Scroller) SetTopOffset(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top = offset
	s.dirty = true
}

// SetLeftOffset sets the column used by WrapForwardFromLeft and the pinned
// modes.
func (s *Scroller) SetLeftOffset(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left = offset
}

// SetClipBounds limits drawing to the inclusive rectangle (x0,y0)-(x1,y1).
func (s *Scroller) SetClipBounds(x0, y0, x1, y1 int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = image.Rect(x0, y0, x1+1, y1+1)
	s.recompute()
}

// ClipBounds returns the inclusive clip rectangle.
func (s *Scroller) ClipBounds() (x0, y0, x1, y1 int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds.Min.X, s.bounds.Min.Y, s.bounds.Max.X - 1, s.bounds.Max.Y - 1
}

// SetDelimiter sets the byte separating records of a streaming feed.
func (s *Scroller) SetDelimiter(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delim = b
}

// SetEventCallback registers fn to receive events. A nil fn removes it.
func (s *Scroller) SetEventCallback(fn EventFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callback = fn
}

// Status returns the loop counter: 0 when stopped, the number of passes left,
// or Forever.
func (s *Scroller) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// Mode returns the current scroll mode. Bounce modes flip on their own.
func (s *Scroller) Mode() ScrollMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Position returns the column of the left edge of the first glyph.
func (s *Scroller) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Limits returns the scroll bounds.
func (s *Scroller) Limits() (min, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min, s.max
}

// Color returns the text color.
func (s *Scroller) Color() rgb24.RGB24 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

func (s *Scroller) recompute() {
	s.dirty = true
	if s.counter != 0 {
		s.setup(false)
	}
}

// setup computes the scroll bounds for the current text. With start set the
// position is moved to where the text enters the screen.
func (s *Scroller) setup(start bool) {
	if s.streaming && start {
		s.textLen = s.text.Len()
	}
	w := s.font.Width()

	if !s.mode.animated() {
		s.min, s.max, s.pos = 0, 0, 0
		return
	}

	// Appended text waits while the tail of the current text is on screen.
	if s.streaming && !start && s.max-s.pos >= s.textLen*w {
		return
	}
	if s.streaming {
		s.textLen = s.text.Len()
	}

	s.min = s.bounds.Min.X - s.textLen*w
	s.max = s.bounds.Max.X
	if !start {
		return
	}

	s.pos = s.mode.startPosition(s.min, s.max, s.left)
	if s.streaming {
		s.counter = 1
	}
}

// consumeRecord releases the leading record of a streaming feed once it has
// scrolled past the left clip edge.
func (s *Scroller) consumeRecord(events []Event) []Event {
	x0 := s.bounds.Min.X
	if s.pos-x0 > -1 {
		return events
	}
	w := s.font.Width()
	lead := (x0 - s.pos) / w
	if s.text.PeekByte(lead) != int(s.delim) {
		return events
	}

	n := s.text.Discard(lead + 1)
	s.textLen = max(s.textLen-n, 0)
	s.pos += n * w
	s.min += n * w

	// A lone leading delimiter releases no text.
	if lead == 0 {
		return events
	}
	if s.text.Empty() {
		return append(events, EventFIFOEmpty)
	}
	return append(events, EventFIFOAvailable)
}

// advance runs one frame of animation and reports whether the foreground
// must be redrawn.
func (s *Scroller) advance() bool {
	s.mu.Lock()
	redraw, events := s.advanceLocked()
	cb := s.callback
	s.mu.Unlock()

	if cb != nil {
		for _, e := range events {
			cb(s, e)
		}
	}
	return redraw
}

func (s *Scroller) advanceLocked() (bool, []Event) {
	dirty := s.dirty
	s.dirty = false
	if s.counter == 0 {
		return dirty, nil
	}

	s.frame++
	if s.frame < s.divider {
		return dirty, nil
	}
	s.frame = 0

	events := s.mode.step()(s, nil)
	if s.counter == 0 {
		events = append(events, EventStopped)
	}
	return true, events
}
