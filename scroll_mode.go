package ledmatrix

import (
	"fmt"
	"strings"
)

// ScrollMode selects how a Scroller moves its text.
type ScrollMode int

// Scroll modes.
const (
	// WrapForward moves text right to left, entering from the right edge and
	// restarting there once it has left the screen.
	WrapForward ScrollMode = iota
	// WrapForwardFromLeft is WrapForward with the first pass starting at the
	// left offset instead of the right edge.
	WrapForwardFromLeft
	// BounceForward moves text to the left until it reaches the minimum
	// bound, then switches to BounceReverse.
	BounceForward
	// BounceReverse moves text to the right until it reaches the maximum
	// bound, then switches to BounceForward.
	BounceReverse
	// Stopped pins the text at the left offset.
	Stopped
	// Off pins the position like Stopped and draws nothing.
	Off
)

var modeNames = [...]string{
	WrapForward:         "wrapForward",
	WrapForwardFromLeft: "wrapForwardFromLeft",
	BounceForward:       "bounceForward",
	BounceReverse:       "bounceReverse",
	Stopped:             "stopped",
	Off:                 "off",
}

func (m ScrollMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("ScrollMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseScrollMode returns the mode with the given name. Matching ignores
// case, dashes and underscores, so "wrap-forward" selects WrapForward.
func ParseScrollMode(s string) (ScrollMode, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for m, name := range modeNames {
		if strings.ToLower(name) == norm {
			return ScrollMode(m), nil
		}
	}
	return 0, fmt.Errorf("ledmatrix: unknown scroll mode %q", s)
}

// animated reports whether the mode moves text between scroll bounds.
func (m ScrollMode) animated() bool {
	return m >= WrapForward && m <= BounceReverse
}

// startPosition returns where text enters the screen in this mode.
func (m ScrollMode) startPosition(min, max, left int) int {
	switch m {
	case BounceReverse:
		return min
	case WrapForwardFromLeft:
		return left
	}
	return max
}

// stepFunc moves a scroller by one pixel. It runs with the scroller lock held
// and appends any events to fire once the lock is released.
type stepFunc func(s *Scroller, events []Event) []Event

// transitions holds the per-frame step of every mode.
var transitions = [...]stepFunc{
	WrapForward:         stepWrap,
	WrapForwardFromLeft: stepWrap,
	BounceForward:       stepBounceForward,
	BounceReverse:       stepBounceReverse,
	Stopped:             stepPinned,
	Off:                 stepPinned,
}

func (m ScrollMode) step() stepFunc {
	if m < 0 || int(m) >= len(transitions) {
		return stepPinned
	}
	return transitions[m]
}

func stepWrap(s *Scroller, events []Event) []Event {
	s.pos--
	if s.pos <= s.min {
		s.pos = s.max
		if s.counter > 0 {
			s.counter--
		}
	}
	if !s.streaming {
		return events
	}

	// A streaming feed keeps running while it holds content.
	if s.counter == 0 && !s.text.Empty() {
		s.setup(true)
		return events
	}
	return s.consumeRecord(events)
}

func stepBounceForward(s *Scroller, events []Event) []Event {
	s.pos--
	if s.pos <= s.min {
		s.pos = s.min
		s.mode = BounceReverse
		if s.counter > 0 {
			s.counter--
		}
	}
	return events
}

func stepBounceReverse(s *Scroller, events []Event) []Event {
	s.pos++
	if s.pos >= s.max {
		s.pos = s.max
		s.mode = BounceForward
		if s.counter > 0 {
			s.counter--
		}
	}
	return events
}

func stepPinned(s *Scroller, events []Event) []Event {
	s.pos = s.left
	return events
}
