package ledmatrix

import "fmt"

// Event is a scroller notification delivered through an EventFunc.
type Event int

// Scroller events.
const (
	EventNone Event = iota
	// EventStopped fires when the loop counter reaches zero.
	EventStopped
	// EventFIFOAvailable fires when a streaming record has scrolled off and
	// its bytes were released from the ring buffer.
	EventFIFOAvailable
	// EventFIFOEmpty is EventFIFOAvailable for the last buffered record.
	EventFIFOEmpty
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventStopped:
		return "stopped"
	case EventFIFOAvailable:
		return "fifoAvailable"
	case EventFIFOEmpty:
		return "fifoEmpty"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// EventFunc receives scroller events. It is called from the goroutine driving
// TickFrame, after the scroller has released its lock, so it may call back
// into the scroller.
type EventFunc func(s *Scroller, e Event)
