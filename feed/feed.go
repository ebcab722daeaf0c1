// Package feed delivers lines of text from readers and websocket clients to
// a scroller.
//
// A scroller in streaming mode receives each line followed by its record
// delimiter. A scroller showing fixed text restarts with the latest line.
package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-runewidth"
	"pkt.systems/pslog"
)

// Target is the scroller side of a feed.
type Target interface {
	StartText(text string, loops int)
	AppendStreaming(text string) int
	RingStatus() (used, room int, ok bool)
	Overflow() int
}

// Opts is the configuration for a Feeder.
type Opts struct {
	Delimiter byte         // Record delimiter (default: '\n')
	Loops     int          // Passes for fixed text (default: 1)
	MaxLine   int          // Longest accepted line in bytes (default: 4096)
	Logger    pslog.Logger // Logger (default: from environment)

	// OriginPatterns lists the hosts allowed to open a websocket from a
	// browser. Same-origin requests are always accepted.
	OriginPatterns []string
}

// Feeder pushes lines to a Target.
type Feeder struct {
	t       Target
	delim   byte
	loops   int
	maxLine int
	origins []string
	log     pslog.Logger

	mu       sync.Mutex
	overflow int

	lines atomic.Uint64
}

// New creates a Feeder for t.
//
// opts can be nil to use defaults.
func New(t Target, opts *Opts) *Feeder {
	if opts == nil {
		opts = &Opts{}
	}
	f := &Feeder{
		t:       t,
		delim:   opts.Delimiter,
		loops:   opts.Loops,
		maxLine: opts.MaxLine,
		origins: opts.OriginPatterns,
		log:     opts.Logger,
	}
	if f.delim == 0 {
		f.delim = '\n'
	}
	if f.loops == 0 {
		f.loops = 1
	}
	if f.maxLine <= 0 {
		f.maxLine = 4096
	}
	if f.log == nil {
		f.log = pslog.LoggerFromEnv()
	}
	return f
}

// Push sends one line to the target and returns the room left in its ring
// buffer, or -1 when the target shows fixed text. The line is sanitized
// first.
func (f *Feeder) Push(line string) int {
	line = Sanitize(line)
	if line == "" {
		return f.room()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines.Add(1)

	if _, _, ok := f.t.RingStatus(); !ok {
		f.t.StartText(line, f.loops)
		return -1
	}
	room := f.t.AppendStreaming(line + string(f.delim))
	if n := f.t.Overflow(); n > f.overflow {
		f.log.Warn("feed overflow", "lost", n-f.overflow, "total", n)
		f.overflow = n
	}
	return room
}

func (f *Feeder) room() int {
	_, room, ok := f.t.RingStatus()
	if !ok {
		return -1
	}
	return room
}

// Lines returns the number of lines pushed.
func (f *Feeder) Lines() uint64 {
	return f.lines.Load()
}

// ReadFrom pushes every line of r until EOF or until ctx is done. Lines
// longer than MaxLine are an error. ReadFrom returns as soon as ctx is done
// even while a read is blocked; the pending read is abandoned.
func (f *Feeder) ReadFrom(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, min(256, f.maxLine)), f.maxLine)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- sc.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			f.Push(line)
		case err := <-done:
			if err != nil {
				return fmt.Errorf("feed: read: %w", err)
			}
			return nil
		}
	}
}

// Sanitize folds s onto the single-byte glyph range of the bitmap fonts.
// Tabs become spaces, other control characters are dropped and every
// non-ASCII rune becomes one '?' per terminal cell it would occupy.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteByte(' ')
		case r >= 0x20 && r < 0x7F:
			b.WriteByte(byte(r))
		case r < 0x80 || r == 0x7F:
			// control
		default:
			for w := runewidth.RuneWidth(r); w > 0; w-- {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}
