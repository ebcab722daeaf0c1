// Package ledmatrix renders scrolling text and static graphics as a foreground
// layer over an RGB LED matrix.
//
// A Compositor owns a double-buffered 1-bit foreground bitmap plus a per-row
// color index, and a fixed pool of Scrollers that animate text into it. The
// goroutine refreshing the display asks the compositor, pixel by pixel,
// whether the foreground is opaque and in which color, and composes the
// answer over its own background image.
//
// # Frame Loop
//
// Once per display refresh the scan-out side calls:
//
//	c.ServiceCommit()          // apply a pending CommitDrawing
//	c.TickFrame()              // advance scrollers, redraw if anything moved
//	col, ok := c.QueryPixel(x, y)
//
// The scanout package implements this loop on top of any periph.io
// display.Drawer: the panel package drives an SPI-attached matrix, and
// scanout.Terminal previews frames in a terminal.
//
// # Scrolling Text
//
// Each scroller draws one line of text with its own font, color, speed and
// clip rectangle:
//
//	c, _ := ledmatrix.New(&ledmatrix.Opts{W: 64, H: 32})
//	s := c.Scroller(0)
//	s.SetMode(ledmatrix.WrapForward)
//	s.SetColor(rgb24.RGB24{R: 0xFF, G: 0x80})
//	_ = s.SetSpeed(30) // pixels per second
//	s.StartText("hello world", ledmatrix.Forever)
//
// When two scrollers share a row, the lower index decides the color of every
// opaque pixel on it. Colors are resolved per row, not per pixel.
//
// # Streaming Feeds
//
// A scroller given a ring buffer becomes a streaming feed. Text appended
// while it runs joins the tail of the line; records separated by the
// delimiter byte ('\n' by default) are released from the buffer as they
// scroll off, and the event callback is told when room becomes available:
//
//	buf := make([]byte, 256)
//	s.SetRingBuffer(buf)
//	s.SetEventCallback(func(s *ledmatrix.Scroller, e ledmatrix.Event) {
//		if e == ledmatrix.EventFIFOEmpty {
//			log.Println("feed drained")
//		}
//	})
//	s.AppendStreaming("first\n")
//	s.AppendStreaming("second\n")
//
// The feed package pushes lines from a reader or websocket clients into such
// a scroller.
//
// # Static Drawing
//
// DrawPixel, DrawChar, DrawString and DrawMonoBitmap write to the draw plane.
// CommitDrawing hands a snapshot to the scan-out goroutine, which keeps it
// under the scrolling text until the next commit.
//
// # Rotation
//
// Drawing and scrolling use local coordinates. QueryPixel takes hardware
// coordinates and maps them through the rotation:
//
//	Rotation0:   (x, y)
//	Rotation90:  (y, W-1-x)
//	Rotation180: (W-1-x, H-1-y)
//	Rotation270: (H-1-y, x)
package ledmatrix
