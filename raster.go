package ledmatrix

// rasterize draws the visible part of the scroller's text into fg and stamps
// id on every row it wrote. localW and localH are the local screen size.
// It reports whether any pixel was drawn.
func (s *Scroller) rasterize(id int, fg *plane, localW, localH int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counter == 0 || s.mode == Off || s.textLen == 0 {
		return false
	}

	f := s.font
	w, h := f.Width(), f.Height()

	x0 := max(s.bounds.Min.X, 0)
	x1 := min(s.bounds.Max.X-1, localW-1)
	y0 := max(s.top, s.bounds.Min.Y, 0)
	y1 := min(s.top+h, s.bounds.Max.Y, localH)
	if x0 > x1 || y0 >= y1 {
		return false
	}

	// Skip glyphs that lie entirely left of the clip edge.
	i, x := 0, s.pos
	if x+w <= x0 {
		i = (x0 - x) / w
		x += i * w
	}

	drawn := false
	for ; i < s.textLen && x <= x1; i, x = i+1, x+w {
		g, ok := f.Glyph(byte(s.text.PeekByte(i)))
		if !ok {
			continue
		}
		for y := y0; y < y1; y++ {
			bits := f.RowBits(g, y-s.top)
			if fg.blit(y, x, bits, x0, x1, true) != 0 {
				fg.colors[y] = uint8(id)
				drawn = true
			}
		}
	}
	return drawn
}
