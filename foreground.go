package ledmatrix

// plane is one side of the foreground bitmap. Each row holds words 32-bit
// words; bit 31 of word l is column 32*l. colors records, per row, the index
// of the scroller that last drew on it.
type plane struct {
	rows   int
	words  int
	bits   []uint32
	colors []uint8
}

func newPlane(rows, cols int) *plane {
	words := (cols + 31) / 32
	return &plane{
		rows:   rows,
		words:  words,
		bits:   make([]uint32, rows*words),
		colors: make([]uint8, rows),
	}
}

func (p *plane) clear() {
	clear(p.bits)
	clear(p.colors)
}

func (p *plane) copyFrom(src *plane) {
	copy(p.bits, src.bits)
	copy(p.colors, src.colors)
}

func (p *plane) empty() bool {
	for _, w := range p.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

func (p *plane) row(y int) []uint32 {
	return p.bits[y*p.words : (y+1)*p.words]
}

func (p *plane) inside(x, y int) bool {
	return x >= 0 && y >= 0 && y < p.rows && x < p.words*32
}

func (p *plane) bit(x, y int) bool {
	if !p.inside(x, y) {
		return false
	}
	return p.bits[y*p.words+(x>>5)]&(uint32(0x80000000)>>uint(x&31)) != 0
}

func (p *plane) set(x, y int, opaque bool) {
	if !p.inside(x, y) {
		return
	}
	m := uint32(0x80000000) >> uint(x&31)
	if opaque {
		p.bits[y*p.words+(x>>5)] |= m
	} else {
		p.bits[y*p.words+(x>>5)] &^= m
	}
}

// spanMask returns the bits of word l that fall inside columns [lo, hi].
func spanMask(l, lo, hi int) uint32 {
	a := max(lo-32*l, 0)
	b := min(hi-32*l, 31)
	if a > b {
		return 0
	}
	return (^uint32(0) >> uint(a)) & (^uint32(0) << uint(31-b))
}

// blit places the left-aligned pattern bits with its first column at x on
// row y, touching only columns [lo, hi]. Opaque bits are set, otherwise they
// are cleared. It returns the bits that landed on the row.
func (p *plane) blit(y, x int, bits uint32, lo, hi int, opaque bool) uint32 {
	if y < 0 || y >= p.rows || bits == 0 {
		return 0
	}
	lo = max(lo, x, 0)
	hi = min(hi, x+31, p.words*32-1)
	if lo > hi {
		return 0
	}

	row := p.row(y)
	var landed uint32
	for l := lo >> 5; l <= hi>>5; l++ {
		var m uint32
		switch off := x - 32*l; {
		case off >= 32 || off <= -32:
			continue
		case off >= 0:
			m = bits >> uint(off)
		default:
			m = bits << uint(-off)
		}
		m &= spanMask(l, lo, hi)
		if m == 0 {
			continue
		}
		if opaque {
			row[l] |= m
		} else {
			row[l] &^= m
		}
		landed |= m
	}
	return landed
}
