package terminal

// DefaultPaletteSize matches the smallest COLOR_PAIRS curses guarantees on 8-color terminals
const DefaultPaletteSize = 64

// palette assigns bounded slots to colors on first use and reuses them after
type palette struct {
	limit int
	slots map[Color]int
	order []Color // slot index -> color
}

func newPalette(limit int) *palette {
	if limit <= 0 {
		limit = DefaultPaletteSize
	}
	return &palette{
		limit: limit,
		slots: make(map[Color]int, min(limit, int(colorCount))),
	}
}

// acquire returns the slot for c, allocating one if c is new
// Returns ErrPaletteExhausted when every slot is taken by another color
func (p *palette) acquire(c Color) (slot int, fresh bool, err error) {
	if s, ok := p.slots[c]; ok {
		return s, false, nil
	}
	if len(p.order) >= p.limit {
		return -1, false, ErrPaletteExhausted
	}
	s := len(p.order)
	p.slots[c] = s
	p.order = append(p.order, c)
	return s, true, nil
}

// used returns the number of allocated slots
func (p *palette) used() int {
	return len(p.order)
}
