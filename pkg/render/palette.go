package render

// Number of light levels in a colormap. Level 0 is full bright.
const colormapLevels = 256

// PaletteTables holds the immutable lookups used by palette targets and by
// translated true color draws. Build it once per palette and share it.
type PaletteTables struct {
	Colors [256]uint32

	// rgb666 maps a color quantized to 6 bits per channel to the nearest
	// palette index.
	rgb666 []uint8
	// colormap[level<<8|index] is index darkened to the given level.
	colormap []uint8
}

// NewPaletteTables builds the match and colormap tables for pal.
func NewPaletteTables(pal [256]uint32) *PaletteTables {
	p := &PaletteTables{
		rgb666:   make([]uint8, 64*64*64),
		colormap: make([]uint8, colormapLevels*256),
	}
	for i, c := range pal {
		p.Colors[i] = c | 0xff000000
	}
	for r := range uint32(64) {
		for g := range uint32(64) {
			for b := range uint32(64) {
				p.rgb666[r<<12|g<<6|b] = p.nearest(r<<2|r>>4, g<<2|g>>4, b<<2|b>>4)
			}
		}
	}
	for level := range colormapLevels {
		scale := uint32(256 - level)
		row := p.colormap[level<<8 : level<<8+256]
		for i, c := range p.Colors {
			row[i] = p.Match(packBGRA(0xff, redOf(c)*scale>>8, greenOf(c)*scale>>8, blueOf(c)*scale>>8))
		}
	}
	return p
}

func (p *PaletteTables) nearest(r, g, b uint32) uint8 {
	best, bestDist := 0, int32(1<<30)
	for i, c := range p.Colors {
		dr := int32(redOf(c)) - int32(r)
		dg := int32(greenOf(c)) - int32(g)
		db := int32(blueOf(c)) - int32(b)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return uint8(best)
}

// Match returns the palette index closest to a BGRA color.
func (p *PaletteTables) Match(c uint32) uint8 {
	return p.rgb666[(redOf(c)>>2)<<12|(greenOf(c)>>2)<<6|blueOf(c)>>2]
}

// Shade returns index darkened to level, where level 0 is full bright and
// 255 is nearly black.
func (p *PaletteTables) Shade(level uint32, index uint8) uint8 {
	return p.colormap[level<<8|uint32(index)]
}

// DefaultPalette returns a 6x6x6 color cube followed by a 40 step gray ramp.
func DefaultPalette() [256]uint32 {
	var pal [256]uint32
	i := 0
	for r := range uint32(6) {
		for g := range uint32(6) {
			for b := range uint32(6) {
				pal[i] = packBGRA(0xff, r*51, g*51, b*51)
				i++
			}
		}
	}
	for ; i < 256; i++ {
		v := uint32(i-216) * 255 / 39
		pal[i] = packBGRA(0xff, v, v, v)
	}
	return pal
}
