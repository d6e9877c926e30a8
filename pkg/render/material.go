package render

// material is the texture and color state shared by every pixel of one
// draw.
type material struct {
	tex        *Texture
	trans      *Translation
	color      uint32
	colorIndex uint8
	alpha      uint32
	pal        *PaletteTables

	fuzz      *FuzzTable
	fuzzPos   int
	fuzzScale int
}

func newMaterial(tex *Texture, trans *Translation, color uint32, colorIndex uint8, alpha uint32, tables *Tables, fuzzPos, viewHeight int) material {
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		tex = solidTexture(color, colorIndex)
	}
	if trans == nil {
		trans = tables.Identity
	}
	return material{
		tex:        tex,
		trans:      trans,
		color:      color,
		colorIndex: colorIndex,
		alpha:      min(alpha, 256),
		pal:        tables.Palette,
		fuzz:       tables.Fuzz,
		fuzzPos:    fuzzPos,
		fuzzScale:  (200 << 16) / max(viewHeight, 1),
	}
}

// texel returns the index of the texel for 8.24 texture coordinates. Only
// the fractional 16 bits are used, which wraps the texture.
func (m *material) texel(u, v uint32) int {
	tx := ((u << 8) >> 16) * uint32(m.tex.Width) >> 16
	ty := ((v << 8) >> 16) * uint32(m.tex.Height) >> 16
	return int(ty)*m.tex.Width + int(tx)
}

func (m *material) index(i int) uint8 {
	if m.tex.Indexed != nil {
		return m.tex.Indexed[i]
	}
	return m.pal.Match(m.tex.Pixels[i])
}

// toFixed24 converts a texture coordinate to 8.24 fixed point. Values far
// outside the texture wrap instead of saturating.
func toFixed24(f float32) uint32 {
	return uint32(int64(f * 0x1000000))
}
