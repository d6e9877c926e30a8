package render

// pixelFunc32 produces the new value of a BGRA destination pixel, or false
// to leave it untouched. u and v are 8.24 texture coordinates.
type pixelFunc32 func(m *material, x, y int, u, v uint32, lm litMul, dst uint32) (uint32, bool)

// pixelFunc8 is pixelFunc32 for palette targets.
type pixelFunc8 func(m *material, x, y int, u, v uint32, lm litMul, dst uint8) (uint8, bool)

type fetchFunc func(m *material, u, v uint32) uint32

// newFetch returns the texel lookup for a style. The returned color carries
// the source alpha in its top byte.
func newFetch(s blendStyle) fetchFunc {
	var fetch fetchFunc
	switch {
	case s.has(flagFill):
		fetch = func(m *material, _, _ uint32) uint32 { return m.color }
	case s.has(flagTranslated):
		fetch = func(m *material, u, v uint32) uint32 {
			i := m.texel(u, v)
			return m.trans.BGRA[m.index(i)]
		}
	default:
		fetch = func(m *material, u, v uint32) uint32 { return m.tex.Pixels[m.texel(u, v)] }
	}

	switch {
	case s.has(flagRedIsAlpha):
		inner := fetch
		fetch = func(m *material, u, v uint32) uint32 {
			return redOf(inner(m, u, v))<<24 | m.color&0xffffff
		}
	case s.has(flagColorIsFixed):
		inner := fetch
		fetch = func(m *material, u, v uint32) uint32 {
			return inner(m, u, v)&0xff000000 | m.color&0xffffff
		}
	}

	if s.has(flagSkycap) {
		inner := fetch
		fetch = func(m *material, u, v uint32) uint32 {
			return skycapFade(inner(m, u, v), m.color, v)
		}
	}
	return fetch
}

// skycapFade fades the top and bottom quarter of a sky texture into the
// fill color.
func skycapFade(fg, fill, v uint32) uint32 {
	frac := (v << 8) >> 16
	a := min(frac>>6, (0xffff-frac)>>6, 256)
	inv := 256 - a
	return packBGRA(0xff,
		(redOf(fg)*a+redOf(fill)*inv+127)>>8,
		(greenOf(fg)*a+greenOf(fill)*inv+127)>>8,
		(blueOf(fg)*a+blueOf(fill)*inv+127)>>8)
}

type alphaFunc func(m *material, fg uint32) uint32

func newAlpha(s blendStyle) alphaFunc {
	if s.has(flagAlpha1) {
		return func(_ *material, fg uint32) uint32 { return alphaOf(fg) }
	}
	return func(m *material, fg uint32) uint32 { return alphaOf(fg) * m.alpha >> 8 }
}

// combineFunc blends a shaded source with alpha 0..255 into dst.
type combineFunc func(src, alpha, dst uint32) (uint32, bool)

func newCombine(s blendStyle) combineFunc {
	switch {
	case s.has(flagSrcColor):
		return combineSrcColor
	case s.src == factorOne && s.dst == factorZero:
		return func(src, _, _ uint32) (uint32, bool) { return src | 0xff000000, true }
	case s.op == opAdd && s.src == factorSrcAlpha && s.dst == factorInvSrcAlpha:
		return combineAlpha
	}

	op, srcF, dstF := s.op, s.src, s.dst
	return func(src, alpha, dst uint32) (uint32, bool) {
		sf := blendFactorValue(srcF, alpha)
		df := blendFactorValue(dstF, alpha)
		if sf == 0 && df == 256 {
			return dst, false
		}
		r := blendChannel(op, redOf(src), redOf(dst), sf, df)
		g := blendChannel(op, greenOf(src), greenOf(dst), sf, df)
		b := blendChannel(op, blueOf(src), blueOf(dst), sf, df)
		return packBGRA(0xff, r, g, b), true
	}
}

func blendFactorValue(f blendFactor, alpha uint32) int32 {
	switch f {
	case factorZero:
		return 0
	case factorSrcAlpha:
		return int32(alpha + alpha>>7)
	case factorInvSrcAlpha:
		return 256 - int32(alpha+alpha>>7)
	default:
		return 256
	}
}

func blendChannel(op blendOp, s, d uint32, sf, df int32) uint32 {
	ss := int32(s) * sf
	dd := int32(d) * df
	var v int32
	switch op {
	case opSub:
		v = (dd - ss + 128) >> 8
	case opRevSub:
		v = (ss - dd + 128) >> 8
	default:
		v = (dd + ss + 128) >> 8
	}
	return uint32(clamp(v, 0, 255))
}

func combineAlpha(src, alpha, dst uint32) (uint32, bool) {
	switch alpha {
	case 0:
		return dst, false
	case 255:
		return src | 0xff000000, true
	}
	sf := alpha + alpha>>7
	inv := 256 - sf
	return packBGRA(0xff,
		(redOf(dst)*inv+redOf(src)*sf+128)>>8,
		(greenOf(dst)*inv+greenOf(src)*sf+128)>>8,
		(blueOf(dst)*inv+blueOf(src)*sf+128)>>8), true
}

// combineSrcColor uses each source channel as its own blend factor.
func combineSrcColor(src, _, dst uint32) (uint32, bool) {
	ch := func(s, d uint32) uint32 {
		sf := s + s>>7
		return (d*(256-sf) + s*sf + 128) >> 8
	}
	return packBGRA(0xff,
		ch(redOf(src), redOf(dst)),
		ch(greenOf(src), greenOf(dst)),
		ch(blueOf(src), blueOf(dst))), true
}

func newPixel32(s blendStyle) pixelFunc32 {
	switch {
	case s.has(flagFogBoundary):
		return func(_ *material, _, _ int, _, _ uint32, lm litMul, dst uint32) (uint32, bool) {
			return shadeBGRA(dst, lm) | 0xff000000, true
		}
	case s.op == opFuzz:
		fetch := newFetch(s)
		alpha := newAlpha(s)
		return func(m *material, x, y int, u, v uint32, _ litMul, dst uint32) (uint32, bool) {
			a := alpha(m, fetch(m, u, v))
			if a == 0 {
				return dst, false
			}
			keep := m.fuzz.at(x, y, m.fuzzPos, m.fuzzScale) * 8
			sf := a + a>>7
			mul := 256 - (256-keep)*sf>>8
			return shadeBGRA(dst, uniformLit(mul)) | 0xff000000, true
		}
	}

	fetch := newFetch(s)
	alpha := newAlpha(s)
	combine := newCombine(s)
	return func(m *material, _, _ int, u, v uint32, lm litMul, dst uint32) (uint32, bool) {
		fg := fetch(m, u, v)
		return combine(shadeBGRA(fg, lm), alpha(m, fg), dst)
	}
}

func newPixel8(s blendStyle) pixelFunc8 {
	switch {
	case s.has(flagFogBoundary):
		return func(m *material, _, _ int, _, _ uint32, lm litMul, dst uint8) (uint8, bool) {
			return m.pal.Shade(lm.level(), dst), true
		}
	case s.op == opFuzz:
		fetch := newFetch(s)
		alpha := newAlpha(s)
		return func(m *material, x, y int, u, v uint32, _ litMul, dst uint8) (uint8, bool) {
			if alpha(m, fetch(m, u, v)) == 0 {
				return dst, false
			}
			keep := m.fuzz.at(x, y, m.fuzzPos, m.fuzzScale) * 8
			return m.pal.Shade(clamp(256-keep, 0, 255), dst), true
		}
	}

	index := newIndex8(s)
	fetch := newFetch(s)
	alpha := newAlpha(s)
	if s.src == factorOne && s.dst == factorZero && !s.has(flagSkycap) {
		return func(m *material, _, _ int, u, v uint32, lm litMul, _ uint8) (uint8, bool) {
			return m.pal.Shade(lm.level(), index(m, u, v)), true
		}
	}
	combine := newCombine(s)
	shaded := func(m *material, u, v uint32, lm litMul, _ uint32) uint32 {
		return m.pal.Colors[m.pal.Shade(lm.level(), index(m, u, v))]
	}
	if s.has(flagSkycap) {
		shaded = func(m *material, _, _ uint32, lm litMul, fg uint32) uint32 {
			return m.pal.Colors[m.pal.Shade(lm.level(), m.pal.Match(fg))]
		}
	}
	return func(m *material, _, _ int, u, v uint32, lm litMul, dst uint8) (uint8, bool) {
		fg := fetch(m, u, v)
		out, ok := combine(shaded(m, u, v, lm, fg), alpha(m, fg), m.pal.Colors[dst])
		if !ok {
			return dst, false
		}
		return m.pal.Match(out), true
	}
}

type indexFunc func(m *material, u, v uint32) uint8

// newIndex8 returns the palette index lookup matching newFetch.
func newIndex8(s blendStyle) indexFunc {
	switch {
	case s.has(flagFill), s.has(flagColorIsFixed):
		return func(m *material, _, _ uint32) uint8 { return m.colorIndex }
	case s.has(flagTranslated):
		return func(m *material, u, v uint32) uint8 { return m.trans.Index[m.index(m.texel(u, v))] }
	default:
		return func(m *material, u, v uint32) uint8 { return m.index(m.texel(u, v)) }
	}
}
