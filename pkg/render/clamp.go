package render

import "golang.org/x/exp/constraints"

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BGRA channel helpers. Colors are packed as 0xAARRGGBB.
func alphaOf(c uint32) uint32 { return c >> 24 }
func redOf(c uint32) uint32   { return (c >> 16) & 0xff }
func greenOf(c uint32) uint32 { return (c >> 8) & 0xff }
func blueOf(c uint32) uint32  { return c & 0xff }

func packBGRA(a, r, g, b uint32) uint32 {
	return a<<24 | r<<16 | g<<8 | b
}
