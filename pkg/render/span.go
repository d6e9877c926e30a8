package render

// spanFunc draws pixels [x0, x1) of row y of a triangle.
type spanFunc func(y, x0, x1 int, tri *triangleArgs, dest *Framebuffer)

func newSpan32(s blendStyle) spanFunc {
	pixel := newPixel32(s)
	return func(y, x0, x1 int, tri *triangleArgs, dest *Framebuffer) {
		c := tri.cursor(x0, y)
		row := dest.BGRA[y*dest.Pitch : y*dest.Pitch+x1]
		for x := x0; x < x1; x++ {
			u, v, lm := c.sample(&tri.light)
			if out, ok := pixel(&tri.mat, x, y, u, v, lm, row[x]); ok {
				row[x] = out
			}
			c.step()
		}
	}
}

func newSpan8(s blendStyle) spanFunc {
	pixel := newPixel8(s)
	return func(y, x0, x1 int, tri *triangleArgs, dest *Framebuffer) {
		c := tri.cursor(x0, y)
		row := dest.Pal8[y*dest.Pitch : y*dest.Pitch+x1]
		for x := x0; x < x1; x++ {
			u, v, lm := c.sample(&tri.light)
			if out, ok := pixel(&tri.mat, x, y, u, v, lm, row[x]); ok {
				row[x] = out
			}
			c.step()
		}
	}
}
