package render

import "github.com/chewxy/math32"

// pixelOf rounds a screen coordinate to the first pixel whose centre lies
// at or beyond it.
func pixelOf(v float32) int {
	return int(math32.Floor(clamp(v, -maxScreenCoord, maxScreenCoord) + 0.5))
}

// fillScanlines draws tri row by row between its two edges. Each row is
// split into runs that pass the depth test, which are written to the depth
// buffer and handed to the span drawer.
func (t *ThreadData) fillScanlines(tri *triangleArgs, span spanFunc, args *DrawArgs) {
	v := [3]*ScreenVertex{&tri.v1, &tri.v2, &tri.v3}
	if v[1].Y < v[0].Y {
		v[0], v[1] = v[1], v[0]
	}
	if v[2].Y < v[1].Y {
		v[1], v[2] = v[2], v[1]
	}
	if v[1].Y < v[0].Y {
		v[0], v[1] = v[1], v[0]
	}
	if v[2].Y <= v[0].Y {
		return
	}

	clip := t.clip
	topY := max(pixelOf(v[0].Y), clip.Min.Y)
	midY := clamp(pixelOf(v[1].Y), clip.Min.Y, clip.Max.Y)
	bottomY := min(pixelOf(v[2].Y), clip.Max.Y)
	if topY >= bottomY {
		return
	}

	depthTest := args.DepthTest && t.depth != nil
	writeDepth := args.WriteDepth && t.depth != nil
	base := tri.w1 + args.DepthOffset
	dw := tri.grad.w.dx
	longStep := (v[2].X - v[0].X) / (v[2].Y - v[0].Y)

	for y := topY + t.SkippedByThread(topY); y < bottomY; y += t.numCores {
		cy := float32(y) + 0.5
		xa := v[0].X + longStep*(cy-v[0].Y)
		var xb float32
		if y < midY {
			xb = v[0].X + (v[1].X-v[0].X)/(v[1].Y-v[0].Y)*(cy-v[0].Y)
		} else {
			xb = v[1].X + (v[2].X-v[1].X)/(v[2].Y-v[1].Y)*(cy-v[1].Y)
		}
		if xb < xa {
			xa, xb = xb, xa
		}
		x0 := max(pixelOf(xa), clip.Min.X)
		x1 := min(pixelOf(xb), clip.Max.X)
		if x0 >= x1 {
			continue
		}

		w := tri.grad.w.at(base, float32(x0)+0.5-tri.v1.X, cy-tri.v1.Y)
		for x := x0; x < x1; {
			start := x
			for ; x < x1 && (!depthTest || *t.depth.at(x, y) <= w); x++ {
				if writeDepth {
					*t.depth.at(x, y) = w
				}
				w += dw
			}
			if x > start && args.WriteColor {
				span(y, start, x, tri, t.dest)
			}
			for ; x < x1 && depthTest && *t.depth.at(x, y) > w; x++ {
				w += dw
			}
		}
	}
}
