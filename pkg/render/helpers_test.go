package render

import (
	"math/rand/v2"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// sv is a screen vertex at (x, y) whose world position is the same point
// on the z=0 plane.
func sv(x, y float32) ScreenVertex {
	return ScreenVertex{X: x, Y: y, W: 1, World: math3d.V3(x, y, 0)}
}

func svUV(x, y, u, v float32) ScreenVertex {
	s := sv(x, y)
	s.U, s.V = u, v
	return s
}

func fillArgs(color uint32) DrawArgs {
	a := NewDrawArgs()
	a.Color = color
	return a
}

// eachCore calls fn with the state of every worker of an n way split,
// one after another.
func eachCore(n int, fn func(t *ThreadData)) {
	for core := range n {
		fn(NewThreadData(core, n, nil, nil))
	}
}

// drawScreen draws screen space triangles on n workers into dest.
func drawScreen(n int, dest *Framebuffer, depth *DepthBuffer, stencil *StencilBuffer, args *DrawArgs, tris ...[3]ScreenVertex) {
	eachCore(n, func(t *ThreadData) {
		t.SetViewport(0, 0, dest.Width, dest.Height, dest)
		t.SetDepthStencil(depth, stencil)
		for _, tri := range tris {
			t.DrawScreenTriangle(args, tri[0], tri[1], tri[2])
		}
	})
}

// gridCoord returns a random coordinate on the 1/16 pixel grid in
// [lo, hi).
func gridCoord(rng *rand.Rand, lo, hi int) float32 {
	return float32(rng.IntN((hi-lo)*subPixelOne)+lo*subPixelOne) / subPixelOne
}

// refInside is a direct point in triangle test on the 28.4 grid. Edges
// running towards increasing y, or horizontal edges running towards
// decreasing x, own the pixel centres lying exactly on them.
func refInside(x, y [3]int64, px, py int64) bool {
	area := (x[1]-x[0])*(y[2]-y[0]) - (y[1]-y[0])*(x[2]-x[0])
	if area == 0 {
		return false
	}
	if area > 0 {
		x[1], x[2] = x[2], x[1]
		y[1], y[2] = y[2], y[1]
	}
	for i := range 3 {
		j := (i + 1) % 3
		cross := (x[j]-x[i])*(py-y[i]) - (y[j]-y[i])*(px-x[i])
		owns := y[j] > y[i] || (y[j] == y[i] && x[j] < x[i])
		if cross > 0 || (cross == 0 && !owns) {
			return false
		}
	}
	return true
}

func refInsidePixel(v [3]ScreenVertex, px, py int) bool {
	var x, y [3]int64
	for i := range v {
		x[i] = toFixed4(v[i].X)
		y[i] = toFixed4(v[i].Y)
	}
	return refInside(x, y, int64(px)<<subPixelBits+pixelCenter, int64(py)<<subPixelBits+pixelCenter)
}

// orientedEdges builds edges the way setup and render do.
func orientedEdges(v [3]ScreenVertex) (edges, bool) {
	if a := signedArea(&v[0], &v[1], &v[2]); a == 0 {
		return edges{}, false
	} else if a > 0 {
		v[1], v[2] = v[2], v[1]
	}
	var x, y [3]int64
	for i := range v {
		x[i] = toFixed4(v[i].X)
		y[i] = toFixed4(v[i].Y)
	}
	return newEdges(x, y), true
}

func countPixels(fb *Framebuffer, c uint32) int {
	n := 0
	for _, p := range fb.BGRA {
		if p == c {
			n++
		}
	}
	return n
}
