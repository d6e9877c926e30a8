package render

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Sub-pixel precision of the edge functions: 28.4 fixed point.
const (
	subPixelBits = 4
	subPixelOne  = 1 << subPixelBits
	pixelCenter  = subPixelOne / 2
	blockSize    = 8
)

type coverage uint8

const (
	coverageNone coverage = iota
	coveragePartial
	coverageFull
)

// edges holds the three half-space functions of a triangle in 28.4 fixed
// point. Edge i is inside where c + dx*y - dy*x > 0.
type edges struct {
	dx, dy [3]int64
	c      [3]int64
}

// topLeftBias is the fill-rule tie-break. Edges that point up, or that are
// horizontal and point left, own the pixels lying exactly on them; for
// those the strict > 0 test is relaxed to >= 0 by biasing c by one.
func topLeftBias(dx, dy int64) int64 {
	if dy < 0 || (dy == 0 && dx > 0) {
		return 1
	}
	return 0
}

// newEdges builds the edge functions for fixed point vertices. The vertices
// must already be in the orientation the inside test accepts.
func newEdges(x, y [3]int64) edges {
	var e edges
	for i := range 3 {
		j := (i + 1) % 3
		e.dx[i] = x[i] - x[j]
		e.dy[i] = y[i] - y[j]
		e.c[i] = e.dy[i]*x[i] - e.dx[i]*y[i] + topLeftBias(e.dx[i], e.dy[i])
	}
	return e
}

func (e *edges) eval(i int, px, py int64) int64 {
	return e.c[i] + e.dx[i]*py - e.dy[i]*px
}

// classify tests the pixel centres of the rectangle [x0,x1) x [y0,y1).
// Because the functions are linear, testing the four corner centres is
// exact for full and none.
func (e *edges) classify(x0, y0, x1, y1 int) coverage {
	px0 := int64(x0)<<subPixelBits + pixelCenter
	py0 := int64(y0)<<subPixelBits + pixelCenter
	px1 := int64(x1-1)<<subPixelBits + pixelCenter
	py1 := int64(y1-1)<<subPixelBits + pixelCenter

	full := true
	for i := range 3 {
		var n int
		if e.eval(i, px0, py0) > 0 {
			n++
		}
		if e.eval(i, px1, py0) > 0 {
			n++
		}
		if e.eval(i, px0, py1) > 0 {
			n++
		}
		if e.eval(i, px1, py1) > 0 {
			n++
		}
		if n == 0 {
			return coverageNone
		}
		full = full && n == 4
	}
	if full {
		return coverageFull
	}
	return coveragePartial
}

// coverageKernel computes the exact coverage masks of the 8x8 block whose
// top left pixel is (x, y). Row 0 is in the top byte of the first mask and
// column 0 in the most significant bit of each byte.
type coverageKernel func(e *edges, x, y int) (uint32, uint32)

func coverageScalar(e *edges, x, y int) (uint32, uint32) {
	px := int64(x)<<subPixelBits + pixelCenter
	py := int64(y)<<subPixelBits + pixelCenter
	cy := [3]int64{e.eval(0, px, py), e.eval(1, px, py), e.eval(2, px, py)}
	fdx := [3]int64{e.dx[0] << subPixelBits, e.dx[1] << subPixelBits, e.dx[2] << subPixelBits}
	fdy := [3]int64{e.dy[0] << subPixelBits, e.dy[1] << subPixelBits, e.dy[2] << subPixelBits}

	var masks [2]uint32
	for iy := range blockSize {
		cx := cy
		var row uint32
		for range blockSize {
			row <<= 1
			if cx[0] > 0 && cx[1] > 0 && cx[2] > 0 {
				row |= 1
			}
			cx[0] -= fdy[0]
			cx[1] -= fdy[1]
			cx[2] -= fdy[2]
		}
		masks[iy>>2] = masks[iy>>2]<<8 | row
		cy[0] += fdx[0]
		cy[1] += fdx[1]
		cy[2] += fdx[2]
	}
	return masks[0], masks[1]
}

// i64x4 is four int64 lanes, written so the compiler can keep each lane
// independent.
type i64x4 [4]int64

func splat4(v int64) i64x4 { return i64x4{v, v, v, v} }

func (a i64x4) add(b i64x4) i64x4 {
	return i64x4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func (a i64x4) sub(b i64x4) i64x4 {
	return i64x4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// positive returns a nibble with bit 3 for lane 0 through bit 0 for lane 3.
func (a i64x4) positive() uint32 {
	var m uint32
	for i := range a {
		m <<= 1
		if a[i] > 0 {
			m |= 1
		}
	}
	return m
}

// coverageLanes evaluates four pixels of a row at a time. It must agree
// with coverageScalar bit for bit.
func coverageLanes(e *edges, x, y int) (uint32, uint32) {
	px := int64(x)<<subPixelBits + pixelCenter
	py := int64(y)<<subPixelBits + pixelCenter

	var rowStart, colStep, rowStep [3]i64x4
	for i := range 3 {
		fdy := e.dy[i] << subPixelBits
		rowStart[i] = splat4(e.eval(i, px, py)).sub(i64x4{0, fdy, 2 * fdy, 3 * fdy})
		colStep[i] = splat4(4 * fdy)
		rowStep[i] = splat4(e.dx[i] << subPixelBits)
	}

	var masks [2]uint32
	for iy := range blockSize {
		var row uint32
		for half := range 2 {
			var cx [3]i64x4
			for i := range 3 {
				cx[i] = rowStart[i]
				if half == 1 {
					cx[i] = cx[i].sub(colStep[i])
				}
			}
			row = row<<4 | cx[0].positive()&cx[1].positive()&cx[2].positive()
		}
		masks[iy>>2] = masks[iy>>2]<<8 | row
		for i := range 3 {
			rowStart[i] = rowStart[i].add(rowStep[i])
		}
	}
	return masks[0], masks[1]
}

var selectKernel = sync.OnceValue(func() coverageKernel {
	lanes := cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.ASIMD)
	Logger().Debug("coverage kernel selected",
		"cpu", cpuid.CPU.BrandName,
		"lanes", lanes,
		"logical_cores", cpuid.CPU.LogicalCores)
	if lanes {
		return coverageLanes
	}
	return coverageScalar
})
