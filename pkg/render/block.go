package render

import (
	"image"
	"math/bits"

	"github.com/chewxy/math32"
)

// Vertices are clamped to this many pixels from the origin before the
// fixed point conversion so edge products stay well inside int64.
const maxScreenCoord = 1 << 20

const fullMask = ^uint32(0)

// screenPlane is a user clip plane expressed as a screen linear function.
// Its value times w has the sign of the world space distance.
type screenPlane struct {
	base float32
	g    axis
}

// triangleBlock walks the 8x8 blocks of one triangle that belong to the
// calling thread and runs the per block test chain on each.
type triangleBlock struct {
	t    *ThreadData
	tri  *triangleArgs
	span spanFunc
	e    edges

	clip    image.Rectangle
	planes  [3]screenPlane
	nplanes int

	depth   *DepthBuffer
	stencil *StencilBuffer

	depthTest    bool
	writeColor   bool
	writeStencil bool
	writeDepth   bool
	stencilTest  uint8
	stencilWrite uint8
	depthBase    float32

	// Current block.
	x, y         int
	mask0, mask1 uint32
}

func toFixed4(v float32) int64 {
	return int64(math32.Round(clamp(v, -maxScreenCoord, maxScreenCoord) * subPixelOne))
}

// render rasterizes tri into the thread's viewport.
func (b *triangleBlock) render() {
	tri := b.tri
	x := [3]int64{toFixed4(tri.v1.X), toFixed4(tri.v2.X), toFixed4(tri.v3.X)}
	y := [3]int64{toFixed4(tri.v1.Y), toFixed4(tri.v2.Y), toFixed4(tri.v3.Y)}
	b.e = newEdges(x, y)

	// Bounding box in pixels, max exclusive.
	minx := max(int(min(x[0], x[1], x[2])>>subPixelBits), b.clip.Min.X)
	miny := max(int(min(y[0], y[1], y[2])>>subPixelBits), b.clip.Min.Y)
	maxx := min(int((max(x[0], x[1], x[2])+subPixelOne-1)>>subPixelBits), b.clip.Max.X)
	maxy := min(int((max(y[0], y[1], y[2])+subPixelOne-1)>>subPixelBits), b.clip.Max.Y)
	if minx >= maxx || miny >= maxy {
		return
	}

	b.subdivide(minx/blockSize, miny/blockSize, (maxx+blockSize-1)/blockSize, (maxy+blockSize-1)/blockSize)
}

// subdivide classifies the block range [x0,x1) x [y0,y1) and either draws
// it or splits it along the axes that are still larger than 8 blocks.
func (b *triangleBlock) subdivide(x0, y0, x1, y1 int) {
	switch b.e.classify(x0*blockSize, y0*blockSize, x1*blockSize, y1*blockSize) {
	case coverageNone:
		return
	case coverageFull:
		b.renderBlocks(x0, y0, x1, y1, true)
		return
	}

	doneX := x1-x0 <= 8
	doneY := y1-y0 <= 8
	switch {
	case doneX && doneY:
		b.renderBlocks(x0, y0, x1, y1, false)
	case doneX:
		my := (y0 + y1) / 2
		b.subdivide(x0, y0, x1, my)
		b.subdivide(x0, my, x1, y1)
	case doneY:
		mx := (x0 + x1) / 2
		b.subdivide(x0, y0, mx, y1)
		b.subdivide(mx, y0, x1, y1)
	default:
		mx := (x0 + x1) / 2
		my := (y0 + y1) / 2
		b.subdivide(x0, y0, mx, my)
		b.subdivide(mx, y0, x1, my)
		b.subdivide(x0, my, mx, y1)
		b.subdivide(mx, my, x1, y1)
	}
}

// renderBlocks visits the blocks of the range on block rows owned by this
// thread.
func (b *triangleBlock) renderBlocks(x0, y0, x1, y1 int, full bool) {
	for by := y0; by < y1; by++ {
		if !b.t.owns(by * blockSize) {
			continue
		}
		for bx := x0; bx < x1; bx++ {
			b.block(bx, by, full)
		}
	}
}

func (b *triangleBlock) block(bx, by int, full bool) {
	b.x, b.y = bx*blockSize, by*blockSize

	if full {
		b.mask0, b.mask1 = fullMask, fullMask
	} else {
		b.coverageTest()
		if b.empty() {
			return
		}
	}

	b.clipTest()
	if b.empty() {
		return
	}

	var sb *stencilBlock
	if b.stencil != nil {
		sb = b.stencil.block(bx, by)
		b.mask0, b.mask1 = sb.equalTest(b.stencilTest, b.mask0, b.mask1)
		if b.empty() {
			return
		}
	}

	if b.depthTest {
		b.depthTestBlock()
		if b.empty() {
			return
		}
	}

	if b.writeColor {
		b.drawSpans()
	}
	if b.writeStencil && sb != nil {
		sb.write(b.stencilWrite, b.mask0, b.mask1)
	}
	if b.writeDepth {
		b.depthWriteBlock()
	}
}

func (b *triangleBlock) empty() bool {
	return b.mask0 == 0 && b.mask1 == 0
}

func (b *triangleBlock) coverageTest() {
	switch b.e.classify(b.x, b.y, b.x+blockSize, b.y+blockSize) {
	case coverageNone:
		b.mask0, b.mask1 = 0, 0
	case coverageFull:
		b.mask0, b.mask1 = fullMask, fullMask
	default:
		b.mask0, b.mask1 = b.t.kernel(&b.e, b.x, b.y)
	}
}

// columnMask returns the columns of the block at x inside [left, right),
// replicated into every row byte.
func columnMask(x, left, right int) uint32 {
	var m uint32
	for i := range blockSize {
		m <<= 1
		if x+i >= left && x+i < right {
			m |= 1
		}
	}
	return m * 0x01010101
}

// rowMasks returns the rows of the block at y inside [top, bottom).
func rowMasks(y, top, bottom int) (uint32, uint32) {
	var m [2]uint32
	for i := range blockSize {
		m[i>>2] <<= 8
		if y+i >= top && y+i < bottom {
			m[i>>2] |= 0xff
		}
	}
	return m[0], m[1]
}

// clipTest removes pixels outside the clip rectangle and behind any user
// clip plane.
func (b *triangleBlock) clipTest() {
	c := b.clip
	if b.x < c.Min.X || b.x+blockSize > c.Max.X || b.y < c.Min.Y || b.y+blockSize > c.Max.Y {
		cols := columnMask(b.x, c.Min.X, c.Max.X)
		rows0, rows1 := rowMasks(b.y, c.Min.Y, c.Max.Y)
		b.mask0 &= cols & rows0
		b.mask1 &= cols & rows1
	}
	for i := range b.nplanes {
		if b.empty() {
			return
		}
		b.planeTest(&b.planes[i])
	}
}

func (b *triangleBlock) planeValue(p *screenPlane, ix, iy int) float32 {
	sx := float32(b.x+ix) + 0.5 - b.tri.v1.X
	sy := float32(b.y+iy) + 0.5 - b.tri.v1.Y
	return p.g.at(p.base, sx, sy)
}

func (b *triangleBlock) planeTest(p *screenPlane) {
	inside := 0
	for _, c := range [4][2]int{{0, 0}, {7, 0}, {0, 7}, {7, 7}} {
		if b.planeValue(p, c[0], c[1]) >= 0 {
			inside++
		}
	}
	switch inside {
	case 4:
		return
	case 0:
		b.mask0, b.mask1 = 0, 0
		return
	}
	var m [2]uint32
	for iy := range blockSize {
		for ix := range blockSize {
			m[iy>>2] <<= 1
			if b.planeValue(p, ix, iy) >= 0 {
				m[iy>>2] |= 1
			}
		}
	}
	b.mask0 &= m[0]
	b.mask1 &= m[1]
}

// depthAt is the incoming reciprocal depth at pixel (ix, iy) of the block.
func (b *triangleBlock) depthAt(ix, iy int) float32 {
	sx := float32(b.x+ix) + 0.5 - b.tri.v1.X
	sy := float32(b.y+iy) + 0.5 - b.tri.v1.Y
	return b.tri.grad.w.at(b.depthBase, sx, sy)
}

// depthTestBlock keeps pixels where the stored value is not nearer than
// the incoming one.
func (b *triangleBlock) depthTestBlock() {
	stored := b.depth.block(b.x>>3, b.y>>3)
	var m [2]uint32
	for i := range 64 {
		m[i>>5] <<= 1
		if stored[i] <= b.depthAt(i&7, i>>3) {
			m[i>>5] |= 1
		}
	}
	b.mask0 &= m[0]
	b.mask1 &= m[1]
}

func (b *triangleBlock) depthWriteBlock() {
	stored := b.depth.block(b.x>>3, b.y>>3)
	for i := range 64 {
		if maskBit(b.mask0, b.mask1, i) {
			stored[i] = b.depthAt(i&7, i>>3)
		}
	}
}

// maskBit reports whether pixel i (row major within the block) is set.
func maskBit(mask0, mask1 uint32, i int) bool {
	w := mask0
	if i >= 32 {
		w = mask1
	}
	return w&(1<<(31-i&31)) != 0
}

// drawSpans converts the mask into horizontal runs and hands each to the
// span drawer.
func (b *triangleBlock) drawSpans() {
	for iy := range blockSize {
		w := b.mask0
		if iy >= 4 {
			w = b.mask1
		}
		row := uint8(w >> (24 - 8*(iy&3)))
		x := b.x
		for row != 0 {
			lead := bits.LeadingZeros8(row)
			row <<= lead
			x += lead
			n := bits.LeadingZeros8(^row)
			b.span(b.y+iy, x, x+n, b.tri, b.t.dest)
			row <<= n
			x += n
		}
	}
}
