package render

import (
	"image"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// DrawMode is the primitive topology of a vertex stream.
type DrawMode int

const (
	Triangles DrawMode = iota
	TriangleFan
	TriangleStrip
)

func (m DrawMode) String() string {
	switch m {
	case TriangleFan:
		return "fan"
	case TriangleStrip:
		return "strip"
	default:
		return "triangles"
	}
}

// ThreadData is the state of one worker. Every worker of a frame receives
// the same calls in the same order and draws only the rows it owns (see
// owns), so workers never write the same pixel and need no locks.
type ThreadData struct {
	core     int
	numCores int
	scanline bool

	tables   *Tables
	dispatch *DispatchTable
	kernel   coverageKernel

	viewport image.Rectangle
	clip     image.Rectangle
	dest     *Framebuffer
	depth    *DepthBuffer
	stencil  *StencilBuffer

	objectToClip  math3d.Mat4
	objectToWorld math3d.Mat4
	ccw           bool
	twoSided      bool

	tri   triangleArgs
	block triangleBlock
	clipA [maxClipVertices]clipVertex
	clipB [maxClipVertices]clipVertex
}

// NewThreadData creates the state for worker core of numCores. Nil tables
// or dispatch select the shared defaults.
func NewThreadData(core, numCores int, tables *Tables, dispatch *DispatchTable) *ThreadData {
	if numCores < 1 {
		numCores = 1
	}
	if tables == nil {
		tables = DefaultTables()
	}
	if dispatch == nil {
		dispatch = DefaultDispatch()
	}
	return &ThreadData{
		core:          core,
		numCores:      numCores,
		tables:        tables,
		dispatch:      dispatch,
		kernel:        selectKernel(),
		objectToClip:  math3d.Identity(),
		objectToWorld: math3d.Identity(),
		ccw:           true,
	}
}

// Core returns the zero based index of this worker.
func (t *ThreadData) Core() int { return t.core }

// NumCores returns the number of workers sharing the frame.
func (t *ThreadData) NumCores() int { return t.numCores }

// SkippedByThread returns how many rows after first are skipped before the
// first row this worker owns.
func (t *ThreadData) SkippedByThread(first int) int {
	n := t.numCores
	return (n - (first-t.core)%n) % n
}

// owns reports whether pixel row y belongs to this worker. Block
// rasterization hands out whole 8 pixel block rows; scanline
// rasterization hands out single rows. Every draw path goes through this.
func (t *ThreadData) owns(y int) bool {
	if !t.scanline {
		y /= blockSize
	}
	return y%t.numCores == t.core
}

// ViewportOption configures a viewport.
type ViewportOption func(*viewportOptions)

type viewportOptions struct {
	scanline bool
}

// WithScanlineRaster selects the scanline filler instead of the block
// rasterizer. It walks triangle edges row by row with a combined depth
// test and write, and ignores the stencil buffer and clip planes. Rows are
// split between workers one by one.
func WithScanlineRaster() ViewportOption {
	return func(o *viewportOptions) {
		o.scanline = true
	}
}

func resolveViewportOptions(opts []ViewportOption) viewportOptions {
	var o viewportOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SetViewport maps normalized device coordinates to the rectangle at
// (x, y) of size width x height in dest.
func (t *ThreadData) SetViewport(x, y, width, height int, dest *Framebuffer, opts ...ViewportOption) {
	o := resolveViewportOptions(opts)
	t.dest = dest
	t.scanline = o.scanline
	t.viewport = image.Rect(x, y, x+width, y+height)
	t.updateClip()
}

// Scanline reports whether the scanline filler is selected.
func (t *ThreadData) Scanline() bool { return t.scanline }

// SetDepthStencil sets the depth and stencil buffers. Either may be nil.
func (t *ThreadData) SetDepthStencil(depth *DepthBuffer, stencil *StencilBuffer) {
	t.depth = depth
	t.stencil = stencil
	t.updateClip()
}

func (t *ThreadData) updateClip() {
	if t.dest == nil {
		t.clip = image.Rectangle{}
		return
	}
	t.clip = t.viewport.Intersect(image.Rect(0, 0, t.dest.Width, t.dest.Height))
	if t.depth != nil {
		t.clip = t.clip.Intersect(image.Rect(0, 0, t.depth.width, t.depth.height))
	}
	if t.stencil != nil {
		t.clip = t.clip.Intersect(image.Rect(0, 0, t.stencil.width, t.stencil.height))
	}
}

// SetTransform sets the object to clip space transform and the object to
// world transform used for dynamic lights and clip planes.
func (t *ThreadData) SetTransform(objectToClip, objectToWorld math3d.Mat4) {
	t.objectToClip = objectToClip
	t.objectToWorld = objectToWorld
}

// SetCullCCW selects counter clockwise (in normalized device space) as the
// front face winding.
func (t *ThreadData) SetCullCCW(ccw bool) { t.ccw = ccw }

// SetTwoSided disables back face rejection.
func (t *ThreadData) SetTwoSided(twoSided bool) { t.twoSided = twoSided }

// ClearBuffers clears the depth and stencil rows owned by this worker.
func (t *ThreadData) ClearBuffers(depth float32, stencil uint8) {
	if t.depth != nil {
		if t.scanline {
			for y := t.SkippedByThread(0); y < t.depth.height; y += t.numCores {
				t.depth.clearRow(y, depth)
			}
		} else {
			rows := (t.depth.height + 7) / 8
			for by := t.SkippedByThread(0); by < rows; by += t.numCores {
				t.depth.clearRows(by, by+1, depth)
			}
		}
	}
	// Scanline draws never touch the stencil, so it is always cleared in
	// block rows.
	if t.stencil != nil {
		rows := (t.stencil.height + 7) / 8
		for by := t.SkippedByThread(0); by < rows; by += t.numCores {
			t.stencil.clearRows(by, by+1, stencil)
		}
	}
}

func (t *ThreadData) ready(args *DrawArgs) bool {
	if t.dest == nil {
		Logger().Warn("draw dropped: no viewport", "core", t.core)
		return false
	}
	if !args.Blend.Valid() {
		Logger().Warn("draw dropped: invalid blend mode", "core", t.core, "mode", args.Blend)
		return false
	}
	return true
}

// DrawArray draws vertices as the given topology.
func (t *ThreadData) DrawArray(args *DrawArgs, vertices []TriVertex, mode DrawMode) {
	if !t.ready(args) {
		return
	}
	t.drawIndexed(args, len(vertices), mode, func(i int) *TriVertex { return &vertices[i] })
}

// DrawElements draws vertices selected by indices as the given topology.
// Out of range indices are a caller error.
func (t *ThreadData) DrawElements(args *DrawArgs, vertices []TriVertex, indices []uint32, mode DrawMode) {
	if !t.ready(args) {
		return
	}
	t.drawIndexed(args, len(indices), mode, func(i int) *TriVertex { return &vertices[indices[i]] })
}

func (t *ThreadData) drawIndexed(args *DrawArgs, count int, mode DrawMode, vertex func(int) *TriVertex) {
	switch mode {
	case TriangleFan:
		for i := 2; i < count; i++ {
			t.drawTriangle(args, vertex(0), vertex(i-1), vertex(i))
		}
	case TriangleStrip:
		for i := 2; i < count; i++ {
			if i%2 == 0 {
				t.drawTriangle(args, vertex(i-2), vertex(i-1), vertex(i))
			} else {
				t.drawTriangle(args, vertex(i-1), vertex(i-2), vertex(i))
			}
		}
	default:
		for i := 0; i+2 < count; i += 3 {
			t.drawTriangle(args, vertex(i), vertex(i+1), vertex(i+2))
		}
	}
}

// DrawRect draws an axis aligned rectangle directly in destination pixels.
func (t *ThreadData) DrawRect(args *RectDrawArgs) {
	if t.dest == nil || !args.Blend.Valid() {
		Logger().Warn("rect dropped", "core", t.core, "mode", args.Blend)
		return
	}
	r, ok := newRectArgs(args, t.clip, t.tables, t.viewport.Dy())
	if !ok {
		return
	}
	draw := t.dispatch.rect(t.dest.Format, args.Blend)
	for y := r.bounds.Min.Y; y < r.bounds.Max.Y; y++ {
		if t.owns(y) {
			draw(y, &r, t.dest)
		}
	}
}

// DrawScreenTriangle rasterizes a triangle already in screen space,
// bypassing transform and clipping. Vertices must lie inside the clip
// rectangle or be rejected by it.
func (t *ThreadData) DrawScreenTriangle(args *DrawArgs, v1, v2, v3 ScreenVertex) {
	if !t.ready(args) {
		return
	}
	t.rasterize(args, v1, v2, v3)
}

func (t *ThreadData) rasterize(args *DrawArgs, v1, v2, v3 ScreenVertex) {
	tri := &t.tri
	face := faceNormal(&v1, &v2, &v3)
	if !tri.setup(v1, v2, v3) {
		return
	}
	tri.args = args
	tri.mat = newMaterial(args.Texture, args.Translation, args.Color, args.ColorIndex, args.Alpha,
		t.tables, args.FuzzPos, t.viewport.Dy())
	tri.light = newLightSetup(args, face)
	span := t.dispatch.span(t.dest.Format, args.Blend)

	if t.scanline {
		t.fillScanlines(tri, span, args)
		return
	}

	b := &t.block
	*b = triangleBlock{
		t:            t,
		tri:          tri,
		span:         span,
		clip:         t.clip,
		depth:        t.depth,
		stencil:      t.stencil,
		depthTest:    args.DepthTest && t.depth != nil,
		writeColor:   args.WriteColor,
		writeStencil: args.WriteStencil,
		writeDepth:   args.WriteDepth && t.depth != nil,
		stencilTest:  args.StencilTestValue,
		stencilWrite: args.StencilWriteValue,
		depthBase:    tri.w1 + args.DepthOffset,
	}
	for _, p := range args.ClipPlanes {
		if p.A == 0 && p.B == 0 && p.C == 0 && p.D >= 0 {
			continue
		}
		g := &tri.grad
		b.planes[b.nplanes] = screenPlane{
			base: p.A*tri.wx1 + p.B*tri.wy1 + p.C*tri.wz1 + p.D*tri.w1,
			g: axis{
				dx: p.A*g.wx.dx + p.B*g.wy.dx + p.C*g.wz.dx + p.D*g.w.dx,
				dy: p.A*g.wx.dy + p.B*g.wy.dy + p.C*g.wz.dy + p.D*g.w.dy,
			},
		}
		b.nplanes++
	}
	b.render()
}
