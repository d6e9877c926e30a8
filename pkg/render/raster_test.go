package render

import (
	"math/rand/v2"
	"testing"

	"github.com/taigrr/polyraster/pkg/math3d"
)

const fill = 0xff10c040

func TestSkippedByThread(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for core := range n {
			td := NewThreadData(core, n, nil, nil)
			for first := range 20 {
				skip := td.SkippedByThread(first)
				if skip < 0 || skip >= n || (first+skip)%n != core {
					t.Errorf("n=%d core=%d SkippedByThread(%d) = %d", n, core, first, skip)
				}
			}
		}
	}
}

// Odd iterations also run a random stencil pattern, a random depth buffer
// and a clip plane, checked pixel by pixel along with what they store.
func TestCoverageMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 200 {
		tri := [3]ScreenVertex{}
		for j := range tri {
			tri[j] = sv(gridCoord(rng, -8, 72), gridCoord(rng, -8, 72))
		}
		n := 1 + i%4
		fb := NewFramebuffer(64, 48, FormatBGRA)
		args := fillArgs(fill)
		chain := i%2 == 1

		var depth *DepthBuffer
		var stencil *StencilBuffer
		var plane math3d.Plane
		if chain {
			stencil = NewStencilBuffer(64, 48)
			for by := range 6 {
				for bx := range 8 {
					stencil.block(bx, by).write(1, rng.Uint32(), rng.Uint32())
				}
			}
			depth = NewDepthBuffer(64, 48)
			for y := range 48 {
				for x := range 64 {
					if rng.IntN(4) == 0 {
						*depth.at(x, y) = 2
					}
				}
			}
			// Plane values at pixel centres are multiples of 1/4 offset by
			// 1/8, so none lies on the plane.
			plane = math3d.Plane{
				A: float32(1 - 2*rng.IntN(2)),
				B: float32(1-2*rng.IntN(2)) / 2,
				D: float32(rng.IntN(121)-60) + 0.125,
			}
			args.ClipPlanes[0] = plane
			args.SetDepthTest(true)
			args.SetStencil(1, 2)
			args.WriteStencil = true
		}
		var stencilBefore [48][64]uint8
		var depthBefore [48][64]float32
		if chain {
			for y := range 48 {
				for x := range 64 {
					stencilBefore[y][x] = stencil.At(x, y)
					depthBefore[y][x] = depth.At(x, y)
				}
			}
		}

		drawScreen(n, fb, depth, stencil, &args, tri)

		for y := range fb.Height {
			for x := range fb.Width {
				pass := refInsidePixel(tri, x, y)
				if chain {
					d := plane.A*(float32(x)+0.5) + plane.B*(float32(y)+0.5) + plane.D
					pass = pass && d >= 0 && stencilBefore[y][x] == 1 && depthBefore[y][x] <= 1
				}
				want := uint32(0)
				if pass {
					want = fill
				}
				if got := fb.Pixel(x, y); got != want {
					t.Fatalf("tri %d %v on %d threads: pixel (%d,%d) = %#x, want %#x", i, tri, n, x, y, got, want)
				}
				if !chain {
					continue
				}
				wantStencil, wantDepth := stencilBefore[y][x], depthBefore[y][x]
				if pass {
					wantStencil, wantDepth = 2, 1
				}
				if got := stencil.At(x, y); got != wantStencil {
					t.Fatalf("tri %d: stencil (%d,%d) = %d, want %d", i, x, y, got, wantStencil)
				}
				if got := depth.At(x, y); got != wantDepth {
					t.Fatalf("tri %d: depth (%d,%d) = %v, want %v", i, x, y, got, wantDepth)
				}
			}
		}
	}
}

func TestPartitionIsDisjointAndComplete(t *testing.T) {
	tri := [3]ScreenVertex{sv(1.3, 0.7), sv(60.2, 20.5), sv(20.9, 63.1)}
	args := fillArgs(fill)

	single := NewFramebuffer(64, 64, FormatBGRA)
	drawScreen(1, single, nil, nil, &args, tri)

	const n = 3
	union := NewFramebuffer(64, 64, FormatBGRA)
	for core := range n {
		part := NewFramebuffer(64, 64, FormatBGRA)
		td := NewThreadData(core, n, nil, nil)
		td.SetViewport(0, 0, 64, 64, part)
		td.DrawScreenTriangle(&args, tri[0], tri[1], tri[2])
		for i, p := range part.BGRA {
			if p == 0 {
				continue
			}
			if y := i / 64; (y/blockSize)%n != core {
				t.Fatalf("core %d wrote row %d", core, y)
			}
			if union.BGRA[i] != 0 {
				t.Fatalf("pixel %d written by two cores", i)
			}
			union.BGRA[i] = p
		}
	}
	for i := range single.BGRA {
		if single.BGRA[i] != union.BGRA[i] {
			t.Fatalf("pixel %d: union %#x, single thread %#x", i, union.BGRA[i], single.BGRA[i])
		}
	}
}

// Opaque fill: every pixel whose centre is inside gets the fill color and
// nothing else changes.
func TestScenarioSolidFill(t *testing.T) {
	tests := []struct {
		name   string
		format PixelFormat
	}{
		{"bgra", FormatBGRA},
		{"pal8", FormatPal8},
	}
	tri := [3]ScreenVertex{sv(4, 3), sv(40.5, 9.25), sv(12.75, 44)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(48, 48, tt.format)
			fb.Palette = DefaultTables().Palette
			fb.Clear(0xff000000, 7)
			args := fillArgs(fill)
			args.ColorIndex = 100
			drawScreen(2, fb, nil, nil, &args, tri)

			inside := uint32(fill)
			if tt.format == FormatPal8 {
				inside = DefaultTables().Palette.Colors[DefaultTables().Palette.Shade(0, 100)]
			}
			outside := uint32(0xff000000)
			if tt.format == FormatPal8 {
				outside = DefaultTables().Palette.Colors[7]
			}
			for y := range 48 {
				for x := range 48 {
					want := outside
					if refInsidePixel(tri, x, y) {
						want = inside
					}
					if got := fb.Pixel(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %#x, want %#x", x, y, got, want)
					}
				}
			}
		})
	}
}

// A 64x64 square of two triangles with a 2x2 checkerboard shows one texel
// per 32x32 quadrant.
func TestScenarioCheckerQuad(t *testing.T) {
	const c1, c2 = 0xffff0000, 0xff0000ff
	tex := NewCheckerTexture(2, 2, 1, c1, c2)
	args := NewDrawArgs()
	args.Texture = tex

	fb := NewFramebuffer(80, 80, FormatBGRA)
	a, b := svUV(8, 8, 0, 0), svUV(72, 8, 1, 0)
	c, d := svUV(72, 72, 1, 1), svUV(8, 72, 0, 1)
	drawScreen(3, fb, nil, nil, &args, [3]ScreenVertex{a, b, c}, [3]ScreenVertex{a, c, d})

	for y := range 80 {
		for x := range 80 {
			want := uint32(0)
			if x >= 8 && x < 72 && y >= 8 && y < 72 {
				want = c2
				if (x < 40) == (y < 40) {
					want = c1
				}
			}
			if got := fb.Pixel(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %#x, want %#x", x, y, got, want)
			}
		}
	}
}

// A dynamic light above an unlit quad brightens pixels towards the point
// below it.
func TestScenarioDynamicLight(t *testing.T) {
	args := NewDrawArgs()
	args.Color = 0xffffffff
	args.Light = 0
	args.Lights = []Light{{X: 32, Y: 32, Z: 8, Radius: 40, Color: 0xffffff}}

	fb := NewFramebuffer(64, 64, FormatBGRA)
	a, b, c, d := sv(0, 0), sv(64, 0), sv(64, 64), sv(0, 64)
	drawScreen(2, fb, nil, nil, &args, [3]ScreenVertex{a, b, c}, [3]ScreenVertex{a, c, d})

	bright := func(x, y int) uint32 { return greenOf(fb.Pixel(x, y)) }
	for x := 33; x < 64; x++ {
		if bright(x, 32) > bright(x-1, 32) {
			t.Errorf("brightness rises moving away: x=%d %d > x=%d %d", x, bright(x, 32), x-1, bright(x-1, 32))
		}
	}
	for y := 30; y >= 0; y-- {
		if bright(31, y) > bright(31, y+1) {
			t.Errorf("brightness rises moving away: y=%d", y)
		}
	}
	if bright(32, 32) <= bright(63, 32) {
		t.Errorf("centre %d not brighter than edge %d", bright(32, 32), bright(63, 32))
	}
	if bright(0, 0) != 0 {
		t.Errorf("corner outside the radius = %d, want 0", bright(0, 0))
	}
}

func TestSharedEdgeDrawnOnce(t *testing.T) {
	args := NewDrawArgs()
	args.Color = 0xff101010
	args.SetStyle(BlendAdd, 1)

	tests := []struct {
		name string
		tris [][3]ScreenVertex
	}{
		// The diagonal passes exactly through pixel centres.
		{"diagonal", [][3]ScreenVertex{
			{sv(2, 2), sv(30, 2), sv(30, 30)},
			{sv(2, 2), sv(30, 30), sv(2, 30)},
		}},
		{"fan", [][3]ScreenVertex{
			{sv(16.5, 16.5), sv(2, 2), sv(30, 2)},
			{sv(16.5, 16.5), sv(30, 2), sv(30, 30)},
			{sv(16.5, 16.5), sv(30, 30), sv(2, 30)},
			{sv(16.5, 16.5), sv(2, 30), sv(2, 2)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(32, 32, FormatBGRA)
			fb.Clear(0xff000000, 0)
			drawScreen(2, fb, nil, nil, &args, tt.tris...)
			if got := countPixels(fb, 0xff101010); got != 28*28 {
				t.Errorf("pixels drawn once = %d, want %d", got, 28*28)
			}
			if got := countPixels(fb, 0xff202020); got != 0 {
				t.Errorf("pixels drawn twice = %d, want 0", got)
			}
		})
	}
}

func TestAddSubtractRoundTrip(t *testing.T) {
	const bg = 0xff204060
	fb := NewFramebuffer(32, 32, FormatBGRA)
	fb.Clear(bg, 0)
	tri := [3]ScreenVertex{sv(1, 1), sv(30, 4), sv(8, 29)}

	args := NewDrawArgs()
	args.Color = 0xff302010
	args.SetStyle(BlendAdd, 1)
	drawScreen(1, fb, nil, nil, &args, tri)
	if got := countPixels(fb, 0xff506070); got == 0 {
		t.Fatal("add drew nothing")
	}

	args.SetStyle(BlendSubtract, 1)
	drawScreen(1, fb, nil, nil, &args, tri)
	if got := countPixels(fb, bg); got != 32*32 {
		t.Errorf("background pixels after round trip = %d, want %d", got, 32*32)
	}
}

func TestOpaqueOverBlackThenSubtract(t *testing.T) {
	fb := NewFramebuffer(16, 16, FormatBGRA)
	fb.Clear(0xff000000, 0)
	tri := [3]ScreenVertex{sv(0, 0), sv(16, 0), sv(0, 16)}

	args := fillArgs(0xff8090a0)
	drawScreen(1, fb, nil, nil, &args, tri)
	args.SetStyle(BlendSubtract, 1)
	drawScreen(1, fb, nil, nil, &args, tri)
	if got := countPixels(fb, 0xff000000); got != 256 {
		t.Errorf("black pixels = %d, want 256", got)
	}
}

func TestDepthOrderIndependent(t *testing.T) {
	near := [3]ScreenVertex{sv(4, 4), sv(28, 6), sv(10, 28)}
	far := [3]ScreenVertex{sv(2, 20), sv(30, 2), sv(30, 30)}
	for i := range far {
		far[i].W = 0.25
	}
	for i := range near {
		near[i].W = 0.5
	}
	nearArgs := fillArgs(0xffff0000)
	nearArgs.SetDepthTest(true)
	farArgs := fillArgs(0xff0000ff)
	farArgs.SetDepthTest(true)

	draw := func(first, second [3]ScreenVertex, a1, a2 *DrawArgs) (*Framebuffer, *DepthBuffer) {
		fb := NewFramebuffer(32, 32, FormatBGRA)
		depth := NewDepthBuffer(32, 32)
		drawScreen(2, fb, depth, nil, a1, first)
		drawScreen(2, fb, depth, nil, a2, second)
		return fb, depth
	}
	fb1, depth := draw(near, far, &nearArgs, &farArgs)
	fb2, _ := draw(far, near, &farArgs, &nearArgs)
	for i := range fb1.BGRA {
		if fb1.BGRA[i] != fb2.BGRA[i] {
			t.Fatalf("pixel (%d,%d) differs by draw order: %#x vs %#x", i%32, i/32, fb1.BGRA[i], fb2.BGRA[i])
		}
	}
	if got := fb1.Pixel(20, 14); got != 0xffff0000 {
		t.Errorf("overlap pixel = %#x, want near color", got)
	}
	if got := depth.At(20, 14); got != 0.5 {
		t.Errorf("depth at overlap = %v, want 0.5", got)
	}
}

func TestStencilMasksSecondDraw(t *testing.T) {
	fb := NewFramebuffer(32, 32, FormatBGRA)
	stencil := NewStencilBuffer(32, 32)

	mark := NewDrawArgs()
	mark.WriteColor = false
	mark.WriteStencil = true
	mark.SetStencil(0, 1)
	drawScreen(2, fb, nil, stencil, &mark, [3]ScreenVertex{sv(0, 0), sv(0, 32), sv(32, 0)})
	if countPixels(fb, 0) != 32*32 {
		t.Fatal("stencil only draw wrote color")
	}

	paint := fillArgs(fill)
	paint.SetStencil(1, 1)
	drawScreen(2, fb, nil, stencil, &paint, [3]ScreenVertex{sv(0, 0), sv(0, 32), sv(32, 32)}, [3]ScreenVertex{sv(0, 0), sv(32, 32), sv(32, 0)})
	for y := range 32 {
		for x := range 32 {
			marked := stencil.At(x, y) == 1
			if got := fb.Pixel(x, y) == fill; got != marked {
				t.Fatalf("pixel (%d,%d) drawn=%v, stencil marked=%v", x, y, got, marked)
			}
		}
	}
	if v, uniform := stencil.Uniform(0, 0); !uniform || v != 1 {
		t.Errorf("top left block = %d uniform=%v, want uniform 1", v, uniform)
	}
}

func TestUserClipPlane(t *testing.T) {
	fb := NewFramebuffer(32, 32, FormatBGRA)
	args := fillArgs(fill)
	args.ClipPlanes[0] = math3d.Plane{A: 1, D: -16} // keep world x >= 16
	drawScreen(2, fb, nil, nil, &args, [3]ScreenVertex{sv(0, 0), sv(0, 32), sv(32, 32)}, [3]ScreenVertex{sv(0, 0), sv(32, 32), sv(32, 0)})
	for y := range 32 {
		for x := range 32 {
			if got, want := fb.Pixel(x, y) == fill, x >= 16; got != want {
				t.Fatalf("pixel (%d,%d) drawn=%v, want %v", x, y, got, want)
			}
		}
	}
}

func TestViewportClips(t *testing.T) {
	fb := NewFramebuffer(32, 32, FormatBGRA)
	args := fillArgs(fill)
	td := NewThreadData(0, 1, nil, nil)
	td.SetViewport(8, 8, 16, 16, fb)
	td.DrawScreenTriangle(&args, sv(-100, -100), sv(-100, 200), sv(200, -100))
	if got := countPixels(fb, fill); got != 16*16 {
		t.Errorf("pixels = %d, want %d", got, 16*16)
	}
	if fb.Pixel(7, 7) != 0 || fb.Pixel(24, 24) != 0 {
		t.Error("drew outside the viewport")
	}
}

func TestDegenerateTriangles(t *testing.T) {
	tests := []struct {
		name string
		tri  [3]ScreenVertex
	}{
		{"point", [3]ScreenVertex{sv(5, 5), sv(5, 5), sv(5, 5)}},
		{"collinear", [3]ScreenVertex{sv(0, 0), sv(10, 10), sv(20, 20)}},
		{"horizontal", [3]ScreenVertex{sv(0, 4.5), sv(10, 4.5), sv(30, 4.5)}},
		{"sub pixel", [3]ScreenVertex{sv(3.1, 3.1), sv(3.2, 3.1), sv(3.1, 3.2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(32, 32, FormatBGRA)
			args := fillArgs(fill)
			drawScreen(1, fb, nil, nil, &args, tt.tri)
			if got := countPixels(fb, fill); got != 0 {
				t.Errorf("drew %d pixels, want 0", got)
			}
		})
	}
}

func TestNoViewportDropsDraw(t *testing.T) {
	args := fillArgs(fill)
	td := NewThreadData(0, 1, nil, nil)
	td.DrawScreenTriangle(&args, sv(0, 0), sv(0, 8), sv(8, 0))
	td.DrawRect(&RectDrawArgs{Blend: BlendOpaque})
}

func BenchmarkDrawScreenTriangle(b *testing.B) {
	fb := NewFramebuffer(320, 200, FormatBGRA)
	td := NewThreadData(0, 1, nil, nil)
	td.SetViewport(0, 0, 320, 200, fb)
	args := NewDrawArgs()
	args.Texture = NewCheckerTexture(64, 64, 8, 0xffffffff, 0xff000000)
	for b.Loop() {
		td.DrawScreenTriangle(&args, svUV(10, 10, 0, 0), svUV(300, 40, 4, 0), svUV(60, 190, 0, 4))
	}
}
