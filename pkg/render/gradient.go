package render

import "github.com/taigrr/polyraster/pkg/math3d"

// axis is the screen space rate of change of one attribute.
type axis struct {
	dx, dy float32
}

func (a axis) at(base, sx, sy float32) float32 {
	return base + a.dx*sx + a.dy*sy
}

// gradient holds the rates of change of the perspective interpolated
// attributes. Every attribute except w is premultiplied by w.
type gradient struct {
	w, uw, vw  axis
	wx, wy, wz axis
}

// triangleArgs is everything the block rasterizer and span drawers need for
// one triangle. v1 is the origin all attributes are interpolated from.
type triangleArgs struct {
	v1, v2, v3 ScreenVertex
	grad       gradient
	args       *DrawArgs
	mat        material
	light      lightSetup

	// Attribute values at v1.
	w1, uw1, vw1  float32
	wx1, wy1, wz1 float32
}

// signedArea is twice the signed screen space area. It is negative for the
// winding the inside test accepts.
func signedArea(a, b, c *ScreenVertex) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// setup computes the gradients for v1, v2, v3, swapping v2 and v3 first if
// needed so the winding is the one the edge functions accept. It returns
// false for degenerate triangles.
func (t *triangleArgs) setup(v1, v2, v3 ScreenVertex) bool {
	area := signedArea(&v1, &v2, &v3)
	if area == 0 {
		return false
	}
	if area > 0 {
		v2, v3 = v3, v2
	}
	t.v1, t.v2, t.v3 = v1, v2, v3

	bottomX := (v2.X-v3.X)*(v1.Y-v3.Y) - (v1.X-v3.X)*(v2.Y-v3.Y)
	bottomY := -bottomX
	if bottomX == 0 {
		return false
	}
	grad := func(c1, c2, c3 float32) axis {
		return axis{
			dx: ((c2-c3)*(v1.Y-v3.Y) - (c1-c3)*(v2.Y-v3.Y)) / bottomX,
			dy: ((c2-c3)*(v1.X-v3.X) - (c1-c3)*(v2.X-v3.X)) / bottomY,
		}
	}

	t.grad.w = grad(v1.W, v2.W, v3.W)
	t.grad.uw = grad(v1.U*v1.W, v2.U*v2.W, v3.U*v3.W)
	t.grad.vw = grad(v1.V*v1.W, v2.V*v2.W, v3.V*v3.W)
	t.grad.wx = grad(v1.World.X*v1.W, v2.World.X*v2.W, v3.World.X*v3.W)
	t.grad.wy = grad(v1.World.Y*v1.W, v2.World.Y*v2.W, v3.World.Y*v3.W)
	t.grad.wz = grad(v1.World.Z*v1.W, v2.World.Z*v2.W, v3.World.Z*v3.W)

	t.w1 = v1.W
	t.uw1 = v1.U * v1.W
	t.vw1 = v1.V * v1.W
	t.wx1 = v1.World.X * v1.W
	t.wy1 = v1.World.Y * v1.W
	t.wz1 = v1.World.Z * v1.W
	return true
}

// faceNormal returns the world space normal implied by the winding of the
// original vertex order.
func faceNormal(v1, v2, v3 *ScreenVertex) math3d.Vec3 {
	return v2.World.Sub(v1.World).Cross(v3.World.Sub(v1.World)).Normalize()
}

// spanCursor steps the interpolated attributes along a span.
type spanCursor struct {
	g          *gradient
	w, uw, vw  float32
	wx, wy, wz float32
	dynamic    bool
}

// cursor positions a cursor on the centre of pixel (x, y).
func (t *triangleArgs) cursor(x, y int) spanCursor {
	sx := float32(x) + 0.5 - t.v1.X
	sy := float32(y) + 0.5 - t.v1.Y
	g := &t.grad
	c := spanCursor{
		g:       g,
		w:       g.w.at(t.w1, sx, sy),
		uw:      g.uw.at(t.uw1, sx, sy),
		vw:      g.vw.at(t.vw1, sx, sy),
		dynamic: t.light.dynamic(),
	}
	if c.dynamic {
		c.wx = g.wx.at(t.wx1, sx, sy)
		c.wy = g.wy.at(t.wy1, sx, sy)
		c.wz = g.wz.at(t.wz1, sx, sy)
	}
	return c
}

// sample returns the texture coordinates and light of the current pixel.
func (c *spanCursor) sample(l *lightSetup) (u, v uint32, lm litMul) {
	rcp := 1 / c.w
	u = toFixed24(c.uw * rcp)
	v = toFixed24(c.vw * rcp)
	if c.dynamic {
		return u, v, l.at(c.w, math3d.V3(c.wx*rcp, c.wy*rcp, c.wz*rcp))
	}
	return u, v, l.at(c.w, math3d.Vec3{})
}

func (c *spanCursor) step() {
	c.w += c.g.w.dx
	c.uw += c.g.uw.dx
	c.vw += c.g.vw.dx
	if c.dynamic {
		c.wx += c.g.wx.dx
		c.wy += c.g.wy.dx
		c.wz += c.g.wz.dx
	}
}
