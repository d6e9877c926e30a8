package render

import "github.com/taigrr/polyraster/pkg/math3d"

// A triangle clipped by the six frustum planes gains at most one vertex per
// plane; the buffers leave room for 16.
const maxClipVertices = 3 + 16

// clipVertex is a vertex in homogeneous clip space.
type clipVertex struct {
	pos   math3d.Vec4
	u, v  float32
	world math3d.Vec3
}

func (t *ThreadData) shadeVertex(v *TriVertex) clipVertex {
	p := math3d.V4(v.X, v.Y, v.Z, v.W)
	return clipVertex{
		pos:   t.objectToClip.MulVec4(p),
		u:     v.U,
		v:     v.V,
		world: t.objectToWorld.MulVec4(p).Vec3(),
	}
}

// clipDistance is the signed distance to frustum plane i; the vertex is
// inside when it is >= 0.
func clipDistance(p math3d.Vec4, i int) float32 {
	switch i {
	case 0:
		return p.W + p.X
	case 1:
		return p.W - p.X
	case 2:
		return p.W + p.Y
	case 3:
		return p.W - p.Y
	case 4:
		return p.W + p.Z
	default:
		return p.W - p.Z
	}
}

func lerpClipVertex(a, b *clipVertex, f float32) clipVertex {
	return clipVertex{
		pos:   a.pos.Lerp(b.pos, f),
		u:     a.u + (b.u-a.u)*f,
		v:     a.v + (b.v-a.v)*f,
		world: a.world.Lerp(b.world, f),
	}
}

// clipPolygon clips poly against the frustum, using scratch as the second
// buffer. The result aliases one of the two.
func clipPolygon(poly, scratch []clipVertex) []clipVertex {
	for plane := range 6 {
		out := scratch[:0]
		prev := &poly[len(poly)-1]
		prevDist := clipDistance(prev.pos, plane)
		for i := range poly {
			cur := &poly[i]
			curDist := clipDistance(cur.pos, plane)
			if (curDist >= 0) != (prevDist >= 0) && len(out) < cap(out) {
				out = append(out, lerpClipVertex(prev, cur, prevDist/(prevDist-curDist)))
			}
			if curDist >= 0 && len(out) < cap(out) {
				out = append(out, *cur)
			}
			prev, prevDist = cur, curDist
		}
		if len(out) < 3 {
			return nil
		}
		poly, scratch = out, poly[:0:cap(poly)]
	}
	return poly
}

func insideFrustum(p math3d.Vec4) bool {
	for i := range 6 {
		if clipDistance(p, i) < 0 {
			return false
		}
	}
	return true
}

// toScreen performs the perspective divide and viewport mapping.
func (t *ThreadData) toScreen(c *clipVertex) ScreenVertex {
	rw := 1 / c.pos.W
	vp := t.viewport
	return ScreenVertex{
		X:     float32(vp.Min.X) + (1+c.pos.X*rw)*0.5*float32(vp.Dx()),
		Y:     float32(vp.Min.Y) + (1-c.pos.Y*rw)*0.5*float32(vp.Dy()),
		Z:     c.pos.Z * rw,
		W:     rw,
		U:     c.u,
		V:     c.v,
		World: c.world,
	}
}

// drawTriangle transforms, clips, culls and rasterizes one triangle.
func (t *ThreadData) drawTriangle(args *DrawArgs, a, b, c *TriVertex) {
	poly := t.clipA[:3]
	poly[0] = t.shadeVertex(a)
	poly[1] = t.shadeVertex(b)
	poly[2] = t.shadeVertex(c)

	if !insideFrustum(poly[0].pos) || !insideFrustum(poly[1].pos) || !insideFrustum(poly[2].pos) {
		poly = clipPolygon(poly, t.clipB[:0])
		if poly == nil {
			return
		}
	}

	// The clipped polygon is convex and keeps the winding of the input, so
	// the face test on its first fan triangle holds for all of them.
	var screen [maxClipVertices]ScreenVertex
	for i := range poly {
		screen[i] = t.toScreen(&poly[i])
	}
	area := signedArea(&screen[0], &screen[1], &screen[2])
	for i := 3; area == 0 && i < len(poly); i++ {
		area = signedArea(&screen[0], &screen[i-1], &screen[i])
	}
	if area == 0 {
		return
	}
	// Screen y points down, so a counter clockwise triangle in normalized
	// device space has a negative screen area.
	front := area < 0
	if !t.ccw {
		front = !front
	}
	if !front && !t.twoSided {
		return
	}

	for i := 2; i < len(poly); i++ {
		t.rasterize(args, screen[0], screen[i-1], screen[i])
	}
}
