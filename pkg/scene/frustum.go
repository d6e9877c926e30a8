package scene

import (
	"github.com/taigrr/polyraster/pkg/math3d"
)

// Frustum is the six inward facing planes of a view volume, ordered left,
// right, bottom, top, near, far.
type Frustum struct {
	Planes [6]math3d.Plane
}

// NewFrustum extracts the planes of a view-projection matrix using the
// Gribb/Hartmann method.
func NewFrustum(m math3d.Mat4) Frustum {
	row := func(i int) math3d.Plane {
		return math3d.Plane{A: m[i], B: m[i+4], C: m[i+8], D: m[i+12]}
	}
	add := func(a, b math3d.Plane, s float32) math3d.Plane {
		return math3d.Plane{A: a.A + s*b.A, B: a.B + s*b.B, C: a.C + s*b.C, D: a.D + s*b.D}
	}
	w := row(3)
	f := Frustum{Planes: [6]math3d.Plane{
		add(w, row(0), 1),
		add(w, row(0), -1),
		add(w, row(1), 1),
		add(w, row(1), -1),
		add(w, row(2), 1),
		add(w, row(2), -1),
	}}
	for i := range f.Planes {
		p := &f.Planes[i]
		l := math3d.V3(p.A, p.B, p.C).Len()
		if l == 0 {
			continue
		}
		p.A, p.B, p.C, p.D = p.A/l, p.B/l, p.C/l, p.D/l
	}
	return f
}

// AABB is an axis aligned bounding box.
type AABB struct {
	Min, Max math3d.Vec3
}

// Transform returns the box bounding b's eight corners after an affine
// transform.
func (b AABB) Transform(m math3d.Mat4) AABB {
	var out AABB
	for i := range 8 {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.MulPoint(c)
		if i == 0 {
			out = AABB{p, p}
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Intersects reports whether any part of box may be inside the frustum. It
// tests the corner furthest along each plane normal.
func (f Frustum) Intersects(box AABB) bool {
	for _, p := range f.Planes {
		v := box.Min
		if p.A >= 0 {
			v.X = box.Max.X
		}
		if p.B >= 0 {
			v.Y = box.Max.Y
		}
		if p.C >= 0 {
			v.Z = box.Max.Z
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}
