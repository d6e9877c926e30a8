package math3d

// Vec4 is a homogeneous point, usually in clip space.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 creates a new Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

// Point returns p as a homogeneous point with w = 1.
func Point(p Vec3) Vec4 {
	return Vec4{p.X, p.Y, p.Z, 1}
}

// Vec3 drops the W component.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Dot returns the four component dot product.
//
//nolint:st1016 // a·b naming convention is clearer for vector operations
func (a Vec4) Dot(b Vec4) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// Lerp interpolates between a and b.
//
//nolint:st1016 // a,b naming convention is clearer for interpolation
func (a Vec4) Lerp(b Vec4, t float32) Vec4 {
	return Vec4{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
		a.W + (b.W-a.W)*t,
	}
}

// Plane is the set of points where A*x + B*y + C*z + D = 0.
// Points with a positive distance are in front.
type Plane struct {
	A, B, C, D float32
}

// Distance returns the signed distance scaled by the plane normal's length.
func (p Plane) Distance(v Vec3) float32 {
	return p.A*v.X + p.B*v.Y + p.C*v.Z + p.D
}
