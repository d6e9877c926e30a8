package scene

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/taigrr/polyraster/pkg/math3d"
)

func testFrustum() Frustum {
	proj := math3d.Perspective(math32.Pi/2, 1, 0.1, 100)
	return NewFrustum(proj.Mul(math3d.Identity()))
}

func TestFrustumIntersects(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"in front", AABB{math3d.V3(-1, -1, -6), math3d.V3(1, 1, -4)}, true},
		{"behind", AABB{math3d.V3(-1, -1, 4), math3d.V3(1, 1, 6)}, false},
		{"far left", AABB{math3d.V3(-50, -1, -6), math3d.V3(-40, 1, -4)}, false},
		{"beyond far", AABB{math3d.V3(-1, -1, -300), math3d.V3(1, 1, -200)}, false},
		{"straddles near", AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Intersects(tt.box); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}
	got := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)))
	want := AABB{math3d.V3(4, -1, -1), math3d.V3(6, 1, 1)}
	if got != want {
		t.Errorf("Transform = %v, want %v", got, want)
	}
}

func TestCameraOrbitClampsPitch(t *testing.T) {
	c := NewCamera(1)
	c.Orbit(0, 10)
	if c.Pitch >= math32.Pi/2 {
		t.Errorf("pitch = %v, want < pi/2", c.Pitch)
	}
}

func TestCameraLooksAtTarget(t *testing.T) {
	c := NewCamera(1)
	c.Target = math3d.V3(1, 2, 3)
	vp := c.ViewProjection()
	clip := vp.MulVec4(math3d.Point(c.Target))
	if math32.Abs(clip.X/clip.W) > 1e-4 || math32.Abs(clip.Y/clip.W) > 1e-4 {
		t.Errorf("target projects to (%v, %v), want centre", clip.X/clip.W, clip.Y/clip.W)
	}
}

func BenchmarkFrustumIntersects(b *testing.B) {
	f := testFrustum()
	box := AABB{math3d.V3(-1, -1, -6), math3d.V3(1, 1, -4)}
	for b.Loop() {
		_ = f.Intersects(box)
	}
}
