// Package scene holds the demo's camera and visibility helpers. It decides
// what reaches the rasterizer; the rasterizer itself never culls objects.
package scene

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// Camera orbits a target point.
type Camera struct {
	Target   math3d.Vec3
	Distance float32
	Yaw      float32 // around +Y, radians
	Pitch    float32 // above the horizon, radians

	FOV    float32 // vertical, radians
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera returns a camera looking at the origin from 4 units away.
func NewCamera(aspect float32) *Camera {
	return &Camera{
		Distance: 4,
		Pitch:    0.35,
		FOV:      math32.Pi / 3,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
	}
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	cp := math32.Cos(c.Pitch)
	return c.Target.Add(math3d.V3(
		c.Distance*cp*math32.Sin(c.Yaw),
		c.Distance*math32.Sin(c.Pitch),
		c.Distance*cp*math32.Cos(c.Yaw),
	))
}

// Orbit rotates the camera, keeping the pitch short of straight up or down.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	const maxPitch = math32.Pi/2 - 0.01
	c.Yaw += deltaYaw
	c.Pitch = math32.Max(-maxPitch, math32.Min(maxPitch, c.Pitch+deltaPitch))
}

// Zoom scales the orbit distance, never below the near plane.
func (c *Camera) Zoom(factor float32) {
	c.Distance = math32.Max(c.Near*2, c.Distance*factor)
}

// View returns the world to view transform.
func (c *Camera) View() math3d.Mat4 {
	return math3d.LookAt(c.Position(), c.Target, math3d.V3(0, 1, 0))
}

// Projection returns the view to clip transform.
func (c *Camera) Projection() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() math3d.Mat4 {
	return c.Projection().Mul(c.View())
}
