package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// lightOrbit circles the dynamic light around the model. The height eases
// toward its target with a critically damped spring.
type lightOrbit struct {
	Angle  float64
	Radius float64
	Paused bool

	height       float64
	heightVel    float64
	targetHeight float64
	spring       harmonica.Spring
	speed        float64 // radians per frame
}

func newLightOrbit(fps int) *lightOrbit {
	return &lightOrbit{
		Radius:       2,
		height:       1,
		targetHeight: 1,
		spring:       harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
		speed:        1.2 / float64(fps),
	}
}

// Raise moves the target height by dh, within [-1, 3].
func (l *lightOrbit) Raise(dh float64) {
	l.targetHeight = math.Max(-1, math.Min(3, l.targetHeight+dh))
}

// Update advances the orbit by one frame.
func (l *lightOrbit) Update() {
	if !l.Paused {
		l.Angle = math.Mod(l.Angle+l.speed, 2*math.Pi)
	}
	l.height, l.heightVel = l.spring.Update(l.height, l.heightVel, l.targetHeight)
}

// Height returns the current, eased height.
func (l *lightOrbit) Height() float64 { return l.height }

// Position returns the light's world position.
func (l *lightOrbit) Position() math3d.Vec3 {
	return math3d.V3(
		float32(l.Radius*math.Cos(l.Angle)),
		float32(l.height),
		float32(l.Radius*math.Sin(l.Angle)),
	)
}
