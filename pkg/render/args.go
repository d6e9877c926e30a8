package render

import (
	"github.com/taigrr/polyraster/pkg/math3d"
)

// TriVertex is an object space vertex as submitted by the caller.
type TriVertex struct {
	X, Y, Z, W float32
	U, V       float32
}

// ScreenVertex is a vertex after transform, clipping and viewport mapping.
// W holds 1/clipW, so larger values are nearer to the viewer.
type ScreenVertex struct {
	X, Y  float32
	Z, W  float32
	U, V  float32
	World math3d.Vec3
}

// Light is a dynamic point light in world space. Color is 0xRRGGBB.
// A negative Radius selects N·L attenuation in addition to distance falloff.
type Light struct {
	X, Y, Z float32
	Radius  float32
	Color   uint32
}

// Attenuated reports whether the light uses N·L falloff.
func (l Light) Attenuated() bool { return l.Radius < 0 }

// Translation remaps palette indices, mostly to recolor sprites. BGRA is
// the remapped entry resolved through the palette for true color targets.
type Translation struct {
	Index [256]uint8
	BGRA  [256]uint32
}

// NewTranslation builds a translation from a palette index remap. Index 0
// stays transparent in the true color table.
func NewTranslation(remap [256]uint8, pal *PaletteTables) *Translation {
	tr := &Translation{Index: remap}
	for i, idx := range remap {
		tr.BGRA[i] = pal.Colors[idx] | 0xff000000
	}
	tr.BGRA[0] &= 0x00ffffff
	return tr
}

// ColoredFog tints the diminishing light on true color targets. Darkened
// pixels fade towards Fade (0xRRGGBB) and the result is multiplied by
// Light (0xRRGGBB, white leaves it unchanged). Desaturate (0..256) blends
// texels towards their gray level before either applies.
type ColoredFog struct {
	Fade       uint32
	Light      uint32
	Desaturate uint32
}

// DrawArgs describes one triangle batch. It is read only while a draw runs,
// so a single value may be shared by every worker.
type DrawArgs struct {
	// Planes whose evaluated distance is negative at a pixel reject it.
	// The zero Plane is disabled.
	ClipPlanes [3]math3d.Plane

	Texture     *Texture
	Translation *Translation

	Blend BlendMode
	Alpha uint32 // 0..256

	Color      uint32 // fill color, BGRA
	ColorIndex uint8  // fill color for palette targets

	Light      int     // 0..255
	GlobVis    float32 // distance fog density
	FixedLight bool
	// Fog is ignored by palette targets, which shade through the palette's
	// light tables. Nil shades without a tint.
	Fog *ColoredFog

	DepthTest         bool
	DepthOffset       float32
	StencilTestValue  uint8
	StencilWriteValue uint8
	WriteColor        bool
	WriteStencil      bool
	WriteDepth        bool

	Lights        []Light
	DynLightColor uint32
	// Normal is used for N·L lights. The zero vector means the face normal
	// of the triangle's world positions is used.
	Normal math3d.Vec3

	FuzzPos int
}

// NewDrawArgs returns arguments for an opaque, fully lit draw that writes
// color only.
func NewDrawArgs() DrawArgs {
	return DrawArgs{
		Blend:      BlendOpaque,
		Alpha:      256,
		Color:      0xffffffff,
		Light:      255,
		FixedLight: true,
		WriteColor: true,
	}
}

// SetStyle sets the blend mode and converts a 0..1 alpha to 0..256.
func (a *DrawArgs) SetStyle(mode BlendMode, alpha float32) {
	a.Blend = mode
	a.Alpha = uint32(clamp(alpha*256+0.5, 0, 256))
}

// SetDepthTest enables depth testing and writing together.
func (a *DrawArgs) SetDepthTest(enable bool) {
	a.DepthTest = enable
	a.WriteDepth = enable
}

// SetStencil sets the required stencil value and the value written on pass.
func (a *DrawArgs) SetStencil(test, write uint8) {
	a.StencilTestValue = test
	a.StencilWriteValue = write
}

// RectDrawArgs describes an axis aligned rectangle in destination pixels.
// Texture coordinates step linearly across it.
type RectDrawArgs struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32

	Texture     *Texture
	Translation *Translation

	Blend      BlendMode
	Alpha      uint32
	Color      uint32
	ColorIndex uint8
	Light      int
	FuzzPos    int
}

// NewRectDrawArgs returns an opaque, fully lit rectangle covering the
// texture once.
func NewRectDrawArgs(x0, y0, x1, y1 float32) RectDrawArgs {
	return RectDrawArgs{
		X0: x0, Y0: y0, X1: x1, Y1: y1,
		U1: 1, V1: 1,
		Blend: BlendOpaque,
		Alpha: 256,
		Color: 0xffffffff,
		Light: 255,
	}
}
