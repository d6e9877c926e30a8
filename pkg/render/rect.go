package render

import (
	"image"

	"github.com/chewxy/math32"
)

// rectArgs is a RectDrawArgs resolved against a destination.
type rectArgs struct {
	mat    material
	shade  litMul
	bounds image.Rectangle

	startU, startV uint32
	stepU, stepV   uint32
}

// rectFunc draws row y of a rectangle.
type rectFunc func(y int, r *rectArgs, dest *Framebuffer)

// newRectArgs clips a to clip. It returns false when nothing is left.
func newRectArgs(a *RectDrawArgs, clip image.Rectangle, tables *Tables, viewHeight int) (rectArgs, bool) {
	bounds := image.Rect(
		int(a.X0+0.5), int(a.Y0+0.5),
		int(a.X1+0.5), int(a.Y1+0.5),
	).Intersect(clip)
	if bounds.Empty() || a.X1 == a.X0 || a.Y1 == a.Y0 {
		return rectArgs{}, false
	}

	fstepU := (a.U1 - a.U0) / (a.X1 - a.X0)
	fstepV := (a.V1 - a.V0) / (a.Y1 - a.Y0)
	return rectArgs{
		mat:    newMaterial(a.Texture, a.Translation, a.Color, a.ColorIndex, a.Alpha, tables, a.FuzzPos, viewHeight),
		shade:  uniformLit(fixedShade(a.Light)),
		bounds: bounds,
		startU: toFixed24(a.U0 + (float32(bounds.Min.X)+0.5-a.X0)*fstepU),
		startV: toFixed24(a.V0 + (float32(bounds.Min.Y)+0.5-a.Y0)*fstepV),
		stepU:  uint32(int32(math32.Round(fstepU * 0x1000000))),
		stepV:  uint32(int32(math32.Round(fstepV * 0x1000000))),
	}, true
}

func newRect32(s blendStyle) rectFunc {
	pixel := newPixel32(s)
	return func(y int, r *rectArgs, dest *Framebuffer) {
		v := r.startV + uint32(y-r.bounds.Min.Y)*r.stepV
		u := r.startU
		row := dest.BGRA[y*dest.Pitch : y*dest.Pitch+r.bounds.Max.X]
		for x := r.bounds.Min.X; x < r.bounds.Max.X; x++ {
			if out, ok := pixel(&r.mat, x, y, u, v, r.shade, row[x]); ok {
				row[x] = out
			}
			u += r.stepU
		}
	}
}

func newRect8(s blendStyle) rectFunc {
	pixel := newPixel8(s)
	return func(y int, r *rectArgs, dest *Framebuffer) {
		v := r.startV + uint32(y-r.bounds.Min.Y)*r.stepV
		u := r.startU
		row := dest.Pal8[y*dest.Pitch : y*dest.Pitch+r.bounds.Max.X]
		for x := r.bounds.Min.X; x < r.bounds.Max.X; x++ {
			if out, ok := pixel(&r.mat, x, y, u, v, r.shade, row[x]); ok {
				row[x] = out
			}
			u += r.stepU
		}
	}
}
