package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/polyraster/pkg/math3d"
)

// Diminishing light limits, as fractions of full bright.
const (
	maxVisibility = 24.0 / 32
	maxDarkness   = 31.0 / 32
)

// litMul is a per channel light multiplier in 0..256, with the colored
// fog of the draw if it has one.
type litMul struct {
	r, g, b uint32
	fog     *fogTint
}

func uniformLit(s uint32) litMul { return litMul{r: s, g: s, b: s} }

// level returns the colormap level for palette targets, 0 being full
// bright.
func (m litMul) level() uint32 {
	lum := (77*m.r + 150*m.g + 29*m.b) >> 8
	return 256 - clamp(lum, 1, 256)
}

func shadeBGRA(c uint32, m litMul) uint32 {
	if m.fog != nil {
		return m.fog.shade(c, m)
	}
	return packBGRA(alphaOf(c), redOf(c)*m.r>>8, greenOf(c)*m.g>>8, blueOf(c)*m.b>>8)
}

// fogTint is a ColoredFog with its channels unpacked.
type fogTint struct {
	fadeR, fadeG, fadeB    uint32
	lightR, lightG, lightB uint32 // 0..256
	desat, invDesat        uint32
}

func newFogTint(f *ColoredFog) *fogTint {
	if f == nil {
		return nil
	}
	d := min(f.Desaturate, 256)
	return &fogTint{
		fadeR:    redOf(f.Fade),
		fadeG:    greenOf(f.Fade),
		fadeB:    blueOf(f.Fade),
		lightR:   fixedShade(int(redOf(f.Light))),
		lightG:   fixedShade(int(greenOf(f.Light))),
		lightB:   fixedShade(int(blueOf(f.Light))),
		desat:    d,
		invDesat: 256 - d,
	}
}

// shade mixes the desaturated color with the fade color by the light of
// each channel, then applies the light tint. Dynamic lights raise the
// channel light before the mix.
func (f *fogTint) shade(c uint32, m litMul) uint32 {
	r, g, b := redOf(c), greenOf(c), blueOf(c)
	gray := ((r*77 + g*143 + b*37) >> 8) * f.desat
	ch := func(v, fade, tint, s uint32) uint32 {
		mixed := (v*f.invDesat + gray) >> 8
		return (((fade*(256-s) + mixed*s) >> 8) * tint) >> 8
	}
	return packBGRA(alphaOf(c),
		ch(r, f.fadeR, f.lightR, m.r),
		ch(g, f.fadeG, f.lightG, m.g),
		ch(b, f.fadeB, f.lightB, m.b))
}

// fixedShade maps a 0..255 light level to 0..256.
func fixedShade(light int) uint32 {
	l := uint32(clamp(light, 0, 255))
	return l + l>>7
}

// lightSetup resolves the light of a pixel from its reciprocal depth and
// world position. It is built once per triangle.
type lightSetup struct {
	fixed    bool
	shade    uint32
	fogShade float32
	vis      float32

	lights []Light
	dynR   uint32
	dynG   uint32
	dynB   uint32
	normal math3d.Vec3
	fog    *fogTint
}

func newLightSetup(args *DrawArgs, faceNormal math3d.Vec3) lightSetup {
	l := lightSetup{
		fixed:  args.FixedLight,
		shade:  fixedShade(args.Light),
		lights: args.Lights,
		dynR:   redOf(args.DynLightColor),
		dynG:   greenOf(args.DynLightColor),
		dynB:   blueOf(args.DynLightColor),
		normal: args.Normal,
		fog:    newFogTint(args.Fog),
	}
	if !l.fixed {
		l.fogShade = 2 - float32(clamp(args.Light, 0, 255)+12)/128
		l.vis = args.GlobVis / 32
	}
	if l.normal.IsZero() {
		l.normal = faceNormal
	}
	l.normal = l.normal.Normalize()
	return l
}

// dynamic reports whether per pixel light evaluation is needed.
func (l *lightSetup) dynamic() bool {
	return len(l.lights) > 0 || l.dynR|l.dynG|l.dynB != 0
}

// base returns the fixed or diminishing light for reciprocal depth w.
func (l *lightSetup) base(w float32) uint32 {
	if l.fixed {
		return l.shade
	}
	d := clamp(l.fogShade-math32.Min(maxVisibility, l.vis*w), 0, maxDarkness)
	return uint32((1 - d) * 256)
}

// at returns the light multipliers for a pixel with reciprocal depth w at
// world position p.
func (l *lightSetup) at(w float32, p math3d.Vec3) litMul {
	s := l.base(w)
	if !l.dynamic() {
		return litMul{r: s, g: s, b: s, fog: l.fog}
	}
	r, g, b := l.dynR, l.dynG, l.dynB
	for i := range l.lights {
		lt := &l.lights[i]
		radius := math32.Abs(lt.Radius)
		if radius == 0 {
			continue
		}
		d := math3d.V3(lt.X, lt.Y, lt.Z).Sub(p)
		dist := d.Len()
		att := 256 - math32.Min(dist*256/radius, 256)
		if lt.Attenuated() && dist > 0 {
			att *= math32.Max(l.normal.Dot(d)/dist, 0)
		}
		a := uint32(att)
		r += redOf(lt.Color) * a >> 8
		g += greenOf(lt.Color) * a >> 8
		b += blueOf(lt.Color) * a >> 8
	}
	return litMul{
		r:   min(s+min(r, 255), 256),
		g:   min(s+min(g, 255), 256),
		b:   min(s+min(b, 255), 256),
		fog: l.fog,
	}
}
