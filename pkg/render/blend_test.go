package render

import (
	"testing"
)

func TestParseBlendMode(t *testing.T) {
	for m := range numBlendModes {
		got, err := ParseBlendMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseBlendMode(%q) = %v, %v, want %v", m.String(), got, err, m)
		}
	}
	if m, err := ParseBlendMode("  Add "); err != nil || m != BlendAdd {
		t.Errorf("ParseBlendMode with spaces = %v, %v", m, err)
	}
	if _, err := ParseBlendMode("multiply"); err == nil {
		t.Error("ParseBlendMode(multiply): got nil error")
	}
	if BlendMode(200).Valid() {
		t.Error("BlendMode(200) is valid")
	}
}

func TestTranslatedStylesKeepBase(t *testing.T) {
	tests := []struct {
		translated, base BlendMode
	}{
		{BlendOpaqueTranslated, BlendOpaque},
		{BlendAddTranslated, BlendAdd},
		{BlendShadowTranslated, BlendShadow},
		{BlendAddShadedTranslated, BlendAddShaded},
	}
	for _, tt := range tests {
		tr, b := blendStyles[tt.translated], blendStyles[tt.base]
		if !tr.has(flagTranslated) || b.has(flagTranslated) {
			t.Errorf("%v: translated flag wrong", tt.translated)
		}
		tr.flags &^= flagTranslated
		if tr != b {
			t.Errorf("%v = %+v, want %+v plus translation", tt.translated, tr, b)
		}
	}
}

func TestDispatchTableComplete(t *testing.T) {
	d := NewDispatchTable()
	for m := range numBlendModes {
		for _, f := range []PixelFormat{FormatBGRA, FormatPal8} {
			if d.span(f, m) == nil || d.rect(f, m) == nil {
				t.Errorf("missing drawer for %v %v", m, f)
			}
		}
	}
}

func TestEveryModeDraws(t *testing.T) {
	tex := NewCheckerTexture(8, 8, 2, 0xffc08040, 0x80ffffff)
	tex.Quantize(DefaultTables().Palette)
	for _, f := range []PixelFormat{FormatBGRA, FormatPal8} {
		for m := range numBlendModes {
			fb := NewFramebuffer(24, 24, f)
			fb.Palette = DefaultTables().Palette
			fb.Clear(0xff404040, 20)
			args := NewDrawArgs()
			args.Texture = tex
			args.FixedLight = false
			args.Light = 200
			args.SetStyle(m, 0.5)
			drawScreen(2, fb, nil, nil, &args, [3]ScreenVertex{svUV(0, 0, 0, 0), svUV(24, 0, 1, 0), svUV(0, 24, 0, 1)})

			rect := NewRectDrawArgs(12, 12, 24, 24)
			rect.Texture = tex
			rect.Blend = m
			eachCore(2, func(td *ThreadData) {
				td.SetViewport(0, 0, 24, 24, fb)
				td.DrawRect(&rect)
			})
		}
	}
}

func TestBlendChannel(t *testing.T) {
	tests := []struct {
		name   string
		op     blendOp
		s, d   uint32
		sf, df int32
		want   uint32
	}{
		{"add", opAdd, 100, 50, 256, 256, 150},
		{"add saturates", opAdd, 200, 100, 256, 256, 255},
		{"sub", opSub, 30, 100, 256, 256, 70},
		{"sub clamps", opSub, 100, 30, 256, 256, 0},
		{"revsub", opRevSub, 100, 30, 256, 256, 70},
		{"half", opAdd, 200, 0, 128, 128, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blendChannel(tt.op, tt.s, tt.d, tt.sf, tt.df); got != tt.want {
				t.Errorf("blendChannel = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCombineAlpha(t *testing.T) {
	const src, dst = 0xffff0000, 0xff0000ff
	if out, ok := combineAlpha(src, 0, dst); ok || out != dst {
		t.Errorf("alpha 0 = %#x, %v, want dst untouched", out, ok)
	}
	if out, _ := combineAlpha(src, 255, dst); out != src {
		t.Errorf("alpha 255 = %#x, want %#x", out, uint32(src))
	}
	out, _ := combineAlpha(src, 128, dst)
	if r, b := redOf(out), blueOf(out); r < 127 || r > 129 || b < 126 || b > 128 {
		t.Errorf("alpha 128 = %#x, want an even mix", out)
	}
}

func TestSkycapFade(t *testing.T) {
	const fg, fillColor = 0xffffffff, 0xff000000
	if got := skycapFade(fg, fillColor, 0); got != fillColor {
		t.Errorf("top edge = %#x, want fill", got)
	}
	if got := skycapFade(fg, fillColor, 0x800000); got != fg {
		t.Errorf("middle = %#x, want texel", got)
	}
}

func TestTranslatedDrawsRemapIndices(t *testing.T) {
	tables := DefaultTables()
	pal := tables.Palette
	tex := NewIndexedTexture(2, 2, []uint8{5, 5, 5, 5}, pal)
	var remap [256]uint8
	for i := range remap {
		remap[i] = uint8(i)
	}
	remap[5] = 200
	trans := NewTranslation(remap, pal)
	if pal.Colors[5] == pal.Colors[200] {
		t.Fatal("palette entries 5 and 200 are equal")
	}

	modes := []BlendMode{BlendOpaqueTranslated, BlendTranslucentTranslated, BlendAddTranslated}
	for _, format := range []PixelFormat{FormatBGRA, FormatPal8} {
		for _, mode := range modes {
			t.Run(format.String()+"/"+mode.String(), func(t *testing.T) {
				args := NewDrawArgs()
				args.Blend = mode
				args.Texture = tex
				args.Translation = trans
				fb := NewFramebuffer(8, 8, format)
				fb.Palette = pal
				drawScreen(2, fb, nil, nil, &args,
					[3]ScreenVertex{svUV(0, 0, 0, 0), svUV(0, 8, 0, 1), svUV(8, 8, 1, 1)})

				rect := NewRectDrawArgs(0, 0, 8, 8)
				rect.Blend = mode
				rect.Texture = tex
				rect.Translation = trans
				rfb := NewFramebuffer(8, 8, format)
				rfb.Palette = pal
				eachCore(2, func(td *ThreadData) {
					td.SetViewport(0, 0, 8, 8, rfb)
					td.DrawRect(&rect)
				})

				for name, f := range map[string]*Framebuffer{"triangle": fb, "rect": rfb} {
					if format == FormatPal8 {
						if got := f.Pal8[6*8+1]; got != 200 {
							t.Errorf("%s index = %d, want 200", name, got)
						}
						continue
					}
					if got, want := f.BGRA[6*8+1], pal.Colors[200]|0xff000000; got != want {
						t.Errorf("%s color = %#x, want %#x", name, got, want)
					}
				}
			})
		}
	}
}
