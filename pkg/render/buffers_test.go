package render

import (
	"testing"
)

func TestStencilBlockCompression(t *testing.T) {
	var b stencilBlock
	b.write(3, fullMask, fullMask)
	if b.kind != stencilUniform || b.value != 3 {
		t.Fatalf("full write: kind=%d value=%d, want uniform 3", b.kind, b.value)
	}

	b.write(5, 0xff000000, 0)
	if b.kind != stencilPerPixel {
		t.Fatal("partial write left the block uniform")
	}
	if b.at(0) != 5 || b.at(7) != 5 || b.at(8) != 3 || b.at(63) != 3 {
		t.Errorf("values = %d %d %d %d, want 5 5 3 3", b.at(0), b.at(7), b.at(8), b.at(63))
	}

	m0, m1 := b.equalTest(5, fullMask, fullMask)
	if m0 != 0xff000000 || m1 != 0 {
		t.Errorf("equalTest(5) = %08x %08x, want ff000000 00000000", m0, m1)
	}

	b.write(5, 0x00ffffff, fullMask)
	if b.kind != stencilUniform || b.value != 5 {
		t.Errorf("completing write: kind=%d value=%d, want uniform 5", b.kind, b.value)
	}

	b.write(5, 0x0000ff00, 0)
	if b.kind != stencilUniform {
		t.Error("writing the uniform value decompressed the block")
	}
	if m0, m1 := b.equalTest(4, fullMask, fullMask); m0 != 0 || m1 != 0 {
		t.Error("uniform equalTest with a different value passed pixels")
	}
}

func TestStencilBufferClearAndAt(t *testing.T) {
	s := NewStencilBuffer(20, 12)
	s.Clear(9)
	if got := s.At(19, 11); got != 9 {
		t.Errorf("At = %d, want 9", got)
	}
	s.block(1, 1).write(2, 1<<7, 0)
	if got := s.At(8, 11); got != 2 {
		t.Errorf("At(8, 11) = %d, want 2", got)
	}
	if _, uniform := s.Uniform(8, 11); uniform {
		t.Error("block should be per pixel")
	}
	NewStencilBuffer(0, 0).Clear(1)
}

func TestDepthBufferLayout(t *testing.T) {
	d := NewDepthBuffer(20, 12)
	if d.Width() != 20 || d.Height() != 12 {
		t.Errorf("size = %dx%d, want 20x12", d.Width(), d.Height())
	}
	d.block(2, 1)[3*8+5] = 0.75
	if got := d.At(21, 11); got != 0.75 {
		t.Errorf("At(21, 11) = %v, want 0.75", got)
	}
	d.Clear(0.5)
	if got := d.At(0, 0); got != 0.5 {
		t.Errorf("after Clear At = %v, want 0.5", got)
	}
}

func TestClearBuffersPartitioned(t *testing.T) {
	depth := NewDepthBuffer(16, 40)
	stencil := NewStencilBuffer(16, 40)
	fb := NewFramebuffer(16, 40, FormatBGRA)
	eachCore(3, func(td *ThreadData) {
		td.SetViewport(0, 0, 16, 40, fb)
		td.SetDepthStencil(depth, stencil)
		td.ClearBuffers(0.25, 4)
	})
	for y := range 40 {
		for x := range 16 {
			if depth.At(x, y) != 0.25 || stencil.At(x, y) != 4 {
				t.Fatalf("(%d,%d) not cleared", x, y)
			}
		}
	}
}

func TestMaskHelpers(t *testing.T) {
	if got := columnMask(0, 2, 5); got != 0x38383838 {
		t.Errorf("columnMask = %08x, want 38383838", got)
	}
	m0, m1 := rowMasks(8, 10, 13)
	if m0 != 0x0000ffff || m1 != 0xff000000 {
		t.Errorf("rowMasks = %08x %08x, want 0000ffff ff000000", m0, m1)
	}
	if !maskBit(1<<31, 0, 0) || !maskBit(0, 1, 63) || maskBit(0, 1, 62) {
		t.Error("maskBit order")
	}
}

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(4, 4, FormatBGRA)
	fb.SetPixel(1, 2, 0xff112233)
	fb.SetPixel(9, 9, 0xffffffff)
	if got := fb.Pixel(1, 2); got != 0xff112233 {
		t.Errorf("Pixel = %#x", got)
	}
	if got := fb.Pixel(-1, 0); got != 0 {
		t.Errorf("out of range Pixel = %#x, want 0", got)
	}
	img := fb.ToImage()
	if c := img.RGBAAt(1, 2); c.R != 0x11 || c.G != 0x22 || c.B != 0x33 {
		t.Errorf("ToImage = %v", c)
	}

	pal := NewFramebuffer(4, 4, FormatPal8)
	pal.Palette = DefaultTables().Palette
	pal.SetPixel(0, 0, pal.Palette.Colors[100])
	if pal.Pal8[0] != 100 {
		t.Errorf("palette SetPixel stored %d, want 100", pal.Pal8[0])
	}
}
