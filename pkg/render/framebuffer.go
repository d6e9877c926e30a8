// Package render implements a software polygon rasterizer: hierarchical
// block coverage, depth and stencil tests, and span drawers for true color
// and palette targets.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/HugoSmits86/nativewebp"
)

// PixelFormat is the layout of a color buffer.
type PixelFormat int

const (
	FormatBGRA PixelFormat = iota // 32-bit 0xAARRGGBB
	FormatPal8                    // 8-bit palette index
)

func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA:
		return "bgra"
	case FormatPal8:
		return "pal8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// Framebuffer is a color buffer in one of the two pixel formats. Only the
// slice matching Format is allocated. Pitch is in pixels.
type Framebuffer struct {
	Width  int
	Height int
	Pitch  int
	Format PixelFormat
	BGRA   []uint32
	Pal8   []uint8

	// Palette resolves Pal8 pixels for ToImage and terminal output.
	Palette *PaletteTables
}

// NewFramebuffer allocates a color buffer.
func NewFramebuffer(width, height int, format PixelFormat) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pitch:  width,
		Format: format,
	}
	if format == FormatPal8 {
		fb.Pal8 = make([]uint8, width*height)
	} else {
		fb.BGRA = make([]uint32, width*height)
	}
	return fb
}

// Clear fills the buffer. c is used by BGRA buffers and index by palette
// buffers.
func (fb *Framebuffer) Clear(c uint32, index uint8) {
	if fb.Format == FormatPal8 {
		for i := range fb.Pal8 {
			fb.Pal8[i] = index
		}
		return
	}
	for i := range fb.BGRA {
		fb.BGRA[i] = c
	}
}

// Pixel returns the BGRA color at (x, y), resolving palette buffers through
// Palette. Out of range reads return 0.
func (fb *Framebuffer) Pixel(x, y int) uint32 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	if fb.Format == FormatPal8 {
		idx := fb.Pal8[y*fb.Pitch+x]
		if fb.Palette == nil {
			v := uint32(idx)
			return packBGRA(0xff, v, v, v)
		}
		return fb.Palette.Colors[idx]
	}
	return fb.BGRA[y*fb.Pitch+x]
}

// SetPixel stores a BGRA color, matching it to the palette on palette
// buffers. Out of range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c uint32) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	if fb.Format == FormatPal8 {
		if fb.Palette != nil {
			fb.Pal8[y*fb.Pitch+x] = fb.Palette.Match(c)
		}
		return
	}
	fb.BGRA[y*fb.Pitch+x] = c
}

// ToImage converts the buffer to an opaque image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			c := fb.Pixel(x, y)
			img.SetRGBA(x, y, color.RGBA{uint8(redOf(c)), uint8(greenOf(c)), uint8(blueOf(c)), 255})
		}
	}
	return img
}

// SavePNG writes the buffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SaveWebP writes the buffer as a lossless WebP file.
func (fb *Framebuffer) SaveWebP(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := nativewebp.Encode(f, fb.ToImage(), nil); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}
