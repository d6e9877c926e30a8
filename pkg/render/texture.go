package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"math/bits"
	"os"

	_ "github.com/ftrvxmtrx/tga" // Register TGA decoder
	_ "golang.org/x/image/bmp"   // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUnsupportedFormat is returned when an image cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Texture is a decoded image ready for sampling. Pixels is row-major BGRA
// and is always present. Indexed holds palette indices for palette
// targets; draws that need it and find it nil match colors on the fly.
type Texture struct {
	Width   int
	Height  int
	Pixels  []uint32
	Indexed []uint8
}

// NewTexture creates a transparent texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// NewIndexedTexture creates a texture from palette indices. Index 0 is
// transparent in the BGRA copy.
func NewIndexedTexture(width, height int, indices []uint8, pal *PaletteTables) *Texture {
	tex := NewTexture(width, height)
	tex.Indexed = indices
	for i, idx := range indices {
		if idx != 0 {
			tex.Pixels[i] = pal.Colors[idx]
		}
	}
	return tex
}

// LoadTexture decodes a PNG, JPEG, BMP, WebP or TGA file. Sides that are
// not a power of two are scaled up to the next one.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	tex, err := decodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes an encoded image held in memory, scaling it like
// LoadTexture.
func DecodeTexture(data []byte) (*Texture, error) {
	return decodeTexture(bytes.NewReader(data))
}

func decodeTexture(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, err
	}
	tex := TextureFromImage(img)
	if w, h := powerOfTwo(tex.Width), powerOfTwo(tex.Height); w != tex.Width || h != tex.Height {
		Logger().Debug("texture resized", "from", fmt.Sprintf("%dx%d", tex.Width, tex.Height), "to", fmt.Sprintf("%dx%d", w, h))
		tex = tex.Resize(w, h)
	}
	return tex, nil
}

// powerOfTwo rounds n up to a power of two. Empty sizes stay empty.
func powerOfTwo(n int) int {
	if n <= 0 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// TextureFromImage converts img to a texture.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	tex := NewTexture(b.Dx(), b.Dy())

	rgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	for y := range tex.Height {
		row := rgba.Pix[y*rgba.Stride:]
		for x := range tex.Width {
			p := row[x*4 : x*4+4]
			tex.Pixels[y*tex.Width+x] = packBGRA(uint32(p[3]), uint32(p[0]), uint32(p[1]), uint32(p[2]))
		}
	}
	return tex
}

// Resize returns a copy of the texture scaled to width x height with
// nearest neighbor filtering, which keeps texel edges crisp.
func (t *Texture) Resize(width, height int) *Texture {
	src := t.toNRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return TextureFromImage(dst)
}

func (t *Texture) toNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pixels {
		img.Pix[i*4+0] = uint8(redOf(c))
		img.Pix[i*4+1] = uint8(greenOf(c))
		img.Pix[i*4+2] = uint8(blueOf(c))
		img.Pix[i*4+3] = uint8(alphaOf(c))
	}
	return img
}

// Quantize fills Indexed with the nearest palette entries. Transparent
// texels map to index 0.
func (t *Texture) Quantize(pal *PaletteTables) {
	t.Indexed = make([]uint8, len(t.Pixels))
	for i, c := range t.Pixels {
		if alphaOf(c) < 128 {
			continue
		}
		t.Indexed[i] = pal.Match(c)
	}
}

// NewCheckerTexture creates a procedural checkerboard. c1 is at the top
// left corner.
func NewCheckerTexture(width, height, checkSize int, c1, c2 uint32) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

// solidTexture is the 1x1 stand-in used when a draw has no texture.
func solidTexture(color uint32, index uint8) *Texture {
	return &Texture{Width: 1, Height: 1, Pixels: []uint32{color}, Indexed: []uint8{index}}
}
