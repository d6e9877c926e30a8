package render

import (
	"image/color"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestFramebufferDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(3, 4, FormatBGRA)
	fb.Clear(0xff000000, 0)
	fb.SetPixel(1, 2, 0xffff0000)
	fb.SetPixel(1, 3, 0xff0000ff)

	scr := uv.NewScreenBuffer(5, 2)
	fb.Draw(scr, uv.Rect(0, 0, 5, 2))

	cell := scr.CellAt(1, 1)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell = %+v, want an upper half block", cell)
	}
	if got, want := cell.Style.Fg, (color.RGBA{255, 0, 0, 255}); got != want {
		t.Errorf("Fg = %v, want %v", got, want)
	}
	if got, want := cell.Style.Bg, (color.RGBA{0, 0, 255, 255}); got != want {
		t.Errorf("Bg = %v, want %v", got, want)
	}
	if c := scr.CellAt(4, 0); c != nil && c.Content == "▀" {
		t.Error("drew past the framebuffer width")
	}
}
