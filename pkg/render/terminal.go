package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw renders the buffer into terminal cells using upper half blocks, two
// buffer rows per cell. The buffer height should be twice the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: toColor(fb.Pixel(x, topY)),
					Bg: toColor(fb.Pixel(x, topY+1)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

func toColor(c uint32) color.Color {
	return color.RGBA{uint8(redOf(c)), uint8(greenOf(c)), uint8(blueOf(c)), 255}
}
