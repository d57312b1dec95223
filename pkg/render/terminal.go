package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell shows two pixel rows with an upper half block: the
// foreground is the top pixel, the background the bottom one. The
// framebuffer height should be twice the area height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: opaque(fb.GetPixel(x, topY)),
					Bg: opaque(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// TerminalSize returns the framebuffer size matching a terminal area of
// cols x rows cells.
func TerminalSize(cols, rows int) (width, height int) {
	return max(cols, 1), max(rows*2, 2)
}
