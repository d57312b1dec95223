package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// colorSource is an internal buffer the final image is read from.
type colorSource interface {
	colorAt(i int) uint32
	size() (width, height int)
}

// internalSize returns the size frames are rasterized at for target. ok is
// false when the target is empty.
func internalSize(s Settings, target *Framebuffer) (width, height, os int, ok bool) {
	if target.Width <= 0 || target.Height <= 0 {
		return 0, 0, 0, false
	}
	os = s.oversampling()
	return target.Width * os, target.Height * os, os, true
}

// resolve writes src into dst. With os > 1 each os x os block of src is
// averaged, channel by channel, into one dst pixel.
func resolve[S colorSource](dst *Framebuffer, src S, os int) {
	w := dst.Width
	if os <= 1 {
		parallelRows(dst.Height, func(y0, y1 int) {
			for i := y0 * w; i < y1*w; i++ {
				dst.Pixels[i] = src.colorAt(i)
			}
		})
		return
	}

	srcW, _ := src.size()
	n := float64(os * os)
	parallelRows(dst.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var sum math3d.ColorF
				for oy := range os {
					row := (y*os+oy)*srcW + x*os
					for ox := range os {
						sum = sum.Add(math3d.ColorFromARGB(src.colorAt(row + ox)))
					}
				}
				dst.Pixels[y*w+x] = sum.Div(n).ARGB()
			}
		}
	})
}
