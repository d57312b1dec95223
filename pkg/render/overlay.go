package render

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/taigrr/softrast/pkg/scene"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// Top-left corner of the overlay text, in pixels.
const (
	textBaseX = 3
	textBaseY = 3
)

// textTarget is a buffer glyph pixels are OR-ed into.
type textTarget interface {
	orColor(i int, color uint32)
	size() (width, height int)
}

var textFace font.Face = basicfont.Face7x13

// DrawText stamps text over fb, one line per row of text, starting near
// the top-left corner.
func DrawText(fb *Framebuffer, text string) {
	drawText(fb, text, 1)
}

// drawText ORs every glyph pixel of text into dst with glyphs and margins
// magnified by scale. Lines cover disjoint rows, so they are drawn concurrently.
func drawText[T textTarget](dst T, text string, scale int) {
	if text == "" {
		return
	}
	scale = max(scale, 1)
	lineHeight := textFace.Metrics().Height.Ceil() * scale

	var g errgroup.Group
	for i, line := range strings.Split(text, "\n") {
		g.Go(func() error {
			drawLine(dst, line, textBaseX*scale, textBaseY*scale+i*lineHeight, scale)
			return nil
		})
	}
	_ = g.Wait()
}

func drawLine[T textTarget](dst T, line string, x0, y0, scale int) {
	width, height := dst.size()
	ascent := textFace.Metrics().Ascent.Ceil()
	dot := fixed.P(0, ascent)

	for _, r := range line {
		dr, mask, maskp, advance, ok := textFace.Glyph(dot, r)
		if !ok {
			dot.X += advance
			continue
		}
		for gy := dr.Min.Y; gy < dr.Max.Y; gy++ {
			for gx := dr.Min.X; gx < dr.Max.X; gx++ {
				_, _, _, a := mask.At(maskp.X+gx-dr.Min.X, maskp.Y+gy-dr.Min.Y).RGBA()
				if a == 0 {
					continue
				}
				coverage := a >> 8
				color := 0xff000000 | (0x00ffffff*coverage)/255
				stampGlyphPixel(dst, x0+gx*scale, y0+gy*scale, scale, width, height, color)
			}
		}
		dot.X += advance
	}
}

func stampGlyphPixel[T textTarget](dst T, x, y, scale, width, height int, color uint32) {
	for sy := range scale {
		py := y + sy
		if py < 0 || py >= height {
			continue
		}
		for sx := range scale {
			px := x + sx
			if px < 0 || px >= width {
				continue
			}
			dst.orColor(px+py*width, color)
		}
	}
}

// DebugInfo is what the overlay shows besides settings and stats.
type DebugInfo struct {
	Engine    EngineType
	FPS       float64
	FrameTime time.Duration
	Width     int
	Height    int
	// Cursor is the pointer position in target pixels, when known.
	Cursor      *image.Point
	CursorColor uint32
}

// FormatDebug builds the multi-line overlay text.
func FormatDebug(info DebugInfo, s Settings, cam *scene.Camera, stats *Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | fps %.0f | frame %v", info.Engine, info.FPS, info.FrameTime.Round(time.Microsecond))
	if stats != nil {
		fmt.Fprintf(&b, " | clear %v raster %v resolve %v",
			stats.ClearTime.Round(time.Microsecond),
			stats.RasterTime.Round(time.Microsecond),
			stats.ResolveTime.Round(time.Microsecond))
	}
	if info.Cursor != nil {
		fmt.Fprintf(&b, "\n(%d,%d) %#08x", info.Cursor.X, info.Cursor.Y, info.CursorColor)
	} else {
		b.WriteString("\nno cursor position")
	}
	fmt.Fprintf(&b, "\nsize %dx%d", info.Width, info.Height)
	fmt.Fprintf(&b, "\ncamera %v", cam)
	fmt.Fprintf(&b, "\n%v", s)
	fmt.Fprintf(&b, "\n%v", stats)
	return b.String()
}
