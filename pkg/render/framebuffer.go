// Package render rasterizes scene triangles into ARGB framebuffers through
// interchangeable execution strategies.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is the final image of a frame: row-major ARGB8888 pixels
// with the origin at the top-left corner. The alpha channel is carried
// along but ignored by presenters.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Resize changes the dimensions, keeping the backing array when it is
// large enough. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	n := width * height
	fb.Width, fb.Height = width, height
	if cap(fb.Pixels) >= n {
		fb.Pixels = fb.Pixels[:n]
		return
	}
	fb.Pixels = make([]uint32, n)
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c uint32) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c uint32) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns 0 if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) uint32 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pixels[y*fb.Width+x]
}

func (fb *Framebuffer) orColor(i int, c uint32) {
	fb.Pixels[i] |= c
}

func (fb *Framebuffer) size() (int, int) {
	return fb.Width, fb.Height
}

// opaque converts an ARGB pixel to an opaque color.RGBA.
func opaque(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 255}
}

// ToImage converts the framebuffer to a standard Go image.RGBA. Pixels are
// made opaque.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, opaque(fb.Pixels[y*fb.Width+x]))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
