package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/scene"
)

// DepthColorBuffer is a color buffer with its depth buffer, for a single
// writer.
type DepthColorBuffer struct {
	Width  int
	Height int
	Color  []uint32
	Depth  []float64
}

// NewDepthColorBuffer creates a cleared buffer.
func NewDepthColorBuffer(width, height int) *DepthColorBuffer {
	b := &DepthColorBuffer{}
	b.Resize(width, height)
	b.Clear()
	return b
}

// Resize changes the dimensions. Contents are undefined until Clear.
// It reports whether the size changed.
func (b *DepthColorBuffer) Resize(width, height int) bool {
	if b.Width == width && b.Height == height && len(b.Color) == width*height {
		return false
	}
	n := width * height
	b.Width, b.Height = width, height
	if cap(b.Color) >= n {
		b.Color = b.Color[:n]
		b.Depth = b.Depth[:n]
	} else {
		b.Color = make([]uint32, n)
		b.Depth = make([]float64, n)
	}
	return true
}

// Clear fills colors with the background and depths with +Inf.
func (b *DepthColorBuffer) Clear() {
	n := len(b.Color)
	if n == 0 {
		return
	}
	// Copy-doubling.
	b.Color[0] = scene.DefaultBackgroundColor
	b.Depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(b.Color[i:], b.Color[:i])
		copy(b.Depth[i:], b.Depth[:i])
	}
}

func (b *DepthColorBuffer) depthTest(i int, depth float64) bool {
	return depth < b.Depth[i]
}

func (b *DepthColorBuffer) write(i int, depth float64, color uint32) bool {
	if depth >= b.Depth[i] {
		return false
	}
	b.Color[i] = color
	b.Depth[i] = depth
	return true
}

// stamp writes a vertex marker at depth 0, ahead of every triangle.
func (b *DepthColorBuffer) stamp(i int, color uint32) {
	b.Color[i] = color
	b.Depth[i] = 0
}

func (b *DepthColorBuffer) orColor(i int, color uint32) {
	b.Color[i] |= color
}

func (b *DepthColorBuffer) colorAt(i int) uint32 {
	return b.Color[i]
}

func (b *DepthColorBuffer) size() (int, int) {
	return b.Width, b.Height
}

// privateBuffer is a per-worker buffer merged by depth at the end of a
// frame. Vertex markers keep depth 0 so they survive the merge.
type privateBuffer struct {
	DepthColorBuffer
}
