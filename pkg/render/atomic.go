package render

import (
	"sync/atomic"

	"github.com/taigrr/softrast/pkg/scene"
)

// DepthPrecision is the fixed-point scale of depths in an AtomicBuffer:
// 11 fractional bits, so depths closer than 1/2048 apart compare equal.
const DepthPrecision = 2048

// maxQuantizedDepth keeps real depths strictly below the empty sentinel.
const maxQuantizedDepth = 0xffff_fffe

// emptyWord is the packed value of a cleared pixel: infinitely far, with
// the background color.
const emptyWord = uint64(0xffff_ffff)<<32 | uint64(scene.DefaultBackgroundColor)

// packDepthColor packs a quantized depth in the high 32 bits and an ARGB
// color in the low 32 bits. Comparing packed words as unsigned integers
// compares depths first.
func packDepthColor(depth float64, color uint32) uint64 {
	return quantizeDepth(depth)<<32 | uint64(color)
}

func quantizeDepth(depth float64) uint64 {
	q := depth * DepthPrecision
	switch {
	case !(q > 0):
		return 0
	case q >= maxQuantizedDepth:
		return maxQuantizedDepth
	default:
		return uint64(q)
	}
}

func unpackColor(w uint64) uint32 {
	return uint32(w)
}

func unpackDepth(w uint64) float64 {
	return float64(w>>32) / DepthPrecision
}

// AtomicBuffer stores depth and color of each pixel in one 64-bit word so
// concurrent writers composite with an atomic unsigned minimum.
type AtomicBuffer struct {
	Width  int
	Height int
	words  []atomic.Uint64
}

// NewAtomicBuffer creates a cleared buffer.
func NewAtomicBuffer(width, height int) *AtomicBuffer {
	b := &AtomicBuffer{}
	b.Resize(width, height)
	b.Clear()
	return b
}

// Resize changes the dimensions. Contents are undefined until Clear. It
// must not run concurrently with writers.
func (b *AtomicBuffer) Resize(width, height int) bool {
	if b.Width == width && b.Height == height && len(b.words) == width*height {
		return false
	}
	b.Width, b.Height = width, height
	b.words = make([]atomic.Uint64, width*height)
	return true
}

// Clear resets every pixel to the empty sentinel, one band of rows per
// goroutine.
func (b *AtomicBuffer) Clear() {
	w := b.Width
	parallelRows(b.Height, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			b.words[i].Store(emptyWord)
		}
	})
}

// WriteIfNearer stores color at pixel i if depth is nearer than the
// current one. It reports whether the word changed.
func (b *AtomicBuffer) WriteIfNearer(i int, depth float64, color uint32) bool {
	w := packDepthColor(depth, color)
	p := &b.words[i]
	for {
		cur := p.Load()
		if w >= cur {
			return false
		}
		if p.CompareAndSwap(cur, w) {
			return true
		}
	}
}

// Store overwrites pixel i with color at depth 0.
func (b *AtomicBuffer) Store(i int, color uint32) {
	b.words[i].Store(uint64(color))
}

// Color returns the color of pixel i.
func (b *AtomicBuffer) Color(i int) uint32 {
	return unpackColor(b.words[i].Load())
}

// Depth returns the quantized depth of pixel i.
func (b *AtomicBuffer) Depth(i int) float64 {
	return unpackDepth(b.words[i].Load())
}

func (b *AtomicBuffer) depthTest(i int, depth float64) bool {
	return quantizeDepth(depth) <= b.words[i].Load()>>32
}

func (b *AtomicBuffer) write(i int, depth float64, color uint32) bool {
	return b.WriteIfNearer(i, depth, color)
}

func (b *AtomicBuffer) stamp(i int, color uint32) {
	b.Store(i, color)
}

func (b *AtomicBuffer) orColor(i int, color uint32) {
	b.words[i].Or(uint64(color))
}

func (b *AtomicBuffer) colorAt(i int) uint32 {
	return b.Color(i)
}

func (b *AtomicBuffer) size() (int, int) {
	return b.Width, b.Height
}
