package render

import (
	"math"
	"runtime"
	"sync/atomic"

	"github.com/taigrr/softrast/pkg/scene"
)

// LockedBuffer keeps colors and depths in separate plain slices, each
// pixel guarded by its own spin lock.
type LockedBuffer struct {
	Width  int
	Height int
	colors []uint32
	depths []float64
	locks  []atomic.Bool
}

// NewLockedBuffer creates a cleared buffer.
func NewLockedBuffer(width, height int) *LockedBuffer {
	b := &LockedBuffer{}
	b.Resize(width, height)
	b.Clear()
	return b
}

// Resize changes the dimensions. Contents are undefined until Clear. It
// must not run concurrently with writers.
func (b *LockedBuffer) Resize(width, height int) bool {
	if b.Width == width && b.Height == height && len(b.colors) == width*height {
		return false
	}
	n := width * height
	b.Width, b.Height = width, height
	b.colors = make([]uint32, n)
	b.depths = make([]float64, n)
	b.locks = make([]atomic.Bool, n)
	return true
}

// Clear resets colors to the background and depths to +Inf.
func (b *LockedBuffer) Clear() {
	w := b.Width
	inf := math.Inf(1)
	parallelRows(b.Height, func(y0, y1 int) {
		for i := y0 * w; i < y1*w; i++ {
			b.colors[i] = scene.DefaultBackgroundColor
			b.depths[i] = inf
		}
	})
}

func (b *LockedBuffer) lock(i int) {
	for !b.locks[i].CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (b *LockedBuffer) unlock(i int) {
	b.locks[i].Store(false)
}

// WriteIfNearer stores color at pixel i if depth is strictly nearer than
// the current one. It reports whether it wrote.
func (b *LockedBuffer) WriteIfNearer(i int, depth float64, color uint32) bool {
	b.lock(i)
	defer b.unlock(i)
	if depth >= b.depths[i] {
		return false
	}
	b.colors[i] = color
	b.depths[i] = depth
	return true
}

// Color returns the color of pixel i. It takes the pixel lock.
func (b *LockedBuffer) Color(i int) uint32 {
	b.lock(i)
	defer b.unlock(i)
	return b.colors[i]
}

// Depth returns the depth of pixel i. It takes the pixel lock.
func (b *LockedBuffer) Depth(i int) float64 {
	b.lock(i)
	defer b.unlock(i)
	return b.depths[i]
}

// The depth is only readable under the lock, so the early test always
// passes and WriteIfNearer decides.
func (b *LockedBuffer) depthTest(int, float64) bool {
	return true
}

func (b *LockedBuffer) write(i int, depth float64, color uint32) bool {
	return b.WriteIfNearer(i, depth, color)
}

func (b *LockedBuffer) stamp(i int, color uint32) {
	b.lock(i)
	b.colors[i] = color
	b.depths[i] = 0
	b.unlock(i)
}

func (b *LockedBuffer) orColor(i int, color uint32) {
	b.lock(i)
	b.colors[i] |= color
	b.unlock(i)
}

func (b *LockedBuffer) colorAt(i int) uint32 {
	return b.Color(i)
}

func (b *LockedBuffer) size() (int, int) {
	return b.Width, b.Height
}
