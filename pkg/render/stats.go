package render

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Stats counts triangles and pixels at each pipeline stage. Counters are
// atomic so parallel engines can share one Stats. A nil *Stats is valid
// and counts nothing.
type Stats struct {
	TrianglesTotal  atomic.Int64
	TrianglesSight  atomic.Int64
	TrianglesFacing atomic.Int64
	TrianglesDrawn  atomic.Int64
	PixelsTested    atomic.Int64
	PixelsIn        atomic.Int64
	PixelsFront     atomic.Int64
	PixelsWritten   atomic.Int64

	// Phase durations of the last frame, set by the goroutine calling
	// Render.
	ClearTime   time.Duration
	RasterTime  time.Duration
	ResolveTime time.Duration
}

// counters is the unsynchronized per-task tally flushed into Stats.
type counters struct {
	trianglesTotal  int64
	trianglesSight  int64
	trianglesFacing int64
	trianglesDrawn  int64
	pixelsTested    int64
	pixelsIn        int64
	pixelsFront     int64
	pixelsWritten   int64
}

func (s *Stats) add(c *counters) {
	if s == nil {
		return
	}
	s.TrianglesTotal.Add(c.trianglesTotal)
	s.TrianglesSight.Add(c.trianglesSight)
	s.TrianglesFacing.Add(c.trianglesFacing)
	s.TrianglesDrawn.Add(c.trianglesDrawn)
	s.PixelsTested.Add(c.pixelsTested)
	s.PixelsIn.Add(c.pixelsIn)
	s.PixelsFront.Add(c.pixelsFront)
	s.PixelsWritten.Add(c.pixelsWritten)
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	if s == nil {
		return
	}
	for _, c := range s.all() {
		c.v.Store(0)
	}
	s.ClearTime, s.RasterTime, s.ResolveTime = 0, 0, 0
}

func (s *Stats) setTimes(clearing, raster, resolve time.Duration) {
	if s == nil {
		return
	}
	s.ClearTime, s.RasterTime, s.ResolveTime = clearing, raster, resolve
}

type namedCounter struct {
	name string
	v    *atomic.Int64
}

func (s *Stats) all() []namedCounter {
	return []namedCounter{
		{"triangles total", &s.TrianglesTotal},
		{"triangles sight", &s.TrianglesSight},
		{"triangles facing", &s.TrianglesFacing},
		{"triangles drawn", &s.TrianglesDrawn},
		{"pixels tested", &s.PixelsTested},
		{"pixels in", &s.PixelsIn},
		{"pixels front", &s.PixelsFront},
		{"pixels written", &s.PixelsWritten},
	}
}

// String formats one counter per line.
func (s *Stats) String() string {
	if s == nil {
		return "stats disabled"
	}
	var b strings.Builder
	for i, c := range s.all() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %d", c.name, c.v.Load())
	}
	return b.String()
}
