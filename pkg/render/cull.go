package render

import (
	"fmt"

	"github.com/taigrr/softrast/pkg/scene"
)

// Rect is an inclusive pixel rectangle plus the farthest depth of the
// triangle it bounds.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
	MaxZ       float64
}

// BoundingBox returns the raster-space box of t, truncated toward zero and
// clamped into the width x height target. Negative and NaN coordinates
// map to 0.
func BoundingBox(t scene.Triangle, width, height int) Rect {
	return Rect{
		MinX: clampPixel(min(t.P0.X, t.P1.X, t.P2.X), width-1),
		MaxX: clampPixel(max(t.P0.X, t.P1.X, t.P2.X), width-1),
		MinY: clampPixel(min(t.P0.Y, t.P1.Y, t.P2.Y), height-1),
		MaxY: clampPixel(max(t.P0.Y, t.P1.Y, t.P2.Y), height-1),
		MaxZ: max(t.P0.Z, t.P1.Z, t.P2.Z),
	}
}

func clampPixel(f float64, last int) int {
	switch {
	case !(f > 0):
		return 0
	case f >= float64(last):
		return last
	default:
		return int(f)
	}
}

// Culled reports whether the box is empty along an axis or entirely at or
// behind the near plane.
func (r Rect) Culled(zNear float64) bool {
	return r.MinX == r.MaxX || r.MinY == r.MaxY || r.MaxZ <= zNear
}

// Contains reports whether pixel (x, y) is inside the box.
func (r Rect) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d]-[%d,%d] z<=%.3f", r.MinX, r.MinY, r.MaxX, r.MaxY, r.MaxZ)
}

// CrossZ is the z component of (p1-p0) x (p0-p2) for a raster-space
// triangle. Front faces are positive.
func CrossZ(t scene.Triangle) float64 {
	p01 := t.P1.Sub(t.P0)
	p20 := t.P0.Sub(t.P2)
	return p01.X*p20.Y - p01.Y*p20.X
}

// FacesCamera reports whether a raster-space triangle is a front face.
// Degenerate triangles are not.
func FacesCamera(t scene.Triangle) bool {
	return CrossZ(t) > 0
}
