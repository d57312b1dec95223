package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// behindCameraDivisor replaces -z for points at or behind the eye plane.
// The result is defined but not geometrically correct; proper near plane
// clipping would be needed to draw such triangles right.
const behindCameraDivisor = 0.1

// WorldToRaster projects a world point into raster space for a width x
// height target: x and y in pixels from the top-left corner, z the
// camera-space depth (positive in front of the camera).
func WorldToRaster(p math3d.Vec3, cam *scene.Camera, width, height int) math3d.Vec3 {
	c := cam.WorldToSight(p)

	div := behindCameraDivisor
	if c.Z < -0.001 {
		div = -c.Z
	}
	x := c.X * cam.ZNear / div / cam.CanvasSide
	y := c.Y * cam.ZNear / div / cam.CanvasSide

	w, h := float64(width), float64(height)
	if ratio := w / h; width > height {
		x /= ratio
	} else {
		y *= ratio
	}

	return math3d.Vec3{
		X: (x + 1) / 2 * w,
		Y: (1 - y) / 2 * h,
		Z: -c.Z,
	}
}

// ProjectTriangle projects the three points of t. The texture is kept.
func ProjectTriangle(t scene.Triangle, cam *scene.Camera, width, height int) scene.Triangle {
	return scene.Triangle{
		P0:      WorldToRaster(t.P0, cam, width, height),
		P1:      WorldToRaster(t.P1, cam, width, height),
		P2:      WorldToRaster(t.P2, cam, width, height),
		Texture: t.Texture,
	}
}
