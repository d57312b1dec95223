package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// pixelTarget is a buffer the fill loop composites into.
type pixelTarget interface {
	// depthTest is an early check run before the color is computed. It may
	// pass pixels that write then rejects, never the reverse.
	depthTest(i int, depth float64) bool
	// write stores color and depth at i if depth is nearer.
	write(i int, depth float64, color uint32) bool
	// stamp overwrites the color at i with depth 0, so no triangle covers it.
	stamp(i int, color uint32)
}

// edgeFunction is the signed area of the parallelogram (ab, ap). It is
// positive when p is on the right of ab.
func edgeFunction(ab, ap math3d.Vec3) float64 {
	return ap.X*ab.Y - ap.Y*ab.X
}

// interpolateDepth returns the perspective-correct depth at barycentric
// weights a12 (of z0) and a20 (of z1). The inverse of the depth is affine
// in raster space, the depth itself is not.
func interpolateDepth(z0, z1, z2, a12, a20 float64) float64 {
	z2Inv := 1 / z2
	return 1 / (z2Inv + (1/z0-z2Inv)*a12 + (1/z1-z2Inv)*a20)
}

// vertexColor interpolates the three vertex colors of a raster triangle
// with perspective correction, then applies light.
func vertexColor(t *scene.Triangle, a12, a20, depth, light float64) uint32 {
	c2 := math3d.ColorFromARGB(t.Texture.Colors[2]).Div(t.P2.Z)
	c0 := math3d.ColorFromARGB(t.Texture.Colors[0]).Div(t.P0.Z).Sub(c2).Scale(a12)
	c1 := math3d.ColorFromARGB(t.Texture.Colors[1]).Div(t.P1.Z).Sub(c2).Scale(a20)
	return c2.Add(c0).Add(c1).Scale(depth * light).ARGB()
}

// fill rasterizes t into dst. Pixels are visited column by column over the
// inclusive bounding box.
func fill[T pixelTarget](dst T, t *rasterTriangle, f *frame, c *counters) {
	p0, p1, p2 := t.P0, t.P1, t.P2
	p01 := p1.Sub(p0)
	p12 := p2.Sub(p1)
	p20 := p0.Sub(p2)
	area := edgeFunction(p20, p01)

	zNear := f.cam.ZNear
	flat := t.Texture.Flat()
	drawn := false

	for x := t.box.MinX; x <= t.box.MaxX; x++ {
		for y := t.box.MinY; y <= t.box.MaxY; y++ {
			c.pixelsTested++

			pix := math3d.Vec3{X: float64(x), Y: float64(y)}
			e01 := edgeFunction(p01, pix.Sub(p0))
			e12 := edgeFunction(p12, pix.Sub(p1))
			e20 := edgeFunction(p20, pix.Sub(p2))
			if e01 < 0 || e12 < 0 || e20 < 0 {
				continue
			}
			c.pixelsIn++

			a12 := e12 / area
			a20 := e20 / area
			depth := interpolateDepth(p0.Z, p1.Z, p2.Z, a12, a20)
			// Also rejects NaN from degenerate triangles.
			if !(depth > zNear) {
				continue
			}
			c.pixelsFront++

			i := x + y*f.width
			if !dst.depthTest(i, depth) {
				continue
			}

			color := t.Texture.Colors[0]
			if !flat {
				color = vertexColor(&t.Triangle, a12, a20, depth, t.light)
			}
			if dst.write(i, depth, color) {
				c.pixelsWritten++
				drawn = true
			}
		}
	}

	if drawn {
		c.trianglesDrawn++
	}
	if f.showVertices {
		stampVertices(dst, t.Triangle, markerColor(t.material), f.width, f.height)
	}
}

// stampVertices draws a plus sign on each vertex lying at least one pixel
// inside the buffer.
func stampVertices[T interface{ stamp(int, uint32) }](dst T, t scene.Triangle, color uint32, width, height int) {
	for _, v := range [3]math3d.Vec3{t.P0, t.P1, t.P2} {
		if !(v.X >= 1 && v.X < float64(width-1) && v.Y >= 1 && v.Y < float64(height-1)) {
			continue
		}
		i := int(v.X) + int(v.Y)*width
		dst.stamp(i, color)
		dst.stamp(i-1, color)
		dst.stamp(i+1, color)
		dst.stamp(i-width, color)
		dst.stamp(i+width, color)
	}
}
