package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// originalEngine rasterizes every triangle in one straight function on
// the calling goroutine. It is the reference the other engines are
// checked against.
type originalEngine struct {
	buf  DepthColorBuffer
	tris []scene.Triangle
}

func (e *originalEngine) Type() EngineType { return EngineOriginal }

func (e *originalEngine) Close() error { return nil }

func (e *originalEngine) Render(s Settings, world *scene.World, target *Framebuffer, stats *Stats) {
	width, height, os, ok := internalSize(s, target)
	if !ok {
		return
	}

	ph := startPhases()
	if e.buf.Resize(width, height) {
		logResize(EngineOriginal, width, height)
	}
	e.buf.Clear()
	ph.clearDone()

	ratio := float64(width) / float64(height)
	e.tris = world.Triangles(e.tris[:0], ratio, s.CullMeshes)

	var c counters
	for i := range e.tris {
		drawTriangle(&e.buf, s, world, &e.tris[i], &c)
	}
	stats.add(&c)
	ph.rasterDone()

	finishFrame(s, &e.buf, target, os)
	ph.report(stats)
}

// drawTriangle projects, culls, lights and fills one triangle.
func drawTriangle(buf *DepthColorBuffer, s Settings, world *scene.World, t *scene.Triangle, c *counters) {
	c.trianglesTotal++
	cam := &world.Camera
	width, height := buf.Width, buf.Height

	r := ProjectTriangle(*t, cam, width, height)

	bb := BoundingBox(r, width, height)
	if bb.MinX == bb.MaxX || bb.MinY == bb.MaxY || bb.MaxZ <= cam.ZNear {
		return
	}
	c.trianglesSight++

	// A face turned toward the sun gets a positive dot product.
	normal := t.P1.Sub(t.P0).Cross(t.P0.Sub(t.P2)).Normalize()
	light := min(max(world.SunDirection.Dot(normal), MinimalAmbientLight), 1)

	p01 := r.P1.Sub(r.P0)
	p20 := r.P0.Sub(r.P2)
	if s.BackFaceCulling && p01.X*p20.Y-p01.Y*p20.X <= 0 {
		return
	}
	c.trianglesFacing++

	p12 := r.P2.Sub(r.P1)
	area := edgeFunction(p20, p01)
	tex := Shade(r.Texture, light)

	drawn := false
	for x := bb.MinX; x <= bb.MaxX; x++ {
		for y := bb.MinY; y <= bb.MaxY; y++ {
			c.pixelsTested++

			pix := math3d.Vec3{X: float64(x), Y: float64(y)}
			e01 := edgeFunction(p01, pix.Sub(r.P0))
			e12 := edgeFunction(p12, pix.Sub(r.P1))
			e20 := edgeFunction(p20, pix.Sub(r.P2))
			if e01 < 0 || e12 < 0 || e20 < 0 {
				continue
			}
			c.pixelsIn++

			a12 := e12 / area
			a20 := e20 / area
			depth := interpolateDepth(r.P0.Z, r.P1.Z, r.P2.Z, a12, a20)
			if !(depth > cam.ZNear) {
				continue
			}
			c.pixelsFront++

			i := x + y*width
			if depth >= buf.Depth[i] {
				continue
			}
			drawn = true
			c.pixelsWritten++

			color := tex.Colors[0]
			if !tex.Flat() {
				color = vertexColor(&r, a12, a20, depth, light)
			}
			buf.Color[i] = color
			buf.Depth[i] = depth
		}
	}
	if drawn {
		c.trianglesDrawn++
	}

	if s.ShowVertices {
		stampVertices(buf, r, markerColor(r.Texture), width, height)
	}
}
