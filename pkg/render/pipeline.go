package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// frame holds the per-frame read-only inputs shared by every triangle.
type frame struct {
	cam             *scene.Camera
	sun             math3d.Vec3
	width, height   int
	backFaceCulling bool
	showVertices    bool
}

func newFrame(s Settings, w *scene.World, width, height int) *frame {
	return &frame{
		cam:             &w.Camera,
		sun:             w.SunDirection,
		width:           width,
		height:          height,
		backFaceCulling: s.BackFaceCulling,
		showVertices:    s.ShowVertices,
	}
}

func (f *frame) ratio() float64 {
	return float64(f.width) / float64(f.height)
}

// rasterTriangle is a projected, culled and lit triangle ready to fill.
type rasterTriangle struct {
	scene.Triangle               // raster space, z is camera depth
	material       scene.Texture // as given, for vertex markers
	light          float64
	box            Rect
}

// project is the first stage: world to raster space.
func (f *frame) project(t scene.Triangle) scene.Triangle {
	return ProjectTriangle(t, f.cam, f.width, f.height)
}

// visible is the culling stage. It counts the triangles that survive each
// test.
func (f *frame) visible(r scene.Triangle, c *counters) (Rect, bool) {
	box := BoundingBox(r, f.width, f.height)
	if box.Culled(f.cam.ZNear) {
		return box, false
	}
	c.trianglesSight++

	if f.backFaceCulling && !FacesCamera(r) {
		return box, false
	}
	c.trianglesFacing++
	return box, true
}

// lit is the lighting stage. world is the triangle before projection.
func (f *frame) lit(world, r scene.Triangle, box Rect) rasterTriangle {
	light := Light(world, f.sun)
	out := rasterTriangle{
		Triangle: r,
		material: r.Texture,
		light:    light,
		box:      box,
	}
	out.Texture = Shade(r.Texture, light)
	return out
}

// prepare runs every stage before the fill on one world triangle.
func (f *frame) prepare(t scene.Triangle, c *counters) (rasterTriangle, bool) {
	c.trianglesTotal++
	r := f.project(t)
	box, ok := f.visible(r, c)
	if !ok {
		return rasterTriangle{}, false
	}
	return f.lit(t, r, box), true
}
