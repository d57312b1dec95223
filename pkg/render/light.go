package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// MinimalAmbientLight keeps faces turned away from the sun visible.
const MinimalAmbientLight = 0.2

// Light returns the sun light received by a world-space triangle, in
// [MinimalAmbientLight, 1]. sun must be normalized.
func Light(t scene.Triangle, sun math3d.Vec3) float64 {
	n := t.P1.Sub(t.P0).Cross(t.P0.Sub(t.P2)).Normalize()
	return min(max(sun.Dot(n), MinimalAmbientLight), 1)
}

// Shade applies light to a texture. Flat colors are lit once, all four
// channels included. Vertex colors are returned unchanged: their light is
// applied per pixel.
func Shade(tex scene.Texture, light float64) scene.Texture {
	tex = tex.Collapse()
	if tex.Flat() {
		return scene.Color(math3d.ColorFromARGB(tex.Colors[0]).Scale(light).ARGB())
	}
	return tex
}

// markerColor is the color of the crosses drawn on vertices: the flat
// color, or the plain average of the three vertex colors. Light is not
// applied.
func markerColor(tex scene.Texture) uint32 {
	if tex.Flat() {
		return tex.Colors[0]
	}
	return math3d.ColorFromARGB(tex.Colors[0]).
		Add(math3d.ColorFromARGB(tex.Colors[1])).
		Add(math3d.ColorFromARGB(tex.Colors[2])).
		Div(3).
		ARGB()
}
