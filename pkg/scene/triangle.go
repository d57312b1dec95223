// Package scene describes what softrast draws: triangles, meshes, the node
// graph, the camera and the world that ties them together.
package scene

import (
	"fmt"

	"github.com/taigrr/softrast/pkg/math3d"
)

// DefaultColor is the flat color given to untextured geometry.
const DefaultColor uint32 = 0xff999999

// TextureKind tells which fields of a Texture are meaningful.
type TextureKind uint8

const (
	// TextureColor is a single ARGB color for the whole triangle.
	TextureColor TextureKind = iota
	// TextureVertexColor is one ARGB color per vertex.
	TextureVertexColor
)

// Texture is the material of a triangle. Colors are ARGB8888.
type Texture struct {
	Kind   TextureKind
	Colors [3]uint32
}

// Color returns a flat texture.
func Color(c uint32) Texture {
	return Texture{Kind: TextureColor, Colors: [3]uint32{c, c, c}}
}

// VertexColor returns a per-vertex texture.
func VertexColor(c0, c1, c2 uint32) Texture {
	return Texture{Kind: TextureVertexColor, Colors: [3]uint32{c0, c1, c2}}
}

// Flat reports whether the texture is a single color.
func (t Texture) Flat() bool {
	return t.Kind == TextureColor
}

// Collapse turns a VertexColor whose three colors are equal into a Color.
func (t Texture) Collapse() Texture {
	if t.Kind == TextureVertexColor && t.Colors[0] == t.Colors[1] && t.Colors[1] == t.Colors[2] {
		return Color(t.Colors[0])
	}
	return t
}

func (t Texture) String() string {
	if t.Flat() {
		return fmt.Sprintf("Color(%#08x)", t.Colors[0])
	}
	return fmt.Sprintf("VertexColor(%#08x, %#08x, %#08x)", t.Colors[0], t.Colors[1], t.Colors[2])
}

// Triangle is three points plus a material. Pipeline stages never mutate a
// triangle in place; each stage produces a new value.
type Triangle struct {
	P0, P1, P2 math3d.Vec3
	Texture    Texture
}

// NewTriangle creates a triangle.
func NewTriangle(p0, p1, p2 math3d.Vec3, tex Texture) Triangle {
	return Triangle{P0: p0, P1: p1, P2: p2, Texture: tex}
}

// DefaultTriangle is the red/green/blue test triangle.
func DefaultTriangle() Triangle {
	return Triangle{
		P0:      math3d.V3(0, 1, -2),
		P1:      math3d.V3(0, 0, 0),
		P2:      math3d.V3(0, 0, -4),
		Texture: VertexColor(0xffff0000, 0xff00ff00, 0xff0000ff),
	}
}

// MinZ returns the smallest z of the three points.
func (t Triangle) MinZ() float64 {
	return min(t.P0.Z, t.P1.Z, t.P2.Z)
}

// ScaleRotMove scales, rotates and then translates every point.
func (t Triangle) ScaleRotMove(scale float64, rot math3d.Rotation, move math3d.Vec3) Triangle {
	f := func(p math3d.Vec3) math3d.Vec3 {
		return p.Scale(scale).MulRot(rot).Add(move)
	}
	return Triangle{P0: f(t.P0), P1: f(t.P1), P2: f(t.P2), Texture: t.Texture}
}

// Transform applies a 4x4 matrix to every point.
func (t Triangle) Transform(m math3d.Mat4) Triangle {
	return Triangle{
		P0:      m.MulPoint(t.P0),
		P1:      m.MulPoint(t.P1),
		P2:      m.MulPoint(t.P2),
		Texture: t.Texture,
	}
}
