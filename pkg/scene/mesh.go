package scene

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// Mesh is a flat list of triangles placed in the world by a scale, a
// rotation and a translation.
type Mesh struct {
	Name      string
	Triangles []Triangle
	Pos       math3d.Vec3
	Rot       math3d.Rotation
	Scale     float64
}

// NewMesh creates a mesh at the origin with unit scale.
func NewMesh(name string, triangles ...Triangle) Mesh {
	return Mesh{
		Name:      name,
		Triangles: triangles,
		Rot:       math3d.IdentityRotation(),
		Scale:     1,
	}
}

// WithTranslation returns a copy of m moved to pos.
func (m Mesh) WithTranslation(pos math3d.Vec3) Mesh {
	m.Pos = pos
	return m
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// WorldTriangles appends the world-space triangles of m to dst.
func (m *Mesh) WorldTriangles(dst []Triangle) []Triangle {
	for _, t := range m.Triangles {
		dst = append(dst, t.ScaleRotMove(m.Scale, m.Rot, m.Pos))
	}
	return dst
}

// MeshAsset is indexed geometry shared by any number of nodes.
type MeshAsset struct {
	Name     string
	Vertices []math3d.Vec3
	Indices  []int
	Surfaces []Surface
}

// Surface is a run of Count indices starting at Start, drawn with one
// material.
type Surface struct {
	Start   int
	Count   int
	Texture Texture
	Bounds  Bounds
}

// NewSurface creates a surface and computes its bounds from the vertices
// its indices reference.
func NewSurface(vertices []math3d.Vec3, indices []int, start, count int, tex Texture) Surface {
	return Surface{
		Start:   start,
		Count:   count,
		Texture: tex,
		Bounds:  NewBounds(vertices, indices[start:start+count]),
	}
}

// TriangleCount returns the number of triangles across all surfaces.
func (a *MeshAsset) TriangleCount() int {
	n := 0
	for _, s := range a.Surfaces {
		n += s.Count / 3
	}
	return n
}

// Bounds is an axis-aligned box stored as its center and half-size.
type Bounds struct {
	Origin  math3d.Vec3
	Extents math3d.Vec3
}

// NewBounds computes the box around the referenced vertices.
func NewBounds(vertices []math3d.Vec3, indices []int) Bounds {
	if len(indices) == 0 {
		return Bounds{}
	}
	lo := vertices[indices[0]]
	hi := lo
	for _, i := range indices[1:] {
		lo = lo.Min(vertices[i])
		hi = hi.Max(vertices[i])
	}
	return Bounds{
		Origin:  lo.Add(hi).Scale(0.5),
		Extents: hi.Sub(lo).Scale(0.5),
	}
}

var boxCorners = [8]math3d.Vec3{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// IsVisible reports whether the box, placed by transform, overlaps the
// clip volume of viewProj. A box with any corner at or behind the eye
// plane is reported visible.
func (b Bounds) IsVisible(viewProj, transform math3d.Mat4) bool {
	m := viewProj.Mul(transform)

	lo := math3d.V3(1.5, 1.5, 1.5)
	hi := math3d.V3(-1.5, -1.5, -1.5)
	for _, c := range boxCorners {
		v := m.MulVec4(math3d.Point(b.Origin.Add(c.Mul(b.Extents))))
		if v.W <= 0 {
			return true
		}
		p := v.PerspectiveDivide()
		lo = lo.Min(p)
		hi = hi.Max(p)
	}

	return lo.Z <= 1 && hi.Z >= 0 &&
		lo.X <= 1 && hi.X >= -1 &&
		lo.Y <= 1 && hi.Y >= -1
}
