package scene

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/softrast/pkg/math3d"
)

// BasePyramid is a small colored pyramid lying on its side.
func BasePyramid() Mesh {
	v := math3d.V3
	red, blue, green := Color(0xffff0000), Color(0xff0000ff), Color(0xff00ff00)
	yellow, cyan, magenta := Color(0xffffff00), Color(0xff00ffff), Color(0xffff00ff)

	m := NewMesh("pyramid",
		NewTriangle(v(-1, -1, 0), v(0, -1, 0), v(0, 0, 9), red),
		NewTriangle(v(0, -1, 0), v(1, -1, 0), v(0, 0, 9), red),
		NewTriangle(v(-1, 1, 0), v(0, 0, 9), v(0, 1, 0), blue),
		NewTriangle(v(0, 0, 9), v(1, 1, 0), v(0, 1, 0), blue),
		NewTriangle(v(-1, -1, 0), v(0, 0, 9), v(-1, 0, 0), green),
		NewTriangle(v(-1, 1, 0), v(-1, 0, 0), v(0, 0, 9), green),
		NewTriangle(v(1, 0, 0), v(0, 0, 9), v(1, -1, 0), yellow),
		NewTriangle(v(0, 0, 9), v(1, 0, 0), v(1, 1, 0), yellow),
		NewTriangle(v(-2, -0.5, 0), v(0, -0.5, 4), v(-2, 0.5, 0), cyan),
		NewTriangle(v(0, -0.5, 4), v(0, 0.5, 4), v(-2, 0.5, 0), cyan),
		NewTriangle(v(-0.3, -0.3, 7), v(0.3, -0.3, 7), v(-0.3, 0.3, 7), magenta),
		NewTriangle(v(0.3, -0.3, 7), v(0.3, 0.3, 7), v(-0.3, 0.3, 7), magenta),
	)
	m.Pos = v(4, 1, -19)
	m.Rot = math3d.FromAngles(0, 0, -math.Pi/3)
	m.Scale = 0.7
	return m
}

// TrianglesPlane is a 20x20 grid of unit triangles in the y=0 plane, each
// with a random color masked by colorMask.
func TrianglesPlane(colorMask uint32, rng *rand.Rand) []Triangle {
	const r = 10
	tris := make([]Triangle, 0, 4*r*r)
	for x := -r; x < r; x++ {
		for z := -r; z < r; z++ {
			p := math3d.V3(float64(x), 0, float64(z))
			tris = append(tris, NewTriangle(
				p,
				p.Add(math3d.V3(1, 0, 1)),
				p.Add(math3d.V3(1, 0, 0)),
				Color(rng.Uint32()&colorMask),
			))
		}
	}
	return tris
}

// Floor is a large plane below the origin.
func Floor(rng *rand.Rand) Mesh {
	m := NewMesh("floor", TrianglesPlane(0xff00ffff, rng)...)
	m.Pos = math3d.V3(0, -10, 0)
	m.Scale = 5
	return m
}

// BackWall closes the scene behind the pyramid.
func BackWall(rng *rand.Rand) Mesh {
	m := NewMesh("back wall", TrianglesPlane(0xffffff00, rng)...)
	m.Pos = math3d.V3(0, 0, -30)
	m.Rot = math3d.FromAngles(math.Pi/2, 0, 0)
	return m
}

// LeftWall stands at x = -10.
func LeftWall(rng *rand.Rand) Mesh {
	m := NewMesh("left wall", TrianglesPlane(0xffff00ff, rng)...)
	m.Pos = math3d.V3(-10, 0, 0)
	m.Rot = math3d.FromAngles(0, 0, -math.Pi/2)
	return m
}

// RightWall stands at x = 10.
func RightWall(rng *rand.Rand) Mesh {
	m := NewMesh("right wall", TrianglesPlane(0xff00ffff, rng)...)
	m.Pos = math3d.V3(10, 0, 0)
	m.Rot = math3d.FromAngles(0, 0, math.Pi/2)
	return m
}

// DemoWorld assembles the default triangle, the pyramid, the floor and the
// walls.
func DemoWorld(rng *rand.Rand) *World {
	w := NewWorld()
	w.Meshes = []Mesh{
		NewMesh("triangle", DefaultTriangle()).WithTranslation(math3d.V3(0, 0, -10)),
		BasePyramid(),
		Floor(rng),
		BackWall(rng),
		LeftWall(rng),
		RightWall(rng),
	}
	return w
}
