package scene

import (
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

func quadAsset(tex Texture) *MeshAsset {
	a := &MeshAsset{
		Name: "quad",
		Vertices: []math3d.Vec3{
			math3d.V3(-1, -1, 0),
			math3d.V3(1, -1, 0),
			math3d.V3(1, 1, 0),
			math3d.V3(-1, 1, 0),
		},
		Indices: []int{0, 2, 1, 0, 3, 2},
	}
	a.Surfaces = []Surface{NewSurface(a.Vertices, a.Indices, 0, len(a.Indices), tex)}
	return a
}

func TestWorldTrianglesIncludesNodes(t *testing.T) {
	w := NewWorld()
	w.Meshes = []Mesh{NewMesh("tri", DefaultTriangle())}
	w.Scene = NewScene()

	parent := w.Scene.AddNode("parent", math3d.Translate(math3d.V3(0, 0, -5)), nil)
	child := w.Scene.AddNode("child", math3d.Translate(math3d.V3(1, 1, 0)), quadAsset(Color(0xff00ff00)))
	if err := w.Scene.Attach(parent, child); err != nil {
		t.Fatal(err)
	}

	if got := w.TriangleCount(); got != 3 {
		t.Fatalf("TriangleCount() = %d, want 3", got)
	}

	tris := w.Triangles(nil, 1, false)
	if len(tris) != 3 {
		t.Fatalf("got %d triangles, want 3", len(tris))
	}
	// Flat meshes come first.
	if tris[0].Texture.Flat() {
		t.Error("first triangle should be the vertex colored default triangle")
	}
	// Triangles reads through a dirty scene, so world transforms apply.
	if got, want := tris[1].P0, math3d.V3(0, 0, -5); got != want {
		t.Errorf("node triangle P0 = %v, want %v", got, want)
	}
	if tris[2].Texture != Color(0xff00ff00) {
		t.Errorf("node triangle texture = %v", tris[2].Texture)
	}
}

func TestWorldTrianglesCullsHiddenNodes(t *testing.T) {
	w := NewWorld()
	w.Scene = NewScene()
	w.Scene.AddNode("visible", math3d.Translate(math3d.V3(1, 1, 0)), quadAsset(Color(0xffff0000)))
	w.Scene.AddNode("hidden", math3d.Translate(math3d.V3(500, 1, 0)), quadAsset(Color(0xff0000ff)))

	if got := len(w.Triangles(nil, 1, false)); got != 4 {
		t.Errorf("without culling got %d triangles, want 4", got)
	}

	tris := w.Triangles(nil, 1, true)
	if len(tris) != 2 {
		t.Fatalf("with culling got %d triangles, want 2", len(tris))
	}
	for _, tri := range tris {
		if tri.Texture != Color(0xffff0000) {
			t.Errorf("culled world kept %v", tri.Texture)
		}
	}
}

func TestWorldTrianglesAppends(t *testing.T) {
	w := NewWorld()
	w.Meshes = []Mesh{NewMesh("tri", DefaultTriangle())}

	dst := make([]Triangle, 1, 8)
	got := w.Triangles(dst, 1, false)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}
