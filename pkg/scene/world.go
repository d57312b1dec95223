package scene

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// DefaultBackgroundColor fills every pixel no triangle covers.
const DefaultBackgroundColor uint32 = 0xff181818

// FarPlane bounds the clip volume used for node-level visibility.
const FarPlane = 1000.0

// World owns everything drawn in a frame. Renderers only read it.
type World struct {
	Meshes       []Mesh
	Scene        *Scene
	Camera       Camera
	SunDirection math3d.Vec3
}

// NewWorld returns an empty world with the default camera and sun.
func NewWorld() *World {
	return &World{
		Camera:       NewCamera(),
		SunDirection: math3d.V3(-1, -1, -1).Normalize(),
	}
}

// TriangleCount returns the number of triangles the world holds, before
// any culling.
func (w *World) TriangleCount() int {
	n := 0
	for i := range w.Meshes {
		n += w.Meshes[i].TriangleCount()
	}
	if w.Scene != nil {
		w.Scene.Walk(func(_ NodeID, node *Node) {
			if node.Mesh != nil {
				n += node.Mesh.TriangleCount()
			}
		})
	}
	return n
}

// Triangles appends the world-space triangles of every flat mesh, then of
// every node mesh, to dst. When cull is set, node surfaces whose bounds
// fall outside the view of a viewport with the given width/height ratio
// are skipped.
func (w *World) Triangles(dst []Triangle, ratio float64, cull bool) []Triangle {
	for i := range w.Meshes {
		dst = w.Meshes[i].WorldTriangles(dst)
	}
	if w.Scene == nil {
		return dst
	}

	if w.Scene.Dirty() {
		w.Scene.Refresh()
	}

	var viewProj math3d.Mat4
	if cull {
		viewProj = w.Camera.ViewProj(ratio, FarPlane)
	}

	var vertices []math3d.Vec3
	w.Scene.Walk(func(_ NodeID, n *Node) {
		if n.Mesh == nil {
			return
		}
		vertices = vertices[:0]
		for _, v := range n.Mesh.Vertices {
			vertices = append(vertices, n.World.MulPoint(v))
		}
		dst = appendSurfaces(dst, n.Mesh, vertices, func(s *Surface) bool {
			return !cull || s.Bounds.IsVisible(viewProj, n.World)
		})
	})
	return dst
}

func appendSurfaces(dst []Triangle, mesh *MeshAsset, vertices []math3d.Vec3, keep func(*Surface) bool) []Triangle {
	idx := mesh.Indices
	for i := range mesh.Surfaces {
		s := &mesh.Surfaces[i]
		if !keep(s) {
			continue
		}
		for k := s.Start; k+2 < s.Start+s.Count; k += 3 {
			dst = append(dst, Triangle{
				P0:      vertices[idx[k]],
				P1:      vertices[idx[k+1]],
				P2:      vertices[idx[k+2]],
				Texture: s.Texture,
			})
		}
	}
	return dst
}
