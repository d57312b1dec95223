package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/softrast/pkg/math3d"
)

var errNoBufferData = errors.New("buffer has no data")

// LoadGLTF loads a .gltf or .glb file into a node Scene. Materials become
// flat colors from their base color factor.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	s, err := sceneFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

func sceneFromDocument(doc *gltf.Document) (*Scene, error) {
	textures := loadMaterials(doc)

	assets := make([]*MeshAsset, len(doc.Meshes))
	for i, m := range doc.Meshes {
		a, err := loadMesh(doc, m, textures)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		assets[i] = a
	}

	s := NewScene()
	ids := make([]NodeID, len(doc.Nodes))
	for i, n := range doc.Nodes {
		var mesh *MeshAsset
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(assets) {
				return nil, fmt.Errorf("node %d: mesh index %d out of range", i, *n.Mesh)
			}
			mesh = assets[*n.Mesh]
		}
		ids[i] = s.AddNode(n.Name, nodeTransform(n), mesh)
	}

	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(ids) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			if err := s.Attach(ids[i], ids[c]); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
		}
	}

	s.Refresh()
	return s, nil
}

func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return math3d.Mat4(m)
	}
	t := n.TranslationOrDefault()
	sc := n.ScaleOrDefault()
	return math3d.TRS(
		math3d.V3(t[0], t[1], t[2]),
		n.RotationOrDefault(),
		math3d.V3(sc[0], sc[1], sc[2]),
	)
}

func loadMaterials(doc *gltf.Document) []Texture {
	textures := make([]Texture, len(doc.Materials))
	for i, m := range doc.Materials {
		textures[i] = Color(DefaultColor)
		if m.PBRMetallicRoughness != nil {
			c := math3d.ColorFromRGBA(m.PBRMetallicRoughness.BaseColorFactorOrDefault())
			textures[i] = Color(c.ARGB())
		}
	}
	return textures
}

// loadMesh extracts the indexed triangle primitives of m. Each primitive
// becomes one Surface.
func loadMesh(doc *gltf.Document, m *gltf.Mesh, textures []Texture) (*MeshAsset, error) {
	asset := &MeshAsset{Name: m.Name}

	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points have no area.
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		tex := Color(DefaultColor)
		if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(textures) {
			tex = textures[*prim.Material]
		}

		base := len(asset.Vertices)
		start := len(asset.Indices)
		asset.Vertices = append(asset.Vertices, positions...)

		// glTF front faces are counter-clockwise; ours are clockwise once
		// y points down, so swap the last two corners.
		for i := 0; i+2 < len(indices); i += 3 {
			for _, k := range [3]int{indices[i], indices[i+2], indices[i+1]} {
				if k < 0 || k >= len(positions) {
					return nil, fmt.Errorf("index %d out of range (%d vertices)", k, len(positions))
				}
				asset.Indices = append(asset.Indices, base+k)
			}
		}

		count := len(asset.Indices) - start
		if count == 0 {
			continue
		}
		asset.Surfaces = append(asset.Surfaces, NewSurface(asset.Vertices, asset.Indices, start, count, tex))
	}

	return asset, nil
}

func accessorBytes(doc *gltf.Document, idx int) (*gltf.Accessor, []byte, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	view := doc.BufferViews[*acc.BufferView]
	data := doc.Buffers[view.Buffer].Data
	if data == nil {
		return nil, nil, 0, errNoBufferData
	}
	return acc, data, view.ByteStride, nil
}

// readVec3Accessor reads float VEC3 data.
func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	acc, data, stride, err := accessorBytes(doc, idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", acc.Type, acc.ComponentType)
	}
	if stride == 0 {
		stride = 12
	}

	start := doc.BufferViews[*acc.BufferView].ByteOffset + acc.ByteOffset
	if end := start + (acc.Count-1)*stride + 12; acc.Count > 0 && end > len(data) {
		return nil, fmt.Errorf("accessor %d overruns its buffer", idx)
	}

	out := make([]math3d.Vec3, acc.Count)
	for i := range out {
		off := start + i*stride
		out[i] = math3d.V3(
			float64(readFloat32(data[off:])),
			float64(readFloat32(data[off+4:])),
			float64(readFloat32(data[off+8:])),
		)
	}
	return out, nil
}

// readIndices reads an unsigned SCALAR accessor.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acc, data, stride, err := accessorBytes(doc, idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", acc.Type)
	}

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", acc.ComponentType)
	}
	if stride == 0 {
		stride = size
	}

	start := doc.BufferViews[*acc.BufferView].ByteOffset + acc.ByteOffset
	if end := start + (acc.Count-1)*stride + size; acc.Count > 0 && end > len(data) {
		return nil, fmt.Errorf("accessor %d overruns its buffer", idx)
	}

	out := make([]int, acc.Count)
	for i := range out {
		off := start + i*stride
		switch size {
		case 1:
			out[i] = int(data[off])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(data[off:]))
		default:
			out[i] = int(binary.LittleEndian.Uint32(data[off:]))
		}
	}
	return out, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
