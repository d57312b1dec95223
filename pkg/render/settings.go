package render

import (
	"fmt"
	"strings"
)

// TriangleSorting orders triangles before they are filled.
type TriangleSorting uint8

const (
	// SortNone keeps scene order.
	SortNone TriangleSorting = iota
	// SortBackToFront draws the farthest triangles first.
	SortBackToFront
	// SortFrontToBack draws the nearest triangles first, so the depth
	// test rejects more pixels early.
	SortFrontToBack
)

var sortingNames = [...]string{"none", "back-to-front", "front-to-back"}

func (s TriangleSorting) String() string {
	if int(s) < len(sortingNames) {
		return sortingNames[s]
	}
	return fmt.Sprintf("TriangleSorting(%d)", s)
}

// Next returns the following sorting mode, wrapping around.
func (s TriangleSorting) Next() TriangleSorting {
	return (s + 1) % TriangleSorting(len(sortingNames))
}

// ParseTriangleSorting parses the name printed by String.
func ParseTriangleSorting(name string) (TriangleSorting, error) {
	for i, n := range sortingNames {
		if strings.EqualFold(n, name) {
			return TriangleSorting(i), nil
		}
	}
	return SortNone, fmt.Errorf("unknown triangle sorting %q", name)
}

// EngineType names an execution strategy.
type EngineType uint8

const (
	// EngineOriginal is the single-threaded straight loop.
	EngineOriginal EngineType = iota
	// EngineIterator is the single-threaded staged pipeline.
	EngineIterator
	// EngineParIter fans triangle chunks out on a work-stealing pool.
	EngineParIter
	// EngineThreadPool gives each of NbThreads workers a static share of
	// the triangles and a shared atomic buffer.
	EngineThreadPool
	// EngineThreadPoolMerge is EngineThreadPool with private buffers merged
	// at the end of the frame.
	EngineThreadPoolMerge
)

var engineNames = [...]string{"original", "iterator", "par-iter", "thread-pool", "thread-pool-merge"}

// EngineTypes lists every strategy in cycling order.
func EngineTypes() []EngineType {
	types := make([]EngineType, len(engineNames))
	for i := range types {
		types[i] = EngineType(i)
	}
	return types
}

func (t EngineType) String() string {
	if int(t) < len(engineNames) {
		return engineNames[t]
	}
	return fmt.Sprintf("EngineType(%d)", t)
}

// Next returns the following engine type. wrapped is true when it loops
// back to the first one.
func (t EngineType) Next() (next EngineType, wrapped bool) {
	next = t + 1
	if int(next) >= len(engineNames) {
		return EngineOriginal, true
	}
	return next, false
}

// ParseEngineType parses the name printed by String.
func ParseEngineType(name string) (EngineType, error) {
	for i, n := range engineNames {
		if strings.EqualFold(n, name) {
			return EngineType(i), nil
		}
	}
	return EngineOriginal, fmt.Errorf("unknown engine %q (want one of %s)", name, strings.Join(engineNames[:], ", "))
}

// Settings are read once per frame. They never change while a frame is
// being rasterized.
type Settings struct {
	// ShowVertices stamps a small cross on every projected vertex.
	ShowVertices bool
	// SortTriangles orders triangles by depth in the iterator engine.
	SortTriangles TriangleSorting
	// BackFaceCulling drops triangles facing away from the camera.
	BackFaceCulling bool
	// CullMeshes skips node surfaces whose bounds are out of view.
	CullMeshes bool
	// LockBuffer makes the par-iter engine composite into a lock-striped
	// buffer instead of the packed atomic one.
	LockBuffer bool
	// Oversampling renders at Oversampling times the target size and
	// box-filters down. Values below 1 count as 1.
	Oversampling int
	// ParallelText stamps Overlay into the internal buffer before
	// downsampling instead of into the target afterwards.
	ParallelText bool
	// Overlay is debug text stamped over the frame. Empty for none.
	Overlay string
}

// DefaultSettings returns the settings used at startup.
func DefaultSettings() Settings {
	return Settings{
		BackFaceCulling: true,
		CullMeshes:      true,
		Oversampling:    1,
	}
}

func (s Settings) oversampling() int {
	return max(s.Oversampling, 1)
}

func (s Settings) String() string {
	return fmt.Sprintf("vertices:%t sort:%v cull:%t meshes:%t lock:%t os:%d text:%t",
		s.ShowVertices, s.SortTriangles, s.BackFaceCulling, s.CullMeshes,
		s.LockBuffer, s.oversampling(), s.ParallelText)
}
