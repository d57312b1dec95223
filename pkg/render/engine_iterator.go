package render

import (
	"cmp"
	"iter"
	"slices"

	"github.com/taigrr/softrast/pkg/scene"
)

// iteratorEngine runs the pipeline as chained stages over an iterator:
// collect, project, cull, light, optionally sort, then fill.
type iteratorEngine struct {
	buf    DepthColorBuffer
	tris   []scene.Triangle
	sorted []rasterTriangle
}

func (e *iteratorEngine) Type() EngineType { return EngineIterator }

func (e *iteratorEngine) Close() error { return nil }

func (e *iteratorEngine) Render(s Settings, world *scene.World, target *Framebuffer, stats *Stats) {
	width, height, os, ok := internalSize(s, target)
	if !ok {
		return
	}

	ph := startPhases()
	if e.buf.Resize(width, height) {
		logResize(EngineIterator, width, height)
	}
	e.buf.Clear()
	ph.clearDone()

	f := newFrame(s, world, width, height)
	e.tris = world.Triangles(e.tris[:0], f.ratio(), s.CullMeshes)

	var c counters
	seq := f.stages(slices.Values(e.tris), &c)
	if s.SortTriangles != SortNone {
		e.sorted = slices.AppendSeq(e.sorted[:0], seq)
		sortTriangles(e.sorted, s.SortTriangles)
		seq = slices.Values(e.sorted)
	}
	for t := range seq {
		fill(&e.buf, &t, f, &c)
	}
	stats.add(&c)
	ph.rasterDone()

	finishFrame(s, &e.buf, target, os)
	ph.report(stats)
}

// stages lazily turns world triangles into fill-ready raster triangles.
func (f *frame) stages(tris iter.Seq[scene.Triangle], c *counters) iter.Seq[rasterTriangle] {
	return func(yield func(rasterTriangle) bool) {
		for t := range tris {
			r, ok := f.prepare(t, c)
			if !ok {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// sortTriangles orders raster triangles by their nearest depth. The sort
// is stable so equal depths keep their scene order.
func sortTriangles(tris []rasterTriangle, mode TriangleSorting) {
	switch mode {
	case SortBackToFront:
		slices.SortStableFunc(tris, func(a, b rasterTriangle) int {
			return cmp.Compare(b.MinZ(), a.MinZ())
		})
	case SortFrontToBack:
		slices.SortStableFunc(tris, func(a, b rasterTriangle) int {
			return cmp.Compare(a.MinZ(), b.MinZ())
		})
	}
}
