package render

import (
	"fmt"
	"sync/atomic"

	"github.com/taigrr/softrast/internal/parallel"
	"github.com/taigrr/softrast/pkg/scene"
)

// parIterChunk is the number of triangles one pool task rasterizes.
const parIterChunk = 256

// parIterEngine splits the triangle list into chunks run on a
// work-stealing pool. Every task writes straight into a shared buffer:
// the packed atomic one, or the per-pixel locked one when
// Settings.LockBuffer is set.
type parIterEngine struct {
	pool   *parallel.Pool
	packed AtomicBuffer
	locked LockedBuffer
	tris   []scene.Triangle
	tasks  []func()
	closed atomic.Bool
}

func newParIterEngine() *parIterEngine {
	return &parIterEngine{pool: parallel.NewPool(0)}
}

func (e *parIterEngine) Type() EngineType { return EngineParIter }

func (e *parIterEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := e.pool.Close(); err != nil {
		return fmt.Errorf("close pool: %w", err)
	}
	Logger().Info("engine closed", "engine", EngineParIter, "workers", e.pool.Workers())
	return nil
}

func (e *parIterEngine) Render(s Settings, world *scene.World, target *Framebuffer, stats *Stats) {
	width, height, os, ok := internalSize(s, target)
	if !ok || e.closed.Load() {
		return
	}

	ph := startPhases()
	if s.LockBuffer {
		if e.locked.Resize(width, height) {
			logResize(EngineParIter, width, height)
		}
		e.locked.Clear()
	} else {
		if e.packed.Resize(width, height) {
			logResize(EngineParIter, width, height)
		}
		e.packed.Clear()
	}
	ph.clearDone()

	f := newFrame(s, world, width, height)
	e.tris = world.Triangles(e.tris[:0], f.ratio(), s.CullMeshes)

	e.tasks = e.tasks[:0]
	for start := 0; start < len(e.tris); start += parIterChunk {
		chunk := e.tris[start:min(start+parIterChunk, len(e.tris))]
		if s.LockBuffer {
			e.tasks = append(e.tasks, rasterChunk(&e.locked, chunk, f, stats))
		} else {
			e.tasks = append(e.tasks, rasterChunk(&e.packed, chunk, f, stats))
		}
	}
	if err := e.pool.ExecuteAll(e.tasks); err != nil {
		Logger().Warn("frame dropped", "engine", EngineParIter, "err", err)
		return
	}
	ph.rasterDone()

	if s.LockBuffer {
		finishFrame(s, &e.locked, target, os)
	} else {
		finishFrame(s, &e.packed, target, os)
	}
	ph.report(stats)
}

// rasterChunk returns a task that runs the whole pipeline over chunk.
// Counters stay local until the chunk is done.
func rasterChunk[T pixelTarget](dst T, chunk []scene.Triangle, f *frame, stats *Stats) func() {
	return func() {
		var c counters
		for _, t := range chunk {
			r, ok := f.prepare(t, &c)
			if !ok {
				continue
			}
			fill(dst, &r, f, &c)
		}
		stats.add(&c)
	}
}
