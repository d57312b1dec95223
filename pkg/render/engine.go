package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/taigrr/softrast/pkg/scene"
)

// ErrClosed is returned by Close on an engine that was already closed.
var ErrClosed = errors.New("render: engine closed")

// Engine is one execution strategy. All engines produce the same image
// for scenes without coplanar overlapping triangles.
//
// Render clears, rasterizes world and writes the result into target,
// which must already have its final size. Counters are added to stats,
// which may be nil. Render is not safe for concurrent use; the world
// must not change while it runs.
type Engine interface {
	Type() EngineType
	Render(s Settings, world *scene.World, target *Framebuffer, stats *Stats)
	Close() error
}

// NewEngine creates the engine of type t. Engines owning goroutines start
// them here and stop them in Close.
func NewEngine(t EngineType) (Engine, error) {
	var e Engine
	switch t {
	case EngineOriginal:
		e = &originalEngine{}
	case EngineIterator:
		e = &iteratorEngine{}
	case EngineParIter:
		e = newParIterEngine()
	case EngineThreadPool:
		e = newThreadPoolEngine(false)
	case EngineThreadPoolMerge:
		e = newThreadPoolEngine(true)
	default:
		return nil, fmt.Errorf("create engine: unknown type %d", t)
	}
	Logger().Info("engine created", "engine", t)
	return e, nil
}

// phases times the three parts of a frame.
type phases struct {
	start, cleared, rasterized time.Time
}

func startPhases() phases {
	return phases{start: time.Now()}
}

func (p *phases) clearDone()  { p.cleared = time.Now() }
func (p *phases) rasterDone() { p.rasterized = time.Now() }

func (p *phases) report(stats *Stats) {
	stats.setTimes(p.cleared.Sub(p.start), p.rasterized.Sub(p.cleared), time.Since(p.rasterized))
}

// finishFrame stamps the overlay and resolves buf into target.
func finishFrame[B interface {
	colorSource
	textTarget
}](s Settings, buf B, target *Framebuffer, os int) {
	if s.ParallelText {
		drawText(buf, s.Overlay, os)
	}
	resolve(target, buf, os)
	if !s.ParallelText {
		drawText(target, s.Overlay, 1)
	}
}

func logResize(engine EngineType, width, height int) {
	Logger().Debug("buffer resized", "engine", engine, "width", width, "height", height)
}
