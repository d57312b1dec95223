package render

import (
	"sync"
	"sync/atomic"

	"github.com/taigrr/softrast/pkg/scene"
)

// NbThreads is the number of long-lived workers of a thread-pool engine.
const NbThreads = 4

type poolMessage int

const (
	msgResize poolMessage = iota
	msgClear
	msgCompute
	msgMerge
	msgQuit
)

func (m poolMessage) String() string {
	switch m {
	case msgResize:
		return "resize"
	case msgClear:
		return "clear"
	case msgCompute:
		return "compute"
	case msgMerge:
		return "merge"
	case msgQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// poolWorker owns the static slice of triangles i with i%NbThreads == id.
type poolWorker struct {
	id   int
	in   chan poolMessage
	done chan struct{}
	priv privateBuffer
	c    counters
}

// threadPoolEngine drives NbThreads workers through rendezvous channels.
// Each message is answered by one done signal per worker, so every
// broadcast is a full barrier. Without merge the workers share an
// AtomicBuffer; with merge each one fills a private buffer and the
// buffers are combined by depth at the end of the frame.
type threadPoolEngine struct {
	merge   bool
	workers [NbThreads]*poolWorker
	wg      sync.WaitGroup
	closed  atomic.Bool

	// Frame state, written before a broadcast and read by workers after
	// they receive it.
	frame  *frame
	tris   []scene.Triangle
	shared AtomicBuffer
	merged DepthColorBuffer
}

func newThreadPoolEngine(merge bool) *threadPoolEngine {
	e := &threadPoolEngine{merge: merge}
	for id := range e.workers {
		w := &poolWorker{
			id:   id,
			in:   make(chan poolMessage, 1),
			done: make(chan struct{}, 1),
		}
		e.workers[id] = w
		e.wg.Add(1)
		go e.run(w)
	}
	return e
}

func (e *threadPoolEngine) Type() EngineType {
	if e.merge {
		return EngineThreadPoolMerge
	}
	return EngineThreadPool
}

// Close stops and joins every worker. Calling it again returns ErrClosed.
func (e *threadPoolEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	for _, w := range e.workers {
		w.in <- msgQuit
	}
	e.wg.Wait()
	Logger().Info("engine closed", "engine", e.Type(), "workers", NbThreads)
	return nil
}

// broadcast sends msg to every worker and waits until all of them are done.
func (e *threadPoolEngine) broadcast(msg poolMessage) {
	for _, w := range e.workers {
		w.in <- msg
	}
	for _, w := range e.workers {
		<-w.done
	}
}

func (e *threadPoolEngine) run(w *poolWorker) {
	defer e.wg.Done()
	for msg := range w.in {
		switch msg {
		case msgResize:
			w.priv.Resize(e.frame.width, e.frame.height)
		case msgClear:
			w.priv.Clear()
		case msgCompute:
			e.compute(w)
		case msgMerge:
			e.mergeSlice(w.id)
		case msgQuit:
			return
		}
		w.done <- struct{}{}
	}
}

func (e *threadPoolEngine) compute(w *poolWorker) {
	w.c = counters{}
	f := e.frame
	for i := w.id; i < len(e.tris); i += NbThreads {
		r, ok := f.prepare(e.tris[i], &w.c)
		if !ok {
			continue
		}
		if e.merge {
			fill(&w.priv, &r, f, &w.c)
		} else {
			fill(&e.shared, &r, f, &w.c)
		}
	}
}

// mergeSlice resolves pixels i with i%NbThreads == id into the merged
// buffer. The strictly nearest private pixel wins; ties keep the lowest
// worker.
func (e *threadPoolEngine) mergeSlice(id int) {
	first := &e.workers[0].priv
	for i := id; i < len(e.merged.Color); i += NbThreads {
		color, depth := first.Color[i], first.Depth[i]
		for _, w := range e.workers[1:] {
			if d := w.priv.Depth[i]; d < depth {
				color, depth = w.priv.Color[i], d
			}
		}
		e.merged.Color[i] = color
		e.merged.Depth[i] = depth
	}
}

func (e *threadPoolEngine) Render(s Settings, world *scene.World, target *Framebuffer, stats *Stats) {
	width, height, os, ok := internalSize(s, target)
	if !ok || e.closed.Load() {
		return
	}

	ph := startPhases()
	e.frame = newFrame(s, world, width, height)
	if e.merge {
		if e.merged.Resize(width, height) {
			logResize(e.Type(), width, height)
			e.broadcast(msgResize)
		}
		e.broadcast(msgClear)
	} else {
		if e.shared.Resize(width, height) {
			logResize(e.Type(), width, height)
		}
		e.shared.Clear()
	}
	ph.clearDone()

	e.tris = world.Triangles(e.tris[:0], e.frame.ratio(), s.CullMeshes)
	e.broadcast(msgCompute)
	for _, w := range e.workers {
		stats.add(&w.c)
	}
	if e.merge {
		e.broadcast(msgMerge)
	}
	ph.rasterDone()

	if e.merge {
		finishFrame(s, &e.merged, target, os)
	} else {
		finishFrame(s, &e.shared, target, os)
	}
	ph.report(stats)
}
