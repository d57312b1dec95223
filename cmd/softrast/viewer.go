package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

// Input sensitivities, in MoveSight and RotateFromMouse units.
const (
	moveImpulse  = 4.0
	mouseImpulse = 12.0
)

var oversamplingCycle = [...]int{1, 2, 4}

// viewer is the interactive terminal front end. All of its state is owned
// by the goroutine running the frame loop.
type viewer struct {
	world    *scene.World
	settings render.Settings
	engine   render.Engine
	motion   *Motion
	fps      int

	term        *uv.Terminal
	cols, rows  int
	fb          *render.Framebuffer
	stats       render.Stats
	showOverlay bool

	mouseDown    bool
	lastX, lastY int
	cursor       *image.Point
	frameTime    time.Duration
	measuredFPS  float64
	fpsFrames    int
	fpsSince     time.Time
}

func newViewer(world *scene.World, s render.Settings, et render.EngineType, fps int) (*viewer, error) {
	e, err := render.NewEngine(et)
	if err != nil {
		return nil, err
	}
	return &viewer{
		world:       world,
		settings:    s,
		engine:      e,
		motion:      NewMotion(fps),
		fps:         fps,
		fb:          render.NewFramebuffer(0, 0),
		showOverlay: *overlay,
		fpsSince:    time.Now(),
	}, nil
}

func (v *viewer) run() error {
	defer func() { v.engine.Close() }()

	v.term = uv.DefaultTerminal()
	cols, rows, err := v.term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := v.term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	v.term.EnterAltScreen()
	v.term.HideCursor()
	v.resize(cols, rows)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		v.term.ExitAltScreen()
		v.term.ShowCursor()
		v.term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	events := v.term.Events()
	targetDuration := time.Second / time.Duration(v.fps)
	ticker := time.NewTicker(targetDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := v.handle(ev); quit {
				return nil
			}
		case <-ticker.C:
			if err := v.frame(); err != nil {
				return err
			}
		}
	}
}

func (v *viewer) resize(cols, rows int) {
	v.cols, v.rows = cols, rows
	v.term.Erase()
	v.term.Resize(cols, rows)
	w, h := render.TerminalSize(cols, rows)
	v.fb.Resize(w, h)
	slog.Debug("terminal resized", "cols", cols, "rows", rows, "width", w, "height", h)
}

// frame advances the camera, renders and presents one frame.
func (v *viewer) frame() error {
	start := time.Now()
	v.motion.Apply(&v.world.Camera)

	s := v.settings
	if v.showOverlay {
		s.Overlay = render.FormatDebug(v.debugInfo(), s, &v.world.Camera, &v.stats)
	}
	v.stats.Reset()
	v.engine.Render(s, v.world, v.fb, &v.stats)

	v.fb.Draw(v.term, v.term.Bounds())
	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display frame: %w", err)
	}

	v.frameTime = time.Since(start)
	v.fpsFrames++
	if elapsed := time.Since(v.fpsSince); elapsed >= time.Second {
		v.measuredFPS = float64(v.fpsFrames) / elapsed.Seconds()
		v.fpsFrames = 0
		v.fpsSince = time.Now()
	}
	return nil
}

func (v *viewer) debugInfo() render.DebugInfo {
	info := render.DebugInfo{
		Engine:    v.engine.Type(),
		FPS:       v.measuredFPS,
		FrameTime: v.frameTime,
		Width:     v.fb.Width,
		Height:    v.fb.Height,
	}
	if v.cursor != nil {
		// One terminal cell covers two framebuffer rows.
		p := image.Point{X: v.cursor.X, Y: v.cursor.Y * 2}
		info.Cursor = &p
		info.CursorColor = v.fb.GetPixel(p.X, p.Y)
	}
	return info
}

// handle applies one terminal event. It reports whether to quit.
func (v *viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		return v.key(ev)

	case uv.MouseClickEvent:
		v.mouseDown = true
		v.lastX, v.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		v.cursor = &image.Point{X: ev.X, Y: ev.Y}
		if v.mouseDown {
			v.motion.Yaw.Velocity += float64(ev.X-v.lastX) * mouseImpulse
			v.motion.Pitch.Velocity += float64(ev.Y-v.lastY) * mouseImpulse
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.motion.Forward.Velocity += moveImpulse
		case uv.MouseWheelDown:
			v.motion.Forward.Velocity -= moveImpulse
		}
	}
	return false
}

func (v *viewer) key(ev uv.KeyPressEvent) bool {
	s := &v.settings
	switch {
	case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
		return true
	case ev.MatchString("w", "up"):
		v.motion.Forward.Velocity += moveImpulse
	case ev.MatchString("s", "down"):
		v.motion.Forward.Velocity -= moveImpulse
	case ev.MatchString("a", "left"):
		v.motion.Right.Velocity -= moveImpulse
	case ev.MatchString("d", "right"):
		v.motion.Right.Velocity += moveImpulse
	case ev.MatchString("e"):
		v.motion.Up.Velocity += moveImpulse
	case ev.MatchString("q"):
		v.motion.Up.Velocity -= moveImpulse
	case ev.MatchString("tab"):
		v.nextEngine()
	case ev.MatchString("v"):
		s.ShowVertices = !s.ShowVertices
	case ev.MatchString("c"):
		s.BackFaceCulling = !s.BackFaceCulling
	case ev.MatchString("m"):
		s.CullMeshes = !s.CullMeshes
	case ev.MatchString("l"):
		s.LockBuffer = !s.LockBuffer
	case ev.MatchString("t"):
		s.ParallelText = !s.ParallelText
	case ev.MatchString("o"):
		s.Oversampling = nextOversampling(s.Oversampling)
	case ev.MatchString("p"):
		s.SortTriangles = s.SortTriangles.Next()
	case ev.MatchString("r"):
		v.motion.Reset()
		v.world.Camera.ResetRot()
	case ev.MatchString("?"), ev.MatchString("shift+/"):
		v.showOverlay = !v.showOverlay
	}
	slog.Debug("settings changed", "settings", v.settings.String())
	return false
}

// nextEngine swaps in the next engine and closes the current one.
func (v *viewer) nextEngine() {
	next, wrapped := v.engine.Type().Next()
	e, err := render.NewEngine(next)
	if err != nil {
		slog.Error("create engine", "engine", next, "err", err)
		return
	}
	if err := v.engine.Close(); err != nil {
		slog.Warn("close engine", "engine", v.engine.Type(), "err", err)
	}
	v.engine = e
	slog.Info("engine switched", "engine", next, "wrapped", wrapped)
}

func nextOversampling(cur int) int {
	for i, n := range oversamplingCycle {
		if n == cur {
			return oversamplingCycle[(i+1)%len(oversamplingCycle)]
		}
	}
	return oversamplingCycle[0]
}
