// softrast - software rasterizer in your terminal
// Renders the demo world, or a glTF/GLB scene, with one of several
// interchangeable CPU rasterization engines.
//
// Controls:
//
//	Mouse drag  - Look around (yaw/pitch)
//	W/S         - Move forward/back
//	A/D         - Move left/right
//	Q/E         - Move down/up
//	Tab         - Next engine
//	V           - Toggle vertex markers
//	C           - Toggle back-face culling
//	M           - Toggle mesh culling
//	L           - Toggle locked buffer (par-iter)
//	O           - Cycle oversampling 1/2/4
//	P           - Cycle triangle sorting
//	T           - Toggle text drawn before downsampling
//	R           - Reset camera rotation
//	?           - Toggle debug overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/taigrr/softrast/pkg/render"
	"github.com/taigrr/softrast/pkg/scene"
)

var (
	engineName   = flag.String("engine", render.EngineParIter.String(), "Rendering engine: original, iterator, par-iter, thread-pool, thread-pool-merge")
	oversampling = flag.Int("oversampling", 1, "Oversampling factor")
	showVertices = flag.Bool("vertices", false, "Draw vertex markers")
	backFaceCull = flag.Bool("cull", true, "Back-face culling")
	meshCull     = flag.Bool("meshcull", true, "Skip node meshes out of view")
	lockBuffer   = flag.Bool("lock", false, "Use the lock-striped buffer in the par-iter engine")
	sortName     = flag.String("sort", render.SortNone.String(), "Triangle sorting: none, back-to-front, front-to-back")
	targetFPS    = flag.Int("fps", 60, "Target FPS")
	outPath      = flag.String("o", "", "Render one frame to this PNG file and exit")
	outWidth     = flag.Int("width", 640, "Width of the -o image")
	outHeight    = flag.Int("height", 360, "Height of the -o image")
	overlay      = flag.Bool("overlay", false, "Start with the debug overlay shown")
	seed         = flag.Uint64("seed", 1, "Seed of the demo world colors")
	verbose      = flag.Bool("v", false, "Log debug messages")
	logPath      = flag.String("log", "", "Log file (default: stderr for -o, none otherwise)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softrast - software rasterizer in your terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softrast [options] [scene.gltf|scene.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Look around\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D/Q/E - Move\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Next engine\n")
		fmt.Fprintf(os.Stderr, "  V/C/M/L/T   - Toggle vertices, culling, mesh culling, lock, text mode\n")
		fmt.Fprintf(os.Stderr, "  O/P         - Cycle oversampling, sorting\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset rotation\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle debug overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	settings, engineType, err := settingsFromFlags()
	if err != nil {
		return err
	}

	world, err := loadWorld(flag.Arg(0))
	if err != nil {
		return err
	}

	if *outPath != "" {
		return renderPNG(world, settings, engineType, *outPath)
	}

	v, err := newViewer(world, settings, engineType, *targetFPS)
	if err != nil {
		return err
	}
	return v.run()
}

func setupLogging() (func(), error) {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	var w io.Writer
	closeFn := func() {}
	switch {
	case *logPath != "":
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case *outPath != "" && *verbose:
		// The terminal is free in headless mode.
		w = os.Stderr
	default:
		return closeFn, nil
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)
	slog.SetDefault(logger)
	return closeFn, nil
}

func settingsFromFlags() (render.Settings, render.EngineType, error) {
	s := render.DefaultSettings()
	s.ShowVertices = *showVertices
	s.BackFaceCulling = *backFaceCull
	s.CullMeshes = *meshCull
	s.LockBuffer = *lockBuffer
	s.Oversampling = *oversampling

	if *oversampling < 1 {
		return s, 0, fmt.Errorf("invalid oversampling %d: must be at least 1", *oversampling)
	}
	sorting, err := render.ParseTriangleSorting(*sortName)
	if err != nil {
		return s, 0, fmt.Errorf("parse -sort: %w", err)
	}
	s.SortTriangles = sorting

	et, err := render.ParseEngineType(*engineName)
	if err != nil {
		return s, 0, fmt.Errorf("parse -engine: %w", err)
	}
	if *targetFPS <= 0 {
		return s, 0, fmt.Errorf("invalid fps %d", *targetFPS)
	}
	return s, et, nil
}

// loadWorld returns the demo world, or a world holding the glTF scene at
// path.
func loadWorld(path string) (*scene.World, error) {
	if path == "" {
		return scene.DemoWorld(rand.New(rand.NewPCG(*seed, *seed))), nil
	}

	sc, err := scene.LoadGLTF(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	w := scene.NewWorld()
	w.Scene = sc
	slog.Info("scene loaded", "path", path, "nodes", sc.Len(), "triangles", w.TriangleCount())
	return w, nil
}

// renderPNG renders a single frame without a terminal.
func renderPNG(world *scene.World, s render.Settings, et render.EngineType, path string) error {
	if *outWidth <= 0 || *outHeight <= 0 {
		return fmt.Errorf("invalid image size %dx%d", *outWidth, *outHeight)
	}

	e, err := render.NewEngine(et)
	if err != nil {
		return err
	}
	defer e.Close()

	fb := render.NewFramebuffer(*outWidth, *outHeight)
	var stats render.Stats
	e.Render(s, world, fb, &stats)

	if *overlay {
		// A second pass with the timings of the first.
		info := render.DebugInfo{Engine: et, Width: fb.Width, Height: fb.Height, FrameTime: stats.ClearTime + stats.RasterTime + stats.ResolveTime}
		s.Overlay = render.FormatDebug(info, s, &world.Camera, &stats)
		stats.Reset()
		e.Render(s, world, fb, &stats)
	}

	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	slog.Info("frame saved", "path", path, "engine", et, "stats", stats.String())
	return nil
}
