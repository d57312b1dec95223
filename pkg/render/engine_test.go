package render

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/scene"
)

// layeredWorld builds n random front-facing triangles, each parallel to
// the screen at its own depth. Layers are 0.01 apart, far above the atomic
// buffer's depth resolution, so no two triangles ever tie on a pixel.
func layeredWorld(n int, seed uint64, width, height int) *scene.World {
	world := scene.NewWorld()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	tris := make([]scene.Triangle, 0, n)
	for i := range n {
		z := -float64(i) * 0.01
		p := func() math3d.Vec3 {
			return math3d.V3(rng.Float64()*10-4, rng.Float64()*10-4, z)
		}
		var tex scene.Texture
		if rng.IntN(2) == 0 {
			tex = scene.Color(0xff000000 | rng.Uint32())
		} else {
			tex = scene.VertexColor(0xff000000|rng.Uint32(), 0xff000000|rng.Uint32(), 0xff000000|rng.Uint32())
		}
		t := scene.NewTriangle(p(), p(), p(), tex)
		if !FacesCamera(ProjectTriangle(t, &world.Camera, width, height)) {
			t.P1, t.P2 = t.P2, t.P1
		}
		tris = append(tris, t)
	}
	world.Meshes = []scene.Mesh{scene.NewMesh("layers", tris...)}
	return world
}

func renderWith(t testing.TB, et EngineType, s Settings, world *scene.World, width, height int) *Framebuffer {
	t.Helper()
	e, err := NewEngine(et)
	if err != nil {
		t.Fatalf("NewEngine(%v): %v", et, err)
	}
	defer e.Close()

	fb := NewFramebuffer(width, height)
	e.Render(s, world, fb, nil)
	return fb
}

func TestNewEngine(t *testing.T) {
	for _, et := range EngineTypes() {
		e, err := NewEngine(et)
		if err != nil {
			t.Fatalf("NewEngine(%v): %v", et, err)
		}
		if e.Type() != et {
			t.Errorf("NewEngine(%v).Type() = %v", et, e.Type())
		}
		if err := e.Close(); err != nil {
			t.Errorf("%v Close: %v", et, err)
		}
	}

	if _, err := NewEngine(EngineType(99)); err == nil {
		t.Error("NewEngine(99) should fail")
	}
}

func TestDefaultTriangleScene(t *testing.T) {
	world := scene.NewWorld()
	world.Meshes = []scene.Mesh{scene.NewMesh("triangle", scene.DefaultTriangle())}

	const size = 100
	fb := renderWith(t, EngineOriginal, DefaultSettings(), world, size, size)

	box := Rect{MinX: 29, MinY: 50, MaxX: 34, MaxY: 70}
	covered := 0
	for y := range size {
		for x := range size {
			c := fb.GetPixel(x, y)
			if c == bg {
				continue
			}
			covered++
			if !box.Contains(x, y) {
				t.Fatalf("pixel (%d,%d) = %#08x outside the triangle box %v", x, y, c, box)
			}
		}
	}
	if covered < 30 {
		t.Fatalf("only %d pixels covered", covered)
	}

	// Each vertex color dominates next to its own vertex.
	tests := []struct {
		name    string
		x, y    int
		channel uint
	}{
		{"red near (0,1,-2)", 32, 52, 16},
		{"green near (0,0,0)", 30, 69, 8},
		{"blue near (0,0,-4)", 34, 66, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := fb.GetPixel(tc.x, tc.y)
			want := (c >> tc.channel) & 0xff
			for _, other := range []uint{16, 8, 0} {
				if other != tc.channel && (c>>other)&0xff >= want {
					t.Errorf("pixel (%d,%d) = %#08x", tc.x, tc.y, c)
				}
			}
		})
	}
}

func TestEnginesEquivalent(t *testing.T) {
	sizes := []struct{ w, h int }{{64, 48}, {48, 64}}
	settings := []struct {
		name string
		s    Settings
	}{
		{"plain", Settings{Oversampling: 1}},
		{"culling", Settings{BackFaceCulling: true, Oversampling: 1}},
		{"back to front", Settings{SortTriangles: SortBackToFront, Oversampling: 1}},
		{"front to back", Settings{SortTriangles: SortFrontToBack, Oversampling: 1}},
		{"locked", Settings{LockBuffer: true, Oversampling: 1}},
		{"oversampled", Settings{Oversampling: 2}},
		{"text", Settings{Oversampling: 2, ParallelText: true, Overlay: "softrast\n42 fps"}},
	}

	for _, size := range sizes {
		world := layeredWorld(600, 1, size.w, size.h)
		for _, tc := range settings {
			t.Run(fmt.Sprintf("%dx%d/%s", size.w, size.h, tc.name), func(t *testing.T) {
				want := renderWith(t, EngineOriginal, tc.s, world, size.w, size.h)
				if !slices.ContainsFunc(want.Pixels, func(c uint32) bool { return c != bg }) {
					t.Fatal("reference image is empty")
				}
				for _, et := range EngineTypes()[1:] {
					got := renderWith(t, et, tc.s, world, size.w, size.h)
					if i := firstDiff(got.Pixels, want.Pixels); i >= 0 {
						t.Errorf("%v differs at pixel %d: %#08x, want %#08x", et, i, got.Pixels[i], want.Pixels[i])
					}
				}
			})
		}
	}
}

// markedWorld is layeredWorld with vertices spread out so that no two
// vertex markers share a pixel.
func markedWorld(n int, seed uint64, width, height int) *scene.World {
	world := layeredWorld(20*n, seed, width, height)
	candidates := world.Meshes[0].Triangles

	var taken [][2]int
	free := func(p [2]int) bool {
		for _, q := range taken {
			if abs(p[0]-q[0])+abs(p[1]-q[1]) <= 2 {
				return false
			}
		}
		return true
	}

	var tris []scene.Triangle
	for _, t := range candidates {
		if len(tris) == n {
			break
		}
		z := -float64(len(tris)) * 0.01
		t.P0.Z, t.P1.Z, t.P2.Z = z, z, z
		r := ProjectTriangle(t, &world.Camera, width, height)
		if !FacesCamera(r) {
			t.P1, t.P2 = t.P2, t.P1
			r = ProjectTriangle(t, &world.Camera, width, height)
		}

		before := len(taken)
		ok := true
		for _, v := range [3]math3d.Vec3{r.P0, r.P1, r.P2} {
			p := [2]int{int(math.Floor(v.X)), int(math.Floor(v.Y))}
			if !free(p) {
				ok = false
				break
			}
			taken = append(taken, p)
		}
		if !ok {
			taken = taken[:before]
			continue
		}
		tris = append(tris, t)
	}
	world.Meshes = []scene.Mesh{scene.NewMesh("marked", tris...)}
	return world
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestEnginesEquivalentWithMarkers(t *testing.T) {
	const w, h = 64, 48
	world := markedWorld(40, 3, w, h)
	if got := len(world.Meshes[0].Triangles); got < 10 {
		t.Fatalf("only %d triangles with separate markers", got)
	}

	settings := []struct {
		name string
		s    Settings
	}{
		{"vertices", Settings{ShowVertices: true, Oversampling: 1}},
		{"vertices culling", Settings{ShowVertices: true, BackFaceCulling: true, Oversampling: 1}},
		{"vertices locked", Settings{ShowVertices: true, LockBuffer: true, Oversampling: 1}},
	}
	for _, tc := range settings {
		t.Run(tc.name, func(t *testing.T) {
			want := renderWith(t, EngineOriginal, tc.s, world, w, h)
			for _, et := range EngineTypes()[1:] {
				got := renderWith(t, et, tc.s, world, w, h)
				if i := firstDiff(got.Pixels, want.Pixels); i >= 0 {
					t.Errorf("%v differs at pixel %d: %#08x, want %#08x", et, i, got.Pixels[i], want.Pixels[i])
				}
			}
		})
	}
}

func firstDiff(a, b []uint32) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

func TestEngineStatsAgree(t *testing.T) {
	world := layeredWorld(300, 2, 64, 48)
	s := Settings{BackFaceCulling: true, Oversampling: 1}

	var want Stats
	ref, _ := NewEngine(EngineOriginal)
	ref.Render(s, world, NewFramebuffer(64, 48), &want)

	for _, et := range EngineTypes()[1:] {
		e, err := NewEngine(et)
		if err != nil {
			t.Fatal(err)
		}
		var got Stats
		e.Render(s, world, NewFramebuffer(64, 48), &got)
		e.Close()

		// Drawn and written counts depend on the order triangles reach a
		// pixel.
		for i, c := range got.all() {
			if c.v == &got.TrianglesDrawn || c.v == &got.PixelsWritten {
				continue
			}
			if c.v.Load() != want.all()[i].v.Load() {
				t.Errorf("%v %s = %d, want %d", et, c.name, c.v.Load(), want.all()[i].v.Load())
			}
		}
	}
	if want.TrianglesTotal.Load() != 300 {
		t.Errorf("TrianglesTotal = %d, want 300", want.TrianglesTotal.Load())
	}
}

func TestDepthMonotonicity(t *testing.T) {
	const w, h = 64, 48
	world := layeredWorld(80, 3, w, h)
	s := Settings{Oversampling: 1}

	e := &originalEngine{}
	e.Render(s, world, NewFramebuffer(w, h), nil)

	f := newFrame(s, world, w, h)
	overlaps := 0
	covered := make([]int, w*h)
	for _, tri := range world.Meshes[0].WorldTriangles(nil) {
		var c counters
		r, ok := f.prepare(tri, &c)
		if !ok {
			continue
		}
		single := NewDepthColorBuffer(w, h)
		fill(single, &r, f, &c)
		for i, d := range single.Depth {
			if math.IsInf(d, 1) {
				continue
			}
			covered[i]++
			if e.buf.Depth[i] > d {
				t.Fatalf("pixel %d: final depth %v is farther than %v", i, e.buf.Depth[i], d)
			}
		}
	}
	for _, n := range covered {
		if n > 1 {
			overlaps++
		}
	}
	if overlaps == 0 {
		t.Fatal("scene has no overlapping triangles")
	}
}

func TestBackFaceCullingOnlyRemoves(t *testing.T) {
	const w, h = 80, 60
	world := scene.DemoWorld(rand.New(rand.NewPCG(1, 2)))

	poses := []func(c *scene.Camera){
		func(c *scene.Camera) {},
		func(c *scene.Camera) { c.RotateFromMouse(400, 0) },
		func(c *scene.Camera) { c.RotateFromMouse(-300, 200); c.MoveSight(0, 20, 30) },
		func(c *scene.Camera) { c.MoveSight(0, 0, 150) },
	}

	for i, pose := range poses {
		t.Run(fmt.Sprint("pose ", i), func(t *testing.T) {
			world.Camera = scene.NewCamera()
			pose(&world.Camera)

			var on, off originalEngine
			on.Render(Settings{BackFaceCulling: true, Oversampling: 1}, world, NewFramebuffer(w, h), nil)
			off.Render(Settings{Oversampling: 1}, world, NewFramebuffer(w, h), nil)

			for p := range on.buf.Depth {
				if !math.IsInf(on.buf.Depth[p], 1) && math.IsInf(off.buf.Depth[p], 1) {
					t.Fatalf("pixel %d drawn only with culling", p)
				}
			}
		})
	}
}

func TestFillStaysInBox(t *testing.T) {
	const w, h = 40, 30
	const sentinel = 0x12345678
	world := layeredWorld(20, 4, w, h)
	f := newFrame(Settings{}, world, w, h)

	for _, tri := range world.Meshes[0].WorldTriangles(nil) {
		var c counters
		r, ok := f.prepare(tri, &c)
		if !ok {
			continue
		}
		buf := NewDepthColorBuffer(w, h)
		for i := range buf.Color {
			buf.Color[i] = sentinel
		}
		fill(buf, &r, f, &c)
		for y := range h {
			for x := range w {
				if !r.box.Contains(x, y) && buf.Color[x+y*w] != sentinel {
					t.Fatalf("pixel (%d,%d) outside %v was written", x, y, r.box)
				}
			}
		}
	}
}

func TestOversamplingFlatInterior(t *testing.T) {
	const w, h = 40, 30
	world := scene.NewWorld()
	tri := scene.NewTriangle(math3d.V3(-20, -20, 0), math3d.V3(20, -20, 0), math3d.V3(1, 20, 0), scene.Color(0xff4080c0))
	if !FacesCamera(ProjectTriangle(tri, &world.Camera, w, h)) {
		tri.P1, tri.P2 = tri.P2, tri.P1
	}
	world.Meshes = []scene.Mesh{scene.NewMesh("big", tri)}

	one := renderWith(t, EngineOriginal, Settings{BackFaceCulling: true, Oversampling: 1}, world, w, h)
	four := renderWith(t, EngineOriginal, Settings{BackFaceCulling: true, Oversampling: 4}, world, w, h)

	center := one.GetPixel(w/2, h/2)
	if center == bg {
		t.Fatal("center not covered")
	}
	for y := h/2 - 3; y <= h/2+3; y++ {
		for x := w/2 - 3; x <= w/2+3; x++ {
			if a, b := one.GetPixel(x, y), four.GetPixel(x, y); a != b {
				t.Errorf("pixel (%d,%d): %#08x at 1x, %#08x at 4x", x, y, a, b)
			}
		}
	}
}

func TestShowVertices(t *testing.T) {
	world := scene.NewWorld()
	world.Meshes = []scene.Mesh{scene.NewMesh("triangle", scene.DefaultTriangle())}
	s := DefaultSettings()
	s.ShowVertices = true

	for _, et := range EngineTypes() {
		t.Run(et.String(), func(t *testing.T) {
			fb := renderWith(t, et, s, world, 100, 100)
			// P1 projects to (29.17, 70.83): a cross centered on (29, 70).
			for _, p := range [][2]int{{29, 70}, {28, 70}, {30, 70}, {29, 69}, {29, 71}} {
				if got := fb.GetPixel(p[0], p[1]); got != 0xff555555 {
					t.Errorf("marker pixel %v = %#08x, want 0xff555555", p, got)
				}
			}
		})
	}
}

func TestThreadPoolClose(t *testing.T) {
	for _, et := range []EngineType{EngineParIter, EngineThreadPool, EngineThreadPoolMerge} {
		t.Run(et.String(), func(t *testing.T) {
			e, err := NewEngine(et)
			if err != nil {
				t.Fatal(err)
			}
			fb := NewFramebuffer(16, 16)
			e.Render(DefaultSettings(), scene.DemoWorld(rand.New(rand.NewPCG(5, 6))), fb, nil)

			if err := e.Close(); err != nil {
				t.Fatalf("first Close: %v", err)
			}
			if err := e.Close(); !errors.Is(err, ErrClosed) {
				t.Errorf("second Close = %v, want ErrClosed", err)
			}

			// Rendering after Close is a no-op.
			fb.Clear(0)
			e.Render(DefaultSettings(), scene.NewWorld(), fb, nil)
			if fb.Pixels[0] != 0 {
				t.Error("closed engine drew a frame")
			}
		})
	}
}

func TestRenderResizes(t *testing.T) {
	world := layeredWorld(40, 8, 32, 32)
	for _, et := range EngineTypes() {
		t.Run(et.String(), func(t *testing.T) {
			e, err := NewEngine(et)
			if err != nil {
				t.Fatal(err)
			}
			defer e.Close()

			s := Settings{Oversampling: 1}
			for _, size := range [][2]int{{32, 32}, {20, 12}, {32, 32}} {
				fb := NewFramebuffer(size[0], size[1])
				e.Render(s, world, fb, nil)
				want := renderWith(t, EngineOriginal, s, world, size[0], size[1])
				if i := firstDiff(fb.Pixels, want.Pixels); i >= 0 {
					t.Fatalf("%dx%d differs at pixel %d", size[0], size[1], i)
				}
			}
		})
	}
}

func TestRenderEmptyTarget(t *testing.T) {
	for _, et := range EngineTypes() {
		e, err := NewEngine(et)
		if err != nil {
			t.Fatal(err)
		}
		e.Render(DefaultSettings(), scene.NewWorld(), NewFramebuffer(0, 0), nil)
		e.Close()
	}
}
