package render

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestEngineTypeNext(t *testing.T) {
	types := EngineTypes()
	if len(types) != 5 {
		t.Fatalf("EngineTypes() has %d entries, want 5", len(types))
	}

	for i, et := range types {
		next, wrapped := et.Next()
		last := i == len(types)-1
		if wrapped != last {
			t.Errorf("%v.Next() wrapped = %v, want %v", et, wrapped, last)
		}
		if !last && next != types[i+1] {
			t.Errorf("%v.Next() = %v, want %v", et, next, types[i+1])
		}
		if last && next != EngineOriginal {
			t.Errorf("%v.Next() = %v, want %v", et, next, EngineOriginal)
		}
	}
}

func TestParseEngineType(t *testing.T) {
	for _, et := range EngineTypes() {
		t.Run(et.String(), func(t *testing.T) {
			got, err := ParseEngineType(et.String())
			if err != nil {
				t.Fatalf("ParseEngineType(%q): %v", et, err)
			}
			if got != et {
				t.Errorf("ParseEngineType(%q) = %v", et, got)
			}
		})
	}

	if got, err := ParseEngineType("Thread-Pool"); err != nil || got != EngineThreadPool {
		t.Errorf("ParseEngineType is case sensitive: %v, %v", got, err)
	}
	if _, err := ParseEngineType("gpu"); err == nil {
		t.Error("ParseEngineType(gpu) should fail")
	}
	if s := EngineType(42).String(); s != "EngineType(42)" {
		t.Errorf("unknown engine prints %q", s)
	}
}

func TestTriangleSorting(t *testing.T) {
	tests := []struct {
		in   TriangleSorting
		next TriangleSorting
		name string
	}{
		{SortNone, SortBackToFront, "none"},
		{SortBackToFront, SortFrontToBack, "back-to-front"},
		{SortFrontToBack, SortNone, "front-to-back"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Next(); got != tc.next {
				t.Errorf("Next() = %v, want %v", got, tc.next)
			}
			if got := tc.in.String(); got != tc.name {
				t.Errorf("String() = %q, want %q", got, tc.name)
			}
			got, err := ParseTriangleSorting(tc.name)
			if err != nil || got != tc.in {
				t.Errorf("ParseTriangleSorting(%q) = %v, %v", tc.name, got, err)
			}
		})
	}

	if _, err := ParseTriangleSorting("random"); err == nil {
		t.Error("ParseTriangleSorting(random) should fail")
	}
}

func TestSettingsOversampling(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-2, 1},
		{0, 1},
		{1, 1},
		{4, 4},
	}
	for _, tc := range tests {
		s := Settings{Oversampling: tc.in}
		if got := s.oversampling(); got != tc.want {
			t.Errorf("oversampling(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	d := DefaultSettings()
	if !d.BackFaceCulling || d.ShowVertices || d.Oversampling != 1 {
		t.Errorf("unexpected defaults: %v", d)
	}
}

func TestStats(t *testing.T) {
	var s Stats
	c := counters{trianglesTotal: 3, trianglesSight: 2, pixelsTested: 10, pixelsWritten: 4}
	s.add(&c)
	s.add(&c)

	if got := s.TrianglesTotal.Load(); got != 6 {
		t.Errorf("TrianglesTotal = %d, want 6", got)
	}
	if got := s.PixelsWritten.Load(); got != 8 {
		t.Errorf("PixelsWritten = %d, want 8", got)
	}
	if !strings.Contains(s.String(), "pixels tested: 20") {
		t.Errorf("String() = %q", s.String())
	}

	s.Reset()
	for _, nc := range s.all() {
		if nc.v.Load() != 0 {
			t.Errorf("%s = %d after Reset", nc.name, nc.v.Load())
		}
	}
}

func TestStatsNil(t *testing.T) {
	var s *Stats
	s.add(&counters{trianglesTotal: 1})
	s.Reset()
	s.setTimes(1, 2, 3)
	if s.String() != "stats disabled" {
		t.Errorf("nil String() = %q", s.String())
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e, err := NewEngine(EngineOriginal)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if !strings.Contains(buf.String(), "engine=original") {
		t.Errorf("log output %q lacks engine creation", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}

func TestCloseLogged(t *testing.T) {
	defer SetLogger(nil)

	for _, et := range []EngineType{EngineParIter, EngineThreadPool, EngineThreadPoolMerge} {
		t.Run(et.String(), func(t *testing.T) {
			var buf bytes.Buffer
			SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

			e, err := NewEngine(et)
			if err != nil {
				t.Fatal(err)
			}
			if err := e.Close(); err != nil {
				t.Fatal(err)
			}
			want := "msg=\"engine closed\" engine=" + et.String()
			if !strings.Contains(buf.String(), want) {
				t.Errorf("log output %q lacks %q", buf.String(), want)
			}
		})
	}
}
