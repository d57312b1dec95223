package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerBand keeps small buffers on the calling goroutine.
const minRowsPerBand = 16

// parallelRows splits [0, height) into contiguous bands and calls fn on
// each band concurrently. It returns once every band is done.
func parallelRows(height int, fn func(y0, y1 int)) {
	bands := min(runtime.GOMAXPROCS(0), height/minRowsPerBand)
	if bands <= 1 {
		fn(0, height)
		return
	}

	step := (height + bands - 1) / bands
	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += step {
		y1 := min(y0+step, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
