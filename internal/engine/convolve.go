package engine

import (
	"errors"
	"fmt"

	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
	"github.com/kprdes/gridfilter/internal/stencil"
)

// ErrInvalidPartition reports a worker count or image geometry the engine
// cannot partition. It is surfaced before any worker is started.
var ErrInvalidPartition = errors.New("invalid partition")

// workItem pairs a read-only input view with an exclusive output region.
// Items built from one plan never overlap in their output regions, which is
// the invariant that keeps the parallel phase race-free.
type workItem struct {
	view stencil.View
	out  *raster.Buffer
	k    kernel.Kernel
	x0   int
	y0   int
	x1   int
	y1   int
}

// run computes every output sample in the item's region.
func (w workItem) run() {
	for y := w.y0; y < w.y1; y++ {
		for x := w.x0; x < w.x1; x++ {
			for c := 0; c < w.out.Channels(); c++ {
				w.out.Set(x, y, c, stencil.Evaluate(w.view, x, y, c, w.k))
			}
		}
	}
}

// Convolve applies k to src using the given number of parallel workers over
// contiguous row ranges, returning a fresh output buffer of identical
// geometry. The input is not modified.
//
// workers may exceed the image height; the surplus workers receive empty
// row ranges and contribute nothing. A non-positive worker count or image
// geometry fails with ErrInvalidPartition.
func Convolve(src *raster.Buffer, k kernel.Kernel, workers int) (*raster.Buffer, error) {
	if err := checkRun(src, workers); err != nil {
		return nil, err
	}

	plan := partition.Plan(src.Height, workers, k.HalfWidth())
	out := raster.New(src.Format, src.Width, src.Height, src.MaxSample)
	view := stencil.NewBufferView(src)

	pool := NewPool(workers)
	defer pool.Close()

	tasks := make([]func(), 0, len(plan))
	for _, span := range plan {
		if span.Empty() {
			continue
		}
		item := workItem{
			view: view,
			out:  out,
			k:    k,
			x0:   0,
			y0:   span.RowStart,
			x1:   src.Width,
			y1:   span.RowEnd,
		}
		tasks = append(tasks, item.run)
	}
	pool.Run(tasks)

	return out, nil
}

// ConvolveBlocks applies k to src with one worker per cell of a cols x rows
// block grid. A 2x2 grid gives the four-quadrant split; the row backend is
// the 1 x workers special case. Output and edge behavior are identical to
// Convolve.
func ConvolveBlocks(src *raster.Buffer, k kernel.Kernel, cols, rows int) (*raster.Buffer, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: block grid %dx%d", ErrInvalidPartition, cols, rows)
	}
	if err := checkRun(src, cols*rows); err != nil {
		return nil, err
	}

	blocks := partition.Blocks(src.Width, src.Height, cols, rows)
	out := raster.New(src.Format, src.Width, src.Height, src.MaxSample)
	view := stencil.NewBufferView(src)

	pool := NewPool(len(blocks))
	defer pool.Close()

	tasks := make([]func(), 0, len(blocks))
	for _, b := range blocks {
		if b.Empty() {
			continue
		}
		item := workItem{
			view: view,
			out:  out,
			k:    k,
			x0:   b.X0,
			y0:   b.Y0,
			x1:   b.X1,
			y1:   b.Y1,
		}
		tasks = append(tasks, item.run)
	}
	pool.Run(tasks)

	return out, nil
}

// checkRun validates the caller-supplied run parameters.
func checkRun(src *raster.Buffer, workers int) error {
	if workers <= 0 {
		return fmt.Errorf("%w: worker count %d", ErrInvalidPartition, workers)
	}
	if src == nil || src.Width <= 0 || src.Height <= 0 {
		return fmt.Errorf("%w: image dimensions", ErrInvalidPartition)
	}
	return nil
}
