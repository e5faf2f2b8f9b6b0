// Package stencil evaluates a convolution kernel at single sample
// positions.
//
// The evaluator reads its neighborhood through the View interface, which
// hides whether the samples live in a whole shared image or in a worker's
// private haloed row slab. The same evaluator therefore runs unmodified in
// both execution backends.
package stencil

import (
	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
)

// Bounds describes the global image geometry a View belongs to.
type Bounds struct {
	Width     int
	Height    int
	Channels  int
	MaxSample int
}

// View exposes read access to input samples in global image coordinates.
//
// Sample returns ok == false exactly when (x, y) lies outside the global
// image bounds. A View backed by a partial buffer must still answer for
// every coordinate the evaluator can reach from the rows it serves; the
// halo rows included in a worker's slab are what make that possible.
type View interface {
	Bounds() Bounds
	Sample(x, y, c int) (v int, ok bool)
}

// Evaluate computes one output sample at (x, y, c).
//
// Each kernel offset within [-halfWidth, halfWidth]^2 contributes
// weight * sample; neighbors outside the global image bounds contribute
// nothing, so near the edges the weighted sum simply has fewer terms. The
// accumulated float64 sum is truncated toward zero and clamped into
// [0, MaxSample]. Matching that exact rounding is what keeps the two
// backends byte-identical.
func Evaluate(v View, x, y, c int, k kernel.Kernel) int {
	b := v.Bounds()
	half := k.HalfWidth()

	sum := 0.0
	for ky := -half; ky <= half; ky++ {
		for kx := -half; kx <= half; kx++ {
			s, ok := v.Sample(x+kx, y+ky, c)
			if !ok {
				continue
			}
			sum += float64(s) * k.Weight(ky, kx)
		}
	}

	out := int(sum)
	if out < 0 {
		return 0
	}
	if out > b.MaxSample {
		return b.MaxSample
	}
	return out
}

// BufferView adapts a whole raster.Buffer as a View. Used by the
// shared-memory backend, where every worker can see the full image.
type BufferView struct {
	buf *raster.Buffer
}

// NewBufferView wraps buf; the buffer is read through, not copied.
func NewBufferView(buf *raster.Buffer) BufferView {
	return BufferView{buf: buf}
}

func (v BufferView) Bounds() Bounds {
	return Bounds{
		Width:     v.buf.Width,
		Height:    v.buf.Height,
		Channels:  v.buf.Channels(),
		MaxSample: v.buf.MaxSample,
	}
}

func (v BufferView) Sample(x, y, c int) (int, bool) {
	if x < 0 || x >= v.buf.Width || y < 0 || y >= v.buf.Height {
		return 0, false
	}
	return v.buf.At(x, y, c), true
}

// SlabView adapts a worker's private row slab as a View. The slab holds
// rows [span.SlabStart(), span.SlabEnd()) of the global image, i.e. the
// assigned rows plus halo; global row coordinates are translated to slab
// offsets internally.
type SlabView struct {
	bounds    Bounds
	slabStart int
	slabEnd   int
	samples   []int
}

// NewSlabView wraps the samples for global rows [span.SlabStart(),
// span.SlabEnd()). len(samples) must equal span.SlabRows() * width *
// channels.
func NewSlabView(bounds Bounds, span partition.Span, samples []int) SlabView {
	return SlabView{
		bounds:    bounds,
		slabStart: span.SlabStart(),
		slabEnd:   span.SlabEnd(),
		samples:   samples,
	}
}

func (v SlabView) Bounds() Bounds { return v.bounds }

func (v SlabView) Sample(x, y, c int) (int, bool) {
	if x < 0 || x >= v.bounds.Width || y < 0 || y >= v.bounds.Height {
		return 0, false
	}
	// In-bounds rows outside the slab would indicate a halo sizing bug;
	// the plan guarantees the evaluator never reaches past the halo.
	row := y - v.slabStart
	return v.samples[(row*v.bounds.Width+x)*v.bounds.Channels+c], true
}
