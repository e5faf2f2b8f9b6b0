package stencil

import (
	"testing"

	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
)

// gradientBuffer builds a grayscale image whose sample at (x, y) is
// (y*width + x) * step.
func gradientBuffer(width, height, step, maxSample int) *raster.Buffer {
	buf := raster.New(raster.Grayscale, width, height, maxSample)
	for i := range buf.Samples {
		buf.Samples[i] = i * step
	}
	return buf
}

// TestEvaluateSinglePixel pins the edge policy: on a 1x1 image every
// neighbor is out of bounds, so the output is just the center weight times
// the sample, truncated and clamped.
func TestEvaluateSinglePixel(t *testing.T) {
	buf := raster.New(raster.Grayscale, 1, 1, 255)
	buf.Set(0, 0, 0, 100)
	view := NewBufferView(buf)

	cases := []struct {
		filter string
		want   int
	}{
		{kernel.Smoothing, 11}, // 100/9 = 11.11 truncated
		{kernel.Edge, 255},     // 100*4 = 400 clamped
		{kernel.Sharpen, 255},  // 100*5 = 500 clamped
	}
	for _, tc := range cases {
		k, err := kernel.Lookup(tc.filter)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", tc.filter, err)
		}
		if got := Evaluate(view, 0, 0, 0, k); got != tc.want {
			t.Errorf("%s on 1x1: got %d, want %d", tc.filter, got, tc.want)
		}
	}

	ident, err := kernel.Lookup(kernel.Identity)
	if err != nil {
		t.Fatalf("Lookup(%q) failed: %v", kernel.Identity, err)
	}
	if got := Evaluate(view, 0, 0, 0, ident); got != 100 {
		t.Errorf("identity on 1x1: got %d, want 100", got)
	}
}

// TestEvaluateCorners is the 4x4 smoothing scenario: corner outputs equal
// the sum of the four in-bounds neighbors divided by the kernel's fixed 1/9
// weight, truncated. Out-of-bounds neighbors contribute zero; the divisor
// does not shrink.
func TestEvaluateCorners(t *testing.T) {
	buf := gradientBuffer(4, 4, 10, 255)
	view := NewBufferView(buf)
	k, err := kernel.Lookup(kernel.Smoothing)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	cases := []struct {
		x, y int
		want int
	}{
		{0, 0, 11}, // (0+10+40+50)/9 = 11.1
		{3, 0, 20}, // (20+30+60+70)/9 = 20
		{0, 3, 46}, // (80+90+120+130)/9 = 46.6
		{3, 3, 55}, // (100+110+140+150)/9 = 55.5
	}
	for _, tc := range cases {
		if got := Evaluate(view, tc.x, tc.y, 0, k); got != tc.want {
			t.Errorf("corner (%d,%d): got %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}

	// Interior pixel sees all nine neighbors.
	// (0+10+20 + 40+50+60 + 80+90+100)/9 = 50
	if got := Evaluate(view, 1, 1, 0, k); got != 50 {
		t.Errorf("interior (1,1): got %d, want 50", got)
	}
}

func TestEvaluateClampsNegative(t *testing.T) {
	// Uniform image: the Laplacian sums to zero in the interior, and a
	// corner sees 4*v - 2*v > 0; a brighter neighbor drives it negative.
	buf := raster.New(raster.Grayscale, 3, 3, 255)
	for i := range buf.Samples {
		buf.Samples[i] = 10
	}
	buf.Set(0, 1, 0, 255) // bright left neighbor of the center
	view := NewBufferView(buf)

	k, _ := kernel.Lookup(kernel.Edge)
	if got := Evaluate(view, 1, 1, 0, k); got != 0 {
		t.Errorf("negative sum: got %d, want 0 after clamping", got)
	}
}

func TestEvaluateRGBChannelsIndependent(t *testing.T) {
	buf := raster.New(raster.RGB, 1, 1, 255)
	buf.Set(0, 0, 0, 30)
	buf.Set(0, 0, 1, 60)
	buf.Set(0, 0, 2, 90)
	view := NewBufferView(buf)

	ident, err := kernel.Lookup(kernel.Identity)
	if err != nil {
		t.Fatalf("Lookup(%q) failed: %v", kernel.Identity, err)
	}
	for c, want := range []int{30, 60, 90} {
		if got := Evaluate(view, 0, 0, c, ident); got != want {
			t.Errorf("channel %d: got %d, want %d", c, got, want)
		}
	}
}

// TestSlabViewMatchesBufferView runs the evaluator over a middle partition
// through both view types; with correctly sized halo the slab view must be
// indistinguishable from full-image access.
func TestSlabViewMatchesBufferView(t *testing.T) {
	const height, workers = 9, 3
	buf := gradientBuffer(5, height, 1, 255)
	full := NewBufferView(buf)
	k, _ := kernel.Lookup(kernel.Smoothing)

	spans := partition.Plan(height, workers, k.HalfWidth())
	for _, span := range spans {
		slab := NewSlabView(full.Bounds(), span, buf.Rows(span.SlabStart(), span.SlabEnd()))
		for y := span.RowStart; y < span.RowEnd; y++ {
			for x := 0; x < buf.Width; x++ {
				got := Evaluate(slab, x, y, 0, k)
				want := Evaluate(full, x, y, 0, k)
				if got != want {
					t.Fatalf("span %d at (%d,%d): slab %d, full %d", span.Owner, x, y, got, want)
				}
			}
		}
	}
}

func TestBufferViewOutOfBounds(t *testing.T) {
	buf := raster.New(raster.Grayscale, 2, 2, 255)
	view := NewBufferView(buf)

	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if _, ok := view.Sample(pt[0], pt[1], 0); ok {
			t.Errorf("Sample(%d,%d) reported in bounds", pt[0], pt[1])
		}
	}
	if _, ok := view.Sample(1, 1, 0); !ok {
		t.Error("Sample(1,1) reported out of bounds")
	}
}
