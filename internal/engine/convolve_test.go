package engine

import (
	"errors"
	"testing"

	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/raster"
)

// referenceConvolve is an independent single-threaded implementation of the
// output contract: skip out-of-bounds neighbors, truncate toward zero,
// clamp. Backend results are cross-checked against it.
func referenceConvolve(src *raster.Buffer, k kernel.Kernel) *raster.Buffer {
	out := raster.New(src.Format, src.Width, src.Height, src.MaxSample)
	half := k.HalfWidth()
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			for c := 0; c < src.Channels(); c++ {
				sum := 0.0
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						nx, ny := x+kx, y+ky
						if nx < 0 || nx >= src.Width || ny < 0 || ny >= src.Height {
							continue
						}
						sum += float64(src.At(nx, ny, c)) * k.Weight(ky, kx)
					}
				}
				v := int(sum)
				if v < 0 {
					v = 0
				}
				if v > src.MaxSample {
					v = src.MaxSample
				}
				out.Set(x, y, c, v)
			}
		}
	}
	return out
}

func testImage(width, height int) *raster.Buffer {
	buf := raster.New(raster.Grayscale, width, height, 255)
	for i := range buf.Samples {
		buf.Samples[i] = (i*31 + 7) % 256
	}
	return buf
}

func sameSamples(t *testing.T, got, want *raster.Buffer, label string) {
	t.Helper()
	if len(got.Samples) != len(want.Samples) {
		t.Fatalf("%s: sample count %d, want %d", label, len(got.Samples), len(want.Samples))
	}
	for i := range want.Samples {
		if got.Samples[i] != want.Samples[i] {
			t.Fatalf("%s: sample %d (pixel %d,%d): got %d, want %d",
				label, i, i%got.Width, i/got.Width, got.Samples[i], want.Samples[i])
		}
	}
}

func TestConvolveMatchesReference(t *testing.T) {
	src := testImage(13, 11)
	for _, name := range []string{kernel.Smoothing, kernel.Edge, kernel.Sharpen} {
		k, _ := kernel.Lookup(name)
		want := referenceConvolve(src, k)

		out, err := Convolve(src, k, 4)
		if err != nil {
			t.Fatalf("Convolve(%s) failed: %v", name, err)
		}
		sameSamples(t, out, want, name)
	}
}

// Worker count must never change the output: 1 worker, an even split, a
// count that does not divide the height, and more workers than rows all
// produce byte-identical buffers.
func TestConvolveWorkerCountInvariance(t *testing.T) {
	src := testImage(9, 10)
	k, _ := kernel.Lookup(kernel.Smoothing)
	want := referenceConvolve(src, k)

	for _, workers := range []int{1, 2, 3, 7, 10, 16} {
		out, err := Convolve(src, k, workers)
		if err != nil {
			t.Fatalf("Convolve with %d workers failed: %v", workers, err)
		}
		sameSamples(t, out, want, "workers")
	}
}

func TestConvolveIdentity(t *testing.T) {
	src := testImage(6, 6)

	k, err := kernel.Lookup(kernel.Identity)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	out, err := Convolve(src, k, 3)
	if err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}
	sameSamples(t, out, src, "identity")
}

func TestConvolveDoesNotModifyInput(t *testing.T) {
	src := testImage(5, 5)
	snapshot := src.Clone()

	k, _ := kernel.Lookup(kernel.Sharpen)
	if _, err := Convolve(src, k, 2); err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}
	sameSamples(t, src, snapshot, "input")
}

func TestConvolveRGB(t *testing.T) {
	src := raster.New(raster.RGB, 4, 4, 255)
	for i := range src.Samples {
		src.Samples[i] = (i * 53) % 256
	}
	k, _ := kernel.Lookup(kernel.Edge)

	out, err := Convolve(src, k, 3)
	if err != nil {
		t.Fatalf("Convolve failed: %v", err)
	}
	sameSamples(t, out, referenceConvolve(src, k), "rgb")
}

func TestConvolveBlocksMatchesRows(t *testing.T) {
	src := testImage(12, 9)
	k, _ := kernel.Lookup(kernel.Smoothing)
	want := referenceConvolve(src, k)

	for _, grid := range [][2]int{{2, 2}, {1, 4}, {3, 1}, {4, 4}, {5, 5}} {
		out, err := ConvolveBlocks(src, k, grid[0], grid[1])
		if err != nil {
			t.Fatalf("ConvolveBlocks(%dx%d) failed: %v", grid[0], grid[1], err)
		}
		sameSamples(t, out, want, "blocks")
	}
}

func TestConvolveInvalidArgs(t *testing.T) {
	src := testImage(3, 3)
	k, _ := kernel.Lookup(kernel.Smoothing)

	if _, err := Convolve(src, k, 0); !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("zero workers: got %v, want ErrInvalidPartition", err)
	}
	if _, err := Convolve(src, k, -2); !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("negative workers: got %v, want ErrInvalidPartition", err)
	}
	if _, err := Convolve(nil, k, 2); !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("nil input: got %v, want ErrInvalidPartition", err)
	}
	if _, err := ConvolveBlocks(src, k, 0, 2); !errors.Is(err, ErrInvalidPartition) {
		t.Errorf("zero columns: got %v, want ErrInvalidPartition", err)
	}
}
