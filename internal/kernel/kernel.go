// Package kernel defines the convolution kernel value type and the catalog
// of named filters the engine ships with.
//
// A kernel is an immutable odd-sized square matrix of floating-point
// weights. Filter "kind" is not a type hierarchy: blur, edge detection and
// sharpening differ only in their coefficient tables, so the catalog maps
// names to Kernel values and the engine runs one generic convolution.
package kernel

import (
	"fmt"
	"sort"
)

// Kernel is a square convolution matrix. The zero value is not usable;
// construct kernels with New or look them up in the catalog.
type Kernel struct {
	weights   []float64
	size      int
	halfWidth int
}

// New builds a Kernel from a square matrix of weights.
//
// The matrix must be non-empty, square, and of odd size so that a center
// element exists. The weights are copied; the caller's slice is not
// retained.
func New(rows [][]float64) (Kernel, error) {
	size := len(rows)
	if size == 0 {
		return Kernel{}, fmt.Errorf("kernel has no rows")
	}
	if size%2 == 0 {
		return Kernel{}, fmt.Errorf("kernel size %d is even; a center element is required", size)
	}
	flat := make([]float64, 0, size*size)
	for i, row := range rows {
		if len(row) != size {
			return Kernel{}, fmt.Errorf("kernel row %d has %d columns, want %d", i, len(row), size)
		}
		flat = append(flat, row...)
	}
	return Kernel{weights: flat, size: size, halfWidth: size / 2}, nil
}

// MustNew is New for statically-known matrices; it panics on error.
func MustNew(rows [][]float64) Kernel {
	k, err := New(rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Size returns the kernel's edge length (always odd).
func (k Kernel) Size() int { return k.size }

// HalfWidth returns the number of neighbor rows/columns the kernel reaches
// in each direction: Size() == 2*HalfWidth()+1.
func (k Kernel) HalfWidth() int { return k.halfWidth }

// Weight returns the coefficient at signed offset (ky, kx), where both
// offsets range over [-HalfWidth(), HalfWidth()].
func (k Kernel) Weight(ky, kx int) float64 {
	return k.weights[(ky+k.halfWidth)*k.size+(kx+k.halfWidth)]
}

// Named filters supplied by the catalog.
const (
	Smoothing = "smoothing"
	Edge      = "edge"
	Sharpen   = "sharpen"
	Identity  = "identity"
)

var catalog = map[string]Kernel{
	// Uniform 3x3 averaging blur.
	Smoothing: MustNew([][]float64{
		{1 / 9.0, 1 / 9.0, 1 / 9.0},
		{1 / 9.0, 1 / 9.0, 1 / 9.0},
		{1 / 9.0, 1 / 9.0, 1 / 9.0},
	}),
	// Laplacian second-derivative edge detector.
	Edge: MustNew([][]float64{
		{0, -1, 0},
		{-1, 4, -1},
		{0, -1, 0},
	}),
	// Unsharp-mask sharpening.
	Sharpen: MustNew([][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}),
	// 1x1 pass-through, reproduces the input exactly.
	Identity: MustNew([][]float64{{1}}),
}

// ErrUnknownFilter is returned by Lookup for names not in the catalog.
var ErrUnknownFilter = fmt.Errorf("unknown filter")

// Lookup returns the catalog kernel registered under name.
//
// The name is an opaque selector; unrecognized names fail with an error
// wrapping ErrUnknownFilter before any computation starts.
func Lookup(name string) (Kernel, error) {
	k, ok := catalog[name]
	if !ok {
		return Kernel{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownFilter, name, Names())
	}
	return k, nil
}

// Names returns the catalog's filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
