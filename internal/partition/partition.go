// Package partition computes the deterministic assignment of image regions
// to workers.
//
// The row plan is the primary form: contiguous, disjoint row ranges whose
// union is exactly [0, height). Each span also records how many halo rows
// the worker needs from its neighbors above and below so that stencil
// computation near partition boundaries sees every required input row.
// Blocks generalizes the same split to two dimensions for quadrant-style
// shared-memory execution.
package partition

import "fmt"

// Span assigns a contiguous row range [RowStart, RowEnd) to one worker,
// together with the halo rows required from adjacent partitions.
//
// Spans for a given (height, workers, halfWidth) triple are deterministic,
// so every participant of a run can recompute the same plan independently;
// scatter and gather offsets in the distributed backend rely on this.
type Span struct {
	// Owner is the worker index in [0, workers).
	Owner int

	// RowStart and RowEnd delimit the assigned rows; RowEnd is exclusive.
	// RowStart == RowEnd for workers left without rows when workers exceed
	// the image height.
	RowStart int
	RowEnd   int

	// HaloAbove and HaloBelow count the extra input rows needed beyond the
	// assigned range. They are clamped at the image edges, so the first
	// span has HaloAbove 0 and the last has HaloBelow 0.
	HaloAbove int
	HaloBelow int
}

// Rows returns the number of assigned rows.
func (s Span) Rows() int { return s.RowEnd - s.RowStart }

// Empty reports whether the span has no assigned rows.
func (s Span) Empty() bool { return s.RowStart == s.RowEnd }

// SlabStart returns the first input row the worker must hold,
// including halo.
func (s Span) SlabStart() int { return s.RowStart - s.HaloAbove }

// SlabEnd returns one past the last input row the worker must hold,
// including halo.
func (s Span) SlabEnd() int { return s.RowEnd + s.HaloBelow }

// SlabRows returns the number of input rows including halo.
func (s Span) SlabRows() int { return s.SlabEnd() - s.SlabStart() }

// Plan splits height rows across workers.
//
// Every worker receives floor(height/workers) rows; the remainder rows go
// one each to the lowest-numbered workers, so the row counts differ by at
// most one and sum to height exactly. Halo sizes are halfWidth rows in each
// direction, clamped to what actually exists beyond the span: a span
// touching the top or bottom image edge has a zero halo on that side, and
// an empty span has no halo at all.
//
// Plan panics when height or workers is not positive; that is a caller
// contract violation, checked before any worker is started.
func Plan(height, workers, halfWidth int) []Span {
	if height <= 0 || workers <= 0 {
		panic(fmt.Sprintf("partition: invalid plan height=%d workers=%d", height, workers))
	}
	if halfWidth < 0 {
		panic(fmt.Sprintf("partition: negative half-width %d", halfWidth))
	}

	base := height / workers
	remainder := height % workers

	spans := make([]Span, workers)
	row := 0
	for i := range spans {
		rows := base
		if i < remainder {
			rows++
		}
		s := Span{Owner: i, RowStart: row, RowEnd: row + rows}
		if !s.Empty() {
			s.HaloAbove = min(halfWidth, s.RowStart)
			s.HaloBelow = min(halfWidth, height-s.RowEnd)
		}
		spans[i] = s
		row = s.RowEnd
	}
	return spans
}

// Block assigns a 2D pixel region to one worker: x in [X0, X1),
// y in [Y0, Y1).
type Block struct {
	Owner int
	X0    int
	Y0    int
	X1    int
	Y1    int
}

// Empty reports whether the block covers no pixels.
func (b Block) Empty() bool { return b.X0 == b.X1 || b.Y0 == b.Y1 }

// Blocks splits a width x height image into a cols x rows grid of disjoint
// blocks covering every pixel exactly once. Remainder columns and rows go
// to the lowest-numbered grid cells, mirroring Plan. Owners are numbered in
// row-major grid order.
//
// A cols x rows value of 2x2 yields the classic four-quadrant split; 1 x n
// reduces to the row plan with full-width columns.
//
// Blocks panics when any argument is not positive.
func Blocks(width, height, cols, rows int) []Block {
	if width <= 0 || height <= 0 || cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("partition: invalid block grid %dx%d over %dx%d", cols, rows, width, height))
	}

	xs := cuts(width, cols)
	ys := cuts(height, rows)

	blocks := make([]Block, 0, cols*rows)
	for gy := 0; gy < rows; gy++ {
		for gx := 0; gx < cols; gx++ {
			blocks = append(blocks, Block{
				Owner: gy*cols + gx,
				X0:    xs[gx],
				Y0:    ys[gy],
				X1:    xs[gx+1],
				Y1:    ys[gy+1],
			})
		}
	}
	return blocks
}

// cuts returns n+1 boundaries splitting [0, total) into n contiguous
// ranges whose sizes differ by at most one, larger ranges first.
func cuts(total, n int) []int {
	base := total / n
	remainder := total % n
	bounds := make([]int, n+1)
	for i := 0; i < n; i++ {
		size := base
		if i < remainder {
			size++
		}
		bounds[i+1] = bounds[i] + size
	}
	return bounds
}
