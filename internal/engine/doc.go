// Package engine runs kernel convolution over a raster image with parallel
// workers sharing memory, and reassembles partitioned outputs into one
// buffer.
//
// # Execution Model
//
// The input buffer is read-only and fully visible to every worker, so no
// boundary data ever has to move. The output buffer is partitioned into
// disjoint regions, one per work item, which is what makes the convolution
// phase safe without locks: no two workers can write the same output index.
// A run finishes only when every worker has joined.
//
// Two partitioning shapes are supported. Convolve assigns contiguous row
// ranges (the common case, scaling to any worker count), and ConvolveBlocks
// assigns a 2D grid of blocks (the four-quadrant style useful with a small
// fixed worker count). Both consume the same partition package plans.
//
// Assemble is the other half: given per-partition output rows, it writes
// each at its row offset into a fresh buffer and verifies that every row
// was provided exactly once. The distributed backend feeds its gathered
// results through it.
package engine
