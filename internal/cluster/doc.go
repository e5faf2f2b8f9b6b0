// Package cluster runs the convolution across share-nothing workers that
// exchange data only through explicit messages.
//
// # Roles
//
// One coordinator (rank 0) owns the input and output images. Remote workers
// hold nothing but what the coordinator sends them. A run proceeds through
// synchronous collective steps, each a barrier across all participants:
//
//  1. Broadcast: image metadata and kernel weights go to every worker.
//  2. Scatter: each worker receives its assigned rows plus the halo rows
//     the kernel's half-width requires from the adjacent partitions, so
//     local computation needs no further communication. Scatter completes
//     at every worker before any worker starts computing.
//  3. Compute: each worker convolves exactly its assigned rows.
//  4. Gather: the coordinator collects each worker's output rows at the
//     offsets implied by the shared partition plan and assembles the image.
//
// The partition plan is recomputed independently by every participant from
// the broadcast metadata; because the plan is deterministic, scatter and
// gather offsets always agree.
//
// # Failure Model
//
// This is a one-shot batch computation. Any participant failing during a
// collective step is fatal to the whole run: the error wraps ErrCollective,
// no partial output is produced, and nothing is retried.
//
// # Transports
//
// Links are gob-encoded message streams over any io.ReadWriteCloser. TCP
// connections serve real multi-process runs; in-process pipes serve the
// single-binary mode and the test suite. The collective protocol does not
// know which transport carries it.
package cluster
