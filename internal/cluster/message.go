package cluster

import (
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
)

// msgKind discriminates the protocol messages.
type msgKind int

const (
	msgMeta msgKind = iota + 1
	msgSlab
	msgSlabAck
	msgStart
	msgResult
)

func (k msgKind) String() string {
	switch k {
	case msgMeta:
		return "meta"
	case msgSlab:
		return "slab"
	case msgSlabAck:
		return "slab-ack"
	case msgStart:
		return "start"
	case msgResult:
		return "result"
	}
	return "unknown"
}

// Meta is the broadcast payload: everything a worker needs to recompute the
// partition plan and run the stencil evaluator locally.
type Meta struct {
	// Rank of the receiving worker; the coordinator is rank 0.
	Rank int

	// Workers is the total participant count including the coordinator.
	Workers int

	Format    raster.Format
	Width     int
	Height    int
	MaxSample int

	// Kernel carries the convolution weights by value so workers need no
	// catalog of their own.
	Kernel [][]float64
}

// Slab is the scatter payload: the input rows
// [Span.SlabStart(), Span.SlabEnd()), i.e. the worker's assigned rows plus
// halo.
type Slab struct {
	Span    partition.Span
	Samples []int
}

// Result is the gather payload: exactly Span.Rows() output rows, no halo.
type Result struct {
	Span    partition.Span
	Samples []int
}

// Message is the single wire envelope; Kind selects which payload field is
// set. There is no abort message: a participant ends the run by closing its
// link, which every peer observes as a failed send or receive.
type Message struct {
	Kind   msgKind
	Meta   *Meta
	Slab   *Slab
	Result *Result
}
