package cluster

import (
	"errors"
	"fmt"

	"github.com/kprdes/gridfilter/internal/engine"
	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
	"github.com/kprdes/gridfilter/internal/stencil"
)

// ErrCollective reports a failed collective step. Any participant failing
// to complete a broadcast, scatter or gather is fatal to the whole run.
var ErrCollective = errors.New("collective operation failed")

// Coordinator drives a distributed run from rank 0. It owns the input
// image, scatters haloed row slabs to the workers, computes its own
// partition, and gathers and assembles the output.
type Coordinator struct {
	conns []Conn
}

// NewCoordinator wraps the worker links. conns[i] talks to rank i+1; the
// coordinator itself participates as rank 0, so the run uses
// len(conns)+1 partitions.
func NewCoordinator(conns []Conn) *Coordinator {
	return &Coordinator{conns: conns}
}

// Run executes one full distributed convolution and returns the assembled
// output image. On any collective failure it aborts the remaining workers
// on a best-effort basis and returns an error wrapping ErrCollective; no
// partial result is produced.
func (co *Coordinator) Run(src *raster.Buffer, k kernel.Kernel) (*raster.Buffer, error) {
	if src == nil || src.Width <= 0 || src.Height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions", engine.ErrInvalidPartition)
	}

	out, err := co.run(src, k)
	if err != nil {
		// Closing the links is what aborts the remaining workers. Sending
		// an abort message instead would block on a synchronous transport
		// whenever a healthy worker is itself mid-send; a closed link
		// fails that send immediately and the worker unwinds on its own.
		co.Close()
		return nil, err
	}
	return out, nil
}

func (co *Coordinator) run(src *raster.Buffer, k kernel.Kernel) (*raster.Buffer, error) {
	ranks := len(co.conns) + 1
	plan := partition.Plan(src.Height, ranks, k.HalfWidth())
	weights := weightRows(k)

	// Broadcast: metadata and kernel to every worker.
	for i, conn := range co.conns {
		meta := Meta{
			Rank:      i + 1,
			Workers:   ranks,
			Format:    src.Format,
			Width:     src.Width,
			Height:    src.Height,
			MaxSample: src.MaxSample,
			Kernel:    weights,
		}
		if err := conn.Send(Message{Kind: msgMeta, Meta: &meta}); err != nil {
			return nil, fmt.Errorf("%w: broadcast to rank %d: %v", ErrCollective, i+1, err)
		}
	}

	// Scatter: each worker gets its assigned rows plus halo. Without the
	// halo rows the output near partition boundaries would be computed
	// from missing neighbor data and be silently wrong.
	for i, conn := range co.conns {
		span := plan[i+1]
		slab := Slab{Span: span, Samples: src.Rows(span.SlabStart(), span.SlabEnd())}
		if err := conn.Send(Message{Kind: msgSlab, Slab: &slab}); err != nil {
			return nil, fmt.Errorf("%w: scatter to rank %d: %v", ErrCollective, i+1, err)
		}
	}

	// Barrier: every worker confirms slab receipt before anyone computes.
	for i, conn := range co.conns {
		m, err := conn.Recv()
		if err != nil {
			return nil, fmt.Errorf("%w: scatter ack from rank %d: %v", ErrCollective, i+1, err)
		}
		if m.Kind != msgSlabAck {
			return nil, fmt.Errorf("%w: rank %d answered %s during scatter", ErrCollective, i+1, m.Kind)
		}
	}
	for i, conn := range co.conns {
		if err := conn.Send(Message{Kind: msgStart}); err != nil {
			return nil, fmt.Errorf("%w: start to rank %d: %v", ErrCollective, i+1, err)
		}
	}

	// Local compute: the coordinator is rank 0 and its "slab" is the whole
	// resident image.
	parts := make([]engine.Part, 0, ranks)
	own := plan[0]
	parts = append(parts, engine.Part{
		Span:    own,
		Samples: convolveSpan(stencil.NewBufferView(src), own, src.Width, src.Channels(), k),
	})

	// Gather: collect each worker's output rows; offsets come from the
	// same plan used for scatter.
	for i, conn := range co.conns {
		m, err := conn.Recv()
		if err != nil {
			return nil, fmt.Errorf("%w: gather from rank %d: %v", ErrCollective, i+1, err)
		}
		if m.Kind != msgResult {
			return nil, fmt.Errorf("%w: rank %d answered %s during gather", ErrCollective, i+1, m.Kind)
		}
		if m.Result == nil {
			return nil, fmt.Errorf("%w: rank %d sent a result with no payload", ErrCollective, i+1)
		}
		if m.Result.Span != plan[i+1] {
			return nil, fmt.Errorf("%w: rank %d returned span %+v, plan says %+v",
				ErrCollective, i+1, m.Result.Span, plan[i+1])
		}
		parts = append(parts, engine.Part{Span: m.Result.Span, Samples: m.Result.Samples})
	}

	out, err := engine.Assemble(src.Format, src.Width, src.Height, src.MaxSample, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollective, err)
	}
	return out, nil
}

// Close closes every worker link. Closing more than once is harmless.
func (co *Coordinator) Close() {
	for _, conn := range co.conns {
		conn.Close()
	}
}

// convolveSpan evaluates the kernel over one span's assigned rows and
// returns exactly Span.Rows() output rows.
func convolveSpan(view stencil.View, span partition.Span, width, channels int, k kernel.Kernel) []int {
	out := make([]int, span.Rows()*width*channels)
	i := 0
	for y := span.RowStart; y < span.RowEnd; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				out[i] = stencil.Evaluate(view, x, y, c, k)
				i++
			}
		}
	}
	return out
}

// weightRows flattens a kernel back into the matrix form the wire carries.
func weightRows(k kernel.Kernel) [][]float64 {
	half := k.HalfWidth()
	rows := make([][]float64, k.Size())
	for ky := -half; ky <= half; ky++ {
		row := make([]float64, k.Size())
		for kx := -half; kx <= half; kx++ {
			row[kx+half] = k.Weight(ky, kx)
		}
		rows[ky+half] = row
	}
	return rows
}
