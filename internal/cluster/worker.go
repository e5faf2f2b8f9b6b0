package cluster

import (
	"fmt"

	"github.com/kprdes/gridfilter/internal/kernel"
	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/stencil"
)

// Worker is one non-coordinator participant. It holds only the row slab the
// coordinator scatters to it and never sees the rest of the image.
type Worker struct {
	conn Conn
}

// NewWorker wraps the link back to the coordinator.
func NewWorker(conn Conn) *Worker {
	return &Worker{conn: conn}
}

// Run participates in exactly one distributed run: receive metadata,
// receive the haloed slab, compute the assigned rows, send them back.
// A worker with an empty span still takes part in every collective step;
// it receives a zero-row slab and returns a zero-row result.
func (w *Worker) Run() error {
	meta, err := w.recvMeta()
	if err != nil {
		return err
	}

	k, err := kernel.New(meta.Kernel)
	if err != nil {
		return fmt.Errorf("%w: broadcast kernel: %v", ErrCollective, err)
	}

	// The plan is deterministic, so recomputing it from the broadcast
	// metadata yields the same spans the coordinator scattered with.
	plan := partition.Plan(meta.Height, meta.Workers, k.HalfWidth())
	span := plan[meta.Rank]
	channels := meta.Format.Channels()

	slab, err := w.recvSlab(span, meta.Width, channels)
	if err != nil {
		return err
	}
	if err := w.conn.Send(Message{Kind: msgSlabAck}); err != nil {
		return fmt.Errorf("%w: scatter ack: %v", ErrCollective, err)
	}
	if err := w.awaitStart(); err != nil {
		return err
	}

	bounds := stencil.Bounds{
		Width:     meta.Width,
		Height:    meta.Height,
		Channels:  channels,
		MaxSample: meta.MaxSample,
	}
	view := stencil.NewSlabView(bounds, span, slab.Samples)
	result := Result{Span: span, Samples: convolveSpan(view, span, meta.Width, channels, k)}

	if err := w.conn.Send(Message{Kind: msgResult, Result: &result}); err != nil {
		return fmt.Errorf("%w: gather: %v", ErrCollective, err)
	}
	return nil
}

func (w *Worker) recvMeta() (*Meta, error) {
	m, err := w.conn.Recv()
	if err != nil {
		return nil, fmt.Errorf("%w: broadcast: %v", ErrCollective, err)
	}
	if m.Kind != msgMeta || m.Meta == nil {
		return nil, fmt.Errorf("%w: expected metadata, got %s", ErrCollective, m.Kind)
	}
	meta := m.Meta
	if meta.Rank < 1 || meta.Rank >= meta.Workers || meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("%w: malformed metadata %+v", ErrCollective, *meta)
	}
	return meta, nil
}

func (w *Worker) recvSlab(span partition.Span, width, channels int) (*Slab, error) {
	m, err := w.conn.Recv()
	if err != nil {
		return nil, fmt.Errorf("%w: scatter: %v", ErrCollective, err)
	}
	if m.Kind != msgSlab || m.Slab == nil {
		return nil, fmt.Errorf("%w: expected slab, got %s", ErrCollective, m.Kind)
	}
	if m.Slab.Span != span {
		return nil, fmt.Errorf("%w: scattered span %+v disagrees with local plan %+v",
			ErrCollective, m.Slab.Span, span)
	}
	if want := span.SlabRows() * width * channels; len(m.Slab.Samples) != want {
		return nil, fmt.Errorf("%w: slab carries %d samples, want %d",
			ErrCollective, len(m.Slab.Samples), want)
	}
	return m.Slab, nil
}

func (w *Worker) awaitStart() error {
	m, err := w.conn.Recv()
	if err != nil {
		return fmt.Errorf("%w: start barrier: %v", ErrCollective, err)
	}
	if m.Kind != msgStart {
		return fmt.Errorf("%w: expected start, got %s", ErrCollective, m.Kind)
	}
	return nil
}
