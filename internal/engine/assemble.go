package engine

import (
	"fmt"

	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
)

// Part holds one partition's finished output rows: exactly
// Span.Rows() * width * channels samples, no halo.
type Part struct {
	Span    partition.Span
	Samples []int
}

// Assemble writes each part's rows into a fresh buffer at the part's row
// offset and returns the completed image.
//
// Parts arriving in any order is fine; what Assemble enforces is that the
// parts cover every row in [0, height) exactly once and that each carries
// the sample count its span implies. Any violation means the partition plan
// used to produce the parts disagrees with the one used to collect them,
// and the run fails rather than writing a partially-filled image.
func Assemble(format raster.Format, width, height, maxSample int, parts []Part) (*raster.Buffer, error) {
	out := raster.New(format, width, height, maxSample)
	stride := width * out.Channels()

	covered := make([]bool, height)
	for _, p := range parts {
		span := p.Span
		if span.RowStart < 0 || span.RowEnd > height || span.RowStart > span.RowEnd {
			return nil, fmt.Errorf("partition %d rows [%d, %d) outside image height %d",
				span.Owner, span.RowStart, span.RowEnd, height)
		}
		if len(p.Samples) != span.Rows()*stride {
			return nil, fmt.Errorf("partition %d carries %d samples, want %d",
				span.Owner, len(p.Samples), span.Rows()*stride)
		}
		for y := span.RowStart; y < span.RowEnd; y++ {
			if covered[y] {
				return nil, fmt.Errorf("row %d written by more than one partition", y)
			}
			covered[y] = true
		}
		copy(out.Rows(span.RowStart, span.RowEnd), p.Samples)
	}
	for y, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("row %d not covered by any partition", y)
		}
	}
	return out, nil
}
