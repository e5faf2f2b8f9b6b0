package engine

import (
	"testing"

	"github.com/kprdes/gridfilter/internal/partition"
	"github.com/kprdes/gridfilter/internal/raster"
)

// partsFor slices a finished buffer back into per-span parts, simulating
// what a distributed gather delivers.
func partsFor(buf *raster.Buffer, spans []partition.Span) []Part {
	parts := make([]Part, len(spans))
	for i, s := range spans {
		parts[i] = Part{Span: s, Samples: buf.Rows(s.RowStart, s.RowEnd)}
	}
	return parts
}

func TestAssembleReconstructs(t *testing.T) {
	src := testImage(4, 10)
	spans := partition.Plan(src.Height, 3, 1)

	out, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, partsFor(src, spans))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	sameSamples(t, out, src, "reassembled")
}

// Parts may arrive in any order; the spans carry the offsets.
func TestAssembleOutOfOrder(t *testing.T) {
	src := testImage(4, 9)
	spans := partition.Plan(src.Height, 4, 1)
	parts := partsFor(src, spans)
	parts[0], parts[3] = parts[3], parts[0]
	parts[1], parts[2] = parts[2], parts[1]

	out, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, parts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	sameSamples(t, out, src, "reordered")
}

func TestAssembleWithEmptySpans(t *testing.T) {
	src := testImage(3, 2)
	spans := partition.Plan(src.Height, 5, 1)

	out, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, partsFor(src, spans))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	sameSamples(t, out, src, "sparse")
}

func TestAssembleRejectsGap(t *testing.T) {
	src := testImage(3, 6)
	spans := partition.Plan(src.Height, 3, 1)
	parts := partsFor(src, spans)[:2] // drop the last partition

	if _, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, parts); err == nil {
		t.Fatal("Assemble accepted a missing partition")
	}
}

func TestAssembleRejectsOverlap(t *testing.T) {
	src := testImage(3, 6)
	spans := partition.Plan(src.Height, 3, 1)
	parts := partsFor(src, spans)
	parts = append(parts, parts[1]) // duplicate a partition

	if _, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, parts); err == nil {
		t.Fatal("Assemble accepted an overlapping partition")
	}
}

func TestAssembleRejectsWrongSampleCount(t *testing.T) {
	src := testImage(3, 6)
	spans := partition.Plan(src.Height, 2, 1)
	parts := partsFor(src, spans)
	parts[0].Samples = parts[0].Samples[:len(parts[0].Samples)-1]

	if _, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, parts); err == nil {
		t.Fatal("Assemble accepted a short part")
	}
}

func TestAssembleRejectsOutOfRangeSpan(t *testing.T) {
	src := testImage(3, 4)
	bad := Part{
		Span:    partition.Span{Owner: 0, RowStart: 2, RowEnd: 6},
		Samples: make([]int, 4*3),
	}

	if _, err := Assemble(src.Format, src.Width, src.Height, src.MaxSample, []Part{bad}); err == nil {
		t.Fatal("Assemble accepted a span past the image height")
	}
}
