package raster

import "fmt"

// Format identifies the pixel layout of a Buffer.
type Format int

const (
	// Grayscale images carry one sample per pixel (Netpbm P2).
	Grayscale Format = iota

	// RGB images carry three interleaved samples per pixel (Netpbm P3).
	RGB
)

// Channels returns the number of samples per pixel for the format.
func (f Format) Channels() int {
	if f == RGB {
		return 3
	}
	return 1
}

// Magic returns the plain Netpbm magic tag for the format.
func (f Format) Magic() string {
	if f == RGB {
		return "P3"
	}
	return "P2"
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	if f == RGB {
		return "rgb"
	}
	return "grayscale"
}

// Buffer is an image held fully in memory.
//
// Samples are stored row-major and channel-interleaved: the sample at
// (x, y, c) lives at index (y*Width + x)*Channels() + c. Every sample is
// expected to lie in [0, MaxSample].
type Buffer struct {
	// Format determines the channel count (Grayscale or RGB).
	Format Format

	// Width is the image width in pixels. Always > 0.
	Width int

	// Height is the image height in pixels. Always > 0.
	Height int

	// MaxSample is the largest legal sample value (e.g. 255).
	MaxSample int

	// Samples holds Width*Height*Channels() values in row-major,
	// channel-interleaved order.
	Samples []int
}

// New allocates a zero-filled Buffer with the given geometry.
//
// New panics if width, height or maxSample is not positive; dimensions are
// validated by whichever component produced them, so a bad value here is a
// programming error rather than a runtime condition.
func New(format Format, width, height, maxSample int) *Buffer {
	if width <= 0 || height <= 0 || maxSample <= 0 {
		panic(fmt.Sprintf("raster: invalid buffer geometry %dx%d max %d", width, height, maxSample))
	}
	return &Buffer{
		Format:    format,
		Width:     width,
		Height:    height,
		MaxSample: maxSample,
		Samples:   make([]int, width*height*format.Channels()),
	}
}

// Channels returns the number of samples per pixel.
func (b *Buffer) Channels() int {
	return b.Format.Channels()
}

// Index returns the flat sample index for coordinate (x, y, c).
// No bounds checking is performed.
func (b *Buffer) Index(x, y, c int) int {
	return (y*b.Width+x)*b.Channels() + c
}

// At returns the sample at (x, y, c).
func (b *Buffer) At(x, y, c int) int {
	return b.Samples[b.Index(x, y, c)]
}

// Set stores v at (x, y, c).
func (b *Buffer) Set(x, y, c, v int) {
	b.Samples[b.Index(x, y, c)] = v
}

// Row returns the slice of samples making up row y.
// The slice aliases the buffer's storage.
func (b *Buffer) Row(y int) []int {
	stride := b.Width * b.Channels()
	return b.Samples[y*stride : (y+1)*stride]
}

// Rows returns the samples for rows [start, end) as one slice.
// The slice aliases the buffer's storage.
func (b *Buffer) Rows(start, end int) []int {
	stride := b.Width * b.Channels()
	return b.Samples[start*stride : end*stride]
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := *b
	out.Samples = make([]int, len(b.Samples))
	copy(out.Samples, b.Samples)
	return &out
}

// Validate checks the buffer invariant: positive geometry, exactly
// Width*Height*Channels samples, and every sample within [0, MaxSample].
func (b *Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", b.Width, b.Height)
	}
	if b.MaxSample <= 0 {
		return fmt.Errorf("invalid max sample value %d", b.MaxSample)
	}
	want := b.Width * b.Height * b.Channels()
	if len(b.Samples) != want {
		return fmt.Errorf("sample count %d does not match %dx%dx%d = %d",
			len(b.Samples), b.Width, b.Height, b.Channels(), want)
	}
	for i, s := range b.Samples {
		if s < 0 || s > b.MaxSample {
			return fmt.Errorf("sample %d at index %d outside [0, %d]", s, i, b.MaxSample)
		}
	}
	return nil
}
