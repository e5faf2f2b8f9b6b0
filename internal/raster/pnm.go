package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Decode reads a plain Netpbm image (P2 grayscale or P3 RGB) from r.
//
// The format is a whitespace-delimited header (magic tag, width, height,
// maximum sample value) followed by width*height*channels integer samples.
// Decode validates the header and the sample count; samples outside
// [0, MaxSample] are rejected so the buffer invariant holds on return.
func Decode(r io.Reader) (*Buffer, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}
	nextInt := func(field string) (int, error) {
		tok, err := next()
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", field, err)
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("parsing %s %q: %w", field, tok, err)
		}
		return v, nil
	}

	magic, err := next()
	if err != nil {
		return nil, fmt.Errorf("reading magic tag: %w", err)
	}
	var format Format
	switch magic {
	case "P2":
		format = Grayscale
	case "P3":
		format = RGB
	default:
		return nil, fmt.Errorf("unsupported magic tag %q (want P2 or P3)", magic)
	}

	width, err := nextInt("width")
	if err != nil {
		return nil, err
	}
	height, err := nextInt("height")
	if err != nil {
		return nil, err
	}
	maxSample, err := nextInt("max sample value")
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || maxSample <= 0 {
		return nil, fmt.Errorf("invalid header %dx%d max %d", width, height, maxSample)
	}

	buf := New(format, width, height, maxSample)
	for i := range buf.Samples {
		v, err := nextInt("sample")
		if err != nil {
			return nil, fmt.Errorf("sample %d of %d: %w", i, len(buf.Samples), err)
		}
		if v < 0 || v > maxSample {
			return nil, fmt.Errorf("sample %d at index %d outside [0, %d]", v, i, maxSample)
		}
		buf.Samples[i] = v
	}
	return buf, nil
}

// Encode writes b to w in the plain Netpbm layout: header on the first three
// lines, then one sample per line.
func Encode(w io.Writer, b *Buffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%d %d\n%d\n", b.Format.Magic(), b.Width, b.Height, b.MaxSample)
	for _, s := range b.Samples {
		bw.WriteString(strconv.Itoa(s))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// Load reads the plain Netpbm image at path into a Buffer.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return buf, nil
}

// Save writes b to path in the plain Netpbm layout. The file is created or
// truncated; callers are expected to save only after the full output has
// been assembled so no partially-computed image reaches disk.
func Save(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}
