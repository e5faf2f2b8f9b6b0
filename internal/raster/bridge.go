package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Import loads a PNG, JPEG or GIF image from path and converts it into a
// Buffer with MaxSample 255.
//
// For RGB the 8-bit color channels are copied through unchanged. For
// Grayscale each pixel is reduced to its perceptual lightness (CIE L*),
// which tracks how bright the color actually looks rather than a plain
// channel average.
func Import(path string, format Format) (*Buffer, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FromImage(img, format), nil
}

// FromImage converts a decoded standard-library image into a Buffer.
func FromImage(img image.Image, format Format) *Buffer {
	bounds := img.Bounds()
	buf := New(format, bounds.Dx(), bounds.Dy(), 255)

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			px := img.At(x+bounds.Min.X, y+bounds.Min.Y)
			if format == RGB {
				r, g, b, _ := px.RGBA()
				buf.Set(x, y, 0, int(r>>8))
				buf.Set(x, y, 1, int(g>>8))
				buf.Set(x, y, 2, int(b>>8))
				continue
			}
			buf.Set(x, y, 0, lightness(px))
		}
	}
	return buf
}

// lightness returns the CIE L* lightness of px scaled to [0, 255].
func lightness(px color.Color) int {
	col, ok := colorful.MakeColor(px)
	if !ok {
		// Fully transparent pixel; treat as black.
		return 0
	}
	l, _, _ := col.Lab()
	v := int(math.Round(l * 255))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ToImage converts b into a standard-library image, rescaling samples from
// [0, MaxSample] to 8-bit channels.
func ToImage(b *Buffer) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	scale := func(s int) uint8 {
		return uint8(s * 255 / b.MaxSample)
	}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			var c color.NRGBA
			if b.Format == RGB {
				c = color.NRGBA{
					R: scale(b.At(x, y, 0)),
					G: scale(b.At(x, y, 1)),
					B: scale(b.At(x, y, 2)),
					A: 255,
				}
			} else {
				v := scale(b.At(x, y, 0))
				c = color.NRGBA{R: v, G: v, B: v, A: 255}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Export writes b to path in a format chosen by the file extension
// (.png, .jpg, .gif, ...).
func Export(path string, b *Buffer) error {
	if err := imaging.Save(ToImage(b), path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
