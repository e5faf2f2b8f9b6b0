// Package raster provides the in-memory image representation used by the
// convolution engine, together with codecs for moving images in and out of
// that representation.
//
// # Buffer Layout
//
// A Buffer stores integer samples in row-major, channel-interleaved order:
// the sample for logical coordinate (x, y, c) lives at index
// (y*Width + x)*Channels + c. Coordinates are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward.
//
// # Formats
//
// The native on-disk format is the plain (ASCII) Netpbm family: P2 for
// grayscale and P3 for RGB. A whitespace-delimited header carrying the magic
// tag, width, height and maximum sample value is followed by the samples
// themselves. Decode and Encode implement this layout; Load and Save are the
// file-path conveniences around them.
//
// For interoperability with common image formats, bridge functions convert
// between Buffer and the standard library image types, using PNG/JPEG/GIF
// decoding from the imaging library. Importing a color image as grayscale
// converts each pixel through its perceptual lightness.
//
// # Error Handling
//
// All I/O and decode failures wrap the underlying error. A Buffer produced
// by Decode always satisfies the layout invariant: exactly
// Width*Height*Channels samples, each within [0, MaxSample].
package raster
