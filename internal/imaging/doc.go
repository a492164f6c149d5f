// Package imaging implements color sampling over decoded images.
//
// The central operations are AverageColor and DominantColor. Both walk a
// sampling grid: starting at the image's top-left pixel, every strideX-th
// column of every strideY-th row is visited, in row-major order. A stride of
// 1 visits every pixel; a stride wider than the image visits only the origin.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image's top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Color Representation
//
// Sampled colors are RGBColor values with 8-bit channels. Pixels are read
// non-premultiplied, so a half-transparent red reads as (255,0,0,128), not
// (128,0,0,128). Hex strings are "#rrggbb", lowercase, alpha excluded.
//
// # Averaging
//
// AverageColor sums each channel over the included pixels and divides by the
// count with an explicit RoundingMode (half-up by default). Pixels with
// alpha at or below AverageOptions.AlphaThreshold are excluded; the AlphaAuto
// default applies a threshold of 128 only to images that have an alpha channel.
//
// # Dominant Color
//
// DominantColor counts exact RGB triples (alpha ignored) and returns the most
// frequent one. Ties go to the color seen first in scan order.
//
// Thumbnail resamples before counting, and Palette clusters similar colors
// with k-means when exact counts are too fragmented to be useful.
//
// # Errors
//
//   - ErrEmptySample: no pixel passed the sampling criteria
//   - ErrInvalidStride: a stride below 1
//   - ErrInvalidRegion: a region that is inverted or leaves the image
//   - *DecodeError: the file could not be opened or decoded
//
// # Thread Safety
//
// Sampling functions are pure and may run concurrently, including on the same
// image as long as nobody mutates it. ImageCache is safe for concurrent use.
package imaging
