package imaging

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// Alpha threshold sentinels for AverageOptions.AlphaThreshold.
const (
	// AlphaAuto skips pixels with alpha <= DefaultAlphaThreshold when the
	// image has an alpha channel, and filters nothing otherwise.
	AlphaAuto = -1

	// NoAlphaFilter includes every sampled pixel regardless of alpha.
	NoAlphaFilter = -2

	// DefaultAlphaThreshold is the cutoff AlphaAuto uses for images with alpha.
	DefaultAlphaThreshold = 128
)

// RoundingMode selects how a channel mean (sum / count) becomes an integer.
//
// All modes use integer arithmetic and are fully deterministic.
type RoundingMode int

const (
	// RoundHalfUp rounds .5 upward. Channel sums are never negative, so this
	// is the same as rounding half away from zero. 127.5 -> 128.
	RoundHalfUp RoundingMode = iota

	// RoundHalfEven rounds .5 to the nearest even integer. 127.5 -> 128,
	// 0.5 -> 0, 1.5 -> 2.
	RoundHalfEven

	// RoundDown truncates the fractional part. 127.5 -> 127.
	RoundDown
)

var roundingNames = map[RoundingMode]string{
	RoundHalfUp:   "half-up",
	RoundHalfEven: "half-even",
	RoundDown:     "down",
}

func (m RoundingMode) String() string {
	if name, ok := roundingNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RoundingMode(%d)", int(m))
}

// ParseRoundingMode parses "half-up", "half-even" or "down" (case-insensitive).
// An empty string selects RoundHalfUp.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half-up":
		return RoundHalfUp, nil
	case "half-even":
		return RoundHalfEven, nil
	case "down":
		return RoundDown, nil
	default:
		return RoundHalfUp, fmt.Errorf("unknown rounding mode %q (want half-up, half-even or down)", s)
	}
}

// divide returns round(sum / count) under the mode. count must be > 0.
func (m RoundingMode) divide(sum, count uint64) uint8 {
	q, r := sum/count, sum%count
	switch m {
	case RoundDown:
	case RoundHalfEven:
		if 2*r > count || (2*r == count && q%2 == 1) {
			q++
		}
	default:
		if 2*r >= count {
			q++
		}
	}
	return uint8(q)
}

// AverageOptions controls AverageColor.
type AverageOptions struct {
	// AlphaThreshold excludes pixels whose alpha is <= the threshold. Values
	// 0-255 are used as given; AlphaAuto and NoAlphaFilter are sentinels.
	AlphaThreshold int

	// Rounding converts each channel mean to an integer.
	Rounding RoundingMode
}

// DefaultAverageOptions returns AlphaAuto with half-up rounding.
func DefaultAverageOptions() AverageOptions {
	return AverageOptions{
		AlphaThreshold: AlphaAuto,
		Rounding:       RoundHalfUp,
	}
}

// effectiveThreshold resolves the sentinels for img. A negative result means
// no alpha filtering.
func (o AverageOptions) effectiveThreshold(img image.Image) int {
	switch {
	case o.AlphaThreshold == AlphaAuto:
		if HasAlpha(img) {
			return DefaultAlphaThreshold
		}
		return -1
	case o.AlphaThreshold < 0:
		return -1
	case o.AlphaThreshold > 255:
		return 255
	}
	return o.AlphaThreshold
}

// gridWalk calls fn for every pixel on the sampling grid in row-major order:
// y = 0, strideY, 2*strideY, ... and within each row x = 0, strideX, ...
// Coordinates passed to fn are absolute (offset by Bounds().Min).
func gridWalk(img image.Image, strideX, strideY int, fn func(x, y int)) error {
	if strideX < 1 || strideY < 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidStride, strideX, strideY)
	}
	// Step over offsets, not absolute coordinates, so a huge stride cannot
	// overflow past a non-zero origin.
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for dy := 0; dy < h; dy += strideY {
		for dx := 0; dx < w; dx += strideX {
			fn(bounds.Min.X+dx, bounds.Min.Y+dy)
		}
	}
	return nil
}

// AverageColor computes the per-channel arithmetic mean over the sampling grid.
//
// Parameters:
//   - img: The source image. It is only read.
//   - strideX, strideY: Sampling step in each dimension (10 = every 10th pixel).
//     A stride larger than the image samples exactly the origin pixel.
//   - opts: Alpha filtering and rounding. See DefaultAverageOptions.
//
// Returns ErrEmptySample when no sampled pixel passed the alpha filter, and
// ErrInvalidStride when a stride is below 1. Because the mean is sum/count,
// the result does not depend on the order pixels are visited in.
func AverageColor(img image.Image, strideX, strideY int, opts AverageOptions) (RGBColor, error) {
	threshold := opts.effectiveThreshold(img)

	var r, g, b, count uint64
	err := gridWalk(img, strideX, strideY, func(x, y int) {
		p := pixelAt(img, x, y)
		if threshold >= 0 && int(p.A) <= threshold {
			return
		}
		r += uint64(p.R)
		g += uint64(p.G)
		b += uint64(p.B)
		count++
	})
	if err != nil {
		return RGBColor{}, err
	}
	if count == 0 {
		return RGBColor{}, ErrEmptySample
	}

	return RGBColor{
		R: opts.Rounding.divide(r, count),
		G: opts.Rounding.divide(g, count),
		B: opts.Rounding.divide(b, count),
	}, nil
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb"
	RGB        RGBColor `json:"rgb"`        // RGB components
	Count      int      `json:"count"`      // Number of sampled pixels with this color
	Percentage float64  `json:"percentage"` // Share of sampled pixels (0-100)
}

// colorCounts is an exact-color histogram that remembers first-seen order.
type colorCounts struct {
	counts map[uint32]int
	order  []uint32
	total  int
}

func countColors(img image.Image, strideX, strideY int) (*colorCounts, error) {
	cc := &colorCounts{counts: make(map[uint32]int)}
	err := gridWalk(img, strideX, strideY, func(x, y int) {
		p := pixelAt(img, x, y)
		key := RGBColor{R: p.R, G: p.G, B: p.B}.packed()
		if _, seen := cc.counts[key]; !seen {
			cc.order = append(cc.order, key)
		}
		cc.counts[key]++
		cc.total++
	})
	if err != nil {
		return nil, err
	}
	if cc.total == 0 {
		return nil, ErrEmptySample
	}
	return cc, nil
}

// DominantColor returns the exact RGB triple that occurs most often on the
// sampling grid. Alpha is ignored.
//
// Ties are broken by scan order: among the colors sharing the highest count,
// the one first encountered in row-major order wins, so repeated runs on the
// same image always return the same color.
//
// Returns ErrEmptySample when no pixel is visited (zero-size image) and
// ErrInvalidStride when a stride is below 1.
func DominantColor(img image.Image, strideX, strideY int) (RGBColor, error) {
	cc, err := countColors(img, strideX, strideY)
	if err != nil {
		return RGBColor{}, err
	}

	best, bestCount := cc.order[0], 0
	for _, key := range cc.order {
		if n := cc.counts[key]; n > bestCount {
			best, bestCount = key, n
		}
	}
	return unpack(best), nil
}

// ColorFrequencies returns every exact color on the sampling grid, most
// frequent first. Colors with equal counts keep their scan order, so the first
// entry always equals DominantColor for the same arguments.
func ColorFrequencies(img image.Image, strideX, strideY int) ([]ColorFrequency, error) {
	cc, err := countColors(img, strideX, strideY)
	if err != nil {
		return nil, err
	}

	colors := make([]ColorFrequency, 0, len(cc.order))
	for _, key := range cc.order {
		c := unpack(key)
		n := cc.counts[key]
		colors = append(colors, ColorFrequency{
			Hex:        FormatHex(c),
			RGB:        c,
			Count:      n,
			Percentage: float64(n) / float64(cc.total) * 100,
		})
	}

	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].Count > colors[j].Count
	})
	return colors, nil
}
