package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
)

// Palette extracts up to k prominent colors with k-means clustering.
//
// Unlike DominantColor, which counts exact triples, Palette groups similar
// colors, so a noisy photograph still yields a useful summary. Results are
// sorted by cluster size, largest first. The image is downscaled internally
// before clustering, so percentages are approximate.
func Palette(img image.Image, k int) ([]ColorFrequency, error) {
	if k < 1 {
		return nil, fmt.Errorf("palette size must be positive, got %d", k)
	}
	cc, err := countColors(img, 1, 1)
	if err != nil {
		return nil, err
	}
	if !hasVisiblePixel(img) {
		return nil, ErrEmptySample
	}
	// k-means++ seeding needs at least k distinct points.
	if n := len(cc.order); n < k {
		k = n
	}

	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract palette: %w: %w", ErrEmptySample, err)
	}

	total := 0
	for _, item := range items {
		total += item.Cnt
	}

	colors := make([]ColorFrequency, 0, len(items))
	for _, item := range items {
		// Clustering runs on a downscaled copy and can leave clusters empty.
		if item.Cnt == 0 {
			continue
		}
		c := RGBColor{R: uint8(item.Color.R), G: uint8(item.Color.G), B: uint8(item.Color.B)}
		pct := 0.0
		if total > 0 {
			pct = float64(item.Cnt) / float64(total) * 100
		}
		colors = append(colors, ColorFrequency{
			Hex:        FormatHex(c),
			RGB:        c,
			Count:      item.Cnt,
			Percentage: pct,
		})
	}

	if len(colors) == 0 {
		return nil, ErrEmptySample
	}

	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].Count > colors[j].Count
	})
	return colors, nil
}

func hasVisiblePixel(img image.Image) bool {
	visible := false
	_ = gridWalk(img, 1, 1, func(x, y int) {
		if !visible && pixelAt(img, x, y).A > 0 {
			visible = true
		}
	})
	return visible
}
