package imaging

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

var resampleFilters = map[string]transform.ResampleFilter{
	"nearest":  transform.NearestNeighbor,
	"box":      transform.Box,
	"linear":   transform.Linear,
	"gaussian": transform.Gaussian,
	"mitchell": transform.MitchellNetravali,
	"catmull":  transform.CatmullRom,
	"lanczos":  transform.Lanczos,
}

// FilterNames lists the accepted resampling filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(resampleFilters))
	for name := range resampleFilters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFilter looks up a resampling filter by name. Empty means "lanczos".
func ParseFilter(name string) (transform.ResampleFilter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "lanczos"
	}
	f, ok := resampleFilters[key]
	if !ok {
		return transform.ResampleFilter{}, fmt.Errorf("unknown resample filter %q (valid: %s)",
			name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// Thumbnail resamples img to exactly width x height.
//
// Counting colors on a small thumbnail instead of a stride grid trades exact
// source colors for a summary of the whole frame: every output pixel blends
// its neighborhood. With "nearest" no new colors are introduced.
func Thumbnail(img image.Image, width, height int, filter string) (image.Image, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %dx%d", width, height)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptySample
	}
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return transform.Resize(img, width, height, f), nil
}

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CropRegion returns a copy of the region of img, re-based at (0,0), so that
// sampling grids start at the region's top-left corner.
func CropRegion(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("%w: x1 must be < x2, y1 must be < y2", ErrInvalidRegion)
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > bounds.Dx() || r.Y2 > bounds.Dy() {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) outside image bounds %dx%d",
			ErrInvalidRegion, r.X1, r.Y1, r.X2, r.Y2, bounds.Dx(), bounds.Dy())
	}
	rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}
