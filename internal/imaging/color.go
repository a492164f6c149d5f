package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// This is the value every sampling operation reports. Each component ranges
// from 0 to 255; the uint8 type guarantees results can never leave that range.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color as "#rrggbb". See FormatHex.
func (c RGBColor) Hex() string {
	return FormatHex(c)
}

func (c RGBColor) String() string {
	return fmt.Sprintf("R:%d, G:%d, B:%d", c.R, c.G, c.B)
}

// packed returns the color as 0x00RRGGBB, used as a map key when counting.
func (c RGBColor) packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpack(v uint32) RGBColor {
	return RGBColor{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// RGBAColor represents an RGBA color with 8-bit, non-premultiplied components.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string     `json:"hex"`            // Hex format "#rrggbb" (no alpha)
	RGB  RGBColor   `json:"rgb"`            // RGB components
	RGBA *RGBAColor `json:"rgba,omitempty"` // Only set for single-pixel samples
	HSL  HSLColor   `json:"hsl"`            // HSL representation
}

// NewColorResult expands an RGB color into its hex and HSL representations.
func NewColorResult(c RGBColor) *ColorResult {
	return &ColorResult{
		Hex: FormatHex(c),
		RGB: c,
		HSL: toHSL(c),
	}
}

// FormatHex renders a color as "#" followed by two lowercase, zero-padded hex
// digits per channel in R, G, B order. For example (10, 0, 255) -> "#0a00ff".
func FormatHex(c RGBColor) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a "#rrggbb" string (either case) back into an RGBColor.
//
// It is the inverse of FormatHex: ParseHex(FormatHex(c)) == c for every c.
func ParseHex(s string) (RGBColor, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: want #rrggbb", s)
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based relative to the image's top-left corner. The RGBA
// field carries the non-premultiplied alpha; Hex and RGB exclude it.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	p := pixelAt(img, px, py)
	rgb := RGBColor{R: p.R, G: p.G, B: p.B}
	result := NewColorResult(rgb)
	result.RGBA = &RGBAColor{R: p.R, G: p.G, B: p.B, A: p.A}
	return result, nil
}

// HasAlpha reports whether the image's storage carries an alpha channel.
//
// JPEG images decode to *image.YCbCr or *image.Gray and never have alpha.
// Paletted images have alpha only if some palette entry is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64,
		*image.Alpha, *image.Alpha16, *image.NYCbCrA:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// pixelAt returns the non-premultiplied 8-bit color at absolute coordinates.
func pixelAt(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		i := n.PixOffset(x, y)
		s := n.Pix[i : i+4 : i+4]
		return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func toHSL(c RGBColor) HSLColor {
	col := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	h, s, l := col.Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
