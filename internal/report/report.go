// Package report renders analysis results as the plain-text CLI report.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ironsheep/colorsample/internal/analyzer"
	"github.com/ironsheep/colorsample/internal/imaging"
)

// Writer formats results onto an output stream.
type Writer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	swatch   bool
	label    lipgloss.Style
}

// NewWriter creates a Writer. With swatch set, every hex line is followed by
// a block painted in that color when w is a color-capable terminal; on other
// outputs the block degrades to blank cells.
func NewWriter(w io.Writer, swatch bool) *Writer {
	r := lipgloss.NewRenderer(w)
	return &Writer{
		w:        w,
		renderer: r,
		swatch:   swatch,
		label:    r.NewStyle().Bold(true),
	}
}

// Write prints the report for one image.
func (rw *Writer) Write(res *analyzer.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", rw.label.Render(res.Path+":"))
	fmt.Fprintf(&b, "Dimensions: %dx%d\n", res.Width, res.Height)
	fmt.Fprintf(&b, "Average color - %s\n", res.Average)
	fmt.Fprintf(&b, "Average Hex: %s%s\n", res.Average.Hex(), rw.block(res.Average))
	if res.MostCommon != nil {
		fmt.Fprintf(&b, "Most common color - %s\n", res.MostCommon)
		fmt.Fprintf(&b, "Most common Hex: %s%s\n", res.MostCommon.Hex(), rw.block(*res.MostCommon))
	}
	if len(res.Palette) > 0 {
		entries := make([]string, len(res.Palette))
		for i, p := range res.Palette {
			entries[i] = fmt.Sprintf("%s (%.1f%%)%s", p.Hex, p.Percentage, rw.block(p.RGB))
		}
		fmt.Fprintf(&b, "Palette: %s\n", strings.Join(entries, ", "))
	}

	_, err := io.WriteString(rw.w, b.String())
	return err
}

// WriteAll prints every successful outcome, separated by blank lines.
// Failed outcomes are skipped; callers log them.
func (rw *Writer) WriteAll(outcomes []analyzer.Outcome) error {
	first := true
	for _, out := range outcomes {
		if out.Err != nil || out.Result == nil {
			continue
		}
		if !first {
			if _, err := io.WriteString(rw.w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if err := rw.Write(out.Result); err != nil {
			return err
		}
	}
	return nil
}

func (rw *Writer) block(c imaging.RGBColor) string {
	if !rw.swatch {
		return ""
	}
	return " " + rw.renderer.NewStyle().Background(lipgloss.Color(c.Hex())).Render("    ")
}
