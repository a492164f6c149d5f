// Package analyzer computes the color summary of one image or a batch of
// images on top of the imaging package.
//
// A batch never aborts on a single bad file: every path gets an Outcome, in
// input order, carrying either a Result or the error that stopped it.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colorsample/internal/config"
	"github.com/ironsheep/colorsample/internal/imaging"
)

// Loader opens an image by path. *imaging.ImageCache satisfies it.
type Loader interface {
	Load(path string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (image.Image, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (image.Image, error) {
	return f(path)
}

// Options controls what Analyze computes.
type Options struct {
	StrideX int
	StrideY int
	Average imaging.AverageOptions

	// Dominant enables the most-common-color pass.
	Dominant        bool
	DominantStrideX int
	DominantStrideY int
	// ThumbnailWidth/Height > 0 count dominant colors on a resampled copy.
	ThumbnailWidth  int
	ThumbnailHeight int
	Filter          string

	// PaletteSize > 0 adds a k-means palette.
	PaletteSize int

	// Region restricts every computation to a sub-rectangle.
	Region *imaging.Region

	Workers int
}

// DefaultOptions returns stride 10 averaging plus an exact dominant color.
func DefaultOptions() Options {
	return Options{
		StrideX:         10,
		StrideY:         10,
		Average:         imaging.DefaultAverageOptions(),
		Dominant:        true,
		DominantStrideX: 1,
		DominantStrideY: 1,
	}
}

// OptionsFromConfig converts a validated configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StrideX:         cfg.Sampling.StrideX,
		StrideY:         cfg.Sampling.StrideY,
		Average:         cfg.AverageOptions(),
		Dominant:        cfg.Dominant.Enabled,
		DominantStrideX: cfg.Dominant.StrideX,
		DominantStrideY: cfg.Dominant.StrideY,
		ThumbnailWidth:  cfg.Dominant.ThumbnailWidth,
		ThumbnailHeight: cfg.Dominant.ThumbnailHeight,
		Filter:          cfg.Dominant.Filter,
		PaletteSize:     cfg.Palette.Size,
		Workers:         cfg.Batch.Workers,
	}
}

// Result is the color summary of one image.
type Result struct {
	Path       string                   `json:"path"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Average    imaging.RGBColor         `json:"average"`
	MostCommon *imaging.RGBColor        `json:"most_common,omitempty"`
	Palette    []imaging.ColorFrequency `json:"palette,omitempty"`
}

// Outcome pairs a path with its result or error.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// Analyzer runs color analysis with fixed options.
type Analyzer struct {
	opts   Options
	loader Loader
	log    logrus.FieldLogger
}

// New creates an Analyzer. A nil loader reads straight from disk and a nil
// log discards output.
func New(opts Options, loader Loader, log logrus.FieldLogger) *Analyzer {
	if loader == nil {
		loader = LoaderFunc(imaging.Load)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{opts: opts, loader: loader, log: log}
}

// Options returns the analyzer's options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze loads path and computes its color summary.
func (a *Analyzer) Analyze(path string) (*Result, error) {
	img, err := a.loader.Load(path)
	if err != nil {
		var decErr *imaging.DecodeError
		if !errors.As(err, &decErr) {
			err = &imaging.DecodeError{Path: path, Err: err}
		}
		return nil, err
	}
	return a.AnalyzeImage(path, img)
}

// AnalyzeImage computes the color summary of an already decoded image.
// Width and Height always describe the full image, even with a Region set.
func (a *Analyzer) AnalyzeImage(name string, img image.Image) (*Result, error) {
	bounds := img.Bounds()
	res := &Result{
		Path:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	src := img
	if a.opts.Region != nil {
		cropped, err := imaging.CropRegion(img, *a.opts.Region)
		if err != nil {
			return nil, err
		}
		src = cropped
	}

	avg, err := imaging.AverageColor(src, a.opts.StrideX, a.opts.StrideY, a.opts.Average)
	if err != nil {
		return nil, fmt.Errorf("average color: %w", err)
	}
	res.Average = avg

	if a.opts.Dominant {
		common, err := a.dominant(src)
		if err != nil {
			return nil, fmt.Errorf("most common color: %w", err)
		}
		res.MostCommon = &common
	}

	if a.opts.PaletteSize > 0 {
		palette, err := imaging.Palette(src, a.opts.PaletteSize)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		res.Palette = palette
	}

	a.log.WithFields(logrus.Fields{
		"path":    name,
		"width":   res.Width,
		"height":  res.Height,
		"average": res.Average.Hex(),
	}).Debug("image analyzed")

	return res, nil
}

func (a *Analyzer) dominant(img image.Image) (imaging.RGBColor, error) {
	if a.opts.ThumbnailWidth > 0 && a.opts.ThumbnailHeight > 0 {
		thumb, err := imaging.Thumbnail(img, a.opts.ThumbnailWidth, a.opts.ThumbnailHeight, a.opts.Filter)
		if err != nil {
			return imaging.RGBColor{}, err
		}
		img = thumb
	}
	sx, sy := a.opts.DominantStrideX, a.opts.DominantStrideY
	if sx == 0 && sy == 0 {
		sx, sy = 1, 1
	}
	return imaging.DominantColor(img, sx, sy)
}

// AnalyzeAll analyzes paths concurrently and returns one Outcome per path in
// input order. Failures are logged and recorded; they never stop the batch.
// Paths not started before ctx is canceled get ctx.Err().
func (a *Analyzer) AnalyzeAll(ctx context.Context, paths []string) []Outcome {
	outcomes := make([]Outcome, len(paths))
	if len(paths) == 0 {
		return outcomes
	}

	workers := a.opts.Workers
	if workers <= 0 || workers > len(paths) {
		workers = len(paths)
	}
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	for i, path := range paths {
		i, path := i, path
		pool.Submit(func() {
			out := Outcome{Path: path}
			if err := ctx.Err(); err != nil {
				out.Err = err
			} else {
				out.Result, out.Err = a.Analyze(path)
			}
			if out.Err != nil {
				a.log.WithFields(logrus.Fields{
					"path": path,
					"kind": KindOf(out.Err),
				}).WithError(out.Err).Error("analysis failed")
			}
			outcomes[i] = out
		})
	}
	pool.Wait()

	return outcomes
}

// ErrorKind classifies analysis failures for logs and tool responses.
type ErrorKind string

const (
	KindDecode         ErrorKind = "decode"
	KindEmptySample    ErrorKind = "empty_sample"
	KindInvalidOptions ErrorKind = "invalid_options"
	KindCanceled       ErrorKind = "canceled"
	KindInternal       ErrorKind = "internal"
)

// KindOf returns the ErrorKind of err, or "" for nil.
func KindOf(err error) ErrorKind {
	var decErr *imaging.DecodeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &decErr):
		return KindDecode
	case errors.Is(err, imaging.ErrEmptySample):
		return KindEmptySample
	case errors.Is(err, imaging.ErrInvalidStride), errors.Is(err, imaging.ErrInvalidRegion):
		return KindInvalidOptions
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
