package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colorsample/internal/config"
	"github.com/ironsheep/colorsample/internal/imaging"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// mapLoader serves images by path; unknown paths fail like a missing file.
func mapLoader(images map[string]image.Image) LoaderFunc {
	return func(path string) (image.Image, error) {
		img, ok := images[path]
		if !ok {
			return nil, &imaging.DecodeError{Path: path, Err: os.ErrNotExist}
		}
		return img, nil
	}
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLogger(buf *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	return l
}

func TestAnalyze_FromDisk(t *testing.T) {
	path := writePNG(t, t.TempDir(), "red.png", solid(30, 20, color.NRGBA{255, 0, 0, 255}))

	res, err := New(DefaultOptions(), nil, nil).Analyze(path)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if res.Width != 30 || res.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", res.Width, res.Height)
	}
	if res.Average.Hex() != "#ff0000" {
		t.Errorf("average: got %s, want #ff0000", res.Average.Hex())
	}
	if res.MostCommon == nil || res.MostCommon.Hex() != "#ff0000" {
		t.Errorf("most common: got %v, want #ff0000", res.MostCommon)
	}
	if res.Palette != nil {
		t.Errorf("palette should be off by default, got %v", res.Palette)
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := New(DefaultOptions(), nil, nil).Analyze(filepath.Join(t.TempDir(), "nope.jpeg"))

	var decErr *imaging.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *imaging.DecodeError, got %T: %v", err, err)
	}
	if KindOf(err) != KindDecode {
		t.Errorf("KindOf: got %q, want decode", KindOf(err))
	}
}

func TestAnalyze_WrapsPlainLoaderErrors(t *testing.T) {
	loader := LoaderFunc(func(string) (image.Image, error) { return nil, errors.New("boom") })

	_, err := New(DefaultOptions(), loader, nil).Analyze("x.png")

	var decErr *imaging.DecodeError
	if !errors.As(err, &decErr) || decErr.Path != "x.png" {
		t.Fatalf("expected DecodeError for x.png, got %v", err)
	}
}

func TestAnalyzeImage_DominantDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Dominant = false

	res, err := New(opts, nil, nil).AnalyzeImage("mem", solid(4, 4, color.NRGBA{1, 2, 3, 255}))
	if err != nil {
		t.Fatal(err)
	}
	if res.MostCommon != nil {
		t.Errorf("MostCommon should be nil, got %v", res.MostCommon)
	}
}

func TestAnalyzeImage_Region(t *testing.T) {
	img := solid(20, 20, color.NRGBA{0, 0, 255, 255})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 255, 0, 255})
		}
	}

	opts := DefaultOptions()
	opts.StrideX, opts.StrideY = 1, 1
	opts.Region = &imaging.Region{X1: 0, Y1: 0, X2: 10, Y2: 10}

	res, err := New(opts, nil, nil).AnalyzeImage("mem", img)
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 20 || res.Height != 20 {
		t.Errorf("dimensions should describe the full image, got %dx%d", res.Width, res.Height)
	}
	if res.Average.Hex() != "#00ff00" || res.MostCommon.Hex() != "#00ff00" {
		t.Errorf("region colors: average %s, most common %s", res.Average.Hex(), res.MostCommon.Hex())
	}

	opts.Region = &imaging.Region{X1: 0, Y1: 0, X2: 30, Y2: 10}
	_, err = New(opts, nil, nil).AnalyzeImage("mem", img)
	if KindOf(err) != KindInvalidOptions {
		t.Errorf("out-of-bounds region: got kind %q (%v)", KindOf(err), err)
	}
}

func TestAnalyzeImage_ThumbnailAndPalette(t *testing.T) {
	opts := DefaultOptions()
	opts.ThumbnailWidth, opts.ThumbnailHeight = 8, 8
	opts.Filter = "nearest"
	opts.PaletteSize = 1

	res, err := New(opts, nil, nil).AnalyzeImage("mem", solid(64, 64, color.NRGBA{10, 200, 30, 255}))
	if err != nil {
		t.Fatal(err)
	}
	if res.MostCommon.Hex() != "#0ac81e" {
		t.Errorf("thumbnail dominant: got %s, want #0ac81e", res.MostCommon.Hex())
	}
	if len(res.Palette) != 1 {
		t.Errorf("palette: got %d entries, want 1", len(res.Palette))
	}
}

func TestAnalyzeImage_EmptySample(t *testing.T) {
	img := solid(10, 10, color.NRGBA{255, 255, 255, 0})

	_, err := New(DefaultOptions(), nil, nil).AnalyzeImage("clear.png", img)
	if !errors.Is(err, imaging.ErrEmptySample) {
		t.Fatalf("expected ErrEmptySample, got %v", err)
	}
	if KindOf(err) != KindEmptySample {
		t.Errorf("KindOf: got %q", KindOf(err))
	}
}

func TestAnalyzeAll_OrderAndFailures(t *testing.T) {
	images := map[string]image.Image{}
	var paths []string
	for i := 0; i < 12; i++ {
		p := fmt.Sprintf("img%02d.png", i)
		paths = append(paths, p)
		if i%4 == 3 {
			continue // missing
		}
		images[p] = solid(5, 5, color.NRGBA{uint8(i * 20), 0, 0, 255})
	}

	var logs bytes.Buffer
	opts := DefaultOptions()
	opts.Workers = 3
	outcomes := New(opts, mapLoader(images), testLogger(&logs)).AnalyzeAll(context.Background(), paths)

	if len(outcomes) != len(paths) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(paths))
	}
	for i, out := range outcomes {
		if out.Path != paths[i] {
			t.Errorf("outcome %d: path %s, want %s", i, out.Path, paths[i])
		}
		if i%4 == 3 {
			if KindOf(out.Err) != KindDecode || out.Result != nil {
				t.Errorf("outcome %d: expected decode failure, got %v", i, out.Err)
			}
			continue
		}
		if out.Err != nil {
			t.Errorf("outcome %d: unexpected error %v", i, out.Err)
			continue
		}
		if want := uint8(i * 20); out.Result.Average.R != want {
			t.Errorf("outcome %d: average R %d, want %d", i, out.Result.Average.R, want)
		}
	}

	if got := strings.Count(logs.String(), "analysis failed"); got != 3 {
		t.Errorf("expected 3 failure log lines, got %d:\n%s", got, logs.String())
	}
	if !strings.Contains(logs.String(), "path=img03.png") || !strings.Contains(logs.String(), "kind=decode") {
		t.Errorf("failure log missing fields:\n%s", logs.String())
	}
}

func TestAnalyzeAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := mapLoader(map[string]image.Image{"a.png": solid(2, 2, color.NRGBA{1, 1, 1, 255})})
	outcomes := New(DefaultOptions(), loader, nil).AnalyzeAll(ctx, []string{"a.png", "b.png"})

	for _, out := range outcomes {
		if !errors.Is(out.Err, context.Canceled) || KindOf(out.Err) != KindCanceled {
			t.Errorf("%s: expected canceled, got %v", out.Path, out.Err)
		}
	}
}

func TestAnalyzeAll_Empty(t *testing.T) {
	if got := New(DefaultOptions(), nil, nil).AnalyzeAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no outcomes, got %d", len(got))
	}
}

func TestAnalyzeAll_SharedCache(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "gray.png", solid(10, 10, color.NRGBA{128, 128, 128, 255}))

	cache := imaging.NewImageCache()
	outcomes := New(DefaultOptions(), cache, nil).AnalyzeAll(context.Background(), []string{path, path, path})

	for _, out := range outcomes {
		if out.Err != nil || out.Result.Average.Hex() != "#808080" {
			t.Errorf("unexpected outcome %+v", out)
		}
	}
	if cache.Len() != 1 {
		t.Errorf("cache should hold one image, got %d", cache.Len())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Palette.Size = 3
	cfg.Batch.Workers = 2

	opts := OptionsFromConfig(cfg)
	if opts.StrideX != 10 || opts.StrideY != 10 {
		t.Errorf("stride: got %dx%d", opts.StrideX, opts.StrideY)
	}
	if !opts.Dominant || opts.ThumbnailWidth != 50 || opts.Filter != "lanczos" {
		t.Errorf("dominant options: %+v", opts)
	}
	if opts.PaletteSize != 3 || opts.Workers != 2 {
		t.Errorf("palette=%d workers=%d", opts.PaletteSize, opts.Workers)
	}
	if opts.Average != imaging.DefaultAverageOptions() {
		t.Errorf("average options: %+v", opts.Average)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{&imaging.DecodeError{Path: "a", Err: errors.New("bad")}, KindDecode},
		{fmt.Errorf("average color: %w", imaging.ErrEmptySample), KindEmptySample},
		{fmt.Errorf("x: %w", imaging.ErrInvalidStride), KindInvalidOptions},
		{context.DeadlineExceeded, KindCanceled},
		{errors.New("other"), KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
