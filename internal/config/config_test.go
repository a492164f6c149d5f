package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/colorsample/internal/imaging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if !reflect.DeepEqual(cfg.Images, []string{"src/1.jpeg", "src/2.jpeg"}) {
		t.Errorf("Images: got %v", cfg.Images)
	}
	if cfg.Sampling.StrideX != 10 || cfg.Sampling.StrideY != 10 {
		t.Errorf("stride: got %dx%d, want 10x10", cfg.Sampling.StrideX, cfg.Sampling.StrideY)
	}
	opts := cfg.AverageOptions()
	if opts.AlphaThreshold != imaging.AlphaAuto || opts.Rounding != imaging.RoundHalfUp {
		t.Errorf("AverageOptions: got %+v", opts)
	}
	if !cfg.Dominant.Enabled || cfg.Dominant.ThumbnailWidth != 50 || cfg.Dominant.ThumbnailHeight != 50 {
		t.Errorf("Dominant: got %+v", cfg.Dominant)
	}
}

func TestLoadFromFile_MergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"sampling": {"stride_x": 4, "stride_y": 2, "alpha_threshold": -1, "rounding": "half-even"}, "palette": {"size": 5}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Sampling.StrideX != 4 || cfg.Sampling.StrideY != 2 {
		t.Errorf("stride: got %dx%d, want 4x2", cfg.Sampling.StrideX, cfg.Sampling.StrideY)
	}
	if cfg.AverageOptions().Rounding != imaging.RoundHalfEven {
		t.Errorf("rounding: got %v", cfg.AverageOptions().Rounding)
	}
	if cfg.Palette.Size != 5 {
		t.Errorf("palette size: got %d, want 5", cfg.Palette.Size)
	}
	// Untouched sections keep defaults.
	if len(cfg.Images) != 2 || cfg.Dominant.Filter != "lanczos" {
		t.Errorf("defaults lost: images=%v filter=%q", cfg.Images, cfg.Dominant.Filter)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("COLORSAMPLE_IMAGES", "a.jpeg, b.png,,")
	t.Setenv("COLORSAMPLE_STRIDE", "3")
	t.Setenv("COLORSAMPLE_ALPHA_THRESHOLD", "-2")
	t.Setenv("COLORSAMPLE_ROUNDING", "down")
	t.Setenv("COLORSAMPLE_PALETTE_SIZE", "4")
	t.Setenv("COLORSAMPLE_WORKERS", "2")
	t.Setenv("COLORSAMPLE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Images, []string{"a.jpeg", "b.png"}) {
		t.Errorf("Images: got %v", cfg.Images)
	}
	if cfg.Sampling.StrideX != 3 || cfg.Sampling.StrideY != 3 {
		t.Errorf("stride: got %dx%d", cfg.Sampling.StrideX, cfg.Sampling.StrideY)
	}
	opts := cfg.AverageOptions()
	if opts.AlphaThreshold != imaging.NoAlphaFilter || opts.Rounding != imaging.RoundDown {
		t.Errorf("AverageOptions: got %+v", opts)
	}
	if cfg.Palette.Size != 4 || cfg.Batch.Workers != 2 || cfg.LogLevel != "debug" {
		t.Errorf("got palette=%d workers=%d log=%s", cfg.Palette.Size, cfg.Batch.Workers, cfg.LogLevel)
	}
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	t.Setenv("COLORSAMPLE_STRIDE", "ten")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "COLORSAMPLE_STRIDE") {
		t.Errorf("expected COLORSAMPLE_STRIDE error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero stride", func(c *Config) { c.Sampling.StrideX = 0 }},
		{"alpha too low", func(c *Config) { c.Sampling.AlphaThreshold = -3 }},
		{"alpha too high", func(c *Config) { c.Sampling.AlphaThreshold = 256 }},
		{"bad rounding", func(c *Config) { c.Sampling.Rounding = "ceil" }},
		{"zero dominant stride", func(c *Config) { c.Dominant.StrideY = 0 }},
		{"half thumbnail", func(c *Config) { c.Dominant.ThumbnailHeight = 0 }},
		{"negative thumbnail", func(c *Config) { c.Dominant.ThumbnailWidth, c.Dominant.ThumbnailHeight = -1, -1 }},
		{"bad filter", func(c *Config) { c.Dominant.Filter = "bicubic" }},
		{"negative palette", func(c *Config) { c.Palette.Size = -1 }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestValidate_DisabledDominantSkipsChecks(t *testing.T) {
	cfg := Default()
	cfg.Dominant = DominantConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled dominant section should not be validated: %v", err)
	}
}
