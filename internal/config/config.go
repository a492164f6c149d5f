package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/colorsample/internal/imaging"
)

// Config holds the application configuration
type Config struct {
	Images   []string       `json:"images"`
	Sampling SamplingConfig `json:"sampling"`
	Dominant DominantConfig `json:"dominant"`
	Palette  PaletteConfig  `json:"palette"`
	Batch    BatchConfig    `json:"batch"`
	Output   OutputConfig   `json:"output"`
	LogLevel string         `json:"log_level"`
}

// SamplingConfig controls the average color.
type SamplingConfig struct {
	StrideX int `json:"stride_x"`
	StrideY int `json:"stride_y"`
	// AlphaThreshold: 0-255, or -1 for auto (128 if the image has alpha)
	// and -2 to disable alpha filtering.
	AlphaThreshold int    `json:"alpha_threshold"`
	Rounding       string `json:"rounding"`
}

// DominantConfig controls the most common color.
type DominantConfig struct {
	Enabled bool `json:"enabled"`
	StrideX int  `json:"stride_x"`
	StrideY int  `json:"stride_y"`
	// ThumbnailWidth/Height resample the image before counting; 0x0 counts
	// on the original image.
	ThumbnailWidth  int    `json:"thumbnail_width"`
	ThumbnailHeight int    `json:"thumbnail_height"`
	Filter          string `json:"filter"`
}

// PaletteConfig controls k-means palette extraction. Size 0 disables it.
type PaletteConfig struct {
	Size int `json:"size"`
}

// BatchConfig controls concurrent analysis. Workers 0 means one per CPU.
type BatchConfig struct {
	Workers int `json:"workers"`
}

// OutputConfig controls the text report.
type OutputConfig struct {
	Swatch bool `json:"swatch"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Images: []string{"src/1.jpeg", "src/2.jpeg"},
		Sampling: SamplingConfig{
			StrideX:        10,
			StrideY:        10,
			AlphaThreshold: imaging.AlphaAuto,
			Rounding:       imaging.RoundHalfUp.String(),
		},
		Dominant: DominantConfig{
			Enabled:         true,
			StrideX:         1,
			StrideY:         1,
			ThumbnailWidth:  50,
			ThumbnailHeight: 50,
			Filter:          "lanczos",
		},
		LogLevel: "info",
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (if non-empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(filename); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from COLORSAMPLE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("COLORSAMPLE_IMAGES"); v != "" {
		c.Images = splitList(v)
	}
	if v := os.Getenv("COLORSAMPLE_STRIDE"); v != "" {
		n, err := parseInt("COLORSAMPLE_STRIDE", v)
		if err != nil {
			return err
		}
		c.Sampling.StrideX, c.Sampling.StrideY = n, n
	}
	if v := os.Getenv("COLORSAMPLE_ALPHA_THRESHOLD"); v != "" {
		n, err := parseInt("COLORSAMPLE_ALPHA_THRESHOLD", v)
		if err != nil {
			return err
		}
		c.Sampling.AlphaThreshold = n
	}
	c.Sampling.Rounding = getEnvOrDefault("COLORSAMPLE_ROUNDING", c.Sampling.Rounding)
	if v := os.Getenv("COLORSAMPLE_PALETTE_SIZE"); v != "" {
		n, err := parseInt("COLORSAMPLE_PALETTE_SIZE", v)
		if err != nil {
			return err
		}
		c.Palette.Size = n
	}
	if v := os.Getenv("COLORSAMPLE_WORKERS"); v != "" {
		n, err := parseInt("COLORSAMPLE_WORKERS", v)
		if err != nil {
			return err
		}
		c.Batch.Workers = n
	}
	c.LogLevel = getEnvOrDefault("COLORSAMPLE_LOG_LEVEL", c.LogLevel)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sampling.StrideX < 1 || c.Sampling.StrideY < 1 {
		return fmt.Errorf("sampling stride must be >= 1 (got %dx%d)", c.Sampling.StrideX, c.Sampling.StrideY)
	}
	if c.Sampling.AlphaThreshold < imaging.NoAlphaFilter || c.Sampling.AlphaThreshold > 255 {
		return fmt.Errorf("sampling.alpha_threshold must be -2, -1 or 0-255 (got %d)", c.Sampling.AlphaThreshold)
	}
	if _, err := imaging.ParseRoundingMode(c.Sampling.Rounding); err != nil {
		return fmt.Errorf("sampling.rounding: %w", err)
	}

	if c.Dominant.Enabled {
		if c.Dominant.StrideX < 1 || c.Dominant.StrideY < 1 {
			return fmt.Errorf("dominant stride must be >= 1 (got %dx%d)", c.Dominant.StrideX, c.Dominant.StrideY)
		}
		w, h := c.Dominant.ThumbnailWidth, c.Dominant.ThumbnailHeight
		if w < 0 || h < 0 || (w == 0) != (h == 0) {
			return fmt.Errorf("dominant thumbnail must be 0x0 or positive in both dimensions (got %dx%d)", w, h)
		}
		if _, err := imaging.ParseFilter(c.Dominant.Filter); err != nil {
			return fmt.Errorf("dominant.filter: %w", err)
		}
	}

	if c.Palette.Size < 0 {
		return fmt.Errorf("palette.size must be >= 0 (got %d)", c.Palette.Size)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0 (got %d)", c.Batch.Workers)
	}
	return nil
}

// AverageOptions converts the sampling section for imaging.AverageColor.
// Call Validate first; an invalid rounding name falls back to half-up.
func (c *Config) AverageOptions() imaging.AverageOptions {
	mode, _ := imaging.ParseRoundingMode(c.Sampling.Rounding)
	return imaging.AverageOptions{
		AlphaThreshold: c.Sampling.AlphaThreshold,
		Rounding:       mode,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
