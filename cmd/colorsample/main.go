package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ironsheep/colorsample/internal/analyzer"
	"github.com/ironsheep/colorsample/internal/config"
	"github.com/ironsheep/colorsample/internal/imaging"
	"github.com/ironsheep/colorsample/internal/logger"
	"github.com/ironsheep/colorsample/internal/report"
	"github.com/ironsheep/colorsample/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code. Image failures do
// not change the exit code; only usage and configuration errors do.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "colorsample %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		}
	}

	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	cfg, paths, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "colorsample: %v\n", err)
		return 2
	}
	logger.SetLevel(cfg.LogLevel)
	logger.WithFields(map[string]interface{}{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("colorsample starting")

	opts := analyzer.OptionsFromConfig(cfg)

	if serve {
		srv := server.NewWithOptions(opts, logger.Logger, Version)
		if err := srv.Run(); err != nil {
			logger.WithError(err).Error("server error")
			return 1
		}
		return 0
	}

	an := analyzer.New(opts, imaging.NewImageCache(), logger.Logger)
	outcomes := an.AnalyzeAll(ctx, paths)

	if err := report.NewWriter(stdout, cfg.Output.Swatch).WriteAll(outcomes); err != nil {
		logger.WithError(err).Error("failed to write report")
	}
	return 0
}

// parseArgs layers flags over the config file and environment. Positional
// arguments replace the configured image list.
func parseArgs(args []string, stderr io.Writer) (*config.Config, []string, error) {
	fs := flag.NewFlagSet("colorsample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	var (
		configPath     string
		stride         int
		dominantStride int
		alpha          int
		thumbnail      string
		filter         string
		palette        int
		rounding       string
		swatch         bool
		workers        int
		noDominant     bool
	)
	fs.StringVar(&configPath, "config", "", "JSON config file")
	fs.IntVar(&stride, "stride", 0, "sampling stride for the average color")
	fs.IntVar(&dominantStride, "dominant-stride", 0, "sampling stride for the most common color")
	fs.IntVar(&alpha, "alpha", 0, "alpha threshold 0-255 (-1 auto, -2 off)")
	fs.StringVar(&thumbnail, "thumbnail", "", "count most common color on a WxH thumbnail (0 = original image)")
	fs.StringVar(&filter, "filter", "", "thumbnail resample filter: "+strings.Join(imaging.FilterNames(), "|"))
	fs.IntVar(&palette, "palette", 0, "add a k-means palette of this size")
	fs.StringVar(&rounding, "rounding", "", "channel rounding: half-up|half-even|down")
	fs.BoolVar(&swatch, "swatch", false, "print color swatches on terminals")
	fs.IntVar(&workers, "workers", 0, "concurrent images (0 = one per CPU)")
	fs.BoolVar(&noDominant, "no-dominant", false, "skip the most common color")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "stride":
			cfg.Sampling.StrideX, cfg.Sampling.StrideY = stride, stride
		case "dominant-stride":
			cfg.Dominant.StrideX, cfg.Dominant.StrideY = dominantStride, dominantStride
		case "alpha":
			cfg.Sampling.AlphaThreshold = alpha
		case "thumbnail":
			w, h, err := parseSize(thumbnail)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Dominant.ThumbnailWidth, cfg.Dominant.ThumbnailHeight = w, h
		case "filter":
			cfg.Dominant.Filter = filter
		case "palette":
			cfg.Palette.Size = palette
		case "rounding":
			cfg.Sampling.Rounding = rounding
		case "swatch":
			cfg.Output.Swatch = swatch
		case "workers":
			cfg.Batch.Workers = workers
		case "no-dominant":
			cfg.Dominant.Enabled = !noDominant
		}
	})
	if flagErr != nil {
		return nil, nil, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	paths := cfg.Images
	if fs.NArg() > 0 {
		paths = fs.Args()
	}
	return cfg, paths, nil
}

// parseSize parses "WxH"; "0" and "" mean no thumbnail.
func parseSize(s string) (int, int, error) {
	if s == "" || s == "0" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid -thumbnail %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -thumbnail width %q", ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -thumbnail height %q", hs)
	}
	return w, h, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "colorsample - average and most common color of images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  colorsample [options] [image ...]   Print a color report (default: src/1.jpeg src/2.jpeg)")
	fmt.Fprintln(w, "  colorsample serve [options]         Run the MCP server on stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config FILE          JSON config file")
	fmt.Fprintln(w, "  -stride N             Average color sampling stride (default 10)")
	fmt.Fprintln(w, "  -dominant-stride N    Most common color sampling stride (default 1)")
	fmt.Fprintln(w, "  -alpha N              Alpha threshold 0-255, -1 auto, -2 off (default -1)")
	fmt.Fprintln(w, "  -thumbnail WxH        Count most common color on a thumbnail, 0 for the original (default 50x50)")
	fmt.Fprintln(w, "  -filter NAME          Thumbnail filter: "+strings.Join(imaging.FilterNames(), ", "))
	fmt.Fprintln(w, "  -no-dominant          Skip the most common color")
	fmt.Fprintln(w, "  -palette K            Add a k-means palette of K colors")
	fmt.Fprintln(w, "  -rounding MODE        half-up, half-even or down (default half-up)")
	fmt.Fprintln(w, "  -swatch               Print color swatches on terminals")
	fmt.Fprintln(w, "  -workers N            Images analyzed concurrently (default: one per CPU)")
	fmt.Fprintln(w, "  --version, -v         Print version information")
	fmt.Fprintln(w, "  --help, -h            Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  COLORSAMPLE_LOG_LEVEL=debug          Enable debug logging")
	fmt.Fprintln(w, "  COLORSAMPLE_IMAGES=a.jpeg,b.jpeg     Default image list")
	fmt.Fprintln(w, "  COLORSAMPLE_STRIDE, COLORSAMPLE_ALPHA_THRESHOLD, COLORSAMPLE_ROUNDING,")
	fmt.Fprintln(w, "  COLORSAMPLE_PALETTE_SIZE, COLORSAMPLE_WORKERS")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failures are logged to stderr and skipped; the exit status stays 0.")
}
