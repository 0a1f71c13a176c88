package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/config"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	configPath string
	passes     int
	watch      bool
	verbose    bool
	help       bool
	overrides  func(*config.Config)
	flags      *flag.FlagSet
}

func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(output)

	opts := options{flags: fs}
	fs.StringVar(&opts.configPath, "config", "", "Settings file (.yaml, .yml or .toml)")
	fs.IntVar(&opts.passes, "passes", 16, "Number of passes to render (0 = until max_samples)")
	fs.BoolVar(&opts.watch, "watch", false, "Reload the settings file when it changes")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log every pass")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	sceneID := fs.String("scene", "", "Scene id (see -help for the list)")
	width := fs.Int("width", 0, "Window width")
	height := fs.Int("height", 0, "Window height")
	scale := fs.Float64("scale", 0, "Texture size multiplier in (0, 1]")
	depth := fs.Int("depth", 0, "Maximum bounce depth")
	seed := fs.Uint("seed", 0, "Base seed (0 = random)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.watch && opts.configPath == "" {
		return options{}, errors.New("-watch requires -config")
	}

	// Only flags given on the command line override the file
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	opts.overrides = func(cfg *config.Config) {
		if set["scene"] {
			cfg.Scene = *sceneID
		}
		if set["width"] {
			cfg.Width = *width
		}
		if set["height"] {
			cfg.Height = *height
		}
		if set["scale"] {
			cfg.TextureSizeMultiplier = *scale
		}
		if set["depth"] {
			cfg.MaxDepth = *depth
		}
		if set["seed"] {
			cfg.Seed = uint32(*seed)
		}
	}
	return opts, nil
}

// loadConfig reads the settings file if any and applies flag overrides
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	opts.overrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid settings")
	}
	return cfg, nil
}

// createScene builds the scene registered under id
func createScene(id string) (*scene.Scene, error) {
	s, _, err := scene.Lookup(id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Interactive Raytracer (headless)")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, group := range scene.List().Groups {
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-12s - %s\n", info.ID, info.Description)
		}
	}
}

// newRenderer builds the scene and renderer described by cfg
func newRenderer(cfg config.Config, logger *slog.Logger) (*renderer.Renderer, error) {
	s, err := createScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	r, err := renderer.NewRenderer(s, renderer.NewCamera(cfg.CameraConfig()), cfg.RendererConfig(), logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating renderer")
	}
	return r, nil
}

// applyConfig moves a running renderer to new settings between passes.
// A different scene or seed needs a fresh renderer.
func applyConfig(r *renderer.Renderer, prev, next config.Config, logger *slog.Logger) (*renderer.Renderer, error) {
	if next.Scene != prev.Scene || next.Seed != prev.Seed || next.BandMultiplier != prev.BandMultiplier {
		return newRenderer(next, logger)
	}

	camera := next.CameraConfig()
	width, height := r.Size()
	camera.AspectRatio = float64(width) / float64(height)
	r.Camera().SetConfig(camera)

	if err := r.SetMaxDepth(next.MaxDepth); err != nil {
		return nil, err
	}
	if next.TextureSizeMultiplier != prev.TextureSizeMultiplier {
		if err := r.SetTextureScale(next.TextureSizeMultiplier); err != nil {
			return nil, err
		}
	}
	if next.Width != prev.Width || next.Height != prev.Height {
		if err := r.Resize(next.Width, next.Height); err != nil {
			return nil, err
		}
	}
	r.ResetAccumulation()
	return r, nil
}

// run executes the frame loop: passes are rendered one at a time, and any
// reloaded settings are applied between them
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(stdout, opts.flags)
		return nil
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	r, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}
	width, height := r.Size()
	logger.Info("Starting render",
		"scene", cfg.Scene,
		"texture", fmt.Sprintf("%dx%d", width, height),
		"bands", len(r.Bands()),
		"max_depth", cfg.MaxDepth,
		"passes", opts.passes)

	reloads := make(chan config.Config, 1)
	if opts.watch {
		go func() {
			err := config.Watch(ctx, opts.configPath, logger, func(next config.Config) {
				opts.overrides(&next)
				select {
				case reloads <- next:
				default:
					// Replace a pending reload that has not been applied yet
					select {
					case <-reloads:
					default:
					}
					reloads <- next
				}
			})
			if err != nil {
				logger.Error("Config watch stopped", "error", err)
			}
		}()
	}

	for pass := 0; opts.passes == 0 || pass < opts.passes; pass++ {
		select {
		case <-ctx.Done():
			logger.Info("Render interrupted", "samples", r.SampleCount())
			return nil
		case next := <-reloads:
			if err := next.Validate(); err != nil {
				logger.Warn("Ignoring invalid settings", "error", err)
				break
			}
			if r, err = applyConfig(r, cfg, next, logger); err != nil {
				return err
			}
			cfg = next
		default:
		}

		if !r.Step() {
			logger.Info("Reached maximum samples", "samples", r.SampleCount())
			break
		}
	}

	stats := r.Stats()
	logger.Info("Render finished",
		"samples", r.SampleCount(),
		"average_pass", stats.AveragePass(),
		"samples_per_second", fmt.Sprintf("%.0f", stats.SamplesPerSecond()),
		"luminance", fmt.Sprintf("%.4f", renderer.AverageLuminance(r.Pixels())))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
