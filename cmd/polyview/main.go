// polyview renders a lit, textured model with the block rasterizer, either
// interactively in the terminal or once to an image file.
//
// Controls:
//
//	A/D, arrows - Orbit the camera
//	W/S         - Raise or lower the light
//	+/-         - Zoom
//	B           - Cycle blend mode
//	Space       - Pause the light orbit
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/polyraster/internal/config"
	"github.com/taigrr/polyraster/pkg/render"
)

var (
	configPath  = flag.String("config", "", "JSON config file")
	threads     = flag.Int("threads", 0, "Worker threads (default: NumCPU)")
	width       = flag.Int("width", 0, "Framebuffer width for file output")
	height      = flag.Int("height", 0, "Framebuffer height for file output")
	format      = flag.String("format", "", "Pixel format: bgra or pal8")
	texturePath = flag.String("texture", "", "Texture image (PNG/JPG/BMP/WebP/TGA)")
	outputPath  = flag.String("o", "", "Write a frame to this .png or .webp file instead of running interactively")
	blendName   = flag.String("blend", "", "Blend mode for the model")
	frames      = flag.Int("frames", 0, "Frames to simulate before writing the output file")
	scanline    = flag.Bool("scanline", false, "Rasterize with the scanline filler instead of 8x8 blocks")
	verbose     = flag.Bool("v", false, "Log debug output to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "polyview - software rasterizer viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: polyview [options] [model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  A/D, arrows - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  W/S         - Raise or lower the light\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  B           - Cycle blend mode\n")
		fmt.Fprintf(os.Stderr, "  Space       - Pause light\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if *verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	cfg.Resolve(config.Flags{
		Threads:  *threads,
		Width:    *width,
		Height:   *height,
		Format:   *format,
		Model:    flag.Arg(0),
		Texture:  *texturePath,
		Output:   *outputPath,
		Blend:    *blendName,
		Frames:   *frames,
		Scanline: *scanline,
	})
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	v, err := newViewer(cfg)
	if err != nil {
		return err
	}
	if cfg.Output != "" {
		return v.renderFile(ctx, cfg.Output)
	}
	return runTerminal(ctx, v)
}
