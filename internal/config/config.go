// Package config loads polyview settings from JSON and command line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/taigrr/polyraster/pkg/render"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds the viewer's render settings.
type Config struct {
	Threads int    `json:"threads"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"` // bgra or pal8

	// Paths
	Model   string `json:"model"`
	Texture string `json:"texture"`
	Output  string `json:"output"` // .png or .webp; empty runs interactively

	// Lighting
	Light         int     `json:"light"`
	GlobVis       float32 `json:"glob_vis"`
	FixedLight    bool    `json:"fixed_light"`
	DynLightColor uint32  `json:"dyn_light_color"`
	LightRadius   float32 `json:"light_radius"`
	FogColor      uint32  `json:"fog_color"`  // 0xRRGGBB; zero with no desaturation disables colored fog
	Desaturate    int     `json:"desaturate"` // 0..256

	// Scanline selects the scanline filler over the block rasterizer.
	Scanline bool `json:"scanline"`

	Blend  string `json:"blend"`
	Alpha  int    `json:"alpha"`
	Frames int    `json:"frames"`
	FPS    int    `json:"fps"`
}

// Default returns the settings used when neither a file nor flags set them.
func Default() Config {
	return Config{
		Threads:     runtime.NumCPU(),
		Width:       320,
		Height:      200,
		Format:      "bgra",
		Light:       255,
		GlobVis:     8,
		LightRadius: 3,
		Blend:       render.BlendOpaque.String(),
		Alpha:       256,
		Frames:      1,
		FPS:         30,
	}
}

// Load reads a JSON config file on top of Default.
// Fields not set in the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// resolvePaths makes file relative paths relative to the config's directory.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Model, &c.Texture, &c.Output} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Threads  int
	Width    int
	Height   int
	Format   string
	Model    string
	Texture  string
	Output   string
	Blend    string
	Frames   int
	Scanline bool
}

// Resolve applies non-zero flags over the file settings.
func (c *Config) Resolve(flags Flags) {
	if flags.Threads > 0 {
		c.Threads = flags.Threads
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Blend != "" {
		c.Blend = flags.Blend
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Scanline {
		c.Scanline = true
	}

	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
}

// Validate reports the first setting the renderer cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Width > 8192 || c.Height > 8192:
		return fmt.Errorf("%w: size %dx%d exceeds 8192", ErrInvalid, c.Width, c.Height)
	case c.Light < 0 || c.Light > 255:
		return fmt.Errorf("%w: light %d outside 0..255", ErrInvalid, c.Light)
	case c.Alpha < 0 || c.Alpha > 256:
		return fmt.Errorf("%w: alpha %d outside 0..256", ErrInvalid, c.Alpha)
	case c.Desaturate < 0 || c.Desaturate > 256:
		return fmt.Errorf("%w: desaturate %d outside 0..256", ErrInvalid, c.Desaturate)
	case c.Frames < 1:
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	}
	if _, err := c.PixelFormat(); err != nil {
		return err
	}
	if _, err := c.BlendMode(); err != nil {
		return err
	}
	switch ext := filepath.Ext(c.Output); ext {
	case "", ".png", ".webp":
	default:
		return fmt.Errorf("%w: output extension %q", ErrInvalid, ext)
	}
	return nil
}

// PixelFormat returns the render target format named by Format.
func (c *Config) PixelFormat() (render.PixelFormat, error) {
	switch c.Format {
	case "bgra", "":
		return render.FormatBGRA, nil
	case "pal8":
		return render.FormatPal8, nil
	}
	return 0, fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
}

// Fog returns the colored fog settings, or nil when they are neutral.
func (c *Config) Fog() *render.ColoredFog {
	if c.FogColor == 0 && c.Desaturate == 0 {
		return nil
	}
	return &render.ColoredFog{
		Fade:       c.FogColor & 0xffffff,
		Light:      0xffffff,
		Desaturate: uint32(c.Desaturate),
	}
}

// ViewportOptions returns the raster options for the configured mode.
func (c *Config) ViewportOptions() []render.ViewportOption {
	if c.Scanline {
		return []render.ViewportOption{render.WithScanlineRaster()}
	}
	return nil
}

// BlendMode returns the blend mode named by Blend.
func (c *Config) BlendMode() (render.BlendMode, error) {
	m, err := render.ParseBlendMode(c.Blend)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return m, nil
}
