// Package config loads render settings from YAML or TOML files.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"pgregory.net/rand"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
)

// Camera holds the user-facing camera settings
type Camera struct {
	FieldOfView float64    `yaml:"field_of_view" toml:"field_of_view" json:"fov"`
	LookFrom    [3]float64 `yaml:"look_from" toml:"look_from" json:"lookFrom"`
	LookAt      [3]float64 `yaml:"look_at" toml:"look_at" json:"lookAt"`
}

// Config holds every setting the renderer and its front ends read
type Config struct {
	Width                 int     `yaml:"width" toml:"width" json:"width"`
	Height                int     `yaml:"height" toml:"height" json:"height"`
	TextureSizeMultiplier float64 `yaml:"texture_size_multiplier" toml:"texture_size_multiplier" json:"textureSizeMultiplier"`
	MaxDepth              int     `yaml:"max_depth" toml:"max_depth" json:"maxDepth"`
	BandMultiplier        int     `yaml:"band_multiplier" toml:"band_multiplier" json:"bandMultiplier"`
	Seed                  uint32  `yaml:"seed" toml:"seed" json:"seed"`
	Scene                 string  `yaml:"scene" toml:"scene" json:"scene"`
	MaxSamples            int     `yaml:"max_samples" toml:"max_samples" json:"maxSamples"`
	Camera                Camera  `yaml:"camera" toml:"camera" json:"camera"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Width:                 800,
		Height:                450,
		TextureSizeMultiplier: 1.0,
		MaxDepth:              8,
		BandMultiplier:        renderer.DefaultBandMultiplier,
		Seed:                  0,
		Scene:                 "default",
		MaxSamples:            renderer.DefaultMaxSamples,
		Camera: Camera{
			FieldOfView: 90,
			LookFrom:    [3]float64{0, 1, 1},
			LookAt:      [3]float64{0, 0, 0},
		},
	}
}

// Load reads a settings file on top of the defaults. The format is chosen by
// extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	return cfg, nil
}

// Parse decodes settings in the format named by ext on top of the defaults
// and validates the result
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(err, "decoding yaml")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(err, "decoding toml")
		}
	default:
		return Config{}, errors.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting against its allowed range
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > renderer.MaxWindowSize || c.Height > renderer.MaxWindowSize {
		return errors.Errorf("window size %dx%d out of range (each side in [1, %d])", c.Width, c.Height, renderer.MaxWindowSize)
	}
	if c.TextureSizeMultiplier <= 0 || c.TextureSizeMultiplier > 1 {
		return errors.Errorf("texture_size_multiplier %v out of range (0, 1]", c.TextureSizeMultiplier)
	}
	if c.MaxDepth < 0 || c.MaxDepth > renderer.MaxDepthLimit {
		return errors.Errorf("max_depth %d out of range [0, %d]", c.MaxDepth, renderer.MaxDepthLimit)
	}
	if c.BandMultiplier <= 0 {
		return errors.Errorf("band_multiplier %d must be positive", c.BandMultiplier)
	}
	if c.MaxSamples <= 0 {
		return errors.Errorf("max_samples %d must be positive", c.MaxSamples)
	}
	if c.Scene == "" {
		return errors.New("scene must not be empty")
	}
	if c.Camera.FieldOfView <= 0 || c.Camera.FieldOfView >= 180 {
		return errors.Errorf("camera.field_of_view %v out of range (0, 180)", c.Camera.FieldOfView)
	}
	if c.Camera.LookFrom == c.Camera.LookAt {
		return errors.New("camera.look_from and camera.look_at must differ")
	}
	if err := c.CameraConfig().Validate(); err != nil {
		return errors.Wrap(err, "camera")
	}
	return nil
}

// ResolveSeed returns the configured seed, or a fresh non-zero random one when unset
func (c Config) ResolveSeed() uint32 {
	if c.Seed != 0 {
		return c.Seed
	}
	for {
		if s := rand.Uint32(); s != 0 {
			return s
		}
	}
}

// RendererConfig converts the settings for the renderer
func (c Config) RendererConfig() renderer.Config {
	rc := renderer.DefaultConfig()
	rc.Width = c.Width
	rc.Height = c.Height
	rc.TextureScale = c.TextureSizeMultiplier
	rc.MaxDepth = c.MaxDepth
	rc.BandMultiplier = c.BandMultiplier
	rc.Seed = c.ResolveSeed()
	rc.MaxSamples = c.MaxSamples
	return rc
}

// CameraConfig converts the camera settings for the renderer
func (c Config) CameraConfig() renderer.CameraConfig {
	cc := renderer.DefaultCameraConfig()
	cc.LookFrom = vec(c.Camera.LookFrom)
	cc.LookAt = vec(c.Camera.LookAt)
	cc.VFov = c.Camera.FieldOfView
	cc.AspectRatio = float64(c.Width) / float64(c.Height)
	return cc
}

func vec(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}
