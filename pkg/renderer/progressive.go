package renderer

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/integrator"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// DefaultMaxSamples is the sample count after which Step stops refining
const DefaultMaxSamples = 100_000_000

// Upper bounds for settings that size allocations or recursion
const (
	MaxWindowSize = 8192 // Per axis
	MaxDepthLimit = 64
)

// Config contains configuration for progressive rendering
type Config struct {
	Width          int     // Window width in pixels
	Height         int     // Window height in pixels
	TextureScale   float64 // Render resolution as a fraction of the window, in (0, 1]
	MaxDepth       int     // Bounce budget per sample
	BandMultiplier int     // Bands per hardware thread
	Threads        int     // Hardware threads (0 = detect)
	Seed           uint32  // Base seed for per-pixel samplers
	MaxSamples     int     // Step stops once this many samples are accumulated
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:          800,
		Height:         450,
		TextureScale:   1.0,
		MaxDepth:       integrator.DefaultMaxDepth,
		BandMultiplier: DefaultBandMultiplier,
		MaxSamples:     DefaultMaxSamples,
	}
}

// Renderer progressively refines an image of a scene. Each pass adds one
// jittered sample per pixel and blends it into a running average.
//
// A Renderer is not safe for concurrent use. Scene, camera and settings
// changes must happen between passes and be followed by ResetAccumulation.
type Renderer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator *integrator.PathTracingIntegrator
	bands      *BandRenderer
	config     Config
	logger     *slog.Logger

	windowWidth, windowHeight int
	width, height             int
	pixels                    []core.Color
	grid                      []Band
	threads                   int

	sampleCount int
	lastRender  time.Duration
	stats       RenderStats
}

// NewRenderer creates a renderer sized to the configured window
func NewRenderer(s *scene.Scene, camera *Camera, config Config, logger *slog.Logger) (*Renderer, error) {
	if s == nil {
		return nil, errors.New("renderer requires a scene")
	}
	if camera == nil {
		camera = NewCamera(DefaultCameraConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.TextureScale <= 0 || config.TextureScale > 1 {
		return nil, errors.Errorf("texture scale %v out of range (0, 1]", config.TextureScale)
	}
	if config.MaxDepth < 0 || config.MaxDepth > MaxDepthLimit {
		return nil, errors.Errorf("max depth %d out of range [0, %d]", config.MaxDepth, MaxDepthLimit)
	}
	if config.MaxSamples <= 0 {
		config.MaxSamples = DefaultMaxSamples
	}

	pt := integrator.NewPathTracingIntegrator(config.MaxDepth)
	r := &Renderer{
		scene:      s,
		camera:     camera,
		integrator: pt,
		bands:      NewBandRenderer(s, camera, pt),
		config:     config,
		logger:     logger,
		threads:    config.Threads,
	}
	if r.threads <= 0 {
		r.threads = HardwareThreads()
	}

	if err := r.Resize(config.Width, config.Height); err != nil {
		return nil, err
	}
	return r, nil
}

// Resize sets the window size. The render size is the window size scaled by the
// texture scale. The buffer is reallocated and accumulation restarts.
func (r *Renderer) Resize(windowWidth, windowHeight int) error {
	if windowWidth <= 0 || windowHeight <= 0 || windowWidth > MaxWindowSize || windowHeight > MaxWindowSize {
		return errors.Errorf("invalid window size %dx%d (each side in [1, %d])", windowWidth, windowHeight, MaxWindowSize)
	}
	r.windowWidth, r.windowHeight = windowWidth, windowHeight
	r.resizeTexture(
		max(1, int(float64(windowWidth)*r.config.TextureScale)),
		max(1, int(float64(windowHeight)*r.config.TextureScale)),
	)
	return nil
}

// SetTextureScale changes the render resolution relative to the window
func (r *Renderer) SetTextureScale(scale float64) error {
	if scale <= 0 || scale > 1 {
		return errors.Errorf("texture scale %v out of range (0, 1]", scale)
	}
	r.config.TextureScale = scale
	return r.Resize(r.windowWidth, r.windowHeight)
}

// SetMaxDepth changes the bounce budget and restarts accumulation
func (r *Renderer) SetMaxDepth(depth int) error {
	if depth < 0 || depth > MaxDepthLimit {
		return errors.Errorf("max depth %d out of range [0, %d]", depth, MaxDepthLimit)
	}
	r.config.MaxDepth = depth
	r.integrator.MaxDepth = depth
	r.ResetAccumulation()
	return nil
}

// SetSeed changes the base seed and restarts accumulation
func (r *Renderer) SetSeed(seed uint32) {
	r.config.Seed = seed
	r.ResetAccumulation()
}

func (r *Renderer) resizeTexture(width, height int) {
	r.width, r.height = width, height
	r.pixels = make([]core.Color, width*height)
	r.grid = NewBandGrid(width, height, BandCount(r.config.BandMultiplier, r.threads))
	r.camera.SetAspectRatio(float64(width) / float64(height))
	r.sampleCount = 0
	r.stats = RenderStats{}

	r.logger.Info("Render target resized",
		"window", []int{r.windowWidth, r.windowHeight},
		"texture", []int{width, height},
		"bands", len(r.grid))
}

// ResetAccumulation discards all accumulated samples.
// Callers invoke it after any change to the scene, camera or settings.
func (r *Renderer) ResetAccumulation() {
	clear(r.pixels)
	r.sampleCount = 0
	r.stats = RenderStats{}
	r.logger.Info("Accumulation reset")
}

// RenderPass renders one sample per pixel and blends it into the buffer with
// pixel = pixel*(1-weight) + weight*sample. Samplers are derived from the
// current sample count. The pass returns only after every band is finished.
func (r *Renderer) RenderPass(weight float64) PassStats {
	start := time.Now()
	params := PassParams{
		Seed:   r.config.Seed,
		Sample: r.sampleCount,
		Weight: weight,
		Width:  r.width,
		Height: r.height,
	}

	forkJoin(r.grid, func(b Band) {
		r.bands.RenderBand(b.Bounds, r.pixels, params)
	})

	ps := PassStats{
		Sample:   params.Sample,
		Weight:   weight,
		Bands:    len(r.grid),
		Pixels:   r.width * r.height,
		Duration: time.Since(start),
	}
	r.stats.AddPass(ps)

	r.logger.Debug("Pass completed",
		"sample", ps.Sample,
		"weight", ps.Weight,
		"bands", ps.Bands,
		"duration", ps.Duration)
	return ps
}

// Step advances the running average by one sample, the same way the frame loop does.
// It returns false once MaxSamples samples have been accumulated.
func (r *Renderer) Step() bool {
	if r.sampleCount >= r.config.MaxSamples {
		return false
	}
	r.sampleCount++
	ps := r.RenderPass(1.0 / float64(r.sampleCount))
	r.lastRender = ps.Duration
	return true
}

// SampleCount returns the number of samples accumulated since the last reset
func (r *Renderer) SampleCount() int {
	return r.sampleCount
}

// Pixels returns the accumulation buffer, row-major with row 0 at the bottom.
// The slice is owned by the renderer and changes on the next pass.
func (r *Renderer) Pixels() []core.Color {
	return r.pixels
}

// Size returns the render resolution
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// WindowSize returns the window size the render is displayed at
func (r *Renderer) WindowSize() (width, height int) {
	return r.windowWidth, r.windowHeight
}

// Bands returns the current row partition
func (r *Renderer) Bands() []Band {
	return r.grid
}

// LastRender returns the duration of the most recent Step
func (r *Renderer) LastRender() time.Duration {
	return r.lastRender
}

// Stats returns statistics since the last reset
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// Config returns the current settings
func (r *Renderer) Config() Config {
	return r.config
}

// Camera returns the camera rays are generated from
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// Scene returns the rendered scene
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}
