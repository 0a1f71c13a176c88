package renderer

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(width, height int) Config {
	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.Threads = 2
	config.Seed = 1234
	return config
}

// newTestRenderer creates a renderer whose integrator is replaced by mock
func newTestRenderer(t *testing.T, config Config, mock *MockIntegrator) *Renderer {
	t.Helper()
	r, err := NewRenderer(scene.New(), nil, config, discardLogger)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	if mock != nil {
		r.bands = NewBandRenderer(r.scene, r.camera, mock)
	}
	return r
}

// litSphereScene is a lambertian sphere under an emitter of unit radiance.
// No path can carry more than unit radiance.
func litSphereScene() *scene.Scene {
	s := scene.New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5), material.NewLambertian(core.NewColor(0.7, 0.3, 0.3)))
	s.Add(geometry.NewSphere(core.NewVec3(0, 3, -1), 2), material.NewDiffuseLight(core.NewColor(1, 1, 1)))
	return s
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Width != 800 || config.Height != 450 {
		t.Errorf("Expected default window 800x450, got %dx%d", config.Width, config.Height)
	}
	if config.TextureScale != 1.0 {
		t.Errorf("Expected default texture scale 1.0, got %f", config.TextureScale)
	}
	if config.MaxDepth != 8 {
		t.Errorf("Expected default max depth 8, got %d", config.MaxDepth)
	}
	if config.BandMultiplier != 3 {
		t.Errorf("Expected default band multiplier 3, got %d", config.BandMultiplier)
	}
	if config.MaxSamples != 100_000_000 {
		t.Errorf("Expected default max samples 1e8, got %d", config.MaxSamples)
	}
}

func TestNewRenderer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"Zero width", func(c *Config) { c.Width = 0 }},
		{"Negative height", func(c *Config) { c.Height = -1 }},
		{"Zero texture scale", func(c *Config) { c.TextureScale = 0 }},
		{"Texture scale above one", func(c *Config) { c.TextureScale = 1.5 }},
		{"Negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"Depth above limit", func(c *Config) { c.MaxDepth = MaxDepthLimit + 1 }},
		{"Width above limit", func(c *Config) { c.Width = MaxWindowSize + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(8, 8)
			tt.modify(&config)
			if _, err := NewRenderer(scene.New(), nil, config, discardLogger); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := NewRenderer(nil, nil, testConfig(8, 8), discardLogger); err == nil {
		t.Error("Expected error for missing scene")
	}
}

func TestRenderer_ResizeAndTextureScale(t *testing.T) {
	config := testConfig(100, 50)
	config.TextureScale = 0.5
	r := newTestRenderer(t, config, &MockIntegrator{returnColor: core.NewColor(1, 1, 1)})

	if w, h := r.Size(); w != 50 || h != 25 {
		t.Fatalf("Expected 50x25 texture, got %dx%d", w, h)
	}
	if len(r.Pixels()) != 50*25 {
		t.Fatalf("Expected %d pixels, got %d", 50*25, len(r.Pixels()))
	}

	r.Step()
	r.Step()
	if r.SampleCount() != 2 {
		t.Fatalf("Expected 2 samples, got %d", r.SampleCount())
	}

	if err := r.Resize(40, 30); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if w, h := r.Size(); w != 20 || h != 15 {
		t.Errorf("Expected 20x15 texture, got %dx%d", w, h)
	}
	if w, h := r.WindowSize(); w != 40 || h != 30 {
		t.Errorf("Expected 40x30 window, got %dx%d", w, h)
	}
	if r.SampleCount() != 0 {
		t.Errorf("Resize should reset the sample count, got %d", r.SampleCount())
	}
	for i, p := range r.Pixels() {
		if p != (core.Color{}) {
			t.Fatalf("Pixel %d not cleared after resize: %v", i, p)
		}
	}
	if got := r.Camera().Config().AspectRatio; math.Abs(got-20.0/15.0) > 1e-12 {
		t.Errorf("Camera aspect should follow the texture, got %f", got)
	}

	if err := r.SetTextureScale(0.1); err != nil {
		t.Fatalf("SetTextureScale failed: %v", err)
	}
	if w, h := r.Size(); w != 4 || h != 3 {
		t.Errorf("Expected 4x3 texture, got %dx%d", w, h)
	}

	// Tiny scales still keep at least one pixel
	if err := r.SetTextureScale(0.001); err != nil {
		t.Fatalf("SetTextureScale failed: %v", err)
	}
	if w, h := r.Size(); w != 1 || h != 1 {
		t.Errorf("Expected 1x1 texture, got %dx%d", w, h)
	}

	if err := r.SetTextureScale(0); err == nil {
		t.Error("Expected error for zero texture scale")
	}
	if err := r.Resize(0, 10); err == nil {
		t.Error("Expected error for zero width")
	}
	if err := r.Resize(10, MaxWindowSize+1); err == nil {
		t.Error("Expected error for height above the limit")
	}
	if err := r.Resize(4_000_000, 4_000_000); err == nil {
		t.Error("Expected error for an oversized window")
	}
	if w, h := r.WindowSize(); w > MaxWindowSize || h > MaxWindowSize {
		t.Errorf("Rejected resize changed the window to %dx%d", w, h)
	}
}

func TestRenderer_ConstantSceneStaysExact(t *testing.T) {
	r := newTestRenderer(t, testConfig(12, 7), &MockIntegrator{returnColor: core.NewColor(0.5, 0.25, 1)})
	want := core.NewColor(0.5, 0.25, 1).GammaCorrect(Gamma)

	for pass := 1; pass <= 20; pass++ {
		r.Step()
		for i, p := range r.Pixels() {
			if p.Subtract(want).Length() > 1e-12 {
				t.Fatalf("Pass %d pixel %d: expected %v, got %v", pass, i, want, p)
			}
		}
	}
}

func TestRenderer_IsTrueRunningMean(t *testing.T) {
	config := testConfig(5, 4)
	r := newTestRenderer(t, config, &MockIntegrator{random: true})

	passes := 16
	for i := 0; i < passes; i++ {
		r.Step()
	}

	width, height := r.Size()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Recompute each sample the way the band renderer draws it
			sum := 0.0
			for sample := 1; sample <= passes; sample++ {
				sampler := core.NewPixelSampler(config.Seed, x, y, sample)
				sampler.Get2D() // jitter
				sum += math.Pow(sampler.Get1D(), 1/Gamma)
			}
			want := sum / float64(passes)

			got := r.Pixels()[y*width+x]
			if math.Abs(got.X-want) > 1e-9 {
				t.Errorf("Pixel (%d,%d): expected mean %f, got %f", x, y, want, got.X)
			}
		}
	}
}

func TestRenderer_Convergence(t *testing.T) {
	config := testConfig(16, 9)
	r, err := NewRenderer(litSphereScene(), NewCamera(CameraConfig{
		LookFrom: core.NewVec3(0, 0, 1),
		LookAt:   core.NewVec3(0, 0, -1),
		VFov:     60,
	}), config, discardLogger)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	previous := make([]core.Color, len(r.Pixels()))
	for n := 1; n <= 32; n++ {
		copy(previous, r.Pixels())
		r.Step()

		// Samples are bounded by 1, so the mean moves by at most 1/n
		bound := 1.0/float64(n) + 1e-12
		for i, p := range r.Pixels() {
			d := p.Subtract(previous[i])
			if math.Abs(d.X) > bound || math.Abs(d.Y) > bound || math.Abs(d.Z) > bound {
				t.Fatalf("Pass %d pixel %d moved by %v, more than %f", n, i, d, bound)
			}
		}
	}

	if AverageLuminance(r.Pixels()) <= 0 {
		t.Error("Expected a lit image")
	}
}

func TestRenderer_DeterministicAcrossBandCounts(t *testing.T) {
	render := func(threads, multiplier int) []core.Color {
		config := testConfig(24, 16)
		config.Threads = threads
		config.BandMultiplier = multiplier
		r, err := NewRenderer(scene.NewDefaultScene(), nil, config, discardLogger)
		if err != nil {
			t.Fatalf("NewRenderer failed: %v", err)
		}
		for i := 0; i < 3; i++ {
			r.Step()
		}
		return append([]core.Color(nil), r.Pixels()...)
	}

	a := render(1, 1)
	b := render(4, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Pixel %d differs between band layouts: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderer_WeightOneReplacesBuffer(t *testing.T) {
	r := newTestRenderer(t, testConfig(6, 4), &MockIntegrator{returnColor: core.NewColor(1, 1, 1)})
	r.Step()
	r.Step()

	r.bands = NewBandRenderer(r.scene, r.camera, &MockIntegrator{returnColor: core.NewColor(0, 0, 0)})
	r.RenderPass(1)
	for i, p := range r.Pixels() {
		if p != (core.Color{}) {
			t.Fatalf("Pixel %d should be replaced by the new sample, got %v", i, p)
		}
	}
}

func TestRenderer_StepStopsAtMaxSamples(t *testing.T) {
	config := testConfig(4, 4)
	config.MaxSamples = 3
	r := newTestRenderer(t, config, &MockIntegrator{returnColor: core.NewColor(1, 1, 1)})

	for i := 1; i <= 3; i++ {
		if !r.Step() {
			t.Fatalf("Step %d should render", i)
		}
	}
	if r.Step() {
		t.Error("Step should stop once max samples are reached")
	}
	if r.SampleCount() != 3 {
		t.Errorf("Expected 3 samples, got %d", r.SampleCount())
	}
	if r.Stats().Passes != 3 {
		t.Errorf("Expected 3 passes in stats, got %d", r.Stats().Passes)
	}

	r.ResetAccumulation()
	if r.SampleCount() != 0 || r.Stats().Passes != 0 {
		t.Errorf("Reset should clear samples and stats, got %d samples %d passes", r.SampleCount(), r.Stats().Passes)
	}
	for i, p := range r.Pixels() {
		if p != (core.Color{}) {
			t.Fatalf("Pixel %d not cleared after reset: %v", i, p)
		}
	}
	if !r.Step() {
		t.Error("Step should render again after a reset")
	}
}

func TestRenderer_SetMaxDepth(t *testing.T) {
	r, err := NewRenderer(litSphereScene(), nil, testConfig(8, 6), discardLogger)
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	r.Step()

	if err := r.SetMaxDepth(0); err != nil {
		t.Fatalf("SetMaxDepth failed: %v", err)
	}
	if r.SampleCount() != 0 {
		t.Errorf("SetMaxDepth should reset accumulation")
	}
	r.Step()
	for i, p := range r.Pixels() {
		if p != (core.Color{}) {
			t.Fatalf("Depth 0 should render black, pixel %d is %v", i, p)
		}
	}

	if err := r.SetMaxDepth(-1); err == nil {
		t.Error("Expected error for negative depth")
	}
	if err := r.SetMaxDepth(MaxDepthLimit + 1); err == nil {
		t.Error("Expected error for depth above the limit")
	}
	if err := r.SetMaxDepth(MaxDepthLimit); err != nil {
		t.Errorf("Depth at the limit should be accepted: %v", err)
	}
}
