package renderer

import (
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// PassStats describes a single completed render pass
type PassStats struct {
	Sample   int           // Sample index the pass rendered
	Weight   float64       // Blend weight used
	Bands    int           // Number of bands the pass was split into
	Pixels   int           // Pixels sampled
	Duration time.Duration // Wall time of the pass
}

// RenderStats accumulates pass statistics since the last accumulation reset
type RenderStats struct {
	Passes        int           // Passes since reset
	TotalPixels   int           // Pixel samples taken since reset
	TotalDuration time.Duration // Time spent in passes since reset
	LastPass      PassStats     // Most recent pass
}

// AddPass records a completed pass
func (rs *RenderStats) AddPass(ps PassStats) {
	rs.Passes++
	rs.TotalPixels += ps.Pixels
	rs.TotalDuration += ps.Duration
	rs.LastPass = ps
}

// AveragePass returns the mean pass duration
func (rs *RenderStats) AveragePass() time.Duration {
	if rs.Passes == 0 {
		return 0
	}
	return rs.TotalDuration / time.Duration(rs.Passes)
}

// SamplesPerSecond returns the pixel sample throughput since reset
func (rs *RenderStats) SamplesPerSecond() float64 {
	if rs.TotalDuration <= 0 {
		return 0
	}
	return float64(rs.TotalPixels) / rs.TotalDuration.Seconds()
}

// AverageLuminance returns the mean luminance of a pixel buffer
func AverageLuminance(pixels []core.Color) float64 {
	if len(pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range pixels {
		total += p.Luminance()
	}
	return total / float64(len(pixels))
}
