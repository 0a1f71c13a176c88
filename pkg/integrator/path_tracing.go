package integrator

import (
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// Epsilon is the minimum hit distance for every traced ray. It keeps
// secondary rays from re-hitting the surface they start on.
const Epsilon = 0.001

// DefaultMaxDepth is the default bounce budget
const DefaultMaxDepth = 8

// PathTracingIntegrator implements unidirectional path tracing without light sampling
type PathTracingIntegrator struct {
	MaxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{MaxDepth: maxDepth}
}

// RayColor implements Integrator with the configured bounce budget
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Color {
	return RayColor(ray, s, pt.MaxDepth, sampler)
}

// RayColor computes the color seen along ray with at most depth bounces.
// Surfaces that scatter combine as (emitted + attenuation) * incoming.
// Misses and an exhausted bounce budget contribute black.
func RayColor(ray core.Ray, s *scene.Scene, depth int, sampler core.Sampler) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := s.Hit(ray, Epsilon, math.Inf(1))
	if !isHit {
		return core.Color{}
	}

	mat := s.Material(hit.MaterialIndex)
	emitted := mat.Emitted()

	scatter, didScatter := mat.Scatter(ray, hit, sampler)
	if !didScatter {
		// Material absorbed the ray, only return emitted light
		return emitted
	}

	return emitted.Add(scatter.Attenuation).MultiplyVec(RayColor(scatter.Scattered, s, depth-1, sampler))
}
