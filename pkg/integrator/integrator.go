package integrator

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray.
	// All randomness is drawn from sampler, so equal samplers give equal results.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color
}
