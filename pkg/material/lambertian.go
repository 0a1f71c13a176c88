package material

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

func (l *Lambertian) material() {}

// Emitted returns black; diffuse surfaces do not emit
func (l *Lambertian) Emitted() core.Color {
	return core.Color{}
}

// Scatter implements the Material interface for lambertian scattering.
// The direction is the normal plus a uniform point on the unit sphere,
// which is cosine-distributed around the normal.
func (l *Lambertian) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.SampleOnUnitSphere(sampler.Get2D()))

	// Catch degenerate scatter direction
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}
