package material

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Metal represents a perfect mirror tinted by its albedo
type Metal struct {
	Albedo core.Color
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Color) *Metal {
	return &Metal{Albedo: albedo}
}

func (m *Metal) material() {}

// Emitted returns black; metals do not emit
func (m *Metal) Emitted() core.Color {
	return core.Color{}
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)
	scattered := core.NewRay(hit.Point, reflected)

	// Rays reflected into the surface are absorbed
	scatters := scattered.Direction.Dot(hit.Normal) > 0

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, scatters
}
