package material

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Material is the closed set of surface behaviors:
// *Metal, *Lambertian, *DiffuseLight and *Dielectric.
type Material interface {
	// Emitted returns the radiance the surface emits on its own
	Emitted() core.Color

	// Scatter redirects the incoming ray. A false result means the path is
	// absorbed and only Emitted contributes.
	Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool)

	material()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray
	Attenuation core.Color // Color attenuation
}
