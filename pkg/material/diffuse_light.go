package material

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// DiffuseLight represents a light-emitting material
type DiffuseLight struct {
	Emission core.Color // Emitted light color/intensity
}

// NewDiffuseLight creates a new light-emitting material
func NewDiffuseLight(emission core.Color) *DiffuseLight {
	return &DiffuseLight{Emission: emission}
}

func (d *DiffuseLight) material() {}

// Emitted returns the emitted light for this material
func (d *DiffuseLight) Emitted() core.Color {
	return d.Emission
}

// Scatter implements the Material interface for lights.
// Lights don't scatter rays - they only emit light
func (d *DiffuseLight) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{}, false
}
