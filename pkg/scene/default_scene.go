package scene

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/material"
)

// NewDefaultScene creates the startup scene: a ground sphere, a large warm
// light overhead, two glowing boxes and three small spheres of metal, glass
// and diffuse material.
func NewDefaultScene() *Scene {
	s := New()

	// Create materials
	ground := material.NewLambertian(core.NewColor(0.3, 0.2, 0.1))
	whiteLight := material.NewDiffuseLight(core.NewColor(1.0, 0.91, 0.81).Multiply(10))
	metal := material.NewMetal(core.NewColor(0.8, 0.8, 0.8))
	lambertian := material.NewLambertian(core.NewColor(1.0, 0.8, 1.0))
	glass := material.NewDielectric(1.5)

	s.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100), ground)
	s.Add(geometry.NewSphere(core.NewVec3(0, 7, -12), 8), whiteLight)

	s.Add(geometry.NewBox(core.NewVec3(0, -0.5, -1), core.NewVec3(1, 3, 0)), whiteLight)
	s.Add(geometry.NewBox(core.NewVec3(-2.5, -0.5, -3.5), core.NewVec3(-1.5, 0.5, -2.5)), whiteLight)

	s.Add(geometry.NewSphere(core.NewVec3(0.5, 0, -2), 0.5), metal)
	s.Add(geometry.NewSphere(core.NewVec3(-1, 0, -2), 0.5), glass)
	s.Add(geometry.NewSphere(core.NewVec3(-1, 0, -0.5), 0.5), lambertian)

	return s
}

// DefaultView is the camera placement the default scene is composed for
var DefaultView = View{
	LookFrom:    core.NewVec3(0, 1, 1),
	LookAt:      core.NewVec3(0, 0, 0),
	FieldOfView: 90,
}
