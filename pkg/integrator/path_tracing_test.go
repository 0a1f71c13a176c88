package integrator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// createTestScene creates a lambertian sphere under a spherical light
func createTestScene() *scene.Scene {
	s := scene.New()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5), material.NewLambertian(core.NewColor(0.7, 0.3, 0.3)))
	s.Add(geometry.NewSphere(core.NewVec3(0, 3, -1), 1.5), material.NewDiffuseLight(core.NewColor(4, 4, 4)))
	return s
}

// TestPathTracingDepthTermination tests that ray depth is properly limited
func TestPathTracingDepthTermination(t *testing.T) {
	sc := createTestScene()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Depth 0 is black no matter what the ray would hit
	for _, r := range []core.Ray{ray, core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, -1))} {
		if c := RayColor(r, sc, 0, core.NewPCGSampler(1)); c != (core.Color{}) {
			t.Errorf("Expected black color for depth 0, got %v", c)
		}
	}

	if c := NewPathTracingIntegrator(0).RayColor(ray, sc, core.NewPCGSampler(1)); c != (core.Color{}) {
		t.Errorf("Expected black color for zero max depth, got %v", c)
	}

	// Depth 1 on a non-emitter: the recursive term is black
	if c := RayColor(ray, sc, 1, core.NewPCGSampler(1)); c != (core.Color{}) {
		t.Errorf("Expected black color for one bounce off a diffuse surface, got %v", c)
	}
}

func TestPathTracingMissIsBlack(t *testing.T) {
	sc := createTestScene()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))

	if c := RayColor(ray, sc, 8, core.NewPCGSampler(3)); c != (core.Color{}) {
		t.Errorf("Expected black for a miss, got %v", c)
	}
}

func TestPathTracingLightReturnsEmission(t *testing.T) {
	sc := createTestScene()

	// Aimed at the light from outside: lights never scatter
	c := RayColor(core.NewRay(core.NewVec3(0, 3, 5), core.NewVec3(0, 0, -1)), sc, 8, core.NewPCGSampler(9))
	if diff := cmp.Diff(core.NewColor(4, 4, 4), c); diff != "" {
		t.Errorf("Light emission mismatch (-want +got):\n%s", diff)
	}
}

func TestPathTracingIdempotent(t *testing.T) {
	sc := scene.NewDefaultScene()
	integrator := NewPathTracingIntegrator(DefaultMaxDepth)

	for i := 0; i < 20; i++ {
		ray := core.NewRay(core.NewVec3(0, 1, 1), core.SampleInHemisphere(core.NewVec3(0, -0.5, -1), core.NewPCGSampler(uint32(i)).Get2D()))
		a := integrator.RayColor(ray, sc, core.NewPixelSampler(42, i, 0, 1))
		b := integrator.RayColor(ray, sc, core.NewPixelSampler(42, i, 0, 1))
		if a != b {
			t.Fatalf("Same ray and sampler state gave different colors: %v vs %v", a, b)
		}
	}
}

func TestPathTracingCombinationRule(t *testing.T) {
	// A mirror facing a light: (emitted + attenuation) * incoming
	s := scene.New()
	s.Add(geometry.NewBox(core.NewVec3(-1, -1, -3), core.NewVec3(1, 1, -2)), material.NewMetal(core.NewColor(0.5, 0.25, 1)))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 5), 1), material.NewDiffuseLight(core.NewColor(2, 2, 2)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	c := RayColor(ray, s, 2, core.NewPCGSampler(0))

	want := core.NewColor(1, 0.5, 2)
	if diff := cmp.Diff(want, c, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Combination mismatch (-want +got):\n%s", diff)
	}
}

func TestPathTracingFiniteRadiance(t *testing.T) {
	sc := scene.NewDefaultScene()
	for i := 0; i < 200; i++ {
		sampler := core.NewPixelSampler(7, i, i/10, 1)
		dir := core.SampleOnUnitSphere(sampler.Get2D())
		c := RayColor(core.NewRay(core.NewVec3(0, 1, 1), dir), sc, DefaultMaxDepth, sampler)
		if !c.IsFinite() || c.X < 0 || c.Y < 0 || c.Z < 0 || math.IsNaN(c.Luminance()) {
			t.Fatalf("Non-finite or negative radiance %v for direction %v", c, dir)
		}
	}
}
