package server

import (
	"fmt"
	"math"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/integrator"
	"github.com/df07/go-interactive-raytracer/pkg/material"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// InspectResponse is sent back for a pick request so the settings panel can
// select the object under the cursor
type InspectResponse struct {
	Type         string                 `json:"type"`
	Hit          bool                   `json:"hit"`
	ID           int                    `json:"id"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Center       [3]float64             `json:"center"`
	Point        [3]float64             `json:"point"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func hexColor(c core.Color) string {
	clamp := func(v float64) int {
		return int(math.Max(0, math.Min(1, v)) * 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.X), clamp(c.Y), clamp(c.Z))
}

// extractMaterialInfo describes a material for the settings panel
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = toArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties
	case *material.Metal:
		properties["albedo"] = toArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "metal", properties
	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties
	case *material.DiffuseLight:
		properties["emission"] = toArray(m.Emission)
		properties["color"] = hexColor(m.Emission)
		return "light", properties
	default:
		return "unknown", properties
	}
}

// extractGeometryInfo describes a shape for the settings panel
func extractGeometryInfo(shape geometry.Shape, properties map[string]interface{}) string {
	switch g := shape.(type) {
	case *geometry.Sphere:
		properties["radius"] = g.Radius
		return "sphere"
	case *geometry.Box:
		properties["min"] = toArray(g.Min)
		properties["max"] = toArray(g.Max)
		return "box"
	default:
		return "unknown"
	}
}

// inspectPixel casts an unjittered ray through pixel (x, y) of a width x height
// image, y counted from the top, and reports the nearest object
func inspectPixel(s *scene.Scene, camera *renderer.Camera, width, height, x, y int) InspectResponse {
	resp := InspectResponse{Type: "pick", ID: -1}
	if width <= 0 || height <= 0 || x < 0 || y < 0 || x >= width || y >= height {
		return resp
	}

	u := (float64(x) + 0.5) / float64(width)
	v := 1 - (float64(y)+0.5)/float64(height)
	ray := camera.GetRay(u, v)

	hit, ok := s.Hit(ray, integrator.Epsilon, math.Inf(1))
	if !ok {
		return resp
	}

	// The scene reports the material, not the object; find the object whose
	// own intersection matches the nearest one
	for id, obj := range s.Objects() {
		shapeHit, shapeOk := s.Shape(obj.ShapeIndex).Hit(ray, integrator.Epsilon, hit.T+integrator.Epsilon)
		if !shapeOk || shapeHit.T != hit.T {
			continue
		}
		materialType, properties := extractMaterialInfo(s.Material(obj.MaterialIndex))
		shape := s.Shape(obj.ShapeIndex)
		resp.Hit = true
		resp.ID = id
		resp.MaterialType = materialType
		resp.GeometryType = extractGeometryInfo(shape, properties)
		resp.Center = toArray(shape.Position())
		resp.Point = toArray(hit.Point)
		resp.Distance = hit.T
		resp.Properties = properties
		return resp
	}
	return resp
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
