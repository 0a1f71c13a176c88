package scene

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/material"
)

// Object binds a shape to a material by index into the scene's collections
type Object struct {
	ShapeIndex    int
	MaterialIndex int
}

// Scene owns the shapes and materials of the world and the objects binding them.
// The collections only grow; Add is the sole structural mutator, so indices
// held by objects and hit records stay valid for the lifetime of the scene.
type Scene struct {
	objects   []Object
	shapes    []geometry.Shape
	materials []material.Material
}

// New creates an empty scene
func New() *Scene {
	return &Scene{}
}

// Add registers a shape with its material and returns the new object id
func (s *Scene) Add(shape geometry.Shape, mat material.Material) int {
	obj := Object{ShapeIndex: len(s.shapes), MaterialIndex: len(s.materials)}
	s.shapes = append(s.shapes, shape)
	s.materials = append(s.materials, mat)
	s.objects = append(s.objects, obj)
	return len(s.objects) - 1
}

// Len returns the number of objects in the scene
func (s *Scene) Len() int {
	return len(s.objects)
}

// Objects returns a copy of the object bindings
func (s *Scene) Objects() []Object {
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Object returns the binding for the given object id
func (s *Scene) Object(id int) Object {
	if id < 0 || id >= len(s.objects) {
		panic(fmt.Sprintf("scene: object index %d out of range [0,%d)", id, len(s.objects)))
	}
	return s.objects[id]
}

// Shape returns the shape at index i
func (s *Scene) Shape(i int) geometry.Shape {
	if i < 0 || i >= len(s.shapes) {
		panic(fmt.Sprintf("scene: shape index %d out of range [0,%d)", i, len(s.shapes)))
	}
	return s.shapes[i]
}

// Material returns the material at index i
func (s *Scene) Material(i int) material.Material {
	if i < 0 || i >= len(s.materials) {
		panic(fmt.Sprintf("scene: material index %d out of range [0,%d)", i, len(s.materials)))
	}
	return s.materials[i]
}

// Hit finds the closest intersection in [tMin, tMax] across all objects.
// The returned record carries the material index of the object that was hit.
// Hit only reads the scene and is safe for concurrent use between calls to Add.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closest core.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, obj := range s.objects {
		rec, ok := s.Shape(obj.ShapeIndex).Hit(ray, tMin, closestSoFar)
		if !ok {
			continue
		}
		hitAnything = true
		closestSoFar = rec.T
		rec.MaterialIndex = obj.MaterialIndex
		closest = rec
	}

	return closest, hitAnything
}

// SetCenter moves the shape of object id so that its center is c.
// Callers must not do this while a render pass is running.
func (s *Scene) SetCenter(id int, c core.Vec3) error {
	if id < 0 || id >= len(s.objects) {
		return errors.Errorf("unknown object %d (scene has %d)", id, len(s.objects))
	}
	s.shapes[s.objects[id].ShapeIndex].SetPosition(c)
	return nil
}

// Center returns the center of the shape bound to object id
func (s *Scene) Center(id int) (core.Vec3, error) {
	if id < 0 || id >= len(s.objects) {
		return core.Vec3{}, errors.Errorf("unknown object %d (scene has %d)", id, len(s.objects))
	}
	return s.shapes[s.objects[id].ShapeIndex].Position(), nil
}
