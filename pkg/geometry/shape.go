package geometry

import "github.com/df07/go-interactive-raytracer/pkg/core"

// Shape is the closed set of hittable primitives: *Sphere and *Box.
// Shapes do not know their material; the scene binds one at hit time.
type Shape interface {
	// Hit returns the nearest intersection with t in [tMin, tMax]
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)

	// Position returns the point the settings panel edits
	Position() core.Vec3

	// SetPosition moves the shape so that Position returns p
	SetPosition(p core.Vec3)

	shape()
}
