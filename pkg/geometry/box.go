package geometry

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// Box represents an axis-aligned box between two corners
type Box struct {
	Min core.Vec3 // Minimum corner
	Max core.Vec3 // Maximum corner
}

// NewBox creates a new axis-aligned box. The corners may be given in any order.
func NewBox(p0, p1 core.Vec3) *Box {
	return &Box{Min: p0.Min(p1), Max: p0.Max(p1)}
}

func (b *Box) shape() {}

// Position returns the midpoint of the box
func (b *Box) Position() core.Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// SetPosition translates the box so its midpoint is p, keeping its size
func (b *Box) SetPosition(p core.Vec3) {
	offset := p.Subtract(b.Position())
	b.Min = b.Min.Add(offset)
	b.Max = b.Max.Add(offset)
}

// Size returns the extent of the box along each axis
func (b *Box) Size() core.Vec3 {
	return b.Max.Subtract(b.Min)
}

// Slabs returns the entry and exit parameters of the ray against the box slabs,
// along with the per-axis near and far distances they were chosen from.
// Zero direction components produce signed infinities, which degenerate the
// corresponding slab to "always inside" or "never inside".
func (b *Box) Slabs(ray core.Ray) (tEnter, tExit float64, near, far core.Vec3) {
	invDirection := ray.Direction.Reciprocal()
	t0 := b.Min.Subtract(ray.Origin).MultiplyVec(invDirection)
	t1 := b.Max.Subtract(ray.Origin).MultiplyVec(invDirection)

	near = t0.Min(t1)
	far = t0.Max(t1)

	return near.MaxComponent(), far.MinComponent(), near, far
}

// Hit tests if a ray intersects with the box using the slab method
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	tEnter, tExit, near, far := b.Slabs(ray)

	if !(tEnter < tExit && tExit > tMin && tEnter < tMax) {
		return core.HitRecord{}, false
	}

	// Entering face when it lies in range, otherwise the ray starts inside
	// and leaves through the exit face.
	t, axisDistances, entering := tEnter, near, true
	if tEnter < tMin {
		if tExit > tMax {
			return core.HitRecord{}, false
		}
		t, axisDistances, entering = tExit, far, false
	}

	hit := core.HitRecord{
		T:     t,
		Point: ray.At(t),
	}
	hit.SetFaceNormal(ray, faceNormal(axisDistances, t, ray.Direction, entering))
	return hit, true
}

// faceNormal returns the outward normal of the face hit at t. The axis is the
// first of x, y, z whose slab distance equals t, so exact edge and corner
// hits always resolve to the earlier axis.
func faceNormal(axisDistances core.Vec3, t float64, direction core.Vec3, entering bool) core.Vec3 {
	axis := 2
	switch t {
	case axisDistances.X:
		axis = 0
	case axisDistances.Y:
		axis = 1
	}

	// An entering ray crosses the face whose normal opposes its direction
	sign := 1.0
	if (direction.Axis(axis) > 0) == entering {
		sign = -1.0
	}

	var n core.Vec3
	switch axis {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}
