package core

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point         Vec3    // Point of intersection
	Normal        Vec3    // Surface normal, always facing against the incoming ray
	MaterialIndex int     // Index into the scene's materials, filled in by the scene
	T             float64 // Parameter t along the ray
	FrontFace     bool    // Whether the geometric outward normal already faced the ray
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
