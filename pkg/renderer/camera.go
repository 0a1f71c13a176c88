package renderer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// CameraConfig contains the user-adjustable camera settings
type CameraConfig struct {
	LookFrom    core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Up direction
	VFov        float64   // Vertical field of view in degrees
	AspectRatio float64   // Viewport width / height
}

// DefaultCameraConfig returns the startup camera: looking down at the origin from (0,1,1)
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:    core.NewVec3(0, 1, 1),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
	}
}

// Validate reports settings that cannot form a viewport: a zero view
// direction, a view direction parallel to Up, or a field of view outside (0, 180).
// An unset Up is treated as +Y.
func (c CameraConfig) Validate() error {
	if c.VFov <= 0 || c.VFov >= 180 {
		return errors.Errorf("field of view %v out of range (0, 180)", c.VFov)
	}
	view := c.LookAt.Subtract(c.LookFrom)
	if view.NearZero() {
		return errors.New("look from and look at must differ")
	}
	up := c.Up
	if up == (core.Vec3{}) {
		up = core.NewVec3(0, 1, 0)
	}
	if up.Normalize().Cross(view.Normalize()).NearZero() {
		return errors.New("view direction must not be parallel to the up vector")
	}
	return nil
}

// Camera generates rays for rendering
type Camera struct {
	config CameraConfig

	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// NewCamera creates a camera and derives its viewport from config
func NewCamera(config CameraConfig) *Camera {
	if config.Up == (core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}
	c := &Camera{config: config}
	c.Update()
	return c
}

// Config returns the current camera settings
func (c *Camera) Config() CameraConfig {
	return c.config
}

// SetConfig replaces the camera settings and re-derives the viewport.
// An unset up vector keeps the current one.
func (c *Camera) SetConfig(config CameraConfig) {
	if config.Up == (core.Vec3{}) {
		config.Up = c.config.Up
	}
	c.config = config
	c.Update()
}

// SetAspectRatio changes the viewport aspect ratio and re-derives the viewport
func (c *Camera) SetAspectRatio(aspectRatio float64) {
	c.config.AspectRatio = aspectRatio
	c.Update()
}

// Update re-derives the viewport vectors from the settings
func (c *Camera) Update() {
	theta := c.config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2.0)
	viewportHeight := 2.0 * h
	viewportWidth := c.config.AspectRatio * viewportHeight

	// Orthonormal basis: w points backwards, u right, v up
	w := c.config.LookFrom.Subtract(c.config.LookAt).Normalize()
	u := c.config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	c.origin = c.config.LookFrom
	c.horizontal = u.Multiply(viewportWidth)
	c.vertical = v.Multiply(viewportHeight)
	c.lowerLeftCorner = c.origin.
		Subtract(c.horizontal.Multiply(0.5)).
		Subtract(c.vertical.Multiply(0.5)).
		Subtract(w)
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the lower left corner of the viewport.
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}
