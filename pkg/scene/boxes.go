package scene

import (
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/material"
)

// NewBoxesScene creates a Cornell-style room built entirely from boxes,
// open at the front and lit by a box light under the ceiling
func NewBoxesScene() *Scene {
	s := New()

	// Create materials
	white := material.NewLambertian(core.NewColor(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewColor(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewColor(0.12, 0.45, 0.15))
	light := material.NewDiffuseLight(core.NewColor(15, 15, 15))
	mirror := material.NewMetal(core.NewColor(0.8, 0.8, 0.9))
	glass := material.NewDielectric(1.5)

	// Room dimensions (interior spans [0, roomSize] on every axis)
	roomSize := 5.0
	wall := 0.1

	// Floor, ceiling and back wall (white)
	s.Add(geometry.NewBox(core.NewVec3(-wall, -wall, 0), core.NewVec3(roomSize+wall, 0, roomSize+wall)), white)
	s.Add(geometry.NewBox(core.NewVec3(-wall, roomSize, 0), core.NewVec3(roomSize+wall, roomSize+wall, roomSize+wall)), white)
	s.Add(geometry.NewBox(core.NewVec3(0, 0, roomSize), core.NewVec3(roomSize, roomSize, roomSize+wall)), white)

	// Left wall (red) and right wall (green)
	s.Add(geometry.NewBox(core.NewVec3(-wall, 0, 0), core.NewVec3(0, roomSize, roomSize)), red)
	s.Add(geometry.NewBox(core.NewVec3(roomSize, 0, 0), core.NewVec3(roomSize+wall, roomSize, roomSize)), green)

	// Ceiling light (thin box just below the ceiling)
	lightSize := 1.2
	lightOffset := (roomSize - lightSize) / 2.0
	s.Add(geometry.NewBox(
		core.NewVec3(lightOffset, roomSize-0.05, lightOffset+0.5),
		core.NewVec3(lightOffset+lightSize, roomSize, lightOffset+0.5+lightSize),
	), light)

	// Tall diffuse block at the back left, short mirror block at the front right
	s.Add(geometry.NewBox(core.NewVec3(1.0, 0, 2.6), core.NewVec3(2.3, 3.0, 3.9)), white)
	s.Add(geometry.NewBox(core.NewVec3(2.9, 0, 1.2), core.NewVec3(4.1, 1.2, 2.4)), mirror)

	// Glass sphere resting on the short block
	s.Add(geometry.NewSphere(core.NewVec3(3.5, 1.7, 1.8), 0.5), glass)

	return s
}

// BoxesView looks into the open side of the room
var BoxesView = View{
	LookFrom:    core.NewVec3(2.5, 2.5, -6.5),
	LookAt:      core.NewVec3(2.5, 2.5, 0),
	FieldOfView: 40,
}
