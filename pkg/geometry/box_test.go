package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestNewBox_OrdersCorners(t *testing.T) {
	box := NewBox(core.NewVec3(1, -1, 2), core.NewVec3(-1, 3, 0))

	if box.Min != core.NewVec3(-1, -1, 0) {
		t.Errorf("Expected min (-1,-1,0), got %v", box.Min)
	}
	if box.Max != core.NewVec3(1, 3, 2) {
		t.Errorf("Expected max (1,3,2), got %v", box.Max)
	}
	if box.Size() != core.NewVec3(2, 4, 2) {
		t.Errorf("Expected size (2,4,2), got %v", box.Size())
	}
}

func TestBox_Hit_AxisAligned(t *testing.T) {
	// Create a 2x2x2 box centered at origin
	box := NewBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))

	tests := []struct {
		name           string
		ray            core.Ray
		tMin           float64
		tMax           float64
		shouldHit      bool
		expectedT      float64
		expectedNormal core.Vec3
		expectedFront  bool
	}{
		{
			name:           "Ray hits back face",
			ray:            core.NewRay(core.NewVec3(0, 0, -3), core.NewVec3(0, 0, 1)),
			tMin:           0.001,
			tMax:           10.0,
			shouldHit:      true,
			expectedT:      2.0,
			expectedNormal: core.NewVec3(0, 0, -1),
			expectedFront:  true,
		},
		{
			name:           "Ray hits left face",
			ray:            core.NewRay(core.NewVec3(-3, 0, 0), core.NewVec3(1, 0, 0)),
			tMin:           0.001,
			tMax:           10.0,
			shouldHit:      true,
			expectedT:      2.0,
			expectedNormal: core.NewVec3(-1, 0, 0),
			expectedFront:  true,
		},
		{
			name:           "Ray hits top face from above",
			ray:            core.NewRay(core.NewVec3(0.2, 5, 0.3), core.NewVec3(0, -2, 0)),
			tMin:           0.001,
			tMax:           10.0,
			shouldHit:      true,
			expectedT:      2.0,
			expectedNormal: core.NewVec3(0, 1, 0),
			expectedFront:  true,
		},
		{
			name:      "Ray misses box",
			ray:       core.NewRay(core.NewVec3(0, 3, -3), core.NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: false,
		},
		{
			name:      "Box behind ray",
			ray:       core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: false,
		},
		{
			name:      "Box beyond tMax",
			ray:       core.NewRay(core.NewVec3(0, 0, -3), core.NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      1.5,
			shouldHit: false,
		},
		{
			name:           "Ray inside box",
			ray:            core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)),
			tMin:           0.001,
			tMax:           10.0,
			shouldHit:      true,
			expectedT:      1.0,
			expectedNormal: core.NewVec3(-1, 0, 0),
			expectedFront:  false,
		},
		{
			name:      "Interval entirely inside box",
			ray:       core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)),
			tMin:      0.001,
			tMax:      0.5,
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := box.Hit(tt.ray, tt.tMin, tt.tMax)

			if isHit != tt.shouldHit {
				t.Fatalf("Expected hit=%t, got hit=%t", tt.shouldHit, isHit)
			}
			if !tt.shouldHit {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.Normal != tt.expectedNormal {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
		})
	}
}

func TestBox_Hit_CornerTieBreaksOnX(t *testing.T) {
	box := NewBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	ray := core.NewRay(core.NewVec3(-2, -2, -2), core.NewVec3(1, 1, 1))

	hit, isHit := box.Hit(ray, 0.001, 10)
	if !isHit {
		t.Fatal("Expected corner hit")
	}
	if math.Abs(hit.T-1) > 1e-12 {
		t.Errorf("Expected t=1, got %f", hit.T)
	}
	if hit.Normal != core.NewVec3(-1, 0, 0) {
		t.Errorf("Expected x face normal for exact corner hit, got %v", hit.Normal)
	}
}

func TestBox_Slabs_AxisParallelRay(t *testing.T) {
	box := NewBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))

	// Direction has zero x and y components; reciprocals are infinite
	tEnter, tExit, near, far := box.Slabs(core.NewRay(core.NewVec3(0.5, 0.5, -4), core.NewVec3(0, 0, 2)))
	if !math.IsInf(near.X, -1) || !math.IsInf(far.X, 1) {
		t.Errorf("Expected infinite x slab for parallel ray, got near=%f far=%f", near.X, far.X)
	}
	if math.Abs(tEnter-1.5) > 1e-12 || math.Abs(tExit-2.5) > 1e-12 {
		t.Errorf("Expected [1.5, 2.5], got [%f, %f]", tEnter, tExit)
	}

	// Parallel ray outside the x slab never enters it
	_, isHit := box.Hit(core.NewRay(core.NewVec3(3, 0, -4), core.NewVec3(0, 0, 1)), 0.001, 100)
	if isHit {
		t.Error("Expected parallel ray outside the slab to miss")
	}
}

func TestBox_Hit_Properties(t *testing.T) {
	box := NewBox(core.NewVec3(-0.5, -1, -2), core.NewVec3(1, 0.5, -0.5))
	sampler := core.NewPCGSampler(77)

	axisNormals := map[core.Vec3]bool{
		core.NewVec3(1, 0, 0): true, core.NewVec3(-1, 0, 0): true,
		core.NewVec3(0, 1, 0): true, core.NewVec3(0, -1, 0): true,
		core.NewVec3(0, 0, 1): true, core.NewVec3(0, 0, -1): true,
	}

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := sampler.Get3D().Multiply(8).Subtract(core.NewVec3(4, 4, 4))
		target := box.Position().Add(sampler.Get3D().Subtract(core.NewVec3(0.5, 0.5, 0.5)))
		ray := core.NewRay(origin, target.Subtract(origin))

		hit, isHit := box.Hit(ray, 0.001, math.Inf(1))
		if !isHit {
			continue
		}
		hits++

		tEnter, tExit, _, _ := box.Slabs(ray)
		if tEnter > tExit {
			t.Fatalf("Hit reported with tEnter %f > tExit %f", tEnter, tExit)
		}
		if !axisNormals[hit.Normal] {
			t.Fatalf("Normal %v is not an axis-aligned unit vector", hit.Normal)
		}
		if hit.Normal.Dot(ray.Direction) > 0 {
			t.Fatalf("Normal %v does not face against ray %v", hit.Normal, ray.Direction)
		}
	}
	if hits == 0 {
		t.Fatal("Expected at least some rays to hit the box")
	}
}

func TestBox_SetPosition(t *testing.T) {
	box := NewBox(core.NewVec3(0, 0, 0), core.NewVec3(2, 2, 2))
	box.SetPosition(core.NewVec3(10, 0, 0))

	if box.Min != core.NewVec3(9, -1, -1) || box.Max != core.NewVec3(11, 1, 1) {
		t.Errorf("Expected box [(9,-1,-1), (11,1,1)], got [%v, %v]", box.Min, box.Max)
	}
}
