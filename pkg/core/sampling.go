package core

import "math"

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// PCGHash is the PCG-RXS-M-XS 32 bit output permutation applied to one LCG step.
// It is used both as a hash for seed derivation and as the sampler's state transition.
func PCGHash(input uint32) uint32 {
	state := input*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// PCGSampler is a counter-style sampler: every draw advances a single
// 32 bit state through PCGHash. It holds no shared state, so each pixel
// sample owns its own sampler.
type PCGSampler struct {
	state uint32
}

// NewPCGSampler creates a sampler starting from the given state
func NewPCGSampler(seed uint32) *PCGSampler {
	return &PCGSampler{state: seed}
}

// NewPixelSampler derives a sampler for one sample of one pixel.
// The same (seed, x, y, sample) always yields the same sequence.
func NewPixelSampler(seed uint32, x, y, sample int) *PCGSampler {
	h := PCGHash(seed)
	h = PCGHash(h ^ uint32(x))
	h = PCGHash(h ^ uint32(y))
	h = PCGHash(h ^ uint32(sample))
	return &PCGSampler{state: h}
}

// Next advances the state and returns the new 32 bit value
func (p *PCGSampler) Next() uint32 {
	p.state = PCGHash(p.state)
	return p.state
}

// Get1D returns a float64 in [0, 1)
func (p *PCGSampler) Get1D() float64 {
	// top 24 bits keep the value strictly below 1
	return float64(p.Next()>>8) / (1 << 24)
}

// Get2D returns two float64 values in [0, 1)
func (p *PCGSampler) Get2D() Vec2 {
	x := p.Get1D()
	return NewVec2(x, p.Get1D())
}

// Get3D returns three float64 values in [0, 1)
func (p *PCGSampler) Get3D() Vec3 {
	x := p.Get1D()
	y := p.Get1D()
	return NewVec3(x, y, p.Get1D())
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleInHemisphere returns a uniform unit direction on the same side as normal
func SampleInHemisphere(normal Vec3, sample Vec2) Vec3 {
	d := SampleOnUnitSphere(sample)
	if d.Dot(normal) > 0 {
		return d
	}
	return d.Negate()
}
