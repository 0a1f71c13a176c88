package renderer

import (
	"image"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/integrator"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

// Gamma is applied to every linear sample before it is blended into the buffer
const Gamma = 2.2

// Band is a horizontal strip of full-width rows rendered by a single worker
type Band struct {
	ID     int             // Unique band identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewBandGrid splits an image into count contiguous row bands covering every row.
// Each band gets height/count rows and the last band also takes the remainder.
// count is clamped to [1, height].
func NewBandGrid(width, height, count int) []Band {
	if height <= 0 || width <= 0 {
		return nil
	}
	count = max(1, min(count, height))
	rows := height / count

	bands := make([]Band, count)
	for i := range bands {
		y0 := i * rows
		y1 := y0 + rows
		if i == count-1 {
			y1 = height
		}
		bands[i] = Band{ID: i, Bounds: image.Rect(0, y0, width, y1)}
	}
	return bands
}

// BandRenderer renders bands of the accumulation buffer using an integrator
type BandRenderer struct {
	scene      *scene.Scene
	camera     *Camera
	integrator integrator.Integrator
}

// NewBandRenderer creates a band renderer with the given scene, camera and integrator
func NewBandRenderer(s *scene.Scene, camera *Camera, integratorInst integrator.Integrator) *BandRenderer {
	return &BandRenderer{
		scene:      s,
		camera:     camera,
		integrator: integratorInst,
	}
}

// PassParams identifies one accumulation pass
type PassParams struct {
	Seed   uint32  // Base seed for sampler derivation
	Sample int     // Sample index the pixel samplers are derived from
	Weight float64 // Blend weight of the new sample
	Width  int     // Buffer width
	Height int     // Buffer height
}

// RenderBand takes one jittered sample for every pixel in bounds and blends it
// into pixels. Row 0 of the buffer is the bottom of the image.
// Bands of a pass must not overlap; each call only writes its own rows.
func (br *BandRenderer) RenderBand(bounds image.Rectangle, pixels []core.Color, params PassParams) {
	invW := 1.0 / float64(params.Width)
	invH := 1.0 / float64(params.Height)
	keep := 1.0 - params.Weight

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := pixels[y*params.Width : (y+1)*params.Width]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sampler := core.NewPixelSampler(params.Seed, x, y, params.Sample)

			// Jitter the sample position within the pixel
			jitter := sampler.Get2D()
			u := (float64(x) + jitter.X) * invW
			v := (float64(y) + jitter.Y) * invH

			color := br.integrator.RayColor(br.camera.GetRay(u, v), br.scene, sampler)
			color = color.GammaCorrect(Gamma)

			row[x] = row[x].Multiply(keep).Add(color.Multiply(params.Weight))
		}
	}
}
