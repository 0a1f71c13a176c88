package renderer

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// toFloat32 narrows a color to the precision the display texture stores
func toFloat32(c core.Color) (r, g, b float32) {
	return float32(c.X), float32(c.Y), float32(c.Z)
}

// quantize maps a gamma-encoded channel to 8 bits with clamping
func quantize(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	v = math32.Max(0, math32.Min(1, v))
	return uint8(math32.Round(v * 255))
}

// vec3ToColor converts an already gamma-encoded color to RGBA
func vec3ToColor(c core.Color) color.RGBA {
	r, g, b := toFloat32(c)
	return color.RGBA{
		R: quantize(r),
		G: quantize(g),
		B: quantize(b),
		A: 255,
	}
}

// Texture returns the buffer as packed float32 RGB triples, bottom row first,
// the layout of an RGB32F texture upload
func (r *Renderer) Texture() []float32 {
	out := make([]float32, 0, len(r.pixels)*3)
	for _, p := range r.pixels {
		cr, cg, cb := toFloat32(p)
		out = append(out, cr, cg, cb)
	}
	return out
}

// Image converts the buffer to an 8-bit image at render resolution with the
// top row first
func (r *Renderer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		row := r.pixels[y*r.width : (y+1)*r.width]
		for x, p := range row {
			img.SetRGBA(x, r.height-1-y, vec3ToColor(p))
		}
	}
	return img
}

// Blit scales the current image to the window size with nearest-neighbour filtering
func (r *Renderer) Blit() *image.RGBA {
	src := r.Image()
	if r.windowWidth == r.width && r.windowHeight == r.height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.windowWidth, r.windowHeight))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
