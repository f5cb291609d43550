package triklops

import (
	"image"
	"image/color"
)

// Canvas is the image built so far. The only in place mutation is Commit;
// everything else works on copies so a Canvas can be shared read-only
// between evaluation workers.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas allocates a size × size canvas filled with an opaque background.
func NewCanvas(size int, bg color.NRGBA) *Canvas {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	bg.A = 0xff
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = bg.R
		img.Pix[i+1] = bg.G
		img.Pix[i+2] = bg.B
		img.Pix[i+3] = bg.A
	}
	return &Canvas{img: img}
}

// Size returns the side length of the canvas in pixels.
func (c *Canvas) Size() int {
	return c.img.Bounds().Dx()
}

// Composite returns a new buffer holding the canvas with t blended in.
// The canvas itself is left untouched.
func (c *Canvas) Composite(t Triangle) *image.NRGBA {
	dst := image.NewNRGBA(c.img.Bounds())
	c.CompositeInto(dst, t)
	return dst
}

// CompositeInto is Composite writing into a caller owned buffer of the same
// bounds, so evaluation workers can reuse their scratch memory.
func (c *Canvas) CompositeInto(dst *image.NRGBA, t Triangle) {
	copy(dst.Pix, c.img.Pix)
	fillTriangle(dst, t)
}

// Commit blends t into the canvas in place.
func (c *Canvas) Commit(t Triangle) {
	fillTriangle(c.img, t)
}

// Snapshot returns an independent copy of the current pixels.
func (c *Canvas) Snapshot() *image.NRGBA {
	dst := image.NewNRGBA(c.img.Bounds())
	copy(dst.Pix, c.img.Pix)
	return dst
}

// pix exposes the pixels for read-only use by the fitness metrics.
func (c *Canvas) pix() *image.NRGBA {
	return c.img
}
