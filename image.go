package triklops

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"
)

// Image exports the committed state as a raster image.
type Image struct {
	// Scale renders the triangles again at Scale times the canvas size.
	// Values below 2 write the canvas pixels as they are.
	Scale int
	// Noise adds a grain of the given amount to the output.
	Noise      int
	Background color.NRGBA
}

// Encode writes the save point as PNG.
func (im *Image) Encode(w io.Writer, sp SavePoint) error {
	var img *image.NRGBA
	if im.Scale > 1 {
		size := sp.Snapshot.Bounds().Dx() * im.Scale
		img = ImgToNRGBA(RenderTriangles(sp.Triangles, size, float64(im.Scale), im.Background))
	} else {
		img = sp.Snapshot
	}
	if im.Noise > 0 {
		img = Noise(im.Noise, img)
	}
	return png.Encode(w, img)
}

// RenderTriangles draws the triangles, scaled by factor, on a size × size
// anti-aliased image.
func RenderTriangles(triangles []Triangle, size int, factor float64, bg color.NRGBA) image.Image {
	ctx := gg.NewContext(size, size)
	ctx.DrawRectangle(0, 0, float64(size), float64(size))
	ctx.SetRGBA255(int(bg.R), int(bg.G), int(bg.B), 255)
	ctx.Fill()

	for _, t := range triangles {
		p0, p1, p2 := t.Vertices[0], t.Vertices[1], t.Vertices[2]

		ctx.Push()
		ctx.Scale(factor, factor)
		ctx.MoveTo(p0.X, p0.Y)
		ctx.LineTo(p1.X, p1.Y)
		ctx.LineTo(p2.X, p2.Y)
		ctx.ClosePath()
		ctx.SetRGBA(float64(t.R)/255, float64(t.G)/255, float64(t.B)/255, t.Alpha)
		ctx.Fill()
		ctx.Pop()
	}
	return ctx.Image()
}
