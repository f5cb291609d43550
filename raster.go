package triklops

import (
	"image"
	"math"
)

// edge is the signed doubled area of the triangle (a, b, p).
// The explicit conversions round each product and keep the compiler from
// fusing them, so the coverage is the same on every architecture.
func edge(a, b, p Point) float64 {
	return float64((b.X-a.X)*(p.Y-a.Y)) - float64((b.Y-a.Y)*(p.X-a.X))
}

// fillTriangle alpha blends the triangle over the pixels of dst that have their
// center inside it. Only the bounding box of the triangle is visited.
// The result depends on nothing but t and the current pixels of dst.
func fillTriangle(dst *image.NRGBA, t Triangle) {
	size := dst.Bounds().Dx()
	t = t.clampTo(size)
	v0, v1, v2 := t.Vertices[0], t.Vertices[1], t.Vertices[2]

	area := edge(v0, v1, v2)
	if area == 0 || t.Alpha == 0 {
		return
	}

	var (
		minX = int(math.Floor(Min(v0.X, v1.X, v2.X)))
		maxX = int(math.Ceil(Max(v0.X, v1.X, v2.X)))
		minY = int(math.Floor(Min(v0.Y, v1.Y, v2.Y)))
		maxY = int(math.Ceil(Max(v0.Y, v1.Y, v2.Y)))

		width  = dst.Bounds().Dx()
		height = dst.Bounds().Dy()
	)
	maxX = Min(maxX, width-1)
	maxY = Min(maxY, height-1)

	inv := 1 - t.Alpha
	cr := float64(t.R) * t.Alpha
	cg := float64(t.G) * t.Alpha
	cb := float64(t.B) * t.Alpha

	for y := minY; y <= maxY; y++ {
		i := dst.PixOffset(minX, y)
		for x := minX; x <= maxX; x, i = x+1, i+4 {
			p := Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			w0 := edge(v1, v2, p)
			w1 := edge(v2, v0, p)
			w2 := edge(v0, v1, p)

			if area > 0 {
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
			} else if w0 > 0 || w1 > 0 || w2 > 0 {
				continue
			}

			pix := dst.Pix[i : i+4 : i+4]
			pix[0] = blend(pix[0], inv, cr)
			pix[1] = blend(pix[1], inv, cg)
			pix[2] = blend(pix[2], inv, cb)
			pix[3] = 0xff
		}
	}
}

func blend(base uint8, inv, src float64) uint8 {
	v := float64(float64(base)*inv) + src + 0.5
	if v > 255 {
		return 255
	}
	return uint8(v)
}
