package triklops

import (
	"math"

	"golang.org/x/exp/constraints"
)

// NumGenes is the number of independently inheritable values of a Triangle:
// three x/y vertex pairs, three color channels and the alpha coverage.
const NumGenes = 10

// Point is a vertex with real valued coordinates.
type Point struct {
	X, Y float64
}

// Triangle is a flat colored, alpha blended triangle.
type Triangle struct {
	Vertices [3]Point
	R, G, B  uint8
	// Alpha is the coverage in [0, 1].
	Alpha float64
}

// Genes flattens the triangle into its gene vector.
func (t Triangle) Genes() [NumGenes]float64 {
	return [NumGenes]float64{
		t.Vertices[0].X, t.Vertices[0].Y,
		t.Vertices[1].X, t.Vertices[1].Y,
		t.Vertices[2].X, t.Vertices[2].Y,
		float64(t.R), float64(t.G), float64(t.B),
		t.Alpha,
	}
}

// TriangleFromGenes is the inverse of Triangle.Genes.
func TriangleFromGenes(g [NumGenes]float64) Triangle {
	return Triangle{
		Vertices: [3]Point{{g[0], g[1]}, {g[2], g[3]}, {g[4], g[5]}},
		R:        uint8(Clamp(math.Round(g[6]), 0, 255)),
		G:        uint8(Clamp(math.Round(g[7]), 0, 255)),
		B:        uint8(Clamp(math.Round(g[8]), 0, 255)),
		Alpha:    Clamp(g[9], 0, 1),
	}
}

// Angles returns the three interior angles in degrees, in vertex order.
// Coincident vertices yield a zero angle instead of NaN.
func (t Triangle) Angles() [3]float64 {
	var angles [3]float64
	for i := 0; i < 3; i++ {
		a := t.Vertices[i]
		b := t.Vertices[(i+1)%3]
		c := t.Vertices[(i+2)%3]

		ux, uy := b.X-a.X, b.Y-a.Y
		vx, vy := c.X-a.X, c.Y-a.Y
		cross := math.Abs(ux*vy - uy*vx)
		dot := ux*vx + uy*vy
		angles[i] = math.Atan2(cross, dot) * 180 / math.Pi
	}
	return angles
}

// MinAngle returns the smallest interior angle in degrees.
func (t Triangle) MinAngle() float64 {
	a := t.Angles()
	return Min(a[0], a[1], a[2])
}

// clampTo returns a copy with every vertex clamped to [0, size).
func (t Triangle) clampTo(size int) Triangle {
	hi := math.Nextafter(float64(size), 0)
	for i := range t.Vertices {
		t.Vertices[i].X = Clamp(t.Vertices[i].X, 0, hi)
		t.Vertices[i].Y = Clamp(t.Vertices[i].Y, 0, hi)
	}
	t.Alpha = Clamp(t.Alpha, 0, 1)
	return t
}

// Min returns the smallest value between two or more numbers.
func Min[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// Max returns the biggest value between two or more numbers.
func Max[T constraints.Ordered](values ...T) T {
	var acc T = values[0]

	for _, v := range values {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return Max(lo, Min(v, hi))
}
