package triklops

import (
	"bytes"
	"image/color"
	"testing"
)

func TestNewCanvasBackground(t *testing.T) {
	c := NewCanvas(8, color.NRGBA{R: 10, G: 20, B: 30})
	if c.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", c.Size())
	}
	img := c.Snapshot()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 10 || img.Pix[i+1] != 20 || img.Pix[i+2] != 30 || img.Pix[i+3] != 0xff {
			t.Fatalf("pixel %d = %v, want opaque background", i/4, img.Pix[i:i+4])
		}
	}
}

func TestCompositeIsPure(t *testing.T) {
	c := NewCanvas(16, color.NRGBA{})
	before := c.Snapshot()

	tri := Triangle{Vertices: [3]Point{{0, 0}, {15.9, 0}, {0, 15.9}}, R: 255, Alpha: 1}
	out := c.Composite(tri)

	if !bytes.Equal(c.Snapshot().Pix, before.Pix) {
		t.Fatal("Composite mutated the canvas")
	}
	if bytes.Equal(out.Pix, before.Pix) {
		t.Fatal("Composite did not draw the triangle")
	}

	c.Commit(tri)
	if !bytes.Equal(c.Snapshot().Pix, out.Pix) {
		t.Error("Commit and Composite disagree")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	c := NewCanvas(4, color.NRGBA{})
	snap := c.Snapshot()
	snap.Pix[0] = 99
	if c.Snapshot().Pix[0] != 0 {
		t.Error("modifying a snapshot changed the canvas")
	}
}

func TestFillTriangleCoverage(t *testing.T) {
	c := NewCanvas(10, color.NRGBA{})
	// Lower left half of the canvas, pixel centers on the diagonal included.
	tri := Triangle{Vertices: [3]Point{{0, 0}, {0, 10}, {10, 10}}, R: 200, G: 100, B: 50, Alpha: 1}
	img := c.Composite(tri)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			i := img.PixOffset(x, y)
			inside := x <= y
			if inside && img.Pix[i] != 200 {
				t.Errorf("pixel (%d, %d) not filled", x, y)
			}
			if !inside && img.Pix[i] != 0 {
				t.Errorf("pixel (%d, %d) filled outside the triangle", x, y)
			}
		}
	}
}

func TestFillTriangleAlphaBlend(t *testing.T) {
	c := NewCanvas(4, color.NRGBA{R: 100, G: 100, B: 100})
	tri := Triangle{Vertices: [3]Point{{0, 0}, {3.99, 0}, {0, 3.99}}, R: 200, G: 0, B: 255, Alpha: 0.5}
	img := c.Composite(tri)

	if got := img.Pix[0:3]; got[0] != 150 || got[1] != 50 || got[2] != 178 {
		t.Errorf("blended pixel = %v, want [150 50 178]", got)
	}
}

func TestFillDegenerateTriangle(t *testing.T) {
	c := NewCanvas(8, color.NRGBA{})
	before := c.Snapshot()
	c.Commit(Triangle{Vertices: [3]Point{{1, 1}, {4, 4}, {7, 7}}, R: 255, Alpha: 1})
	if !bytes.Equal(c.Snapshot().Pix, before.Pix) {
		t.Error("zero area triangle changed the canvas")
	}
}
