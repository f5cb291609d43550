package triklops

import (
	"image"
	"image/color"
)

// Filter is a preprocessing step applied to the reference image before the
// search starts.
type Filter interface {
	Apply(src *image.NRGBA) *image.NRGBA
}

// FilterFunc adapts an ordinary function to the Filter interface.
type FilterFunc func(src *image.NRGBA) *image.NRGBA

// Apply calls f(src).
func (f FilterFunc) Apply(src *image.NRGBA) *image.NRGBA {
	return f(src)
}

// Pipeline applies a list of filters in order.
type Pipeline struct {
	Filters []Filter
}

// NewPipeline creates a pipeline from the given list of filters.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{
		Filters: filters,
	}
}

// Apply runs every filter, feeding each one the output of the previous.
func (p *Pipeline) Apply(src *image.NRGBA) *image.NRGBA {
	img := src
	for _, f := range p.Filters {
		img = f.Apply(img)
	}
	return img
}

// ResizeFilter scales the image to a size × size square.
func ResizeFilter(size int, bg color.NRGBA) Filter {
	return FilterFunc(func(src *image.NRGBA) *image.NRGBA {
		if b := src.Bounds(); b.Dx() == size && b.Dy() == size && b.Min == (image.Point{}) {
			return src
		}
		return Resize(src, size, bg)
	})
}

// GrayscaleFilter drops the color information.
func GrayscaleFilter() Filter {
	return FilterFunc(Grayscale)
}

// BlurFilter applies a box blur of the given radius. A radius of zero is a no-op.
func BlurFilter(radius int) Filter {
	return FilterFunc(func(src *image.NRGBA) *image.NRGBA {
		if radius <= 0 {
			return src
		}
		return convolutionFilter(setBlurMatrix(radius), src)
	})
}
