package triklops

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// ErrSizeMismatch is returned when two images taking part in a comparison
// do not have the same dimensions.
var ErrSizeMismatch = errors.New("image dimensions do not match")

// Metric selects how a composite is compared against the reference image.
type Metric int

const (
	// MSE is the mean squared per channel difference. Lower is better.
	MSE Metric = iota
	// SSIM is the windowed structural similarity index. Higher is better.
	SSIM
)

// ParseMetric converts a metric name as given on the command line.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "mse":
		return MSE, nil
	case "ssim":
		return SSIM, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q (want mse or ssim)", name)
}

func (m Metric) String() string {
	switch m {
	case MSE:
		return "mse"
	case SSIM:
		return "ssim"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Better reports whether fitness a is strictly better than b.
func (m Metric) Better(a, b float64) bool {
	if m == SSIM {
		return a > b
	}
	return a < b
}

// Worst is the fitness no real candidate can reach.
func (m Metric) Worst() float64 {
	if m == SSIM {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Compare scores img against ref. Both must be the same size.
func (m Metric) Compare(img, ref *image.NRGBA) (float64, error) {
	if img.Bounds().Size() != ref.Bounds().Size() {
		return 0, ErrSizeMismatch
	}
	if m == SSIM {
		return ssim(img, ref), nil
	}
	return mse(img, ref), nil
}

// mse averages the squared RGB differences over the whole image.
// Alpha is ignored: the canvas is always opaque.
func mse(img, ref *image.NRGBA) float64 {
	var sum uint64
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := int64(img.Pix[i+c]) - int64(ref.Pix[i+c])
			sum += uint64(d * d)
		}
	}
	n := len(img.Pix) / 4 * 3
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// Evaluator scores candidate triangles against a fixed reference image.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	Metric    Metric
	Reference *image.NRGBA
	// Threshold is the degeneracy threshold in degrees; nil disables filtering.
	Threshold *float64
}

// Score composites t over the canvas into scratch and compares the result
// with the reference. Degenerate triangles get the metric's worst value
// without being rasterized. scratch may be nil.
func (e *Evaluator) Score(t Triangle, canvas *Canvas, scratch *image.NRGBA) (float64, error) {
	if IsDegenerate(t, e.Threshold) {
		return e.Metric.Worst(), nil
	}
	if scratch == nil {
		scratch = image.NewNRGBA(canvas.pix().Bounds())
	}
	if scratch.Bounds() != canvas.pix().Bounds() {
		return 0, ErrSizeMismatch
	}
	canvas.CompositeInto(scratch, t)
	return e.Metric.Compare(scratch, e.Reference)
}
