package triklops

import (
	"fmt"
	"image/color"
	"runtime"

	"go.uber.org/multierr"
)

// Params holds the resolved options of a run.
type Params struct {
	NumTriangles   int
	ImageSize      int
	NumGenerations int
	PopulationSize int
	NumSelected    int
	MutationRate   float64
	Algorithm      Metric
	Background     color.NRGBA

	// Seed makes the run reproducible; nil draws one from entropy.
	Seed *uint64
	// DegeneracyThreshold is the minimum interior angle in degrees a triangle
	// needs to compete; nil disables the filter.
	DegeneracyThreshold *float64
	// SaveFrequency emits a save point every N committed triangles.
	// Zero means only the final triangle is a save point.
	SaveFrequency int
	// Workers is the evaluation parallelism. Zero uses every available CPU.
	Workers int
}

// DefaultParams returns the default options.
func DefaultParams() Params {
	return Params{
		NumTriangles:   512,
		ImageSize:      256,
		NumGenerations: 256,
		PopulationSize: 128,
		NumSelected:    64,
		MutationRate:   0.1,
		Algorithm:      MSE,
		Background:     color.NRGBA{A: 0xff},
	}
}

// ParamError names an out of range parameter.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Name, e.Value, e.Reason)
}

// Validate checks every parameter and reports all offending ones at once.
func (p Params) Validate() error {
	var err error
	positive := func(name string, v int) {
		if v <= 0 {
			err = multierr.Append(err, &ParamError{name, v, "must be greater than zero"})
		}
	}
	positive("image_size", p.ImageSize)
	positive("num_triangles", p.NumTriangles)
	positive("population_size", p.PopulationSize)
	positive("num_selected", p.NumSelected)
	positive("num_generations", p.NumGenerations)

	if p.NumSelected > p.PopulationSize {
		err = multierr.Append(err, &ParamError{"num_selected", p.NumSelected,
			fmt.Sprintf("must not exceed population_size (%d)", p.PopulationSize)})
	}
	if !(p.MutationRate >= 0 && p.MutationRate <= 1) {
		err = multierr.Append(err, &ParamError{"mutation_rate", p.MutationRate, "must be within [0, 1]"})
	}
	if p.Algorithm != MSE && p.Algorithm != SSIM {
		err = multierr.Append(err, &ParamError{"algorithm", p.Algorithm, "must be mse or ssim"})
	}
	if t := p.DegeneracyThreshold; t != nil && !(*t >= 0 && *t <= 60) {
		err = multierr.Append(err, &ParamError{"degeneracy_threshold", *t, "must be within [0, 60] degrees"})
	}
	if p.SaveFrequency < 0 {
		err = multierr.Append(err, &ParamError{"save_frequency", p.SaveFrequency, "must not be negative"})
	}
	if p.Workers < 0 {
		err = multierr.Append(err, &ParamError{"threads", p.Workers, "must not be negative"})
	}
	return err
}

// workers resolves the evaluation parallelism.
func (p Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

// isSavePoint reports whether committing triangle number n (1 based) of total
// should be exposed to the output writer.
func (p Params) isSavePoint(n int) bool {
	if n == p.NumTriangles {
		return true
	}
	return p.SaveFrequency > 0 && n%p.SaveFrequency == 0
}
