package triklops

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotFitness charts the fitness reached after each committed triangle and
// writes it as PNG.
func PlotFitness(w io.Writer, history []float64, metric Metric) error {
	p := plot.New()
	p.Title.Text = "Fitness per committed triangle"
	p.X.Label.Text = "Triangles"
	p.Y.Label.Text = metric.String()
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(history))
	for i, f := range history {
		pts[i].X = float64(i + 1)
		pts[i].Y = f
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("unable to build fitness line: %w", err)
	}
	p.Add(line)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
