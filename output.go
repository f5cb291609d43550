package triklops

import (
	"image"
)

// SavePoint is handed to the output writers whenever the committed state
// should be persisted.
type SavePoint struct {
	// Slot is the zero based index of the triangle just committed.
	Slot int
	// Total is the number of triangles the run will commit.
	Total     int
	Triangles []Triangle
	Snapshot  *image.NRGBA
	// Final is set on the save point of the last slot or of a stopped run.
	Final bool
}

// Writer persists save points.
type Writer interface {
	Save(SavePoint) error
}

// WriterFunc adapts an ordinary function to the Writer interface.
type WriterFunc func(SavePoint) error

// Save calls f(sp).
func (f WriterFunc) Save(sp SavePoint) error {
	return f(sp)
}

// MultiWriter fans one save point out to several writers, stopping at the
// first failure.
func MultiWriter(writers ...Writer) Writer {
	return WriterFunc(func(sp SavePoint) error {
		for _, w := range writers {
			if err := w.Save(sp); err != nil {
				return err
			}
		}
		return nil
	})
}

// Output accumulates the committed triangles in commit order together with
// the fitness each one reached. It only ever grows.
type Output struct {
	triangles []Triangle
	fitness   []float64
}

func (o *Output) append(t Triangle, fitness float64) {
	o.triangles = append(o.triangles, t)
	o.fitness = append(o.fitness, fitness)
}

// Len returns the number of committed triangles.
func (o *Output) Len() int {
	return len(o.triangles)
}

// Triangles returns a copy of the committed sequence.
func (o *Output) Triangles() []Triangle {
	return append([]Triangle(nil), o.triangles...)
}

// History returns the fitness of the canvas after each commit.
func (o *Output) History() []float64 {
	return append([]float64(nil), o.fitness...)
}
