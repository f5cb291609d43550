package triklops

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// Processor : type with processing options
type Processor struct {
	Params

	BlurRadius int
	Grayscale  bool
	// Scale and Noise only affect raster output.
	Scale int
	Noise int

	// Logger, if set, receives one line per written save point.
	Logger *log.Logger
}

// Prepare runs the reference through the preprocessing pipeline: exact
// resize to the canvas size followed by the optional grayscale and blur.
func (p *Processor) Prepare(src image.Image) *image.NRGBA {
	filters := []Filter{ResizeFilter(p.ImageSize, p.Background)}
	if p.Grayscale {
		filters = append(filters, GrayscaleFilter())
	}
	if p.BlurRadius > 0 {
		filters = append(filters, BlurFilter(p.BlurRadius))
	}
	return NewPipeline(filters...).Apply(ImgToNRGBA(src))
}

// Process : approximate the source image with triangles. Every save point is
// written to each of the output files, whose format is picked from the file
// extension (.svg, .png or .json). The returned evolver holds the final
// committed state even when the run was stopped through ctx.
func (p *Processor) Process(ctx context.Context, src image.Image, outputs []string, fn func(Progress)) (*Evolver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	writers := make([]Writer, 0, len(outputs))
	for _, out := range outputs {
		w, err := p.fileWriter(out)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	e, err := NewEvolver(p.Prepare(src), p.Params)
	if err != nil {
		return nil, err
	}
	e.OnProgress = fn
	e.Writer = MultiWriter(writers...)

	return e, e.Run(ctx)
}

// fileWriter returns a writer replacing the file at path on every save point.
func (p *Processor) fileWriter(path string) (Writer, error) {
	var encode func(io.Writer, SavePoint) error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		svg := &SVG{
			Title:       "Triangle image approximation",
			Description: "Reference image approximated by evolved triangles.",
			Size:        p.ImageSize,
			Background:  p.Background,
		}
		encode = func(w io.Writer, sp SavePoint) error {
			return svg.Encode(w, sp.Triangles)
		}
	case ".png":
		img := &Image{Scale: p.Scale, Noise: p.Noise, Background: p.Background}
		encode = img.Encode
	case ".json":
		encode = func(w io.Writer, sp SavePoint) error {
			return EncodeJSON(w, sp.Triangles)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q for %s", ext, path)
	}

	return WriterFunc(func(sp SavePoint) (err error) {
		fq, err := os.Create(path)
		if err != nil {
			return err
		}
		defer multierr.AppendInvoke(&err, multierr.Close(fq))

		if err = encode(fq, sp); err != nil {
			return fmt.Errorf("unable to write %s: %w", path, err)
		}
		if p.Logger != nil {
			p.Logger.Printf("saved %d/%d triangles to %s", len(sp.Triangles), sp.Total, path)
		}
		return nil
	}), nil
}

// jsonTriangle is the serialized form of a Triangle.
type jsonTriangle struct {
	Vertices [3][2]float64 `json:"vertices"`
	Color    [3]uint8      `json:"color"`
	Alpha    float64       `json:"alpha"`
}

// EncodeJSON writes the triangles as an indented JSON array.
func EncodeJSON(w io.Writer, triangles []Triangle) error {
	out := make([]jsonTriangle, len(triangles))
	for i, t := range triangles {
		for j, v := range t.Vertices {
			out[i].Vertices[j] = [2]float64{v.X, v.Y}
		}
		out[i].Color = [3]uint8{t.R, t.G, t.B}
		out[i].Alpha = t.Alpha
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// DecodeJSON reads triangles written by EncodeJSON.
func DecodeJSON(r io.Reader) ([]Triangle, error) {
	var in []jsonTriangle
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, err
	}
	triangles := make([]Triangle, len(in))
	for i, jt := range in {
		for j, v := range jt.Vertices {
			triangles[i].Vertices[j] = Point{X: v[0], Y: v[1]}
		}
		triangles[i].R, triangles[i].G, triangles[i].B = jt.Color[0], jt.Color[1], jt.Color[2]
		triangles[i].Alpha = jt.Alpha
	}
	return triangles, nil
}
