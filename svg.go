package triklops

import (
	"bufio"
	"fmt"
	"html"
	"image/color"
	"io"
	"strconv"
)

// SVG exports the committed triangles as a vector image.
type SVG struct {
	Title       string
	Description string
	Size        int
	Background  color.NRGBA
}

// Encode writes the document holding the background and one polygon per
// triangle, in commit order.
func (s *SVG) Encode(w io.Writer, triangles []Triangle) error {
	bw := bufio.NewWriter(w)
	bg := s.Background

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" overflow="hidden">`+"\n",
		s.Size, s.Size, s.Size, s.Size)
	if s.Title != "" {
		fmt.Fprintf(bw, "\t<title>%s</title>\n", html.EscapeString(s.Title))
	}
	if s.Description != "" {
		fmt.Fprintf(bw, "\t<desc>%s</desc>\n", html.EscapeString(s.Description))
	}
	fmt.Fprintf(bw, "\t"+`<rect x="0" y="0" width="%d" height="%d" fill="rgb(%d,%d,%d)"/>`+"\n",
		s.Size, s.Size, bg.R, bg.G, bg.B)

	for _, t := range triangles {
		v := t.Vertices
		fmt.Fprintf(bw, "\t"+`<polygon points="%s,%s %s,%s %s,%s" fill="rgb(%d,%d,%d)" fill-opacity="%s"/>`+"\n",
			coord(v[0].X), coord(v[0].Y), coord(v[1].X), coord(v[1].Y), coord(v[2].X), coord(v[2].Y),
			t.R, t.G, t.B, strconv.FormatFloat(t.Alpha, 'f', 4, 64))
	}
	fmt.Fprintf(bw, "</svg>\n")

	return bw.Flush()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
