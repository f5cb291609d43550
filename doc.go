/*
Package triklops approximates a reference image with a fixed number of flat colored,
alpha blended triangles, placed one at a time by an evolutionary search.

For every triangle slot a population of random triangles is evolved for a number of
generations: each candidate is scored by how close the canvas with the candidate
blended in comes to the reference (MSE or SSIM), the best candidates are kept as
parents, and uniform crossover plus full re-roll mutation breed the next generation.
The best triangle of the last generation is then committed to the canvas.

Runs are reproducible: with a fixed seed the committed triangles and the final canvas
are identical regardless of the number of evaluation threads.

The package provides a command line utility supporting various customization options.
Check the supported commands by typing:

	$ triklops --help

Example to approximate an image and write the result as SVG and PNG:

	package main

	import (
		"context"
		"fmt"

		"github.com/esimov/triklops"
	)

	func main() {
		seed := uint64(42)
		p := &triklops.Processor{
			Params: triklops.DefaultParams(),
		}
		p.Seed = &seed

		_, err := p.Process(context.Background(), srcImg, []string{"out.svg", "out.png"}, nil)
		if err != nil {
			fmt.Printf("Error on evolution process: %s", err.Error())
		}
	}

The engine can also be driven directly, which gives access to the committed
triangles and the canvas after every save point:

	e, err := triklops.NewEvolver(reference, params)
	if err != nil {
		// invalid parameters
	}
	e.Writer = triklops.WriterFunc(func(sp triklops.SavePoint) error {
		// sp.Triangles, sp.Snapshot
		return nil
	})
	err = e.Run(ctx)
*/
package triklops
