package triklops

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
)

// Progress describes the state of the search after a generation has been
// evaluated.
type Progress struct {
	Slot        int
	Generation  int
	BestFitness float64
	Best        Triangle
}

// Evolver places triangles one slot at a time, running a generational
// search for each slot and committing the winner to the canvas.
type Evolver struct {
	params  Params
	eval    *Evaluator
	harness *Harness
	streams Streams
	canvas  *Canvas
	output  Output

	// OnProgress, if set, is called after every evaluated generation.
	OnProgress func(Progress)
	// Writer, if set, receives every save point.
	Writer Writer
}

// NewEvolver validates p and prepares a run against the reference image,
// which must already be p.ImageSize pixels square.
func NewEvolver(ref *image.NRGBA, p Params) (*Evolver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := ref.Bounds()
	if b.Dx() != p.ImageSize || b.Dy() != p.ImageSize {
		return nil, fmt.Errorf("reference is %dx%d, want %dx%d: %w",
			b.Dx(), b.Dy(), p.ImageSize, p.ImageSize, ErrSizeMismatch)
	}
	if b.Min != (image.Point{}) {
		ref = ImgToNRGBA(ref)
	}

	seed := RandomSeed()
	if p.Seed != nil {
		seed = *p.Seed
	}
	eval := &Evaluator{
		Metric:    p.Algorithm,
		Reference: ref,
		Threshold: p.DegeneracyThreshold,
	}
	return &Evolver{
		params:  p,
		eval:    eval,
		harness: NewHarness(eval, p.workers()),
		streams: NewStreams(seed),
		canvas:  NewCanvas(p.ImageSize, p.Background),
	}, nil
}

// Seed returns the seed driving the run, drawn from entropy when none was given.
func (e *Evolver) Seed() uint64 {
	return e.streams.Seed()
}

// Triangles returns the committed sequence so far.
func (e *Evolver) Triangles() []Triangle {
	return e.output.Triangles()
}

// History returns the best fitness of every committed slot.
func (e *Evolver) History() []float64 {
	return e.output.History()
}

// Snapshot returns a copy of the current canvas.
func (e *Evolver) Snapshot() *image.NRGBA {
	return e.canvas.Snapshot()
}

// Run evolves and commits every remaining slot. The context is checked
// between generations; a cancelled run keeps all completed slots, never
// commits a partial one and returns the context error.
func (e *Evolver) Run(ctx context.Context) error {
	saved := e.output.Len()
	for slot := e.output.Len(); slot < e.params.NumTriangles; slot++ {
		best, err := e.evolveSlot(ctx, slot)
		if err != nil {
			if ctx.Err() != nil && e.output.Len() > saved {
				if serr := e.save(e.output.Len()-1, true); serr != nil {
					return serr
				}
			}
			return err
		}

		e.canvas.Commit(best.Triangle)
		e.output.append(best.Triangle, best.Fitness)

		if e.params.isSavePoint(slot + 1) {
			if err := e.save(slot, slot+1 == e.params.NumTriangles); err != nil {
				return err
			}
			saved = e.output.Len()
		}
	}
	return nil
}

func (e *Evolver) save(slot int, final bool) error {
	if e.Writer == nil {
		return nil
	}
	return e.Writer.Save(SavePoint{
		Slot:      slot,
		Total:     e.params.NumTriangles,
		Triangles: e.output.Triangles(),
		Snapshot:  e.canvas.Snapshot(),
		Final:     final,
	})
}

// evolveSlot runs the generational search of one slot and returns the
// individual to commit.
func (e *Evolver) evolveSlot(ctx context.Context, slot int) (Individual, error) {
	pop := seedPopulation(e.streams, slot, e.params.PopulationSize, e.params.ImageSize)

	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			return Individual{}, err
		}
		if err := e.harness.Evaluate(pop, e.canvas); err != nil {
			return Individual{}, err
		}
		e.report(slot, pop)

		if gen+1 == e.params.NumGenerations {
			break
		}
		pop = e.breed(e.selectElite(pop), slot, gen+1)
	}
	return e.finalize(pop)
}

// selectElite returns the elite pool: the best NumSelected individuals minus
// those the degeneracy filter penalized. At least one individual survives.
func (e *Evolver) selectElite(pop *Population) []Individual {
	elite := pop.Ranked(e.params.Algorithm)[:e.params.NumSelected]
	if e.params.DegeneracyThreshold == nil {
		return elite
	}
	worst := e.params.Algorithm.Worst()
	n := len(elite)
	for n > 1 && elite[n-1].Fitness == worst {
		n--
	}
	return elite[:n]
}

func (e *Evolver) report(slot int, pop *Population) {
	if e.OnProgress == nil {
		return
	}
	best := pop.Members[pop.Best(e.params.Algorithm)]
	e.OnProgress(Progress{
		Slot:        slot,
		Generation:  pop.Generation,
		BestFitness: best.Fitness,
		Best:        best.Triangle,
	})
}

// breed builds the next generation from the elite pool, best first. The top
// elite is carried over with its cached fitness; every other child is bred
// from its own index derived random stream.
func (e *Evolver) breed(elite []Individual, slot, gen int) *Population {
	next := &Population{
		Members:    make([]Individual, e.params.PopulationSize),
		Generation: gen,
	}
	next.Members[0] = elite[0]

	for i := 1; i < len(next.Members); i++ {
		rng := e.streams.For(slot, gen, i)
		a := elite[rng.IntN(len(elite))].Triangle
		b := elite[rng.IntN(len(elite))].Triangle
		child := Crossover(a, b, rng)
		child = Mutate(child, e.params.MutationRate, e.params.ImageSize, rng)
		next.Members[i] = Individual{Triangle: child}
	}
	return next
}

// finalize picks the individual to commit. When the degeneracy filter
// penalized every candidate, the least degenerate one is taken instead and
// scored without the filter.
func (e *Evolver) finalize(pop *Population) (Individual, error) {
	best := pop.Members[pop.Best(e.params.Algorithm)]
	if !IsDegenerate(best.Triangle, e.params.DegeneracyThreshold) {
		return best, nil
	}
	fallback := pop.Members[0]
	for _, m := range pop.Members[1:] {
		if m.Triangle.MinAngle() > fallback.Triangle.MinAngle() {
			fallback = m
		}
	}
	unfiltered := *e.eval
	unfiltered.Threshold = nil
	score, err := unfiltered.Score(fallback.Triangle, e.canvas, nil)
	if err != nil {
		return Individual{}, err
	}
	fallback.Fitness = score
	return fallback, nil
}

// Crossover takes every gene of the child from a or b with equal odds.
func Crossover(a, b Triangle, rng *rand.Rand) Triangle {
	ga, gb := a.Genes(), b.Genes()
	var child [NumGenes]float64
	for i := range child {
		if rng.IntN(2) == 0 {
			child[i] = ga[i]
		} else {
			child[i] = gb[i]
		}
	}
	return TriangleFromGenes(child)
}

// Mutate re-rolls each gene of t from its full domain with probability rate.
func Mutate(t Triangle, rate float64, size int, rng *rand.Rand) Triangle {
	g := t.Genes()
	for i := range g {
		if rng.Float64() < rate {
			g[i] = randomGene(rng, i, size)
		}
	}
	return TriangleFromGenes(g)
}
