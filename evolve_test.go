package triklops

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"go.uber.org/multierr"
)

func testParams() Params {
	seed := uint64(42)
	return Params{
		NumTriangles:   4,
		ImageSize:      32,
		NumGenerations: 6,
		PopulationSize: 16,
		NumSelected:    4,
		MutationRate:   0.1,
		Algorithm:      MSE,
		Background:     color.NRGBA{A: 0xff},
		Seed:           &seed,
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params rejected: %v", err)
	}

	bad := testParams()
	bad.NumSelected = 20
	bad.MutationRate = 1.5
	bad.ImageSize = 0
	err := bad.Validate()
	if err == nil {
		t.Fatal("invalid params accepted")
	}

	names := map[string]bool{}
	for _, e := range multierr.Errors(err) {
		var pe *ParamError
		if !errors.As(e, &pe) {
			t.Fatalf("unexpected error type %T", e)
		}
		names[pe.Name] = true
	}
	for _, want := range []string{"num_selected", "mutation_rate", "image_size"} {
		if !names[want] {
			t.Errorf("missing error for %s in %v", want, err)
		}
	}
}

func TestValidateRejectsEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero population", func(p *Params) { p.PopulationSize = 0 }},
		{"negative rate", func(p *Params) { p.MutationRate = -0.1 }},
		{"nan rate", func(p *Params) { p.MutationRate = math.NaN() }},
		{"negative generations", func(p *Params) { p.NumGenerations = -1 }},
		{"zero generations", func(p *Params) { p.NumGenerations = 0 }},
		{"unknown metric", func(p *Params) { p.Algorithm = Metric(7) }},
		{"threshold above 60", func(p *Params) { th := 61.0; p.DegeneracyThreshold = &th }},
		{"negative save frequency", func(p *Params) { p.SaveFrequency = -2 }},
	}
	for _, tt := range tests {
		p := testParams()
		tt.modify(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: accepted", tt.name)
		}
	}
}

func TestNewEvolverRejectsBadInput(t *testing.T) {
	p := testParams()
	if _, err := NewEvolver(testReference(16), p); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("size mismatch: err = %v", err)
	}
	p.NumSelected = 100
	if _, err := NewEvolver(testReference(32), p); err == nil {
		t.Error("invalid params accepted")
	}
}

func TestCrossoverWithoutMutation(t *testing.T) {
	streams := NewStreams(3)
	a := randomTriangle(streams.For(0, 0, 0), 64)
	b := randomTriangle(streams.For(0, 0, 1), 64)
	ga, gb := a.Genes(), b.Genes()

	fromA, fromB := 0, 0
	for i := 0; i < 500; i++ {
		rng := streams.For(1, 1, i)
		child := Mutate(Crossover(a, b, rng), 0, 64, rng)
		for j, g := range child.Genes() {
			switch g {
			case ga[j]:
				fromA++
			case gb[j]:
				fromB++
			default:
				t.Fatalf("child gene %d = %v, not inherited from %v or %v", j, g, ga[j], gb[j])
			}
		}
	}
	// Both parents contribute roughly half of the genes.
	if fromA < 2000 || fromB < 2000 {
		t.Errorf("inherited %d genes from a and %d from b", fromA, fromB)
	}
}

func TestFullMutationRerollsEveryGene(t *testing.T) {
	streams := NewStreams(11)
	a := randomTriangle(streams.For(0, 0, 0), 64)
	b := randomTriangle(streams.For(0, 0, 1), 64)
	ga, gb := a.Genes(), b.Genes()

	const trials = 2000
	inherited := 0
	for i := 0; i < trials; i++ {
		rng := streams.For(2, 1, i)
		child := Mutate(Crossover(a, b, rng), 1, 64, rng)
		for j, g := range child.Genes() {
			if g == ga[j] || g == gb[j] {
				inherited++
			}
		}
	}
	// Only color channels can collide by chance (2/256 per channel).
	if inherited > trials*3/20 {
		t.Errorf("%d of %d genes matched a parent after full mutation", inherited, trials*NumGenes)
	}
}

func TestRunCommitsEveryTriangle(t *testing.T) {
	for _, m := range []Metric{MSE, SSIM} {
		p := testParams()
		p.Algorithm = m
		e, err := NewEvolver(testReference(32), p)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatal(err)
		}

		committed := e.Triangles()
		if len(committed) != p.NumTriangles {
			t.Fatalf("%v: committed %d triangles, want %d", m, len(committed), p.NumTriangles)
		}

		replay := NewCanvas(p.ImageSize, p.Background)
		for _, tri := range committed {
			replay.Commit(tri)
		}
		if !bytes.Equal(replay.Snapshot().Pix, e.Snapshot().Pix) {
			t.Errorf("%v: canvas differs from the committed triangles replayed in order", m)
		}
	}
}

func TestElitismNeverRegresses(t *testing.T) {
	for _, m := range []Metric{MSE, SSIM} {
		p := testParams()
		p.Algorithm = m
		p.MutationRate = 0.5
		e, err := NewEvolver(testReference(32), p)
		if err != nil {
			t.Fatal(err)
		}

		last := map[int]float64{}
		e.OnProgress = func(pr Progress) {
			if prev, ok := last[pr.Slot]; ok && m.Better(prev, pr.BestFitness) {
				t.Errorf("%v slot %d generation %d: best fitness regressed from %v to %v",
					m, pr.Slot, pr.Generation, prev, pr.BestFitness)
			}
			last[pr.Slot] = pr.BestFitness
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(last) != p.NumTriangles {
			t.Errorf("%v: progress reported for %d slots, want %d", m, len(last), p.NumTriangles)
		}
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	for _, m := range []Metric{MSE, SSIM} {
		var (
			want    []Triangle
			wantPix []byte
		)
		for _, workers := range []int{1, 3, 8} {
			p := testParams()
			p.Algorithm = m
			p.Workers = workers
			e, err := NewEvolver(testReference(32), p)
			if err != nil {
				t.Fatal(err)
			}
			if err := e.Run(context.Background()); err != nil {
				t.Fatal(err)
			}
			got := e.Triangles()
			if want == nil {
				want, wantPix = got, e.Snapshot().Pix
				continue
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("%v/%d workers: triangle %d = %+v, want %+v", m, workers, i, got[i], want[i])
				}
			}
			if !bytes.Equal(e.Snapshot().Pix, wantPix) {
				t.Errorf("%v/%d workers: final canvas differs", m, workers)
			}
		}
	}
}

func TestRunDifferentSeeds(t *testing.T) {
	run := func(seed uint64) []Triangle {
		p := testParams()
		p.Seed = &seed
		e, err := NewEvolver(testReference(32), p)
		if err != nil {
			t.Fatal(err)
		}
		if e.Seed() != seed {
			t.Fatalf("Seed() = %d, want %d", e.Seed(), seed)
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		return e.Triangles()
	}
	a, b := run(1), run(2)
	if a[0] == b[0] {
		t.Error("different seeds committed the same first triangle")
	}
}

func TestDegeneracyThreshold(t *testing.T) {
	p := testParams()
	th := 20.0
	p.DegeneracyThreshold = &th
	p.PopulationSize = 24
	p.NumSelected = 6

	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i, tri := range e.Triangles() {
		if a := tri.MinAngle(); a < th {
			t.Errorf("triangle %d has minimum angle %v below %v", i, a, th)
		}
	}
}

func TestAllCandidatesDegenerateFallback(t *testing.T) {
	p := testParams()
	// Hardly any random triangle is this close to equilateral.
	th := 59.99
	p.DegeneracyThreshold = &th
	p.NumGenerations = 2

	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(e.Triangles()); n != p.NumTriangles {
		t.Fatalf("committed %d triangles, want %d", n, p.NumTriangles)
	}
	for i, f := range e.History() {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			t.Errorf("slot %d committed with fitness %v", i, f)
		}
	}
}

func TestGenerationsPerSlot(t *testing.T) {
	for _, gens := range []int{1, 6} {
		p := testParams()
		p.NumGenerations = gens

		e, err := NewEvolver(testReference(32), p)
		if err != nil {
			t.Fatal(err)
		}
		perSlot := make(map[int]int)
		e.OnProgress = func(pr Progress) {
			if pr.Generation != perSlot[pr.Slot] {
				t.Errorf("slot %d: got generation %d, want %d", pr.Slot, pr.Generation, perSlot[pr.Slot])
			}
			perSlot[pr.Slot]++
		}
		if err := e.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		for slot := 0; slot < p.NumTriangles; slot++ {
			if perSlot[slot] != gens {
				t.Errorf("%d generations: slot %d evaluated %d populations", gens, slot, perSlot[slot])
			}
		}
		if len(e.Triangles()) != p.NumTriangles {
			t.Errorf("committed %d triangles", len(e.Triangles()))
		}
	}
}

func TestEliteDropsDegenerate(t *testing.T) {
	p := testParams()
	th := 10.0
	p.DegeneracyThreshold = &th

	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}
	worst := p.Algorithm.Worst()
	pop := &Population{Members: make([]Individual, p.PopulationSize)}
	for i := range pop.Members {
		pop.Members[i] = Individual{Fitness: worst, Evaluated: true}
	}
	pop.Members[5].Fitness = 120
	pop.Members[9].Fitness = 80

	elite := e.selectElite(pop)
	if len(elite) != 2 {
		t.Fatalf("elite has %d members, want 2", len(elite))
	}
	if elite[0].Fitness != 80 || elite[1].Fitness != 120 {
		t.Errorf("elite fitness = %v, %v", elite[0].Fitness, elite[1].Fitness)
	}

	for i := range pop.Members {
		pop.Members[i].Fitness = worst
	}
	if elite := e.selectElite(pop); len(elite) != 1 {
		t.Errorf("fully penalized population kept %d elites, want 1", len(elite))
	}
}

func TestSavePoints(t *testing.T) {
	p := testParams()
	p.NumTriangles = 7
	p.NumGenerations = 1
	p.SaveFrequency = 3

	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}
	var saves []SavePoint
	e.Writer = WriterFunc(func(sp SavePoint) error {
		saves = append(saves, sp)
		return nil
	})
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	wantSlots := []int{2, 5, 6}
	if len(saves) != len(wantSlots) {
		t.Fatalf("got %d save points, want %d", len(saves), len(wantSlots))
	}
	for i, sp := range saves {
		if sp.Slot != wantSlots[i] || len(sp.Triangles) != sp.Slot+1 || sp.Total != 7 {
			t.Errorf("save point %d: slot %d with %d triangles", i, sp.Slot, len(sp.Triangles))
		}
		if sp.Final != (i == len(saves)-1) {
			t.Errorf("save point %d: Final = %v", i, sp.Final)
		}
	}
	if !bytes.Equal(saves[2].Snapshot.Pix, e.Snapshot().Pix) {
		t.Error("final save point snapshot differs from the canvas")
	}
}

func TestWriterErrorAbortsRun(t *testing.T) {
	p := testParams()
	p.SaveFrequency = 1
	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("disk full")
	e.Writer = WriterFunc(func(SavePoint) error { return boom })

	if err := e.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run() = %v, want %v", err, boom)
	}
	if n := len(e.Triangles()); n != 1 {
		t.Errorf("committed %d triangles before the failure, want 1", n)
	}
}

func TestCancelKeepsCompletedSlots(t *testing.T) {
	p := testParams()
	p.NumTriangles = 6
	e, err := NewEvolver(testReference(32), p)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.OnProgress = func(pr Progress) {
		if pr.Slot == 2 && pr.Generation == 3 {
			cancel()
		}
	}
	var saves []SavePoint
	e.Writer = WriterFunc(func(sp SavePoint) error {
		saves = append(saves, sp)
		return nil
	})

	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if n := len(e.Triangles()); n != 2 {
		t.Fatalf("committed %d triangles, want 2", n)
	}

	replay := NewCanvas(p.ImageSize, p.Background)
	for _, tri := range e.Triangles() {
		replay.Commit(tri)
	}
	if !bytes.Equal(replay.Snapshot().Pix, e.Snapshot().Pix) {
		t.Error("canvas holds a partially evolved slot")
	}
	if len(saves) != 1 || !saves[0].Final || len(saves[0].Triangles) != 2 {
		t.Errorf("expected a single final save point of 2 triangles, got %d", len(saves))
	}
}
