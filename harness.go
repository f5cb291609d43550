package triklops

import (
	"image"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Harness fans the fitness evaluation of a population out over a fixed
// number of workers. Each worker owns a disjoint, contiguous range of the
// population and a private scratch buffer, so no locking is needed and the
// scores are identical for any worker count.
type Harness struct {
	eval    *Evaluator
	workers int
	scratch sync.Pool
}

// NewHarness creates an evaluation harness running at most workers
// evaluations at once.
func NewHarness(eval *Evaluator, workers int) *Harness {
	bounds := eval.Reference.Bounds()
	return &Harness{
		eval:    eval,
		workers: Max(1, workers),
		scratch: sync.Pool{
			New: func() any { return image.NewNRGBA(bounds) },
		},
	}
}

// Evaluate scores every member of pop that has not been scored yet against
// the read-only canvas. It returns once all workers are done.
func (h *Harness) Evaluate(pop *Population, canvas *Canvas) error {
	n := len(pop.Members)
	if n == 0 {
		return nil
	}
	chunk := (n + h.workers - 1) / h.workers

	p := pool.New().WithErrors().WithMaxGoroutines(h.workers)
	for lo := 0; lo < n; lo += chunk {
		members := pop.Members[lo:Min(lo+chunk, n)]
		p.Go(func() error {
			buf := h.scratch.Get().(*image.NRGBA)
			defer h.scratch.Put(buf)

			for i := range members {
				if members[i].Evaluated {
					continue
				}
				score, err := h.eval.Score(members[i].Triangle, canvas, buf)
				if err != nil {
					return err
				}
				members[i].Fitness = score
				members[i].Evaluated = true
			}
			return nil
		})
	}
	return p.Wait()
}
