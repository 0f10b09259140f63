package es

import (
	"sync"

	"github.com/evolab/nesopt/internal/objective"
)

// evaluate scores every candidate. Rows have no ordering dependency, so
// with Workers > 1 evaluation fans out over a goroutine pool; each worker
// writes only its own indices and the caller sees a fully populated slice.
func (s *Strategy) evaluate(pop [][]float64, f objective.Func) []float64 {
	scores := make([]float64, len(pop))

	workers := s.cfg.Workers
	if workers < 2 || len(pop) < 2 {
		for i, p := range pop {
			scores[i] = f(p)
		}
		return scores
	}
	if workers > len(pop) {
		workers = len(pop)
	}

	indices := make(chan int, len(pop))
	for i := range pop {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				scores[i] = f(pop[i])
			}
		}()
	}
	wg.Wait()

	return scores
}
