package hypermph

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/hypermph/internal/hypergraph"
)

// workChanBufferMultiplier is the multiplier for work channel buffer size.
const workChanBufferMultiplier = 2

// solveParallel solves chunks on cfg.workers goroutines, each owning a
// Solver. Solutions are returned by chunk id; the caller writes them into
// the value array, since neighbouring chunks may share a word.
//
// Every chunk's seed search is deterministic, so the result does not
// depend on the number of workers or on scheduling.
func (b *Builder) solveParallel(offsets []uint64) ([]hypergraph.Solution, error) {
	workers := min(b.cfg.workers, len(b.chunks))
	solutions := make([]hypergraph.Solution, len(b.chunks))

	g, ctx := errgroup.WithContext(b.ctx)
	work := make(chan int, workers*workChanBufferMultiplier)

	g.Go(func() error {
		defer close(work)
		for i := range b.chunks {
			select {
			case work <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if b.cfg.progress == nil {
			return
		}
		mu.Lock()
		done++
		b.cfg.progress(done, len(b.chunks))
		mu.Unlock()
	}

	for range workers {
		g.Go(func() error {
			solver := hypergraph.NewSolver()
			for i := range work {
				if err := ctx.Err(); err != nil {
					return err
				}
				sol, err := b.solveChunk(solver, i, b.chunks[i], chunkVertices(offsets, i))
				if err != nil {
					return err
				}
				solutions[i] = sol
				report()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return solutions, nil
}
