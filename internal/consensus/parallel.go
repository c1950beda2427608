package consensus

import (
	"context"
	"runtime"
	"sync"

	"github.com/inodb/igcall/internal/pairing"
)

// built is the reconstruction of the candidate at position index.
type built struct {
	index     int
	candidate *pairing.Candidate
	results   []*Result
	err       error
}

// buildConcurrently reconstructs candidates on a pool of workers and
// streams each junction as soon as its pileups are done, so arrival order
// follows pileup latency rather than candidate order. Feeding stops early
// once ctx is cancelled. workers <= 0 uses one worker per CPU.
func (b *Builder) buildConcurrently(ctx context.Context, candidates []*pairing.Candidate, workers int) <-chan built {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	queue := make(chan int)
	go func() {
		defer close(queue)
		for i := range candidates {
			select {
			case queue <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan built, 2*workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range queue {
				c := candidates[i]
				res, err := b.Build(ctx, c)
				out <- built{index: i, candidate: c, results: res, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// inCandidateOrder hands junctions to fn by candidate index, holding back
// any that overtook an earlier candidate. After fn fails the stream is
// drained so no worker blocks on a full channel.
func inCandidateOrder(stream <-chan built, fn func(built) error) error {
	early := make(map[int]built)
	want := 0
	for r := range stream {
		early[r.index] = r
		for {
			next, ok := early[want]
			if !ok {
				break
			}
			delete(early, want)
			want++
			if err := fn(next); err != nil {
				for range stream {
				}
				return err
			}
		}
	}
	return nil
}
