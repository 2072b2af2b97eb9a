package pipeline

import (
	"context"
	"sort"
	"sync"
)

// scanParallel fans the pairs out to a bounded worker pool. Every pair is
// tried (no speculative short-circuit), and the collected outcomes are
// sorted back into priority order, so the deterministic selection in
// selectResult never depends on scheduling order.
func (p *Pipeline) scanParallel(ctx context.Context, pairs []pair) ([]outcome, error) {
	workers := p.cfg.MaxWorkers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	jobs := make(chan pair)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pr := range jobs {
				if ctx.Err() != nil {
					results <- outcome{index: pr.index, err: ctx.Err()}
					continue
				}
				results <- p.attempt(ctx, pr)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, pr := range pairs {
			jobs <- pr
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]outcome, 0, len(pairs))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	// Results arrive in completion order; selection ties go to the
	// smallest priority index, so restore that order here.
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })
	if err := budgetErr(ctx); err != nil {
		return nil, err
	}
	return outcomes, nil
}
