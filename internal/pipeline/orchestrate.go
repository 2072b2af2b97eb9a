package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/utils"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

// pair is one (variant, engine) trial. Index is the position in the
// deterministic priority order: variants outer, engines inner.
type pair struct {
	index int
	v     variant.Variant
	eng   engine.Engine
}

// outcome records what one trial produced.
type outcome struct {
	index int
	hit   engine.RawHit
	ok    bool
	err   error
}

// Scan runs one detection call: variant generation, the deterministic
// (variant, engine) cross-product scan, and normalization of the winning
// hit into original-image coordinates.
func (p *Pipeline) Scan(ctx context.Context, img image.Image) (*DecodeResult, error) {
	if err := utils.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	started := time.Now()

	variants := variant.Generate(img, p.cfg.Plan)
	engines := p.registry.ForFamily(p.cfg.Family)
	if len(variants) == 0 || len(engines) == 0 {
		return nil, ErrNotFound
	}

	pairs := make([]pair, 0, len(variants)*len(engines))
	for _, v := range variants {
		for _, e := range engines {
			pairs = append(pairs, pair{index: len(pairs), v: v, eng: e})
		}
	}

	var outcomes []outcome
	var err error
	if p.cfg.MaxWorkers > 1 {
		outcomes, err = p.scanParallel(ctx, pairs)
	} else {
		outcomes, err = p.scanSequential(ctx, pairs)
	}
	if err != nil {
		return nil, err
	}
	return p.selectResult(pairs, outcomes, time.Since(started))
}

// scanSequential walks the priority order one pair at a time. Under the
// first-hit policy it stops at the first pair producing a hit.
func (p *Pipeline) scanSequential(ctx context.Context, pairs []pair) ([]outcome, error) {
	outcomes := make([]outcome, 0, len(pairs))
	for _, pr := range pairs {
		if err := budgetErr(ctx); err != nil {
			return nil, err
		}
		o := p.attempt(ctx, pr)
		outcomes = append(outcomes, o)
		if o.ok && p.cfg.Policy == PolicyFirstHit {
			break
		}
	}
	if err := budgetErr(ctx); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// attempt runs one trial, filtering hits to the configured family and
// reducing multiple hits from one engine call with the configured
// comparator. Engine failures are recorded, not propagated.
func (p *Pipeline) attempt(ctx context.Context, pr pair) outcome {
	hits, err := pr.eng.Attempt(ctx, pr.v.Image)
	if err != nil {
		slog.Warn("engine failed, continuing with remaining pairs",
			"engine", pr.eng.Name(), "variant", pr.v.Label, "error", err)
		return outcome{index: pr.index, err: err}
	}

	best := engine.RawHit{}
	found := false
	for _, h := range hits {
		if p.cfg.Family != engine.FamilyUnknown && h.Family != p.cfg.Family {
			continue
		}
		if !found || p.cfg.HitLess(best, h) {
			best = h
			found = true
		}
	}
	return outcome{index: pr.index, hit: best, ok: found}
}

// selectResult applies the deterministic selection rule: smallest priority
// index under first-hit, best hit by comparator (ties to the smallest
// index) under exhaustive. Engine failures surface only when every tried
// pair failed.
func (p *Pipeline) selectResult(pairs []pair, outcomes []outcome, elapsed time.Duration) (*DecodeResult, error) {
	chosen := -1
	for _, o := range outcomes {
		if !o.ok {
			continue
		}
		switch {
		case chosen < 0:
			chosen = o.index
		case p.cfg.Policy == PolicyFirstHit:
			if o.index < chosen {
				chosen = o.index
			}
		case p.cfg.HitLess(outcomes[indexOf(outcomes, chosen)].hit, o.hit):
			chosen = o.index
		}
	}
	if chosen >= 0 {
		o := outcomes[indexOf(outcomes, chosen)]
		pr := pairs[chosen]
		res := Normalize(o.hit, pr.v, pr.eng.Name())
		res.Elapsed = elapsed
		return res, nil
	}

	// No hit anywhere. Surface an engine failure only if every tried pair
	// failed; the first recorded failure is the most informative cause.
	var firstErr error
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			if firstErr == nil {
				firstErr = o.err
			}
		}
	}
	if len(outcomes) > 0 && failed == len(outcomes) {
		return nil, firstErr
	}
	return nil, ErrNotFound
}

// budgetErr maps an expired context to the pipeline's timeout error.
// Cancellation is passed through unchanged.
func budgetErr(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return err
	}
}

func indexOf(outcomes []outcome, index int) int {
	for i, o := range outcomes {
		if o.index == index {
			return i
		}
	}
	return 0
}
