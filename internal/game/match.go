package game

import (
	"context"

	"github.com/Garsondee/Flag-Sense/internal/config"
)

// RunMatch plays one headless match to completion. Cancelling ctx stops the
// match between ticks and returns the partial outcome with ctx's error.
func RunMatch(ctx context.Context, arena *Arena, cfg config.Tuning, seed uint64, opts ...Option) (Outcome, error) {
	w := NewWorld(arena, cfg, seed, opts...)
	for !w.Done() {
		if err := ctx.Err(); err != nil {
			return w.Outcome(), err
		}
		w.Step()
	}
	return w.Outcome(), nil
}
