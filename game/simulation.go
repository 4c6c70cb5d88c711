package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/swirl/fluid"
)

// params assembles this tick's parameters: tunables, then pointer, then
// emitter jets at the current sim time.
func (g *Game) params() fluid.Params {
	p := g.controls.Params()
	p = g.pointer.Apply(p)
	p.Sources = g.emitters.Sources(float32(g.simTime))
	return p
}

// step runs one solver tick. Invalid parameters leave the fields
// untouched and are logged; cancellation is returned to the caller.
func (g *Game) step() error {
	p := g.params()
	err := g.solver.Step(g.ctx, p)
	g.lastErr = err
	switch {
	case err == nil:
		g.pointer.Consume()
		g.simTime += float64(p.DT)
		g.flushTelemetry()
		return nil
	case errors.Is(err, fluid.ErrInvalidParams):
		slog.Warn("tick skipped", "error", err)
		return nil
	default:
		return err
	}
}

// UpdateHeadless advances the simulation without touching raylib.
// It returns a non-nil error only when the context was cancelled.
func (g *Game) UpdateHeadless() error {
	if g.paused {
		return nil
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}
