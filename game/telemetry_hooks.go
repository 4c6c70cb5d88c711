package game

import (
	"log/slog"

	"github.com/pthm-cable/swirl/telemetry"
)

// flushTelemetry emits field and perf stats when a window has elapsed.
func (g *Game) flushTelemetry() {
	frame := g.solver.Frame()
	if !g.collector.ShouldFlush(frame.Tick) {
		return
	}

	stats := g.collector.Flush(frame, g.simTime)
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteField(stats); err != nil {
			slog.Error("failed to write field stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, frame.Tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot dumps the current frame into the output directory.
func (g *Game) saveSnapshot() {
	if g.outputManager == nil {
		slog.Warn("snapshot skipped: no output directory")
		return
	}
	snap := telemetry.NewSnapshot(g.solver.Frame(), g.simTime)
	path, err := g.outputManager.WriteSnapshot(snap)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", snap.Tick)
}
