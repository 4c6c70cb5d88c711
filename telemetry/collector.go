package telemetry

import (
	"math"

	"github.com/pthm-cable/swirl/fluid"
)

// Collector decides when a stats window has elapsed and measures the
// frame at its end. Windows are counted in ticks derived from a duration
// in seconds and the nominal timestep.
type Collector struct {
	windowTicks     uint64
	windowStartTick uint64
	dt              float32
}

// NewCollector creates a collector with a window of windowSec seconds.
func NewCollector(windowSec float64, dt float32) *Collector {
	ticks := uint64(1)
	if dt > 0 && windowSec > 0 {
		ticks = uint64(math.Max(1, math.Round(windowSec/float64(dt))))
	}
	return &Collector{windowTicks: ticks, dt: dt}
}

// ShouldFlush reports whether a full window has passed since the last flush.
func (c *Collector) ShouldFlush(tick uint64) bool {
	return tick >= c.windowStartTick+c.windowTicks
}

// Flush measures the frame and starts the next window.
func (c *Collector) Flush(f fluid.Frame, simTime float64) FieldStats {
	c.windowStartTick = f.Tick
	return Measure(f, simTime)
}

// Reset restarts windowing from tick zero, e.g. after a solver reset.
func (c *Collector) Reset() {
	c.windowStartTick = 0
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() uint64 {
	return c.windowTicks
}
