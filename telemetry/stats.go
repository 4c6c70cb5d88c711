package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swirl/fluid"
)

// FieldStats summarizes one published frame.
type FieldStats struct {
	Tick       uint64  `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time_sec"`

	Mass        float64 `csv:"mass"`
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	DensityMax  float64 `csv:"density_max"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedMax  float64 `csv:"speed_max"`

	// Mean |divergence| over interior cells; small after a good projection.
	MeanAbsDiv float64 `csv:"mean_abs_div"`
}

// Measure computes FieldStats for a frame. simTime is carried through
// unchanged so callers decide how ticks map to seconds.
func Measure(f fluid.Frame, simTime float64) FieldStats {
	fs := FieldStats{Tick: f.Tick, SimTimeSec: simTime}
	if f.N == 0 || len(f.Density) == 0 {
		return fs
	}

	density := make([]float64, len(f.Density))
	for i, d := range f.Density {
		density[i] = float64(d)
	}
	speed := make([]float64, len(f.Velocity))
	for i, v := range f.Velocity {
		speed[i] = math.Hypot(float64(v.X), float64(v.Y))
	}

	fs.Mass = floats.Sum(density)
	fs.DensityMean, fs.DensityStd = stat.MeanStdDev(density, nil)
	if math.IsNaN(fs.DensityStd) {
		// single cell
		fs.DensityStd = 0
	}
	fs.DensityMax = floats.Max(density)
	if len(speed) > 0 {
		fs.SpeedMean = stat.Mean(speed, nil)
		fs.SpeedMax = floats.Max(speed)
	}

	slices.Sort(density)
	fs.DensityP50 = Percentile(density, 0.5)
	fs.DensityP90 = Percentile(density, 0.9)

	fs.MeanAbsDiv = float64(fluid.MeanAbsDivergence(f.Velocity, f.N))
	return fs
}

// Percentile computes the p-th percentile of a sorted slice with linear
// interpolation. p is in [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("mass", s.Mass),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("mean_abs_div", s.MeanAbsDiv),
	)
}

// LogStats logs the stats using slog.
func (s FieldStats) LogStats() {
	slog.Info("stats", "field", s)
}
