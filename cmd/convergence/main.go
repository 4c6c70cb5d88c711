// Package main sweeps the pressure Jacobi sweep count and records how much
// divergence each setting leaves behind after a forced warmup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/emitters"
	"github.com/pthm-cable/swirl/fluid"
	"github.com/pthm-cable/swirl/telemetry"
)

// Row is one sweep result.
type Row struct {
	GridSize   int     `csv:"grid_size"`
	Jacobi     int     `csv:"jacobi_iterations"`
	Ticks      int     `csv:"ticks"`
	MeanAbsDiv float64 `csv:"mean_abs_div"`
	SpeedMax   float64 `csv:"speed_max"`
	Mass       float64 `csv:"mass"`
	AvgTickUS  int64   `csv:"avg_tick_us"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	sizesFlag := flag.String("sizes", "64,128", "Comma-separated grid sizes")
	itersFlag := flag.String("iters", "5,10,20,40,80", "Comma-separated Jacobi sweep counts")
	ticks := flag.Int("ticks", 120, "Warmup ticks per run")
	output := flag.String("output", "convergence.csv", "CSV output path")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	sizes, err := parseInts(*sizesFlag)
	if err != nil {
		slog.Error("bad -sizes", "error", err)
		os.Exit(1)
	}
	iters, err := parseInts(*itersFlag)
	if err != nil {
		slog.Error("bad -iters", "error", err)
		os.Exit(1)
	}

	var rows []Row
	for _, n := range sizes {
		var logK, logDiv []float64
		for _, k := range iters {
			row, err := run(cfg, n, k, *ticks)
			if err != nil {
				slog.Error("run failed", "grid", n, "jacobi", k, "error", err)
				os.Exit(1)
			}
			slog.Info("run", "grid", n, "jacobi", k, "mean_abs_div", row.MeanAbsDiv, "avg_tick_us", row.AvgTickUS)
			rows = append(rows, row)
			if row.MeanAbsDiv > 0 {
				logK = append(logK, math.Log(float64(k)))
				logDiv = append(logDiv, math.Log(row.MeanAbsDiv))
			}
		}
		if len(logK) >= 2 {
			// Slope of log residual against log sweeps.
			_, slope := stat.LinearRegression(logK, logDiv, nil, false)
			slog.Info("convergence", "grid", n, "slope", slope)
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		slog.Error("failed to write csv", "error", err)
		os.Exit(1)
	}
	slog.Info("wrote results", "path", *output, "rows", len(rows))
}

// run drives a fresh solver of size n for the given ticks with config
// emitters and seed, at k pressure sweeps per tick.
func run(base *config.Config, n, k, ticks int) (Row, error) {
	cfg := *base
	cfg.Grid.Size = n

	solver, err := fluid.NewSolver(cfg.SolverOptions())
	if err != nil {
		return Row{}, err
	}
	defer solver.Close()

	perf := telemetry.NewPerfCollector(ticks)
	solver.SetObserver(perf)

	jets := emitters.FromConfig(cfg.Emitters, n)
	p := cfg.BaseParams()
	p.JacobiIterations = k

	ctx := context.Background()
	var simTime float32
	for i := 0; i < ticks; i++ {
		p.Sources = jets.Sources(simTime)
		if err := solver.Step(ctx, p); err != nil {
			return Row{}, fmt.Errorf("tick %d: %w", i, err)
		}
		simTime += p.DT
	}

	stats := telemetry.Measure(solver.Frame(), float64(simTime))
	return Row{
		GridSize:   n,
		Jacobi:     k,
		Ticks:      ticks,
		MeanAbsDiv: stats.MeanAbsDiv,
		SpeedMax:   stats.SpeedMax,
		Mass:       stats.Mass,
		AvgTickUS:  perf.Stats().AvgTickDuration.Microseconds(),
	}, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("value %d must be > 0", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
