// Package game drives the fluid solver: it owns the tick loop, maps
// window input onto forcing, and routes frames to the renderer and
// telemetry.
package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/emitters"
	"github.com/pthm-cable/swirl/fluid"
	"github.com/pthm-cable/swirl/input"
	"github.com/pthm-cable/swirl/renderer"
	"github.com/pthm-cable/swirl/telemetry"
)

// Options configures a Game.
type Options struct {
	// Context cancels an in-flight tick; the solver then rolls back to the
	// last published frame. Nil means context.Background().
	Context context.Context
	// Config overrides the global config (tests). Nil uses config.Cfg().
	Config *config.Config

	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete driver state.
type Game struct {
	ctx context.Context
	cfg *config.Config

	solver   *fluid.Solver
	emitters *emitters.System
	pointer  *input.Pointer
	controls *Controls

	// Rendering (nil in headless mode)
	density  *renderer.DensityRenderer
	velocity *renderer.VelocityRenderer

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool

	// State
	paused         bool
	showControls   bool
	showVelocity   bool
	stepsPerUpdate int
	simTime        float64
	lastErr        error

	screenWidth, screenHeight float32
	headless                  bool
}

// NewGameWithOptions builds the solver and its collaborators from config.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	solver, err := fluid.NewSolver(cfg.SolverOptions())
	if err != nil {
		return nil, err
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		ctx:            ctx,
		cfg:            cfg,
		solver:         solver,
		emitters:       emitters.FromConfig(cfg.Emitters, cfg.Grid.Size),
		pointer:        input.NewPointer(cfg.Grid.Size, float32(cfg.Pointer.DeltaScale)),
		controls:       NewControls(cfg.BaseParams()),
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:       opts.LogStats,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
		headless:       opts.Headless,
		showControls:   true,
	}
	solver.SetObserver(g.perfCollector)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		solver.Close()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !opts.Headless {
		g.density = renderer.NewDensityRenderer(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
		g.density.Init(cfg.Grid.Size)
		g.velocity = renderer.NewVelocityRenderer(max(cfg.Grid.Size/32, 1))
	}

	slog.Info("solver ready",
		"grid", cfg.Grid.Size,
		"strategy", cfg.Derived.Strategy.String(),
		"emitters", g.emitters.Len(),
		"headless", opts.Headless,
	)
	return g, nil
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() uint64 { return g.solver.Frame().Tick }

// SimTime returns the simulated seconds of completed ticks.
func (g *Game) SimTime() float64 { return g.simTime }

// Frame returns the last published frame.
func (g *Game) Frame() fluid.Frame { return g.solver.Frame() }

// Controls exposes the live tunables.
func (g *Game) Controls() *Controls { return g.controls }

// Emitters exposes the emitter registry.
func (g *Game) Emitters() *emitters.System { return g.emitters }

// Pointer exposes the pointer state.
func (g *Game) Pointer() *input.Pointer { return g.pointer }

// LastError returns the error from the most recent tick, if any.
func (g *Game) LastError() error { return g.lastErr }

// Reset clears the solver and the driver clocks.
func (g *Game) Reset() {
	g.solver.Reset()
	g.collector.Reset()
	g.simTime = 0
	slog.Info("reset")
}

// Unload releases the renderer, flushes output files, and stops workers.
func (g *Game) Unload() {
	if g.density != nil {
		g.density.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.solver.Close()
}
