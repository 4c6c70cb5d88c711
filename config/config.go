// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swirl/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Solver    SolverConfig    `yaml:"solver"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Seed      SeedConfig      `yaml:"seed"`
	Emitters  []EmitterConfig `yaml:"emitters"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the simulation grid size. Fixed for the run.
type GridConfig struct {
	Size int `yaml:"size"`
}

// SolverConfig holds numerical parameters.
type SolverConfig struct {
	DT                  float64 `yaml:"dt"`
	Viscosity           float64 `yaml:"viscosity"`
	Dissipation         float64 `yaml:"dissipation"`          // per-tick decay in (0,1]
	JacobiIterations    int     `yaml:"jacobi_iterations"`    // pressure sweeps per tick
	DiffusionIterations int     `yaml:"diffusion_iterations"` // viscous relaxation sweeps
	Strategy            string  `yaml:"strategy"`             // combined, dissipation, relaxation
	Workers             int     `yaml:"workers"`              // 0 = GOMAXPROCS
}

// PointerConfig holds pointer forcing parameters.
type PointerConfig struct {
	AddStrength float64 `yaml:"add_strength"`
	Radius      float64 `yaml:"radius"`      // grid cells
	DeltaScale  float64 `yaml:"delta_scale"` // multiplier on grid-space pointer delta
}

// SeedConfig describes the optional initial density blob.
type SeedConfig struct {
	Enabled bool    `yaml:"enabled"`
	X       float64 `yaml:"x"` // fraction of grid width
	Y       float64 `yaml:"y"` // fraction of grid height
	Radius  float64 `yaml:"radius"`
	Amount  float64 `yaml:"amount"`
}

// EmitterConfig describes a persistent jet.
type EmitterConfig struct {
	X         float64 `yaml:"x"` // fraction of grid width
	Y         float64 `yaml:"y"` // fraction of grid height
	DirX      float64 `yaml:"dir_x"`
	DirY      float64 `yaml:"dir_y"`
	Strength  float64 `yaml:"strength"`
	Radius    float64 `yaml:"radius"`
	Period    float64 `yaml:"period"` // seconds; 0 = continuous
	Duty      float64 `yaml:"duty"`   // on fraction of each period
	PhaseSecs float64 `yaml:"phase"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of sim time per CSV row
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32        // Solver.DT as float32
	Strategy fluid.Strategy // parsed Solver.Strategy
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the solver cannot run.
func (c *Config) Validate() error {
	switch {
	case c.Grid.Size <= 0:
		return fmt.Errorf("%w: grid.size must be > 0, got %d", ErrInvalidConfig, c.Grid.Size)
	case c.Solver.DT <= 0:
		return fmt.Errorf("%w: solver.dt must be > 0, got %v", ErrInvalidConfig, c.Solver.DT)
	case c.Solver.Viscosity < 0:
		return fmt.Errorf("%w: solver.viscosity must be >= 0, got %v", ErrInvalidConfig, c.Solver.Viscosity)
	case c.Solver.Dissipation <= 0 || c.Solver.Dissipation > 1:
		return fmt.Errorf("%w: solver.dissipation must be in (0,1], got %v", ErrInvalidConfig, c.Solver.Dissipation)
	case c.Solver.JacobiIterations < 1:
		return fmt.Errorf("%w: solver.jacobi_iterations must be >= 1, got %d", ErrInvalidConfig, c.Solver.JacobiIterations)
	case c.Solver.DiffusionIterations < 0:
		return fmt.Errorf("%w: solver.diffusion_iterations must be >= 0, got %d", ErrInvalidConfig, c.Solver.DiffusionIterations)
	case c.Pointer.Radius < 0:
		return fmt.Errorf("%w: pointer.radius must be >= 0, got %v", ErrInvalidConfig, c.Pointer.Radius)
	}
	if _, err := fluid.ParseStrategy(c.Solver.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for i, e := range c.Emitters {
		if e.Radius < 0 || e.Period < 0 || e.Duty < 0 || e.Duty > 1 {
			return fmt.Errorf("%w: emitters[%d] has radius %v period %v duty %v", ErrInvalidConfig, i, e.Radius, e.Period, e.Duty)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Solver.DT)
	c.Derived.Strategy, _ = fluid.ParseStrategy(c.Solver.Strategy)
	if c.Pointer.DeltaScale == 0 {
		c.Pointer.DeltaScale = 1
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}
}

// SolverOptions builds the solver construction record.
func (c *Config) SolverOptions() fluid.Options {
	opts := fluid.Options{
		Size:                c.Grid.Size,
		DT:                  c.Derived.DT32,
		Strategy:            c.Derived.Strategy,
		DiffusionIterations: c.Solver.DiffusionIterations,
		Workers:             c.Solver.Workers,
	}
	if c.Seed.Enabled {
		n := float32(c.Grid.Size)
		opts.Seed = &fluid.Blob{
			CX:     float32(c.Seed.X) * n,
			CY:     float32(c.Seed.Y) * n,
			Radius: float32(c.Seed.Radius),
			Amount: float32(c.Seed.Amount),
		}
	}
	return opts
}

// BaseParams builds the tick parameters with the pointer inactive. The
// driver fills in pointer state and sources each tick.
func (c *Config) BaseParams() fluid.Params {
	return fluid.Params{
		GridSize:         c.Grid.Size,
		DT:               c.Derived.DT32,
		Viscosity:        float32(c.Solver.Viscosity),
		Dissipation:      float32(c.Solver.Dissipation),
		AddStrength:      float32(c.Pointer.AddStrength),
		Radius:           float32(c.Pointer.Radius),
		JacobiIterations: c.Solver.JacobiIterations,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
