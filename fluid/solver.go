package fluid

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidConfig is returned when a solver cannot be constructed from its options.
var ErrInvalidConfig = errors.New("fluid: invalid configuration")

// Stage names reported to a StageObserver, in pipeline order.
const (
	StageInject         = "inject"
	StageAdvectVelocity = "advect_velocity"
	StageAdvectDensity  = "advect_density"
	StageDiffuse        = "diffuse"
	StageDivergence     = "divergence"
	StagePressure       = "pressure"
	StageGradient       = "gradient"
)

// Stages lists every stage name in pipeline order.
var Stages = []string{
	StageInject, StageAdvectVelocity, StageAdvectDensity, StageDiffuse,
	StageDivergence, StagePressure, StageGradient,
}

// StageObserver receives stage boundaries during Step. telemetry.PerfCollector
// implements it.
type StageObserver interface {
	StartTick()
	StartPhase(stage string)
	EndTick()
}

// Options configures a Solver.
type Options struct {
	Size                int
	DT                  float32 // nominal timestep; ticks may pass their own
	Strategy            Strategy
	DiffusionIterations int // viscous relaxation sweeps
	Workers             int // 0 = GOMAXPROCS
	Seed                *Blob
}

// Frame is the published result of the last completed tick. The slices are
// owned by the solver, must be treated as read-only, and stay valid until
// the next Step returns.
type Frame struct {
	N        int
	Tick     uint64
	Density  []float32
	Velocity []Vec2
}

// Clone returns a Frame backed by its own copies of the fields.
func (f Frame) Clone() Frame {
	out := f
	out.Density = append([]float32(nil), f.Density...)
	out.Velocity = append([]Vec2(nil), f.Velocity...)
	return out
}

// DensityAt returns the density at (x, y), clamped to the grid.
func (f Frame) DensityAt(x, y int) float32 {
	return f.Density[clampInt(y, 0, f.N-1)*f.N+clampInt(x, 0, f.N-1)]
}

// VelocityAt returns the velocity at (x, y), clamped to the grid.
func (f Frame) VelocityAt(x, y int) Vec2 {
	return f.Velocity[clampInt(y, 0, f.N-1)*f.N+clampInt(x, 0, f.N-1)]
}

// Solver advances the fluid one tick at a time.
type Solver struct {
	mu       sync.Mutex
	opts     Options
	store    *Store
	pool     *workerPool
	observer StageObserver

	tick uint64

	// last completed tick: private rollback copy and the consumer-facing copy
	savedDensity []float32
	savedVel     []Vec2
	frameDensity []float32
	frameVel     []Vec2
}

// NewSolver validates opts and allocates the field store.
func NewSolver(opts Options) (*Solver, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: grid size must be > 0, got %d", ErrInvalidConfig, opts.Size)
	}
	if !finite(opts.DT) || opts.DT <= 0 {
		return nil, fmt.Errorf("%w: dt must be > 0, got %v", ErrInvalidConfig, opts.DT)
	}
	if opts.DiffusionIterations < 0 {
		return nil, fmt.Errorf("%w: diffusion iterations must be >= 0, got %d", ErrInvalidConfig, opts.DiffusionIterations)
	}
	switch opts.Strategy {
	case StrategyCombined, StrategyDissipation, StrategyRelaxation:
	default:
		return nil, fmt.Errorf("%w: unknown strategy %v", ErrInvalidConfig, opts.Strategy)
	}

	store, err := NewStore(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &Solver{
		opts:         opts,
		store:        store,
		pool:         newWorkerPool(opts.Workers),
		savedDensity: make([]float32, opts.Size*opts.Size),
		savedVel:     make([]Vec2, opts.Size*opts.Size),
		frameDensity: make([]float32, opts.Size*opts.Size),
		frameVel:     make([]Vec2, opts.Size*opts.Size),
	}
	if opts.Seed != nil {
		store.SeedBlob(*opts.Seed)
	}
	s.publish()
	return s, nil
}

// Size returns the grid edge length.
func (s *Solver) Size() int { return s.store.N }

// Options returns the options the solver was built with.
func (s *Solver) Options() Options { return s.opts }

// SetObserver installs a stage observer. Pass nil to remove it.
func (s *Solver) SetObserver(obs StageObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = obs
}

// Frame returns the last published tick.
func (s *Solver) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{N: s.store.N, Tick: s.tick, Density: s.frameDensity, Velocity: s.frameVel}
}

// Reset zeroes every field, reapplies the seed blob, and publishes the result.
func (s *Solver) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
	if s.opts.Seed != nil {
		s.store.SeedBlob(*s.opts.Seed)
	}
	s.tick = 0
	s.publish()
}

// Close stops the worker pool.
func (s *Solver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.stop()
}

// Step advances exactly one tick:
//
//	inject → advect velocity → advect density → diffuse →
//	divergence → pressure (k Jacobi sweeps) → gradient subtraction
//
// Each stage completes on every cell before the next begins. If ctx is
// cancelled at a stage boundary the store is rolled back to the last
// published tick and ctx.Err() is returned.
func (s *Solver) Step(ctx context.Context, p Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := p.Validate(s.store.N); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	obs := s.observer
	if obs != nil {
		obs.StartTick()
		defer obs.EndTick()
	}
	phase := func(name string) {
		if obs != nil {
			obs.StartPhase(name)
		}
	}
	barrier := func() bool { return ctx.Err() == nil }

	phase(StageInject)
	s.inject(p)
	if !barrier() {
		return s.abort(ctx)
	}

	phase(StageAdvectVelocity)
	s.advectVelocity(p.DT)
	if !barrier() {
		return s.abort(ctx)
	}

	phase(StageAdvectDensity)
	s.advectDensity(p.DT)
	if !barrier() {
		return s.abort(ctx)
	}

	phase(StageDiffuse)
	if s.opts.Strategy.relaxes() {
		if !s.relax(p, s.opts.DiffusionIterations, barrier) {
			return s.abort(ctx)
		}
	}
	if s.opts.Strategy.dissipates() {
		s.dissipate(p.Dissipation)
	}
	if !barrier() {
		return s.abort(ctx)
	}

	phase(StageDivergence)
	s.computeDivergence()
	if !barrier() {
		return s.abort(ctx)
	}

	phase(StagePressure)
	if !s.solvePressure(p.JacobiIterations, barrier) {
		return s.abort(ctx)
	}

	phase(StageGradient)
	s.subtractGradient()
	if !barrier() {
		return s.abort(ctx)
	}

	s.tick++
	s.publish()
	return nil
}

// abort restores the store to the last published tick.
func (s *Solver) abort(ctx context.Context) error {
	s.store.Velocity.Load(s.savedVel)
	s.store.Density.Load(s.savedDensity)
	return ctx.Err()
}

// publish records the committed velocity and density as the last completed
// tick. The rollback copy is never handed out, so a consumer scribbling on
// a Frame cannot leak into the simulation.
func (s *Solver) publish() {
	copy(s.savedDensity, s.store.Density.Cur())
	copy(s.savedVel, s.store.Velocity.Cur())
	copy(s.frameDensity, s.savedDensity)
	copy(s.frameVel, s.savedVel)
}
