package fluid

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNewSolverRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero size", Options{Size: 0, DT: 0.1}},
		{"negative size", Options{Size: -4, DT: 0.1}},
		{"zero dt", Options{Size: 8, DT: 0}},
		{"negative dt", Options{Size: 8, DT: -1}},
		{"bad strategy", Options{Size: 8, DT: 0.1, Strategy: Strategy(42)}},
		{"negative diffusion iterations", Options{Size: 8, DT: 0.1, DiffusionIterations: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSolver(tt.opts)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if s != nil {
				t.Error("expected no solver on error")
			}
		})
	}
}

func TestStepRejectsInvalidParamsWithoutMutation(t *testing.T) {
	s := newTestSolver(t, 8, StrategyCombined)
	s.store.SeedBlob(Blob{CX: 4, CY: 4, Radius: 3, Amount: 1})
	s.publish()
	before := s.Frame().Clone()

	bad := []func(*Params){
		func(p *Params) { p.DT = 0 },
		func(p *Params) { p.Viscosity = -1 },
		func(p *Params) { p.Dissipation = 0 },
		func(p *Params) { p.Dissipation = 1.5 },
		func(p *Params) { p.Radius = -2 },
		func(p *Params) { p.JacobiIterations = 0 },
		func(p *Params) { p.GridSize = 16 },
		func(p *Params) { p.PointerPos.X = float32(math.NaN()) },
		func(p *Params) { p.Sources = []Source{{Delta: Vec2{Y: float32(math.Inf(1))}, Radius: 1}} },
	}
	for i, mutate := range bad {
		p := DefaultParams(8)
		p.PointerActive = true
		mutate(&p)
		err := s.Step(context.Background(), p)
		if !errors.Is(err, ErrInvalidParams) {
			t.Errorf("case %d: expected ErrInvalidParams, got %v", i, err)
		}
	}

	after := s.Frame()
	if after.Tick != before.Tick {
		t.Errorf("tick advanced on invalid params: %d -> %d", before.Tick, after.Tick)
	}
	for i := range after.Density {
		if after.Density[i] != before.Density[i] {
			t.Fatalf("density mutated at %d", i)
		}
	}
}

// cancelAt cancels the tick when the named stage starts.
type cancelAt struct {
	stage  string
	cancel context.CancelFunc
	seen   []string
}

func (c *cancelAt) StartTick() {}
func (c *cancelAt) EndTick()   {}
func (c *cancelAt) StartPhase(stage string) {
	c.seen = append(c.seen, stage)
	if stage == c.stage {
		c.cancel()
	}
}

func TestCancelledTickHasNoObservableEffect(t *testing.T) {
	for _, stage := range []string{StageAdvectVelocity, StageDiffuse, StagePressure, StageGradient} {
		t.Run(stage, func(t *testing.T) {
			s := newTestSolver(t, 16, StrategyCombined)
			s.store.SeedBlob(Blob{CX: 8, CY: 8, Radius: 5, Amount: 1})
			s.store.Velocity.Load(smoothField(16))
			s.publish()
			before := s.Frame().Clone()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s.SetObserver(&cancelAt{stage: stage, cancel: cancel})

			p := DefaultParams(16)
			p.PointerActive = true
			p.PointerPos = Vec2{8, 8}
			p.PointerDelta = Vec2{2, 1}
			p.Viscosity = 0.1
			p.Dissipation = 0.9

			if err := s.Step(ctx, p); !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}

			after := s.Frame()
			if after.Tick != before.Tick {
				t.Errorf("tick advanced: %d -> %d", before.Tick, after.Tick)
			}
			for i := range before.Density {
				if after.Density[i] != before.Density[i] || after.Velocity[i] != before.Velocity[i] {
					t.Fatalf("cell %d changed after cancelled tick", i)
				}
			}
			for i := range before.Density {
				if s.store.Density.Cur()[i] != before.Density[i] || s.store.Velocity.Cur()[i] != before.Velocity[i] {
					t.Fatalf("store cell %d not rolled back", i)
				}
			}

			// the next tick runs normally from the restored state
			s.SetObserver(nil)
			if err := s.Step(context.Background(), p); err != nil {
				t.Fatal(err)
			}
			if s.Frame().Tick != before.Tick+1 {
				t.Error("expected tick to advance after recovery")
			}
		})
	}
}

func TestObserverSeesStagesInOrder(t *testing.T) {
	s := newTestSolver(t, 8, StrategyCombined)
	obs := &cancelAt{cancel: func() {}}
	s.SetObserver(obs)

	if err := s.Step(context.Background(), DefaultParams(8)); err != nil {
		t.Fatal(err)
	}
	if len(obs.seen) != len(Stages) {
		t.Fatalf("expected %d stages, saw %v", len(Stages), obs.seen)
	}
	for i, name := range Stages {
		if obs.seen[i] != name {
			t.Errorf("stage %d = %q, want %q", i, obs.seen[i], name)
		}
	}
}

func TestFrameIsIsolatedFromStore(t *testing.T) {
	s := newTestSolver(t, 8, StrategyCombined)
	s.store.SeedBlob(Blob{CX: 4, CY: 4, Radius: 3, Amount: 1})
	s.publish()

	f := s.Frame()
	want := f.Density[s.store.Index(4, 4)]
	// a misbehaving renderer writes into the frame
	for i := range f.Density {
		f.Density[i] = -99
	}

	if got := s.store.Density.Read(4, 4); got != want {
		t.Errorf("store corrupted through frame: got %v, want %v", got, want)
	}
}

func TestCancelledTickLeavesFrameUntouched(t *testing.T) {
	s := newTestSolver(t, 8, StrategyCombined)
	s.store.SeedBlob(Blob{CX: 4, CY: 4, Radius: 3, Amount: 1})
	s.publish()
	want := s.store.Density.Read(4, 4)

	f := s.Frame()
	for i := range f.Density {
		f.Density[i] = 7
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.SetObserver(&cancelAt{stage: StagePressure, cancel: cancel})
	if err := s.Step(ctx, DefaultParams(8)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Step error = %v, want context.Canceled", err)
	}

	for i, v := range s.Frame().Density {
		if v != 7 {
			t.Fatalf("frame density[%d] = %v after cancelled tick, want 7", i, v)
		}
	}
	if got := s.store.Density.Read(4, 4); got != want {
		t.Errorf("store density = %v after rollback, want %v", got, want)
	}
}

func TestParallelMatchesInline(t *testing.T) {
	const n = 96 // above parallelThreshold
	build := func(workers int) *Solver {
		s, err := NewSolver(Options{
			Size: n, DT: 1.0 / 60.0, DiffusionIterations: 10, Workers: workers,
			Seed: &Blob{CX: 40, CY: 50, Radius: 20, Amount: 1},
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(s.Close)
		return s
	}
	inline := build(1)
	parallel := build(4)

	p := DefaultParams(n)
	p.PointerActive = true
	p.PointerPos = Vec2{48, 48}
	p.PointerDelta = Vec2{3, -2}
	p.Radius = 8
	p.Viscosity = 0.05
	for i := 0; i < 3; i++ {
		if err := inline.Step(context.Background(), p); err != nil {
			t.Fatal(err)
		}
		if err := parallel.Step(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}

	a, b := inline.Frame(), parallel.Frame()
	for i := range a.Density {
		if a.Density[i] != b.Density[i] || a.Velocity[i] != b.Velocity[i] {
			t.Fatalf("cell %d differs between inline and parallel runs", i)
		}
	}
}

func TestResetRestoresSeed(t *testing.T) {
	seed := Blob{CX: 6, CY: 6, Radius: 4, Amount: 1}
	s, err := NewSolver(Options{Size: 12, DT: 0.1, Seed: &seed, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	initial := s.Frame().Clone()

	p := DefaultParams(12)
	p.PointerActive = true
	p.PointerPos = Vec2{3, 3}
	p.PointerDelta = Vec2{1, 1}
	p.Radius = 2
	for i := 0; i < 4; i++ {
		if err := s.Step(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	s.Reset()

	f := s.Frame()
	if f.Tick != 0 {
		t.Errorf("expected tick 0 after reset, got %d", f.Tick)
	}
	for i := range f.Density {
		if f.Density[i] != initial.Density[i] || f.Velocity[i] != (Vec2{}) {
			t.Fatalf("cell %d not restored", i)
		}
	}
}

func BenchmarkStep128(b *testing.B) {
	s, err := NewSolver(Options{Size: 128, DT: 1.0 / 60.0, DiffusionIterations: 10})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	p := DefaultParams(128)
	p.PointerActive = true
	p.PointerPos = Vec2{64, 64}
	p.PointerDelta = Vec2{2, 0}
	p.Radius = 6
	p.Viscosity = 0.01
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Step(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}
