package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/swirl/fluid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Grid.Size != 256 {
		t.Errorf("expected default grid size 256, got %d", cfg.Grid.Size)
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("expected positive derived dt, got %v", cfg.Derived.DT32)
	}
	if cfg.Derived.Strategy != fluid.StrategyCombined {
		t.Errorf("expected combined strategy, got %v", cfg.Derived.Strategy)
	}
	if len(cfg.Emitters) == 0 {
		t.Error("expected default emitters")
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.yaml")
	data := []byte("grid:\n  size: 64\nsolver:\n  jacobi_iterations: 40\n  strategy: dissipation\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading user config: %v", err)
	}
	if cfg.Grid.Size != 64 {
		t.Errorf("expected grid size 64, got %d", cfg.Grid.Size)
	}
	if cfg.Solver.JacobiIterations != 40 {
		t.Errorf("expected 40 jacobi iterations, got %d", cfg.Solver.JacobiIterations)
	}
	if cfg.Solver.Dissipation != 0.995 {
		t.Errorf("expected default dissipation kept, got %v", cfg.Solver.Dissipation)
	}
	if cfg.Derived.Strategy != fluid.StrategyDissipation {
		t.Errorf("expected dissipation strategy, got %v", cfg.Derived.Strategy)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"zero grid":       "grid:\n  size: 0\n",
		"negative dt":     "solver:\n  dt: -0.1\n",
		"zero dt":         "solver:\n  dt: 0\n",
		"dissipation > 1": "solver:\n  dissipation: 1.2\n",
		"no jacobi":       "solver:\n  jacobi_iterations: 0\n",
		"bad strategy":    "solver:\n  strategy: spectral\n",
		"bad duty":        "emitters:\n  - duty: 2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if cfg != nil {
				t.Error("expected nil config on error")
			}
		})
	}
}

func TestSolverOptionsAndParams(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	opts := cfg.SolverOptions()
	if opts.Size != cfg.Grid.Size || opts.DT != cfg.Derived.DT32 {
		t.Errorf("options mismatch: %+v", opts)
	}
	if opts.Seed == nil || opts.Seed.CX != float32(cfg.Grid.Size)/2 {
		t.Errorf("expected seed blob at grid center, got %+v", opts.Seed)
	}

	p := cfg.BaseParams()
	if err := p.Validate(cfg.Grid.Size); err != nil {
		t.Errorf("base params invalid: %v", err)
	}
	if p.PointerActive {
		t.Error("base params should have pointer inactive")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if again.Solver.JacobiIterations != cfg.Solver.JacobiIterations || len(again.Emitters) != len(cfg.Emitters) {
		t.Error("written config does not reload to the same values")
	}
}
