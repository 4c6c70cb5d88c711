package fluid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Step when the tick parameters are unusable.
// The store is not touched.
var ErrInvalidParams = errors.New("fluid: invalid tick parameters")

// Source is an additional forcing point applied by the injector with the
// same falloff as the pointer. Emitters produce these.
type Source struct {
	Pos      Vec2
	Delta    Vec2 // grid cells per tick
	Radius   float32
	Strength float32
}

// Params is the per-tick input record. It is passed by value into Step and
// is immutable for the whole tick.
type Params struct {
	GridSize         int // 0 means the solver's size
	PointerActive    bool
	DT               float32
	Viscosity        float32
	Dissipation      float32 // per-tick decay in (0, 1]
	AddStrength      float32
	PointerPos       Vec2 // grid space
	PointerDelta     Vec2 // grid cells since the previous tick
	Radius           float32
	JacobiIterations int

	Sources []Source
}

// DefaultParams returns a usable parameter record for an n×n grid with the
// pointer inactive.
func DefaultParams(n int) Params {
	return Params{
		GridSize:         n,
		DT:               1.0 / 60.0,
		Viscosity:        0,
		Dissipation:      0.995,
		AddStrength:      1,
		Radius:           float32(n) / 32,
		JacobiIterations: 30,
	}
}

// Validate reports whether p can drive a tick on an n×n grid.
func (p Params) Validate(n int) error {
	switch {
	case p.GridSize != 0 && p.GridSize != n:
		return fmt.Errorf("%w: grid_size %d does not match solver size %d", ErrInvalidParams, p.GridSize, n)
	case !finite(p.DT) || p.DT <= 0:
		return fmt.Errorf("%w: dt must be > 0, got %v", ErrInvalidParams, p.DT)
	case !finite(p.Viscosity) || p.Viscosity < 0:
		return fmt.Errorf("%w: viscosity must be >= 0, got %v", ErrInvalidParams, p.Viscosity)
	case !finite(p.Dissipation) || p.Dissipation <= 0 || p.Dissipation > 1:
		return fmt.Errorf("%w: dissipation must be in (0,1], got %v", ErrInvalidParams, p.Dissipation)
	case !finite(p.Radius) || p.Radius < 0:
		return fmt.Errorf("%w: radius must be >= 0, got %v", ErrInvalidParams, p.Radius)
	case p.JacobiIterations < 1:
		return fmt.Errorf("%w: jacobi_iterations must be >= 1, got %d", ErrInvalidParams, p.JacobiIterations)
	case !finite(p.AddStrength):
		return fmt.Errorf("%w: add_strength must be finite", ErrInvalidParams)
	case p.PointerActive && !(finiteVec(p.PointerPos) && finiteVec(p.PointerDelta)):
		return fmt.Errorf("%w: pointer position and delta must be finite", ErrInvalidParams)
	}
	for i, src := range p.Sources {
		if !finite(src.Radius) || src.Radius < 0 || !finite(src.Strength) || !finiteVec(src.Pos) || !finiteVec(src.Delta) {
			return fmt.Errorf("%w: source %d has radius %v strength %v", ErrInvalidParams, i, src.Radius, src.Strength)
		}
	}
	return nil
}

// forcing reports whether the injection stage has anything to apply.
func (p Params) forcing() bool {
	return p.PointerActive || len(p.Sources) > 0
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v Vec2) bool { return finite(v.X) && finite(v.Y) }
