package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
)

// Strategy selects how the diffuser damps the flow.
type Strategy int

const (
	// StrategyCombined runs viscous relaxation and then dissipation.
	StrategyCombined Strategy = iota
	// StrategyDissipation only scales fields by the dissipation factor.
	StrategyDissipation
	// StrategyRelaxation only runs implicit viscous relaxation on velocity.
	StrategyRelaxation
)

func (st Strategy) String() string {
	switch st {
	case StrategyCombined:
		return "combined"
	case StrategyDissipation:
		return "dissipation"
	case StrategyRelaxation:
		return "relaxation"
	}
	return fmt.Sprintf("Strategy(%d)", int(st))
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "combined":
		return StrategyCombined, nil
	case "dissipation":
		return StrategyDissipation, nil
	case "relaxation":
		return StrategyRelaxation, nil
	}
	return 0, fmt.Errorf("unknown diffusion strategy %q", name)
}

func (st Strategy) relaxes() bool   { return st == StrategyCombined || st == StrategyRelaxation }
func (st Strategy) dissipates() bool { return st == StrategyCombined || st == StrategyDissipation }

// relax solves (I - a∇²)v = v0 with a fixed number of Jacobi sweeps,
// a = dt·viscosity. v0 is held in velSrc for the whole solve.
func (s *Solver) relax(p Params, sweeps int, barrier func() bool) bool {
	if p.Viscosity == 0 || sweeps <= 0 {
		return true
	}
	n := s.store.N
	vel := s.store.Velocity
	src := s.store.velSrc
	copy(src, vel.Cur())

	a := p.DT * p.Viscosity
	inv := 1 / (1 + 4*a)

	for k := 0; k < sweeps; k++ {
		s.pool.run(n, func(y0, y1 int) {
			next := vel.Next()
			for y := y0; y < y1; y++ {
				for x := 0; x < n; x++ {
					sum := vel.Read(x-1, y).Add(vel.Read(x+1, y)).
						Add(vel.Read(x, y-1)).Add(vel.Read(x, y+1))
					i := y*n + x
					next[i] = src[i].Add(sum.Scale(a)).Scale(inv)
				}
			}
		})
		vel.Commit()
		if !barrier() {
			return false
		}
	}
	return true
}

// dissipate scales velocity and density by the decay factor, once each.
func (s *Solver) dissipate(decay float32) {
	if decay == 1 {
		return
	}
	n := s.store.N
	vel := s.store.Velocity
	s.pool.run(n, func(y0, y1 int) {
		cur, next := vel.Cur(), vel.Next()
		for i := y0 * n; i < y1*n; i++ {
			next[i] = cur[i].Scale(decay)
		}
	})
	vel.Commit()

	den := s.store.Density
	den.CarryOver()
	blas32.Scal(decay, blas32.Vector{N: n * n, Inc: 1, Data: den.Next()})
	den.Commit()
}
