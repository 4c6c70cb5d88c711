package fluid

import "math"

// Falloff is the injection weight at distance d from a force center of
// radius r: 1 at the center, decreasing monotonically, 0 beyond r.
// A zero radius affects only the cell exactly under the center.
func Falloff(d, r float32) float32 {
	if d > r {
		return 0
	}
	if r <= 0 {
		if d == 0 {
			return 1
		}
		return 0
	}
	q := d / r
	return float32(math.Exp(float64(-q * q)))
}

// impulse is one force center resolved for a tick.
type impulse struct {
	pos      Vec2
	delta    Vec2
	radius   float32
	strength float32
}

func (p Params) impulses() []impulse {
	out := make([]impulse, 0, len(p.Sources)+1)
	if p.PointerActive {
		out = append(out, impulse{
			pos:      p.PointerPos,
			delta:    p.PointerDelta,
			radius:   p.Radius,
			strength: p.AddStrength,
		})
	}
	for _, s := range p.Sources {
		out = append(out, impulse{pos: s.Pos, delta: s.Delta, radius: s.Radius, strength: s.Strength})
	}
	return out
}

// inject applies pointer and source impulses to velocity and density.
// Returns false without touching any buffer when there is nothing to apply.
func (s *Solver) inject(p Params) bool {
	if !p.forcing() {
		return false
	}
	imps := p.impulses()
	n := s.store.N
	vel := s.store.Velocity
	den := s.store.Density
	dt := p.DT

	s.pool.run(n, func(y0, y1 int) {
		vCur, vNext := vel.Cur(), vel.Next()
		dCur, dNext := den.Cur(), den.Next()
		for y := y0; y < y1; y++ {
			for x := 0; x < n; x++ {
				i := y*n + x
				v := vCur[i]
				d := dCur[i]
				for _, imp := range imps {
					dx := float32(x) - imp.pos.X
					dy := float32(y) - imp.pos.Y
					dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
					w := Falloff(dist, imp.radius)
					if w == 0 {
						continue
					}
					v = v.Add(imp.delta.Scale(imp.strength / dt * w))
					d += imp.strength * dt * w
				}
				vNext[i] = v
				dNext[i] = d
			}
		}
	})
	vel.Commit()
	den.Commit()
	return true
}
