package fluid

import "math"

// divergenceAt is the central-difference divergence of vel at (x, y) with
// neighbors clamped to the grid edge.
func divergenceAt(vel []Vec2, n, x, y int) float32 {
	xl, xr := clampInt(x-1, 0, n-1), clampInt(x+1, 0, n-1)
	yu, yd := clampInt(y-1, 0, n-1), clampInt(y+1, 0, n-1)
	return ((vel[y*n+xr].X - vel[y*n+xl].X) + (vel[yd*n+x].Y - vel[yu*n+x].Y)) / 2
}

// Divergence returns the divergence of vel at (x, y).
func Divergence(vel []Vec2, n, x, y int) float32 {
	return divergenceAt(vel, n, x, y)
}

// MeanAbsDivergence averages |∇·v| over interior cells. Grids too small to
// have an interior are averaged over every cell.
func MeanAbsDivergence(vel []Vec2, n int) float32 {
	lo, hi := 1, n-1
	if n < 3 {
		lo, hi = 0, n
	}
	var sum float64
	count := 0
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			sum += math.Abs(float64(divergenceAt(vel, n, x, y)))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float32(sum / float64(count))
}

// computeDivergence fills the divergence field from committed velocity.
func (s *Solver) computeDivergence() {
	n := s.store.N
	vel := s.store.Velocity.Cur()
	div := s.store.Divergence

	s.pool.run(n, func(y0, y1 int) {
		next := div.Next()
		for y := y0; y < y1; y++ {
			for x := 0; x < n; x++ {
				next[y*n+x] = divergenceAt(vel, n, x, y)
			}
		}
	})
	div.Commit()
}

// solvePressure runs exactly sweeps Jacobi iterations of ∇²p = div starting
// from p = 0. Every sweep reads the whole previous iterate and writes the
// whole next one. There is no residual check.
func (s *Solver) solvePressure(sweeps int, barrier func() bool) bool {
	n := s.store.N
	pr := s.store.Pressure
	div := s.store.Divergence.Cur()
	pr.Reset()

	for k := 0; k < sweeps; k++ {
		s.pool.run(n, func(y0, y1 int) {
			next := pr.Next()
			for y := y0; y < y1; y++ {
				for x := 0; x < n; x++ {
					sum := pr.Read(x-1, y) + pr.Read(x+1, y) + pr.Read(x, y-1) + pr.Read(x, y+1)
					next[y*n+x] = (sum - div[y*n+x]) / 4
				}
			}
		})
		pr.Commit()
		if !barrier() {
			return false
		}
	}
	return true
}

// subtractGradient removes the pressure gradient from velocity.
func (s *Solver) subtractGradient() {
	n := s.store.N
	vel := s.store.Velocity
	pr := s.store.Pressure

	s.pool.run(n, func(y0, y1 int) {
		cur, next := vel.Cur(), vel.Next()
		for y := y0; y < y1; y++ {
			for x := 0; x < n; x++ {
				grad := Vec2{
					X: pr.Read(x+1, y) - pr.Read(x-1, y),
					Y: pr.Read(x, y+1) - pr.Read(x, y-1),
				}
				i := y*n + x
				next[i] = cur[i].Sub(grad.Scale(0.5))
			}
		}
	})
	vel.Commit()
}
