package fluid

// advectVelocity self-advects velocity: each cell traces back along its own
// velocity and takes the interpolated velocity found there.
func (s *Solver) advectVelocity(dt float32) {
	n := s.store.N
	vel := s.store.Velocity

	s.pool.run(n, func(y0, y1 int) {
		cur, next := vel.Cur(), vel.Next()
		for y := y0; y < y1; y++ {
			for x := 0; x < n; x++ {
				i := y*n + x
				v := cur[i]
				next[i] = SampleVec(cur, n, float32(x)-dt*v.X, float32(y)-dt*v.Y)
			}
		}
	})
	vel.Commit()
}

// advectDensity moves density along the committed velocity. It must run
// after advectVelocity has committed so density follows the updated flow.
func (s *Solver) advectDensity(dt float32) {
	n := s.store.N
	vel := s.store.Velocity.Cur()
	den := s.store.Density

	s.pool.run(n, func(y0, y1 int) {
		cur, next := den.Cur(), den.Next()
		for y := y0; y < y1; y++ {
			for x := 0; x < n; x++ {
				i := y*n + x
				v := vel[i]
				next[i] = SampleScalar(cur, n, float32(x)-dt*v.X, float32(y)-dt*v.Y)
			}
		}
	})
	den.Commit()
}
