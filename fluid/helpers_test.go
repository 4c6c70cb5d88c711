package fluid

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// newTestSolver builds a single-worker solver so stages run inline.
func newTestSolver(t testing.TB, n int, strategy Strategy) *Solver {
	t.Helper()
	s, err := NewSolver(Options{Size: n, DT: 1.0 / 60.0, Strategy: strategy, DiffusionIterations: 20, Workers: 1})
	if err != nil {
		t.Fatalf("NewSolver(%d): %v", n, err)
	}
	t.Cleanup(s.Close)
	return s
}

// smoothField is a periodic-looking shear/compression flow.
func smoothField(n int) []Vec2 {
	out := make([]Vec2, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			fx, fy := float64(x), float64(y)
			out[y*n+x] = Vec2{
				X: float32(math.Sin(2*math.Pi*fx/float64(n)) * math.Cos(2*math.Pi*fy/float64(n))),
				Y: float32(0.5 * math.Cos(3*math.Pi*fy/float64(n))),
			}
		}
	}
	return out
}

// sourceField is a radial outflow from the grid center with a Gaussian envelope.
func sourceField(n int) []Vec2 {
	out := make([]Vec2, n*n)
	c := float64(n) / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			g := math.Exp(-(dx*dx + dy*dy) / (float64(n*n) / 16))
			out[y*n+x] = Vec2{X: float32(dx * g * 0.2), Y: float32(dy * g * 0.2)}
		}
	}
	return out
}

// noiseField is seeded Gaussian noise in both components.
func noiseField(n int, seed int64) []Vec2 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]Vec2, n*n)
	for i := range out {
		out[i] = Vec2{X: float32(rng.NormFloat64()), Y: float32(rng.NormFloat64())}
	}
	return out
}

// aliasedField repeats short integer cycles, which puts most of its
// divergence-free-looking energy at the grid Nyquist frequency.
func aliasedField(n int) []Vec2 {
	out := make([]Vec2, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			out[y*n+x] = Vec2{
				X: float32((x*7+y*13)%11)/11 - 0.5,
				Y: float32((x*5+y*3)%7)/7 - 0.5,
			}
		}
	}
	return out
}

func almostEqual(a, b, tol float32) bool {
	return scalar.EqualWithinAbs(float64(a), float64(b), float64(tol))
}
