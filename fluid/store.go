package fluid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// ErrInvalidGrid is returned when a store is requested with a non-positive size.
var ErrInvalidGrid = errors.New("fluid: invalid grid size")

// Store owns every simulation field over an N×N grid.
type Store struct {
	N int

	Velocity   *Field[Vec2]
	Density    *Field[float32]
	Pressure   *Field[float32]
	Divergence *Field[float32]

	// velocity at the start of viscous relaxation
	velSrc []Vec2
}

// NewStore allocates a zeroed store. n must be positive.
func NewStore(n int) (*Store, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrid, n)
	}
	return &Store{
		N:          n,
		Velocity:   NewField[Vec2](n),
		Density:    NewField[float32](n),
		Pressure:   NewField[float32](n),
		Divergence: NewField[float32](n),
		velSrc:     make([]Vec2, n*n),
	}, nil
}

// Index returns the flat offset of (x, y).
func (s *Store) Index(x, y int) int { return y*s.N + x }

// Reset zeroes every field.
func (s *Store) Reset() {
	s.Velocity.Reset()
	s.Density.Reset()
	s.Pressure.Reset()
	s.Divergence.Reset()
}

// Blob describes a circular density seed.
type Blob struct {
	CX, CY float32 // center in grid space
	Radius float32
	Amount float32 // density at the center
}

// SeedBlob adds a density blob to the committed density field with a
// smoothstep falloff from Amount at the center to zero at Radius.
func (s *Store) SeedBlob(b Blob) {
	if b.Radius <= 0 {
		return
	}
	d := s.Density.Cur()
	for y := 0; y < s.N; y++ {
		for x := 0; x < s.N; x++ {
			dx := float32(x) - b.CX
			dy := float32(y) - b.CY
			dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if dist >= b.Radius {
				continue
			}
			t := 1 - dist/b.Radius
			d[s.Index(x, y)] += b.Amount * t * t * (3 - 2*t)
		}
	}
}

// Mass returns the sum of |density| over the committed field.
func (s *Store) Mass() float32 {
	return blas32.Asum(blas32.Vector{N: len(s.Density.cur), Inc: 1, Data: s.Density.cur})
}
