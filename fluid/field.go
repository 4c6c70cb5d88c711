// Package fluid implements a grid-based incompressible fluid solver.
//
// Every field lives in a double-buffered Field: stages read the current
// generation and write the next one, and a Commit between stages promotes
// next to current. No stage ever reads a buffer it is writing.
package fluid

// Vec2 is a velocity sample.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Value is the set of cell types a Field can hold.
type Value interface {
	float32 | Vec2
}

// Field is an N×N grid with a current and a next generation.
type Field[T Value] struct {
	n    int
	cur  []T
	next []T
}

// NewField allocates a zeroed n×n field.
func NewField[T Value](n int) *Field[T] {
	return &Field[T]{
		n:    n,
		cur:  make([]T, n*n),
		next: make([]T, n*n),
	}
}

// Size returns the grid edge length.
func (f *Field[T]) Size() int { return f.n }

// Cur returns the committed generation. Callers must not write to it.
func (f *Field[T]) Cur() []T { return f.cur }

// Next returns the generation being written by the current stage.
func (f *Field[T]) Next() []T { return f.next }

// Read returns the committed value at (x, y), clamping coordinates to the grid.
func (f *Field[T]) Read(x, y int) T {
	return f.cur[clampInt(y, 0, f.n-1)*f.n+clampInt(x, 0, f.n-1)]
}

// Write stores v at (x, y) in the next generation.
func (f *Field[T]) Write(x, y int, v T) {
	f.next[y*f.n+x] = v
}

// Commit promotes next to current. The old current becomes the scratch
// generation for the following stage.
func (f *Field[T]) Commit() {
	f.cur, f.next = f.next, f.cur
}

// CarryOver copies current into next so a stage that only touches some
// cells still commits a complete generation.
func (f *Field[T]) CarryOver() {
	copy(f.next, f.cur)
}

// Reset zeroes both generations.
func (f *Field[T]) Reset() {
	clear(f.cur)
	clear(f.next)
}

// Load replaces the committed generation with src.
func (f *Field[T]) Load(src []T) {
	copy(f.cur, src)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampF clamps v to [lo, hi]. NaN maps to lo so a sample position can
// never index outside the grid.
func clampF(v, lo, hi float32) float32 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
