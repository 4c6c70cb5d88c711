// Package input converts raw pointer samples into the solver's grid-space
// pointer contract.
package input

import "github.com/pthm-cable/swirl/fluid"

// Pointer tracks a screen-space pointer and reports its grid-space position
// and per-tick delta. Delta resets to zero on release.
type Pointer struct {
	GridSize   int
	DeltaScale float32

	pos     fluid.Vec2
	delta   fluid.Vec2
	active  bool
	hasLast bool
}

// NewPointer creates a pointer tracker for an n×n grid.
func NewPointer(n int, deltaScale float32) *Pointer {
	if deltaScale == 0 {
		deltaScale = 1
	}
	return &Pointer{GridSize: n, DeltaScale: deltaScale}
}

// Update records one sample. (sx, sy) is the pointer in a viewport of
// size (vw, vh) that displays the whole grid; down is the pressed state.
// Call once per tick.
func (p *Pointer) Update(sx, sy, vw, vh float32, down bool) {
	if vw <= 0 || vh <= 0 {
		p.release()
		return
	}
	n := float32(p.GridSize)
	gp := fluid.Vec2{X: sx / vw * n, Y: sy / vh * n}

	if !down {
		p.release()
		p.pos = gp
		return
	}

	if p.hasLast {
		p.delta = gp.Sub(p.pos).Scale(p.DeltaScale)
	} else {
		// first pressed sample has no history
		p.delta = fluid.Vec2{}
	}
	p.pos = gp
	p.active = true
	p.hasLast = true
}

func (p *Pointer) release() {
	p.active = false
	p.hasLast = false
	p.delta = fluid.Vec2{}
}

// Active reports whether the pointer is pressed.
func (p *Pointer) Active() bool { return p.active }

// Pos returns the grid-space position.
func (p *Pointer) Pos() fluid.Vec2 { return p.pos }

// Delta returns the grid-space movement since the previous tick.
func (p *Pointer) Delta() fluid.Vec2 { return p.delta }

// Consume zeroes the delta once a tick has injected it, so a sample
// drives exactly one tick. Position and pressed state are kept.
func (p *Pointer) Consume() { p.delta = fluid.Vec2{} }

// Apply copies the pointer state into a tick parameter record.
func (p *Pointer) Apply(params fluid.Params) fluid.Params {
	params.PointerActive = p.active
	params.PointerPos = p.pos
	params.PointerDelta = p.delta
	return params
}
