package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/fluid"
)

// VelocityRenderer draws a sparse line overlay of the velocity field.
type VelocityRenderer struct {
	Stride int     // cells between samples
	Scale  float32 // screen pixels per unit of velocity
}

// NewVelocityRenderer creates an overlay sampling every stride cells.
func NewVelocityRenderer(stride int) *VelocityRenderer {
	if stride < 1 {
		stride = 1
	}
	return &VelocityRenderer{Stride: stride, Scale: 4}
}

// Segment is one overlay line in screen space.
type Segment struct {
	X0, Y0, X1, Y1 float32
	Alpha          uint8
}

// Segments computes overlay lines for a frame drawn over a w x h window.
// Still cells are skipped.
func (r *VelocityRenderer) Segments(f fluid.Frame, w, h float32) []Segment {
	if f.N == 0 {
		return nil
	}
	cellW := w / float32(f.N)
	cellH := h / float32(f.N)
	var segs []Segment
	for y := r.Stride / 2; y < f.N; y += r.Stride {
		for x := r.Stride / 2; x < f.N; x += r.Stride {
			v := f.VelocityAt(x, y)
			speed := float32(math.Hypot(float64(v.X), float64(v.Y)))
			if speed < 1e-3 {
				continue
			}
			cx := (float32(x) + 0.5) * cellW
			cy := (float32(y) + 0.5) * cellH
			alpha := min(speed*60, 200) + 40
			segs = append(segs, Segment{
				X0: cx, Y0: cy,
				X1:    cx + v.X*r.Scale*cellW,
				Y1:    cy + v.Y*r.Scale*cellH,
				Alpha: uint8(alpha),
			})
		}
	}
	return segs
}

// Draw renders the overlay with additive blending.
func (r *VelocityRenderer) Draw(f fluid.Frame, w, h float32) {
	rl.BeginBlendMode(rl.BlendAdditive)
	for _, s := range r.Segments(f, w, h) {
		rl.DrawLineEx(
			rl.Vector2{X: s.X0, Y: s.Y0},
			rl.Vector2{X: s.X1, Y: s.Y1},
			1.5,
			rl.Color{R: 160, G: 160, B: 160, A: s.Alpha},
		)
	}
	rl.EndBlendMode()
}
