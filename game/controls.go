package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/fluid"
)

// Controls holds the tunables exposed as sliders. Values are clamped to
// ranges the solver accepts, so a slider can never produce a rejected tick.
type Controls struct {
	base fluid.Params

	DT          float32
	Viscosity   float32
	Dissipation float32
	Jacobi      int
	Radius      float32
	Strength    float32
}

// Slider describes one control row.
type Slider struct {
	Label    string
	Min, Max float32
	Integer  bool
	get      func(*Controls) float32
	set      func(*Controls, float32)
}

// NewControls starts the sliders at base's values.
func NewControls(base fluid.Params) *Controls {
	c := &Controls{
		base:        base,
		DT:          base.DT,
		Viscosity:   base.Viscosity,
		Dissipation: base.Dissipation,
		Jacobi:      base.JacobiIterations,
		Radius:      base.Radius,
		Strength:    base.AddStrength,
	}
	for _, s := range c.Sliders() {
		s.Set(c, s.Get(c))
	}
	return c
}

// Sliders lists the control rows in panel order.
func (c *Controls) Sliders() []Slider {
	maxRadius := float32(max(c.base.GridSize/4, 1))
	return []Slider{
		{Label: "dt", Min: 1.0 / 240, Max: 1.0 / 15,
			get: func(c *Controls) float32 { return c.DT },
			set: func(c *Controls, v float32) { c.DT = v }},
		{Label: "viscosity", Min: 0, Max: 0.05,
			get: func(c *Controls) float32 { return c.Viscosity },
			set: func(c *Controls, v float32) { c.Viscosity = v }},
		{Label: "dissipation", Min: 0.9, Max: 1,
			get: func(c *Controls) float32 { return c.Dissipation },
			set: func(c *Controls, v float32) { c.Dissipation = v }},
		{Label: "jacobi", Min: 1, Max: 120, Integer: true,
			get: func(c *Controls) float32 { return float32(c.Jacobi) },
			set: func(c *Controls, v float32) { c.Jacobi = int(v + 0.5) }},
		{Label: "radius", Min: 0, Max: maxRadius,
			get: func(c *Controls) float32 { return c.Radius },
			set: func(c *Controls, v float32) { c.Radius = v }},
		{Label: "strength", Min: 0, Max: 5,
			get: func(c *Controls) float32 { return c.Strength },
			set: func(c *Controls, v float32) { c.Strength = v }},
	}
}

// Get reads the slider's current value.
func (s Slider) Get(c *Controls) float32 { return s.get(c) }

// Set clamps v into range and stores it.
func (s Slider) Set(c *Controls, v float32) {
	if !(v >= s.Min) {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	s.set(c, v)
}

// Params returns the base parameters with the slider values applied.
func (c *Controls) Params() fluid.Params {
	p := c.base
	p.DT = c.DT
	p.Viscosity = c.Viscosity
	p.Dissipation = c.Dissipation
	p.JacobiIterations = c.Jacobi
	p.Radius = c.Radius
	p.AddStrength = c.Strength
	return p
}

// Reset restores the base values.
func (c *Controls) Reset() {
	*c = *NewControls(c.base)
}

const (
	panelX      = 10
	panelY      = 10
	panelWidth  = 260
	sliderWidth = 150
	rowHeight   = 24
)

// PanelBounds returns the screen rectangle covered by the controls.
func (c *Controls) PanelBounds() rl.Rectangle {
	rows := len(c.Sliders()) + 1
	return rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth, Height: float32(rows*rowHeight + 10)}
}

// Draw renders the slider panel and applies any changes.
func (c *Controls) Draw() {
	b := c.PanelBounds()
	rl.DrawRectangleRec(b, rl.Fade(rl.Black, 0.6))

	y := float32(panelY + 5)
	for _, s := range c.Sliders() {
		cur := s.Get(c)
		next := gui.SliderBar(
			rl.Rectangle{X: panelX + 80, Y: y, Width: sliderWidth, Height: 16},
			s.Label, "",
			cur, s.Min, s.Max,
		)
		if next != cur {
			s.Set(c, next)
		}
		text := fmt.Sprintf("%.3f", s.Get(c))
		if s.Integer {
			text = fmt.Sprintf("%d", int(s.Get(c)))
		}
		rl.DrawText(text, int32(panelX+85+sliderWidth), int32(y+2), 12, rl.RayWhite)
		y += rowHeight
	}
	if gui.Button(rl.Rectangle{X: panelX + 80, Y: y, Width: 100, Height: 18}, "Defaults") {
		c.Reset()
	}
}
