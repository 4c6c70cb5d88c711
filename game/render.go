package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Update handles input and advances the solver (graphics mode).
func (g *Game) Update() error {
	g.handleInput()
	g.perfCollector.RecordFrame()
	return g.UpdateHeadless()
}

// Draw renders the last published frame. Rendering reads the frame only;
// nothing here can alter solver state.
func (g *Game) Draw() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("draw failed", "error", fmt.Sprint(r))
		}
	}()

	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	frame := g.solver.Frame()
	if g.density != nil {
		g.density.Update(frame.Density, frame.N)
		g.density.Draw()
	}
	if g.showVelocity && g.velocity != nil {
		g.velocity.Draw(frame, g.screenWidth, g.screenHeight)
	}
	if g.showControls {
		g.controls.Draw()
	}
	g.drawStatus()
}

// drawStatus draws the bottom status line.
func (g *Game) drawStatus() {
	status := fmt.Sprintf("tick %d  t=%.1fs  fps %d  x%d", g.Tick(), g.simTime, rl.GetFPS(), g.stepsPerUpdate)
	if g.paused {
		status += "  [paused]"
	}
	if g.lastErr != nil {
		status += "  " + g.lastErr.Error()
	}
	rl.DrawText(status, 10, int32(g.screenHeight)-24, 16, rl.RayWhite)
	rl.DrawText("space pause  R reset  C controls  V velocity  S snapshot", 10, int32(g.screenHeight)-44, 12, rl.Gray)
}
