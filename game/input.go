package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.showControls = !g.showControls
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.showVelocity = !g.showVelocity
	}
	if rl.IsKeyPressed(rl.KeyS) {
		g.saveSnapshot()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	g.handlePointer()
}

// handlePointer feeds the mouse into the pointer unless it is over the
// control panel.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	down := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	if g.showControls && rl.CheckCollisionPointRec(mouse, g.controls.PanelBounds()) {
		down = false
	}
	g.pointer.Update(mouse.X, mouse.Y, g.screenWidth, g.screenHeight, down)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	if g.density != nil {
		g.density.Resize(w, h)
	}
}
