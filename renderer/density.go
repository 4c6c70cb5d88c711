// Package renderer draws solver frames with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DensityRenderer uploads the density field to a texture and stretches it
// over the window.
type DensityRenderer struct {
	tex     rl.Texture2D
	pixels  []color.RGBA
	gridN   int
	tint    color.RGBA
	screenW float32
	screenH float32

	initialized bool
}

// NewDensityRenderer creates a renderer for a screenW x screenH window.
func NewDensityRenderer(screenW, screenH int32) *DensityRenderer {
	return &DensityRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
		tint:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Init allocates the GPU texture (must be called after the raylib window
// is created).
func (r *DensityRenderer) Init(n int) {
	if r.initialized {
		return
	}
	r.gridN = n
	r.pixels = make([]color.RGBA, n*n)

	img := rl.GenImageColor(n, n, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Resize updates the destination rectangle.
func (r *DensityRenderer) Resize(w, h float32) {
	r.screenW = w
	r.screenH = h
}

// Update uploads a density field of n x n cells. Mismatched lengths are
// ignored.
func (r *DensityRenderer) Update(density []float32, n int) {
	if !r.initialized {
		r.Init(n)
	}
	if n != r.gridN || len(density) != n*n {
		return
	}
	FillPixels(r.pixels, density, r.tint)
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw stretches the density texture over the window.
func (r *DensityRenderer) Draw() {
	if !r.initialized {
		return
	}
	src := rl.Rectangle{Width: float32(r.gridN), Height: float32(r.gridN)}
	dst := rl.Rectangle{Width: r.screenW, Height: r.screenH}
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *DensityRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}

// DensityColor maps a density to a tinted color. Values are clamped to
// [0, 1]; NaN renders black.
func DensityColor(v float32, tint color.RGBA) color.RGBA {
	if !(v > 0) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return color.RGBA{
		R: uint8(float32(tint.R) * v),
		G: uint8(float32(tint.G) * v),
		B: uint8(float32(tint.B) * v),
		A: 255,
	}
}

// FillPixels converts density values into dst, which must be at least as
// long as density.
func FillPixels(dst []color.RGBA, density []float32, tint color.RGBA) {
	for i, v := range density {
		dst[i] = DensityColor(v, tint)
	}
}
