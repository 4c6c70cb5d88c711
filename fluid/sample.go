package fluid

// bilinear locates position (px, py) on an n×n grid after clamping it to
// [0, n-1] and returns the four corner offsets and the fractional weights.
func bilinear(n int, px, py float32) (i00, i10, i01, i11 int, fx, fy float32) {
	maxC := float32(n - 1)
	px = clampF(px, 0, maxC)
	py = clampF(py, 0, maxC)

	x0 := int(px)
	y0 := int(py)
	fx = px - float32(x0)
	fy = py - float32(y0)

	x1 := x0 + 1
	if x1 > n-1 {
		x1 = n - 1
	}
	y1 := y0 + 1
	if y1 > n-1 {
		y1 = n - 1
	}

	return y0*n + x0, y0*n + x1, y1*n + x0, y1*n + x1, fx, fy
}

// SampleScalar bilinearly interpolates grid at (px, py). Out-of-range
// positions are clamped to the grid edge.
func SampleScalar(grid []float32, n int, px, py float32) float32 {
	i00, i10, i01, i11, fx, fy := bilinear(n, px, py)
	return grid[i00]*(1-fx)*(1-fy) +
		grid[i10]*fx*(1-fy) +
		grid[i01]*(1-fx)*fy +
		grid[i11]*fx*fy
}

// SampleVec is SampleScalar for velocity grids.
func SampleVec(grid []Vec2, n int, px, py float32) Vec2 {
	i00, i10, i01, i11, fx, fy := bilinear(n, px, py)
	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy
	return Vec2{
		X: grid[i00].X*w00 + grid[i10].X*w10 + grid[i01].X*w01 + grid[i11].X*w11,
		Y: grid[i00].Y*w00 + grid[i10].Y*w10 + grid[i01].Y*w01 + grid[i11].Y*w11,
	}
}
