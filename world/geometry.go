package world

// Geometry helpers shared by the HTTP adapter and the procedural generators.
// Corner pairs are iterated exactly as given: the step direction follows the
// sign of (corner2 - corner1) on each axis, so callers never need to
// pre-order their corners.

func axisStep(from, to int) int {
	if to < from {
		return -1
	}
	return 1
}

func axisSpan(from, to int) int {
	if to < from {
		return from - to + 1
	}
	return to - from + 1
}

// CuboidPositions returns every position in the solid cuboid spanned by the
// two corners, inclusive.
func CuboidPositions(c1, c2 Position) []Position {
	sx, sy, sz := axisStep(c1.X, c2.X), axisStep(c1.Y, c2.Y), axisStep(c1.Z, c2.Z)
	out := make([]Position, 0, axisSpan(c1.X, c2.X)*axisSpan(c1.Y, c2.Y)*axisSpan(c1.Z, c2.Z))
	for x := c1.X; ; x += sx {
		for y := c1.Y; ; y += sy {
			for z := c1.Z; ; z += sz {
				out = append(out, Position{x, y, z})
				if z == c2.Z {
					break
				}
			}
			if y == c2.Y {
				break
			}
		}
		if x == c2.X {
			break
		}
	}
	return out
}

// ShellPositions returns the positions forming the hollow shell of the cuboid
// spanned by the two corners: every face block, no interior.
func ShellPositions(c1, c2 Position) []Position {
	var out []Position
	for _, p := range CuboidPositions(c1, c2) {
		onFace := p.X == c1.X || p.X == c2.X ||
			p.Y == c1.Y || p.Y == c2.Y ||
			p.Z == c1.Z || p.Z == c2.Z
		if onFace {
			out = append(out, p)
		}
	}
	return out
}

// WireframePositions returns the positions forming the twelve edges of the
// cuboid spanned by the two corners.
func WireframePositions(c1, c2 Position) []Position {
	var out []Position
	for _, p := range CuboidPositions(c1, c2) {
		onAxes := 0
		if p.X == c1.X || p.X == c2.X {
			onAxes++
		}
		if p.Y == c1.Y || p.Y == c2.Y {
			onAxes++
		}
		if p.Z == c1.Z || p.Z == c2.Z {
			onAxes++
		}
		if onAxes >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// Line2D rasterizes the 2D line from (x1,z1) to (x2,z2) using Bresenham's
// algorithm. Both endpoints are included.
func Line2D(x1, z1, x2, z2 int) [][2]int {
	dx := abs(x2 - x1)
	dz := abs(z2 - z1)
	sx := axisStep(x1, x2)
	sz := axisStep(z1, z2)
	err := dx - dz

	var points [][2]int
	x, z := x1, z1
	for {
		points = append(points, [2]int{x, z})
		if x == x2 && z == z2 {
			break
		}
		e2 := 2 * err
		if e2 > -dz {
			err -= dz
			x += sx
		}
		if e2 < dx {
			err += dx
			z += sz
		}
	}
	return points
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
