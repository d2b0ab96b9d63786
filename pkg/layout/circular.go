package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// circle returns n points spaced 2π/n apart on a circle of the given radius,
// starting at angle zero and proceeding counter-clockwise.
func circle(n int, radius float64) []r2.Vec {
	pos := make([]r2.Vec, n)
	for i := range n {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = r2.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pos
}

// unitChordRadius is the radius at which consecutive points of an n-gon are
// one unit apart. It is used to seed stress majorization at the scale of the
// target distances.
func unitChordRadius(n int) float64 {
	if n < 2 {
		return 0
	}
	return 1 / (2 * math.Sin(math.Pi/float64(n)))
}
