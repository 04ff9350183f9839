package d3

import (
	"math"

	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers for camera placement.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// FromArray returns the vector {a[0], a[1], a[2]}.
func FromArray(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// Faux converts v to a fauxgl vector.
func Faux(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
