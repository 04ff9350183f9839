package d3

import (
	"errors"

	"github.com/fogleman/fauxgl"
	"gonum.org/v1/gonum/spatial/r3"
)

// View is a perspective camera.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye is located (point)
	Eye  r3.Vec
	Near float64
	Far  float64
	// Fovy is the vertical field of view in degrees.
	Fovy float64
}

// IsoView looks at the origin from an isometric position at distance dist
// along each axis, with +Z up.
func IsoView(dist float64) View {
	return View{
		Up:   r3.Vec{Z: 1},
		Eye:  Elem(dist),
		Near: 1,
		Far:  10,
		Fovy: 30,
	}
}

// Validate reports whether the view can produce a projection.
func (v View) Validate() error {
	switch {
	case v.Near <= 0 || v.Far <= v.Near:
		return errors.New("view requires 0 < near < far")
	case v.Fovy <= 0 || v.Fovy >= 180:
		return errors.New("view field of view must be in (0, 180) degrees")
	case EqualWithin(v.Eye, v.LookAt, 1e-12):
		return errors.New("view eye and look-at positions coincide")
	case r3.Norm(r3.Cross(r3.Sub(v.LookAt, v.Eye), v.Up)) == 0:
		return errors.New("view up direction parallel to line of sight")
	}
	return nil
}

// Matrix returns the combined view-projection matrix for the given aspect ratio (width/height).
func (v View) Matrix(aspect float64) fauxgl.Matrix {
	return fauxgl.LookAt(Faux(v.Eye), Faux(v.LookAt), Faux(v.Up)).Perspective(v.Fovy, aspect, v.Near, v.Far)
}
