// Package geometry provides the hierarchical geometry model consumed by
// the script emitter: coordinates, scan paths, z-layer slices and
// positioned blocks. All operations are pure; the emitter never mutates
// geometry it is handed.
package geometry

import (
	"fmt"
	"math"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/units"
)

// Coordinate is a 3-component vector of physical lengths. It doubles as
// a scan point; 2D points simply carry a zero Z.
type Coordinate struct {
	X, Y, Z units.Length
}

// Coord constructs a Coordinate.
func Coord(x, y, z units.Length) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

// FromSlice builds a Coordinate from a component slice. Anything other
// than exactly three components is a structural error.
func FromSlice(components []units.Length) (Coordinate, error) {
	if len(components) != 3 {
		return Coordinate{}, errors.GeometryShapeError(
			fmt.Sprintf("coordinate must have exactly 3 components, got %d", len(components)))
	}
	return Coordinate{components[0], components[1], components[2]}, nil
}

// Add returns c + o componentwise.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{c.X.Add(o.X), c.Y.Add(o.Y), c.Z.Add(o.Z)}
}

// Sub returns c - o componentwise.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{c.X.Sub(o.X), c.Y.Sub(o.Y), c.Z.Sub(o.Z)}
}

// Neg returns -c.
func (c Coordinate) Neg() Coordinate {
	return Coordinate{c.X.Neg(), c.Y.Neg(), c.Z.Neg()}
}

// rotationEpsilon is the raw magnitude (µm) at or below which a rotated
// component is trigonometric noise (cos(90°) is 6.1e-17, not 0) and
// snaps to zero.
const rotationEpsilon = 1e-12

func snap(v float64) float64 {
	if math.Abs(v) <= rotationEpsilon {
		return 0
	}
	return v
}

// RotatedZ returns c rotated by deg degrees about the z axis. The
// rotated XY components come back in micrometres, with sub-epsilon
// noise snapped to zero so right-angle rotations stay exact.
func (c Coordinate) RotatedZ(deg float64) Coordinate {
	if deg == 0 {
		return c
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	x := c.X.Micrometers()
	y := c.Y.Micrometers()
	return Coordinate{
		X: units.Micrometers(snap(x*cos - y*sin)),
		Y: units.Micrometers(snap(x*sin + y*cos)),
		Z: c.Z,
	}
}

// Path is one continuous scan trajectory. Point order defines the scan
// direction and is semantically meaningful.
type Path []Coordinate

// RotatedZ returns the path rotated by deg degrees about the z axis.
func (p Path) RotatedZ(deg float64) Path {
	if deg == 0 {
		return p
	}
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = pt.RotatedZ(deg)
	}
	return out
}

// Slice is the set of hatch lines comprising one z-layer. The layer's z
// height is supplied by the enclosing block at emission time, never
// stored here.
type Slice struct {
	Paths []Path
}

// RotatedZ returns the slice with every path rotated by deg degrees
// about the z axis.
func (s Slice) RotatedZ(deg float64) Slice {
	if deg == 0 {
		return s
	}
	out := Slice{Paths: make([]Path, len(s.Paths))}
	for i, p := range s.Paths {
		out.Paths[i] = p.RotatedZ(deg)
	}
	return out
}
