package geometry

import (
	"fmt"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/units"
)

// HatchLines rasters a width x height rectangle into parallel hatch
// lines spaced by spacing, rotated by angleDeg about the rectangle
// center. Lines run in serpentine order so successive lines start near
// where the previous one ended; each line is still its own path (the
// galvo jumps between them).
func HatchLines(width, height, spacing units.Length, angleDeg float64) (Slice, error) {
	if spacing.Micrometers() <= 0 {
		return Slice{}, errors.GeometryShapeError("hatch spacing must be positive")
	}
	if width.Micrometers() < 0 || height.Micrometers() < 0 {
		return Slice{}, errors.GeometryShapeError("hatch dimensions must be non-negative")
	}

	w := width.Micrometers()
	h := height.Micrometers()
	sp := spacing.Micrometers()
	cx, cy := w/2, h/2

	var s Slice
	n := int(h/sp) + 1
	for i := 0; i < n; i++ {
		y := float64(i) * sp
		a := Coord(units.Micrometers(0), units.Micrometers(y), units.Micrometers(0))
		b := Coord(units.Micrometers(w), units.Micrometers(y), units.Micrometers(0))
		if i%2 == 1 {
			a, b = b, a
		}
		line := Path{a, b}
		if angleDeg != 0 {
			line = rotateAbout(line, angleDeg, cx, cy)
		}
		s.Paths = append(s.Paths, line)
	}
	return s, nil
}

// rotateAbout rotates a path by deg degrees about the point (cx, cy),
// both in micrometres.
func rotateAbout(p Path, deg, cx, cy float64) Path {
	center := Coord(units.Micrometers(cx), units.Micrometers(cy), units.Micrometers(0))
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = pt.Sub(center).RotatedZ(deg).Add(center)
	}
	return out
}

// SliceBox builds a block for a rectangular solid: layers every
// layerHeight from z = 0 up to depth, each hatched with HatchLines and
// the hatch angle advanced by angleStepDeg per layer. Alternating the
// hatch direction between layers avoids ridging along a single axis.
func SliceBox(origin Coordinate, rotationDeg float64, width, height, depth, spacing, layerHeight units.Length, angleStepDeg float64) (*Block, error) {
	lh := layerHeight.Micrometers()
	if lh <= 0 {
		return nil, errors.GeometryShapeError("layer height must be positive")
	}
	d := depth.Micrometers()
	if d < 0 {
		return nil, errors.GeometryShapeError("depth must be non-negative")
	}

	b := NewBlock(origin, rotationDeg)
	layers := int(d/lh) + 1
	for i := 0; i < layers; i++ {
		s, err := HatchLines(width, height, spacing, float64(i)*angleStepDeg)
		if err != nil {
			return nil, errors.GeometryShapeError(fmt.Sprintf("layer %d: %v", i, err))
		}
		b.AddSlice(units.Micrometers(float64(i)*lh), s)
	}
	return b, nil
}
