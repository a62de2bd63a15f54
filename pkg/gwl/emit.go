package gwl

import (
	"fmt"
	"io"
	"sort"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
)

// Node is anything that can be placed in a script at an offset from the
// current stage position: geometry blocks, composites, and previously
// compiled scripts all qualify.
type Node interface {
	// Origin is the node's declared origin offset.
	Origin() geometry.Coordinate
}

// writeNode emits one node at the given relative origin and returns the
// net stage displacement its directives cause.
func writeNode(w io.Writer, n Node, rel geometry.Coordinate) (geometry.Coordinate, error) {
	switch n := n.(type) {
	case *geometry.Block:
		return writeBlock(w, n, rel)
	case *geometry.Composite:
		return writeComposite(w, n, rel)
	case *CompiledScript:
		return n.writeEmbedded(w, rel)
	default:
		return geometry.Coordinate{}, errors.EmitError(fmt.Sprintf("unsupported node type %T", n))
	}
}

// writeBlock is the recursion's base case: move to the block's offset,
// write its slices in ascending z order, and report the offset itself
// as the displacement. Writing points moves the galvo, not the stage,
// so a block never advances the stage beyond its own declared origin.
func writeBlock(w io.Writer, b *geometry.Block, rel geometry.Coordinate) (geometry.Coordinate, error) {
	if err := WriteMove(w, rel); err != nil {
		return geometry.Coordinate{}, err
	}

	entries := b.Entries()
	seen := make(map[float64]bool, len(entries))
	heights := make([]float64, 0, len(entries))
	for _, e := range entries {
		z := e.Z.Micrometers()
		if !seen[z] {
			seen[z] = true
			heights = append(heights, z)
		}
	}
	sort.Float64s(heights)

	for _, z := range heights {
		// Equal-z entries flush independently, in insertion order.
		for _, e := range entries {
			if e.Z.Micrometers() != z {
				continue
			}
			s := e.Slice.RotatedZ(b.Rotation())
			if err := WritePoints(w, s, e.Z); err != nil {
				return geometry.Coordinate{}, err
			}
		}
	}
	return rel, nil
}

// writeComposite recursively emits the composite's children, tracking
// where the stage ends up after each child purely through the
// displacements they report back. No absolute coordinate is ever
// consulted, so composites nest to arbitrary depth.
func writeComposite(w io.Writer, c *geometry.Composite, rel geometry.Coordinate) (geometry.Coordinate, error) {
	current := rel.Neg()
	for _, child := range c.Children() {
		rotated := child.Rotated(c.Rotation())
		childRel := rotated.Origin().Sub(current)
		d, err := writeNode(w, rotated, childRel)
		if err != nil {
			return geometry.Coordinate{}, err
		}
		current = current.Add(d)
	}
	return current.Add(rel), nil
}
