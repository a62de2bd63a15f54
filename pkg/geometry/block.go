package geometry

import "ahmes-go/pkg/units"

// Node is a geometry element positioned by its own origin that can be
// reoriented about the z axis. Blocks and Composites implement it;
// composites hold their children through it so blocks and nested
// composites mix freely.
type Node interface {
	// Origin is the element's declared origin offset.
	Origin() Coordinate

	// Rotated returns a copy with the origin rotated by deg degrees
	// about the z axis and the element's own rotation combined with deg.
	Rotated(deg float64) Node
}

// SliceEntry pairs a slice with the z height it is written at.
type SliceEntry struct {
	Z     units.Length
	Slice Slice
}

// Block is a positioned collection of (z, Slice) entries with a hatch
// rotation. Entries keep insertion order; the emitter writes distinct z
// values in ascending order and equal-z entries in insertion order.
type Block struct {
	origin   Coordinate
	rotation float64 // degrees about z
	entries  []SliceEntry
}

// NewBlock creates an empty block at the given origin and rotation.
func NewBlock(origin Coordinate, rotationDeg float64) *Block {
	return &Block{origin: origin, rotation: rotationDeg}
}

// AddSlice appends a slice at the given z height.
func (b *Block) AddSlice(z units.Length, s Slice) {
	b.entries = append(b.entries, SliceEntry{Z: z, Slice: s})
}

// Origin returns the block's declared origin offset.
func (b *Block) Origin() Coordinate { return b.origin }

// Rotation returns the block's hatch rotation in degrees.
func (b *Block) Rotation() float64 { return b.rotation }

// Entries returns the block's slice entries in insertion order.
func (b *Block) Entries() []SliceEntry { return b.entries }

// Rotated returns a copy of the block with its origin rotated by deg
// degrees and deg folded into its hatch rotation. Entries are shared;
// they are never mutated.
func (b *Block) Rotated(deg float64) Node {
	if deg == 0 {
		return b
	}
	return &Block{
		origin:   b.origin.RotatedZ(deg),
		rotation: b.rotation + deg,
		entries:  b.entries,
	}
}

// Composite is an ordered collection of positioned children with an
// overall rotation applied to every child's origin and geometry.
type Composite struct {
	origin   Coordinate
	rotation float64 // degrees about z
	children []Node
}

// NewComposite creates a composite at the given origin and rotation.
func NewComposite(origin Coordinate, rotationDeg float64, children ...Node) *Composite {
	return &Composite{origin: origin, rotation: rotationDeg, children: children}
}

// Add appends a child node.
func (c *Composite) Add(n Node) {
	c.children = append(c.children, n)
}

// Origin returns the composite's declared origin offset.
func (c *Composite) Origin() Coordinate { return c.origin }

// Rotation returns the composite's rotation in degrees.
func (c *Composite) Rotation() float64 { return c.rotation }

// Children returns the child nodes in order.
func (c *Composite) Children() []Node { return c.children }

// Rotated returns a copy of the composite with its origin rotated by
// deg degrees and deg folded into its rotation.
func (c *Composite) Rotated(deg float64) Node {
	if deg == 0 {
		return c
	}
	return &Composite{
		origin:   c.origin.RotatedZ(deg),
		rotation: c.rotation + deg,
		children: c.children,
	}
}
