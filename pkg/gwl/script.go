package gwl

import (
	"bufio"
	"io"
	"os"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

// CompiledScript records the product of compiling a geometry sequence
// into one script file: the declared origin, the file reference, and
// the net stage displacement executing the file causes. Records are
// immutable; Translate produces a new one. Because the file's
// directives are all relative-from-current-position, relocating a
// script only changes the declared origin, never the file content.
type CompiledScript struct {
	origin       geometry.Coordinate
	file         string
	displacement geometry.Coordinate
}

// Origin returns the record's declared origin.
func (s *CompiledScript) Origin() geometry.Coordinate { return s.origin }

// File returns the script file reference. Resolution is entirely the
// instrument's concern; the file need not exist where this host runs.
func (s *CompiledScript) File() string { return s.file }

// Displacement returns the net stage motion caused by executing the
// referenced script.
func (s *CompiledScript) Displacement() geometry.Coordinate { return s.displacement }

// Translate returns a copy of the record with its origin shifted by
// delta. The file is not touched.
func (s *CompiledScript) Translate(delta geometry.Coordinate) *CompiledScript {
	return &CompiledScript{
		origin:       s.origin.Add(delta),
		file:         s.file,
		displacement: s.displacement,
	}
}

// WithFile returns a copy of the record referencing file instead of the
// compiled path. Instruments resolve bare names against the directory of
// the including script, so callers placing a job file next to its
// scripts rebase the records to base names first.
func (s *CompiledScript) WithFile(file string) *CompiledScript {
	return &CompiledScript{
		origin:       s.origin,
		file:         file,
		displacement: s.displacement,
	}
}

// WriteScript writes the script body for a node sequence: the laser
// power and scan speed header followed by every node at its relative
// origin. It returns the net stage displacement of the whole sequence.
func WriteScript(w io.Writer, power units.Power, speed units.Velocity, nodes ...Node) (geometry.Coordinate, error) {
	if err := writeDirective(w, "LaserPower", power.Milliwatts()); err != nil {
		return geometry.Coordinate{}, err
	}
	if err := writeDirective(w, "ScanSpeed", speed.MicrometersPerSecond()); err != nil {
		return geometry.Coordinate{}, err
	}

	var current geometry.Coordinate
	for _, n := range nodes {
		rel := n.Origin().Sub(current)
		d, err := writeNode(w, n, rel)
		if err != nil {
			return geometry.Coordinate{}, err
		}
		current = current.Add(d)
	}
	return current, nil
}

// Compile writes a node sequence to the script file at path and returns
// its record with a zero origin. On any emission error the partially
// written file is left on disk; callers must treat it as invalid. The
// file handle is released on every exit path.
func Compile(path string, power units.Power, speed units.Velocity, nodes ...Node) (*CompiledScript, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.EmitOpenError(path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	displacement, err := WriteScript(bw, power, speed, nodes...)
	if err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.EmitIOError(path, err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.EmitIOError(path, err)
	}

	return &CompiledScript{file: path, displacement: displacement}, nil
}

// writeEmbedded splices a compiled script into an enclosing traversal:
// move to the relative origin, include the file, and report the move
// plus the script's own recorded displacement. This gives compiled
// scripts the same contract as primitive geometry nodes.
func (s *CompiledScript) writeEmbedded(w io.Writer, rel geometry.Coordinate) (geometry.Coordinate, error) {
	if err := WriteMove(w, rel); err != nil {
		return geometry.Coordinate{}, err
	}
	if _, err := io.WriteString(w, "include "+s.file+"\n"); err != nil {
		return geometry.Coordinate{}, err
	}
	return rel.Add(s.displacement), nil
}
