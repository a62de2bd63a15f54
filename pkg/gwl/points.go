package gwl

import (
	"io"

	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/pool"
	"ahmes-go/pkg/units"
)

// WritePoints emits the scan paths of a slice as point lines at the
// given z height, flushing with "write" directives so no single flush
// exceeds MaxPointsPerWrite points.
func WritePoints(w io.Writer, s geometry.Slice, z units.Length) error {
	for _, p := range s.Paths {
		if err := writePath(w, p, z); err != nil {
			return err
		}
	}
	return nil
}

// writePath emits one continuous scan line. When the point cap is hit
// mid-path the buffered points are flushed and the boundary point is
// re-emitted to seed the next flush, so the split never breaks the
// path into disjoint motions. Every path ends with exactly one flush;
// an empty path still emits its lone flush, a harmless no-op on the
// device.
func writePath(w io.Writer, p geometry.Path, z units.Length) error {
	count := 0
	last := len(p) - 1
	for i, pt := range p {
		if err := writePoint(w, pt, z); err != nil {
			return err
		}
		count++
		if count == MaxPointsPerWrite && i != last {
			if err := writeFlush(w); err != nil {
				return err
			}
			if err := writePoint(w, pt, z); err != nil {
				return err
			}
			count = 1
		}
	}
	return writeFlush(w)
}

// writePoint emits one tab-separated raw µm point line. The layer z is
// added to the point's own z, so 2D points land exactly on the layer
// and 3D points are offsets from it.
func writePoint(w io.Writer, pt geometry.Coordinate, z units.Length) error {
	buf := pool.GetLineBuffer()
	defer pool.PutLineBuffer(buf)

	buf.AppendFloat(pt.X.Micrometers())
	buf.WriteByte('\t')
	buf.AppendFloat(pt.Y.Micrometers())
	buf.WriteByte('\t')
	buf.AppendFloat(pt.Z.Micrometers() + z.Micrometers())
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

// writeFlush emits the directive that executes all buffered points as
// one continuous motion.
func writeFlush(w io.Writer) error {
	_, err := io.WriteString(w, "write\n")
	return err
}
