// Package gwl compiles hierarchical geometry into GWL control scripts
// for a direct-laser-writing instrument. Stage positioning is tracked
// purely through relative deltas: every node consumes a relative origin
// offset and reports back the net stage displacement its directives
// cause, so siblings and parents compose without absolute coordinates.
package gwl

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

const (
	// MoveEpsilon is the smallest raw stage delta (µm) worth emitting.
	// Anything at or below it is floating-point noise from the relative
	// position bookkeeping and is silently elided.
	MoveEpsilon = 1e-12

	// MaxPointsPerWrite is the instrument's per-write point cap. The
	// device write buffer cannot accept more points in one flush.
	MaxPointsPerWrite = 200
)

// formatRaw renders a raw numeric directive argument. One canonical
// rendering for every directive and point line: shortest decimal form,
// never exponent notation (the instrument parser does not read it).
func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeDirective emits one "<name> <value>" line.
func writeDirective(w io.Writer, name string, v float64) error {
	_, err := fmt.Fprintf(w, "%s %s\n", name, formatRaw(v))
	return err
}

// WriteMove emits relative stage moves for delta, one directive per
// axis in fixed X, Y, Z order. Axes whose raw magnitude lies at or
// below MoveEpsilon emit nothing. The Z directive is named as an
// explicit increment for firmware reasons; all three encode a relative
// delta.
func WriteMove(w io.Writer, delta geometry.Coordinate) error {
	axes := []struct {
		directive string
		value     units.Length
	}{
		{"MoveStageX", delta.X},
		{"MoveStageY", delta.Y},
		{"AddZDrivePosition", delta.Z},
	}
	for _, a := range axes {
		raw := a.value.Micrometers()
		if math.Abs(raw) <= MoveEpsilon {
			continue
		}
		if err := writeDirective(w, a.directive, raw); err != nil {
			return err
		}
	}
	return nil
}
