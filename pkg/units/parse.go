package units

import (
	"strconv"
	"strings"

	"ahmes-go/pkg/errors"
)

// Suffix tables for quantity parsing. Lookup is case-insensitive except
// that "µm" is accepted as an alias for "um".
var lengthSuffixes = map[string]LengthUnit{
	"nm": Nanometer,
	"um": Micrometer,
	"µm": Micrometer,
	"mm": Millimeter,
	"m":  Meter,
}

var velocitySuffixes = map[string]float64{
	"um/s": 1.0,
	"µm/s": 1.0,
	"mm/s": 1e3,
	"m/s":  1e6,
}

var powerSuffixes = map[string]float64{
	"mw": 1.0,
	"w":  1e3,
}

// splitQuantity splits "12.5 um" (space optional) into its numeric value
// and lowercased suffix.
func splitQuantity(s string) (float64, string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, "", errors.UnitParseError(s, "empty string")
	}
	i := 0
	for i < len(t) {
		c := t[i]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			// Only treat 'e'/'E' as numeric when part of an exponent.
			if (c == 'e' || c == 'E') && (i+1 >= len(t) || !isExponentStart(t[i+1])) {
				break
			}
			i++
			continue
		}
		break
	}
	num := strings.TrimSpace(t[:i])
	suffix := strings.TrimSpace(t[i:])
	if num == "" {
		return 0, "", errors.UnitParseError(s, "missing numeric value")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", errors.UnitParseError(s, "invalid number '"+num+"'")
	}
	return v, strings.ToLower(suffix), nil
}

func isExponentStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+'
}

// ParseLength parses a suffixed length quantity such as "10 um", "5.5mm"
// or "250 nm". A recognized quantity of another dimension is reported as
// a unit mismatch rather than a parse failure.
func ParseLength(s string) (Length, error) {
	v, suffix, err := splitQuantity(s)
	if err != nil {
		return Length{}, err
	}
	if suffix == "" {
		return Length{}, errors.UnitParseError(s, "missing length unit")
	}
	if u, ok := lengthSuffixes[suffix]; ok {
		return Length{v, u}, nil
	}
	if _, ok := velocitySuffixes[suffix]; ok {
		return Length{}, errors.UnitMismatchError(s, "length")
	}
	if _, ok := powerSuffixes[suffix]; ok {
		return Length{}, errors.UnitMismatchError(s, "length")
	}
	return Length{}, errors.UnitParseError(s, "unknown unit '"+suffix+"'")
}

// ParseVelocity parses a suffixed velocity quantity such as "200 um/s".
func ParseVelocity(s string) (Velocity, error) {
	v, suffix, err := splitQuantity(s)
	if err != nil {
		return Velocity{}, err
	}
	if suffix == "" {
		return Velocity{}, errors.UnitParseError(s, "missing velocity unit")
	}
	if f, ok := velocitySuffixes[suffix]; ok {
		return Velocity{v * f}, nil
	}
	if _, ok := lengthSuffixes[suffix]; ok {
		return Velocity{}, errors.UnitMismatchError(s, "velocity")
	}
	if _, ok := powerSuffixes[suffix]; ok {
		return Velocity{}, errors.UnitMismatchError(s, "velocity")
	}
	return Velocity{}, errors.UnitParseError(s, "unknown unit '"+suffix+"'")
}

// ParsePower parses a suffixed power quantity such as "50 mW".
func ParsePower(s string) (Power, error) {
	v, suffix, err := splitQuantity(s)
	if err != nil {
		return Power{}, err
	}
	if suffix == "" {
		return Power{}, errors.UnitParseError(s, "missing power unit")
	}
	if f, ok := powerSuffixes[suffix]; ok {
		return Power{v * f}, nil
	}
	if _, ok := lengthSuffixes[suffix]; ok {
		return Power{}, errors.UnitMismatchError(s, "power")
	}
	if _, ok := velocitySuffixes[suffix]; ok {
		return Power{}, errors.UnitMismatchError(s, "power")
	}
	return Power{}, errors.UnitParseError(s, "unknown unit '"+suffix+"'")
}

// formatQuantity renders a value with a unit suffix for diagnostics.
func formatQuantity(v float64, suffix string) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + " " + suffix
}
