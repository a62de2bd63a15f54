// Package units provides the physical quantities carried through the
// geometry pipeline: lengths, stage/scan velocities and laser power.
// Values keep the unit they were constructed with; conversion to the
// instrument's raw scales (micrometres, µm/s, mW) happens only when a
// directive is emitted.
package units

// LengthUnit identifies a supported length unit.
type LengthUnit int

const (
	Nanometer LengthUnit = iota
	Micrometer
	Millimeter
	Meter
)

// String returns the conventional suffix for the unit.
func (u LengthUnit) String() string {
	switch u {
	case Nanometer:
		return "nm"
	case Micrometer:
		return "um"
	case Millimeter:
		return "mm"
	case Meter:
		return "m"
	default:
		return "?"
	}
}

// micrometers returns the scale factor from this unit to micrometres.
func (u LengthUnit) micrometers() float64 {
	switch u {
	case Nanometer:
		return 1e-3
	case Micrometer:
		return 1.0
	case Millimeter:
		return 1e3
	case Meter:
		return 1e6
	default:
		return 1.0
	}
}

// Length is a one-dimensional physical length. The zero value is 0 nm.
type Length struct {
	value float64
	unit  LengthUnit
}

// Nanometers constructs a Length in nanometres.
func Nanometers(v float64) Length { return Length{v, Nanometer} }

// Micrometers constructs a Length in micrometres.
func Micrometers(v float64) Length { return Length{v, Micrometer} }

// Millimeters constructs a Length in millimetres.
func Millimeters(v float64) Length { return Length{v, Millimeter} }

// Meters constructs a Length in metres.
func Meters(v float64) Length { return Length{v, Meter} }

// Value returns the numeric value in the carried unit.
func (l Length) Value() float64 { return l.value }

// Unit returns the carried unit.
func (l Length) Unit() LengthUnit { return l.unit }

// Micrometers converts the length to the instrument's raw scale.
func (l Length) Micrometers() float64 {
	return l.value * l.unit.micrometers()
}

// in returns the numeric value converted to the given unit.
func (l Length) in(u LengthUnit) float64 {
	return l.Micrometers() / u.micrometers()
}

// Add returns l + o in l's unit.
func (l Length) Add(o Length) Length {
	return Length{l.value + o.in(l.unit), l.unit}
}

// Sub returns l - o in l's unit.
func (l Length) Sub(o Length) Length {
	return Length{l.value - o.in(l.unit), l.unit}
}

// Neg returns -l.
func (l Length) Neg() Length {
	return Length{-l.value, l.unit}
}

// Scale returns l multiplied by a dimensionless factor.
func (l Length) Scale(f float64) Length {
	return Length{l.value * f, l.unit}
}

// Less reports whether l < o.
func (l Length) Less(o Length) bool {
	return l.Micrometers() < o.Micrometers()
}

// String formats the length with its unit suffix, e.g. "5 um".
func (l Length) String() string {
	return formatQuantity(l.value, l.unit.String())
}

// Velocity is a stage or scan speed. Raw scale is µm/s.
type Velocity struct {
	micrometersPerSecond float64
}

// MicrometersPerSecond constructs a Velocity in µm/s.
func MicrometersPerSecond(v float64) Velocity { return Velocity{v} }

// MillimetersPerSecond constructs a Velocity in mm/s.
func MillimetersPerSecond(v float64) Velocity { return Velocity{v * 1e3} }

// MicrometersPerSecond converts the velocity to the instrument's raw scale.
func (v Velocity) MicrometersPerSecond() float64 { return v.micrometersPerSecond }

// String formats the velocity in raw scale, e.g. "200 um/s".
func (v Velocity) String() string {
	return formatQuantity(v.micrometersPerSecond, "um/s")
}

// Power is a laser power. Raw scale is mW.
type Power struct {
	milliwatts float64
}

// Milliwatts constructs a Power in mW.
func Milliwatts(v float64) Power { return Power{v} }

// Watts constructs a Power in W.
func Watts(v float64) Power { return Power{v * 1e3} }

// Milliwatts converts the power to the instrument's raw scale.
func (p Power) Milliwatts() float64 { return p.milliwatts }

// String formats the power in raw scale, e.g. "50 mW".
func (p Power) String() string {
	return formatQuantity(p.milliwatts, "mW")
}
