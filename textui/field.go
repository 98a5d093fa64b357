package textui

import "math"

// FieldKind says what rotating the encoder does on a field
type FieldKind uint8

const (
	// FieldSetpoint adjusts one digit of the desired current
	FieldSetpoint FieldKind = iota
	// FieldEnable toggles the load output
	FieldEnable
)

// Field is an editable screen position. Clicking cycles through Fields in
// order; the cursor underline sits under (X, Y).
type Field struct {
	X, Y int
	Kind FieldKind
	// Step is the setpoint change for one detent
	Step float64
}

// Fields lists the digits of "%6.4f A" at row 5 col 2 (units through
// ten-thousandths) followed by the ON/OFF toggle.
var Fields = []Field{
	{X: 2, Y: 5, Kind: FieldSetpoint, Step: 1},
	{X: 4, Y: 5, Kind: FieldSetpoint, Step: 0.1},
	{X: 5, Y: 5, Kind: FieldSetpoint, Step: 0.01},
	{X: 6, Y: 5, Kind: FieldSetpoint, Step: 0.001},
	{X: 7, Y: 5, Kind: FieldSetpoint, Step: 0.0001},
	{X: 0, Y: 7, Kind: FieldEnable},
}

// InitialCursor selects the hundredths digit after the splash screen
const InitialCursor = 2

// NextCursor advances circularly through Fields
func NextCursor(idx int) int {
	return (idx + 1) % len(Fields)
}

// AdjustSetpoint applies delta detents of step to v, clamps the result to
// [0, max] and rounds it to the 1e-4 display resolution.
func AdjustSetpoint(v float64, delta int, step, max float64) float64 {
	v += float64(delta) * step
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	return math.Round(v*1e4) / 1e4
}

// TogglesEnable reports whether an accumulated delta flips the enable
// field. Only the parity counts: one or three detents flip, two do not.
func TogglesEnable(delta int) bool {
	return delta%2 != 0
}
