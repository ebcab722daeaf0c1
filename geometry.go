package ledmatrix

import (
	"errors"
	"fmt"
)

// ErrRotation is returned for rotation values other than 0, 90, 180 and 270
// degrees.
var ErrRotation = errors.New("ledmatrix: invalid rotation")

// Rotation is the orientation of the local screen relative to the hardware
// scan order.
type Rotation int

// Supported rotations.
const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Valid reports whether r is one of the supported rotations.
func (r Rotation) Valid() bool {
	return r >= Rotation0 && r <= Rotation270
}

// Degrees returns the rotation angle.
func (r Rotation) Degrees() int {
	return int(r) * 90
}

func (r Rotation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rotation(%d)", int(r))
	}
	return fmt.Sprintf("%d°", r.Degrees())
}

// RotationFromDegrees converts 0, 90, 180 or 270 into a Rotation.
func RotationFromDegrees(deg int) (Rotation, error) {
	switch deg {
	case 0:
		return Rotation0, nil
	case 90:
		return Rotation90, nil
	case 180:
		return Rotation180, nil
	case 270:
		return Rotation270, nil
	}
	return 0, fmt.Errorf("%w: %d degrees", ErrRotation, deg)
}

// Geometry describes the hardware panel size and how the local screen is
// rotated onto it.
type Geometry struct {
	Width    int // hardware columns
	Height   int // hardware rows
	Rotation Rotation
}

// LocalWidth returns the width of the screen as seen by drawing code.
func (g Geometry) LocalWidth() int {
	if g.Rotation == Rotation90 || g.Rotation == Rotation270 {
		return g.Height
	}
	return g.Width
}

// LocalHeight returns the height of the screen as seen by drawing code.
func (g Geometry) LocalHeight() int {
	if g.Rotation == Rotation90 || g.Rotation == Rotation270 {
		return g.Width
	}
	return g.Height
}

// toLocal maps hardware coordinates to local screen coordinates.
func (g Geometry) toLocal(hwX, hwY int) (x, y int, ok bool) {
	if hwX < 0 || hwY < 0 || hwX >= g.Width || hwY >= g.Height {
		return 0, 0, false
	}
	switch g.Rotation {
	case Rotation0:
		return hwX, hwY, true
	case Rotation180:
		return g.Width - 1 - hwX, g.Height - 1 - hwY, true
	case Rotation90:
		return hwY, g.Width - 1 - hwX, true
	case Rotation270:
		return g.Height - 1 - hwY, hwX, true
	}
	return 0, 0, false
}
