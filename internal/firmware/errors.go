package firmware

import "errors"

// Sentinel errors for hardware interaction.
var (
	// ErrPulseTimeout is returned when the ultrasonic echo does not
	// return within the measurement window.
	ErrPulseTimeout = errors.New("firmware: pulse timeout")

	// ErrOutOfRange is returned for echoes outside the sensor's rated
	// measuring range.
	ErrOutOfRange = errors.New("firmware: reading out of range")

	// ErrActuatorAttach is returned when the lid servo cannot be
	// energised; the lid operation is aborted without moving.
	ErrActuatorAttach = errors.New("firmware: actuator attach failed")

	// ErrActuatorMove is returned when a position command fails after a
	// successful attach.
	ErrActuatorMove = errors.New("firmware: actuator move failed")
)
