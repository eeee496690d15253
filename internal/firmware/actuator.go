package firmware

import (
	"fmt"
	"time"
)

// Positioner is the hardware face of the lid servo. The servo is only
// energised for the duration of a move; keeping it attached between
// moves causes hum and wear on cheap hobby servos.
type Positioner interface {
	// Attach energises the servo.
	Attach() error

	// Move drives the horn to the given angle in degrees.
	Move(angle int) error

	// Detach de-energises the servo.
	Detach() error
}

// Lid positions in servo degrees.
const (
	lidOpenAngle   = 90
	lidClosedAngle = 0

	// defaultSettleDelay is how long the servo needs to physically
	// reach position before power is cut.
	defaultSettleDelay = 600 * time.Millisecond
)

// LidActuator drives the bin lid through attach-move-settle-detach
// cycles. A failed attach aborts the operation before any movement.
type LidActuator struct {
	positioner Positioner
	settle     time.Duration
	sleep      func(time.Duration) // swapped out in tests
}

// NewLidActuator creates an actuator over the given positioner.
func NewLidActuator(positioner Positioner) *LidActuator {
	return &LidActuator{
		positioner: positioner,
		settle:     defaultSettleDelay,
		sleep:      time.Sleep,
	}
}

// SetSettleDelay overrides the post-move settle delay.
func (a *LidActuator) SetSettleDelay(d time.Duration) {
	a.settle = d
}

// Open drives the lid to the open position.
func (a *LidActuator) Open() error {
	return a.moveTo(lidOpenAngle)
}

// Close drives the lid to the closed position.
func (a *LidActuator) Close() error {
	return a.moveTo(lidClosedAngle)
}

// moveTo runs one full attach-move-settle-detach cycle.
func (a *LidActuator) moveTo(angle int) error {
	if err := a.positioner.Attach(); err != nil {
		return fmt.Errorf("%w: %w", ErrActuatorAttach, err)
	}

	if err := a.positioner.Move(angle); err != nil {
		// Best-effort detach; the move failure is the error that matters.
		_ = a.positioner.Detach() //nolint:errcheck
		return fmt.Errorf("%w: %w", ErrActuatorMove, err)
	}

	a.sleep(a.settle)

	if err := a.positioner.Detach(); err != nil {
		return fmt.Errorf("detaching actuator: %w", err)
	}
	return nil
}
