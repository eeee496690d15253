package firmware

import (
	"fmt"
	"time"
)

// Pulser is the hardware face of an ultrasonic range sensor: trigger a
// ping, return the echo round-trip time. Implementations wrap GPIO on
// real hardware or a canned sequence in simulation.
type Pulser interface {
	// Pulse triggers one measurement and returns the echo round-trip
	// time. It should return promptly when no echo arrives.
	Pulse() (time.Duration, error)
}

// HC-SR04-class sensor characteristics.
const (
	// speedOfSoundCMPerSec at room temperature.
	speedOfSoundCMPerSec = 34300.0

	// minRangeCM and maxRangeCM bound the rated measuring range.
	// Echoes converting outside this band are noise.
	minRangeCM = 2.0
	maxRangeCM = 400.0

	// defaultPulseTimeout caps the echo wait. 30ms of round trip is
	// well past maxRangeCM, so longer means the echo was lost.
	defaultPulseTimeout = 30 * time.Millisecond
)

// DistanceSensor converts ultrasonic echo timings into distances,
// rejecting timeouts and out-of-range readings at the source.
type DistanceSensor struct {
	pulser  Pulser
	timeout time.Duration
}

// NewDistanceSensor creates a sensor over the given pulser.
func NewDistanceSensor(pulser Pulser) *DistanceSensor {
	return &DistanceSensor{
		pulser:  pulser,
		timeout: defaultPulseTimeout,
	}
}

// ReadCM performs one measurement and returns the distance in
// centimetres.
//
// Returns:
//   - float64: Distance in centimetres, within [minRangeCM, maxRangeCM]
//   - error: ErrPulseTimeout for a lost echo, ErrOutOfRange for an
//     implausible one, or the pulser's own failure
func (s *DistanceSensor) ReadCM() (float64, error) {
	roundTrip, err := s.pulser.Pulse()
	if err != nil {
		return 0, fmt.Errorf("pulsing sensor: %w", err)
	}

	if roundTrip <= 0 || roundTrip > s.timeout {
		return 0, fmt.Errorf("%w: round trip %v", ErrPulseTimeout, roundTrip)
	}

	// Echo travels out and back; halve for the one-way distance.
	cm := roundTrip.Seconds() * speedOfSoundCMPerSec / 2

	if cm < minRangeCM || cm > maxRangeCM {
		return 0, fmt.Errorf("%w: %.1fcm", ErrOutOfRange, cm)
	}

	return cm, nil
}
