package bin

import (
	"math"
	"time"
)

// Mode is a bin's operating mode.
type Mode string

// Operating modes.
const (
	// ModeAuto opens the lid on a debounced proximity trigger.
	ModeAuto Mode = "AUTO"

	// ModeAuth ignores proximity; only an authorized command opens the lid.
	ModeAuth Mode = "AUTH"
)

// Valid reports whether m is a recognised operating mode.
func (m Mode) Valid() bool {
	return m == ModeAuto || m == ModeAuth
}

// Bin represents a physical bin device known to the control plane.
// The record store exclusively owns this state; message handlers re-read
// or atomically update it rather than holding copies across decisions.
type Bin struct {
	// Identity
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`

	// Distributed configuration
	Mode        Mode    `json:"mode"`
	ThresholdCM float64 `json:"threshold_cm"`
	CapacityCM  float64 `json:"capacity_cm"`

	// Presence
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`

	// Latest telemetry
	LevelPercent int     `json:"level_percent"`
	DistanceCM   float64 `json:"distance_cm"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConfigUpdate is a partial update to a bin's configuration.
// Nil fields are left untouched. Only fields on the configuration
// allow-list appear here; telemetry and presence have dedicated
// update paths.
type ConfigUpdate struct {
	Mode        *Mode    `json:"mode,omitempty"`
	ThresholdCM *float64 `json:"threshold,omitempty"`
	CapacityCM  *float64 `json:"capacity,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// IsEmpty reports whether the update carries no recognised fields.
// An empty update is rejected before any store mutation or publish.
func (u ConfigUpdate) IsEmpty() bool {
	return u.Mode == nil && u.ThresholdCM == nil && u.CapacityCM == nil &&
		u.Name == nil && u.Location == nil
}

// FillPercent derives the fill percentage from a raw distance reading.
//
// A reading of capacityCM (sensor sees the bin floor) is 0% full; a
// reading of 0 (content right under the sensor) is 100% full. The result
// is rounded and clamped to [0,100], so the conversion is deterministic
// and idempotent for any input.
//
// Parameters:
//   - distanceCM: Raw distance reading in centimetres
//   - capacityCM: Distance from sensor to bin floor when empty
//
// Returns:
//   - int: Fill percentage in [0,100]
func FillPercent(distanceCM, capacityCM float64) int {
	if capacityCM <= 0 {
		return 0
	}

	pct := math.Round((capacityCM - distanceCM) / capacityCM * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// ValidReading reports whether a raw distance reading is physically
// plausible for a bin of the given capacity. Readings outside [0,capacity]
// are sensor noise and are discarded at the source on the device, and
// again here as defence in depth.
func ValidReading(distanceCM, capacityCM float64) bool {
	return distanceCM >= 0 && distanceCM <= capacityCM
}
