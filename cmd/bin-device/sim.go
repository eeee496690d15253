package main

import (
	"math/rand"
	"sync"
	"time"

	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
)

// speedOfSoundCMPerSec mirrors the sensor's conversion so simulated
// distances round-trip exactly.
const speedOfSoundCMPerSec = 34300.0

// minSimDistanceCM keeps simulated readings inside the sensor's rated range.
const minSimDistanceCM = 2.5

// echoFor converts a distance into the round-trip time a real sensor
// would report for it.
func echoFor(cm float64) time.Duration {
	return time.Duration(cm * 2 / speedOfSoundCMPerSec * float64(time.Second))
}

// simFillPulser models a bin slowly filling up: the measured distance
// shrinks from capacity towards zero, then the bin is "emptied" and the
// cycle restarts. A little jitter keeps the readings honest.
type simFillPulser struct {
	mu         sync.Mutex
	capacityCM float64
	started    time.Time

	// fillDuration is how long a full fill cycle takes.
	fillDuration time.Duration
}

func newSimFillPulser(capacityCM float64) *simFillPulser {
	return &simFillPulser{
		capacityCM:   capacityCM,
		started:      time.Now(),
		fillDuration: 10 * time.Minute,
	}
}

// Pulse implements firmware.Pulser.
func (p *simFillPulser) Pulse() (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.started)
	cycle := float64(elapsed%p.fillDuration) / float64(p.fillDuration)

	distance := p.capacityCM * (1 - cycle)
	distance += (rand.Float64() - 0.5) * 2 // +/-1cm of noise
	if distance < minSimDistanceCM {
		distance = minSimDistanceCM
	}
	return echoFor(distance), nil
}

// simProximityPulser models foot traffic: nothing in range most of the
// time, with a person standing in front of the bin for a few seconds
// each minute.
type simProximityPulser struct {
	started time.Time
}

func newSimProximityPulser() *simProximityPulser {
	return &simProximityPulser{started: time.Now()}
}

// Pulse implements firmware.Pulser.
func (p *simProximityPulser) Pulse() (time.Duration, error) {
	// Seconds 10-15 of every minute someone is at the bin, 20cm away.
	second := int(time.Since(p.started).Seconds()) % 60
	if second >= 10 && second < 15 {
		return echoFor(20), nil
	}
	return echoFor(300), nil
}

// simPositioner logs lid movements instead of driving a servo.
type simPositioner struct {
	log *logging.Logger
}

func (s simPositioner) Attach() error { return nil }

func (s simPositioner) Move(angle int) error {
	s.log.Info("lid servo moving", "angle", angle)
	return nil
}

func (s simPositioner) Detach() error { return nil }
