// Package bin provides the bin registry for the control plane.
//
// A Bin row is the authoritative record for one physical device: its
// identity, distributed configuration (mode, threshold, capacity), latest
// telemetry, and presence. The Repository interface exposes the atomic
// update paths that message handlers use; handlers never cache bin state
// across decisions.
//
// The package also owns the fill-level conversion: FillPercent turns a
// raw ultrasonic distance into a percentage of capacity.
package bin
