// Package firmware implements the bin-side device logic.
//
// The hardware is reached through three narrow interfaces - Pulser for
// ultrasonic sensors, Positioner for the lid servo, TagReader for the
// RFID reader - so the same loop runs on real GPIO or in simulation.
//
// A single cooperative loop (Device.Run) owns all hardware and state:
// it polls the sensors and reader, runs the AccessController lid state
// machine, publishes fill telemetry and credential scans, and applies
// commands and configuration pushed by the control plane. Broker
// callbacks only queue work for the loop; they never touch hardware.
package firmware
