package mqtt

import "time"

// Wire payload types for the Smart Bin protocol. Both the device firmware
// and the backend dispatcher marshal and unmarshal these structures, so
// they live next to the topic builders rather than on either side.

// Command actions accepted by the device.
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// Command reasons attached by the backend.
const (
	ReasonRFIDAuthorized = "rfid_authorized"
	ReasonRemote         = "remote"
)

// Status tokens carried on the presence topic. These are literal payloads,
// not JSON documents.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Alert types published on the alert topic.
const (
	AlertBinFull            = "bin_full"
	AlertUnauthorizedAccess = "unauthorized_access"
)

// TelemetryMessage is a fill-level reading published on smartbin/{id}/data/level.
type TelemetryMessage struct {
	// Level is the derived fill percentage, clamped to [0,100].
	Level int `json:"level"`

	// CM is the raw distance reading in centimetres.
	CM float64 `json:"cm"`

	// TS is the device-side reading timestamp (RFC 3339).
	TS string `json:"ts"`
}

// RFIDCheckMessage is a credential scan published on smartbin/{id}/rfid_check.
type RFIDCheckMessage struct {
	// UID is the scanned credential code.
	UID string `json:"uid"`

	// TS is the device-side scan timestamp (RFC 3339).
	TS string `json:"ts"`
}

// CommandMessage instructs the device to drive its lid, published on
// smartbin/{id}/cmd.
type CommandMessage struct {
	// Action is "open" or "close".
	Action string `json:"action"`

	// Reason records why the command was issued, e.g. "rfid_authorized:alice".
	Reason string `json:"reason"`

	// TS is the backend-side decision timestamp (RFC 3339).
	TS string `json:"ts"`
}

// ConfigMessage carries the device-relevant configuration subset, published
// retained on smartbin/{id}/config.
type ConfigMessage struct {
	// Mode is "AUTO" or "AUTH".
	Mode string `json:"mode"`

	// Threshold is the proximity trigger distance in centimetres.
	Threshold float64 `json:"threshold"`

	// TS is the backend-side update timestamp (RFC 3339).
	TS string `json:"ts"`
}

// AlertMessage reports a business event, published on smartbin/{id}/alert.
type AlertMessage struct {
	// Type is one of the Alert* constants.
	Type string `json:"type"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// TS is the backend-side alert timestamp (RFC 3339).
	TS string `json:"ts"`
}

// Timestamp returns the current time formatted for wire payloads.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
