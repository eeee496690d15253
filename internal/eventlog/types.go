package eventlog

import "time"

// Event classes recorded by the control plane.
const (
	// EventAccessGranted records a successful RFID authorization.
	EventAccessGranted = "access_granted"

	// EventAccessDenied records a rejected RFID scan (unknown or
	// inactive credential, or unknown bin).
	EventAccessDenied = "access_denied"

	// EventBinFull records a fill level at or above the alert threshold.
	EventBinFull = "bin_full"

	// EventPresenceOnline records a device announcing itself.
	EventPresenceOnline = "presence_online"

	// EventPresenceOffline records a device dropping off the broker,
	// whether gracefully or via its last will.
	EventPresenceOffline = "presence_offline"

	// EventConfigUpdate records an accepted configuration change.
	EventConfigUpdate = "config_update"
)

// Entry is one row of the append-only audit trail. Optional fields are
// pointers so absent values stay NULL in the store rather than reading
// as zeroes.
type Entry struct {
	ID           string    `json:"id"`
	BinID        string    `json:"bin_id"`
	Event        string    `json:"event"`
	UID          *string   `json:"uid,omitempty"`
	Holder       *string   `json:"holder,omitempty"`
	LevelPercent *int      `json:"level_percent,omitempty"`
	DistanceCM   *float64  `json:"distance_cm,omitempty"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}
