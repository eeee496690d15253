package eventlog

import "errors"

// Sentinel errors for event log operations.
var (
	// ErrMissingBinID is returned when an entry has no bin association.
	ErrMissingBinID = errors.New("eventlog: missing bin id")

	// ErrMissingEvent is returned when an entry has no event class.
	ErrMissingEvent = errors.New("eventlog: missing event class")
)
