package control

import "errors"

// Sentinel errors for message routing and handling.
var (
	// ErrMalformedTopic is returned when an inbound topic has fewer than
	// three segments or a foreign namespace.
	ErrMalformedTopic = errors.New("control: malformed topic")

	// ErrMalformedPayload is returned when an inbound payload fails to
	// parse or fails field validation.
	ErrMalformedPayload = errors.New("control: malformed payload")

	// ErrUnknownClass is returned when no handler is registered for a
	// topic's message class.
	ErrUnknownClass = errors.New("control: unknown message class")

	// ErrNotStarted is returned when routing before Start or after Stop.
	ErrNotStarted = errors.New("control: dispatcher not started")

	// ErrInvalidAction is returned for a remote command action other
	// than open or close.
	ErrInvalidAction = errors.New("control: invalid command action")
)
