package credential

import "errors"

// Sentinel errors for credential operations.
var (
	// ErrNotFound is returned when a credential UID is not in the store.
	// An unknown UID is an access denial, not a fault.
	ErrNotFound = errors.New("credential: not found")

	// ErrExists is returned when creating a credential whose UID is
	// already registered.
	ErrExists = errors.New("credential: already exists")
)
