package bin

import "errors"

// Domain-specific errors for bin operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBinNotFound is returned when the requested bin does not exist.
	ErrBinNotFound = errors.New("bin: not found")

	// ErrBinExists is returned when creating a bin whose ID is already taken.
	ErrBinExists = errors.New("bin: already exists")

	// ErrEmptyUpdate is returned when a config update carries no recognised fields.
	ErrEmptyUpdate = errors.New("bin: config update has no recognised fields")

	// ErrInvalidMode is returned when an operating mode is not AUTO or AUTH.
	ErrInvalidMode = errors.New("bin: invalid mode")
)
