package simulation

import "errors"

var (
	// ErrNotFound is returned for an unknown calibration history name.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRunning is returned when a calibration run or wire test is already active.
	ErrAlreadyRunning = errors.New("already running")
	// ErrInvalidRange is returned for out-of-range indexes, intervals or counts.
	ErrInvalidRange = errors.New("invalid range")
)
