package fretboard

import "errors"

var (
	// ErrInvalidConfig is returned by New for non-positive or inconsistent settings
	ErrInvalidConfig = errors.New("invalid fretboard config")

	// ErrUnknownString is returned for string ids outside the tuning
	ErrUnknownString = errors.New("unknown string")

	// ErrNegativeFret is returned when resolving a position below the open string
	ErrNegativeFret = errors.New("negative fret")
)
