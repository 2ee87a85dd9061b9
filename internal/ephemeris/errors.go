package ephemeris

import "errors"

var (
	// ErrUnknownBody is returned for names the dataset cannot position.
	ErrUnknownBody = errors.New("unknown body")
	// ErrOutOfRange is returned for instants outside the dataset's span.
	ErrOutOfRange = errors.New("instant outside ephemeris range")
	// ErrNoMagnitudeModel is returned for bodies without a brightness model.
	ErrNoMagnitudeModel = errors.New("no magnitude model for body")
	// ErrDegenerate is returned when a geometry has no defined direction,
	// such as a body observed from its own position.
	ErrDegenerate = errors.New("degenerate geometry")
)
