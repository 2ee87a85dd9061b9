package observe

import (
	"errors"

	"github.com/star/starfix/internal/timescale"
)

var (
	// ErrInvalidTime is returned for timestamps that cannot be normalised.
	ErrInvalidTime = timescale.ErrInvalidTime
	// ErrUnknownBody is returned when a target cannot be resolved.
	ErrUnknownBody = errors.New("unknown body")
	// ErrComputation wraps every failure raised while computing a position.
	ErrComputation = errors.New("computation failed")
	// ErrInvalidMagnitude is returned for a NaN bright-star threshold.
	ErrInvalidMagnitude = errors.New("invalid magnitude threshold")
)
